// Copyright (c) 2026, The UAVNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxContainsIsInclusive(t *testing.T) {
	b := NewBox(0, 260, 0, 260, 0, 100)

	assert.True(t, b.Contains(Vector{0, 0, 0}))
	assert.True(t, b.Contains(Vector{260, 260, 100}))
	assert.True(t, b.Contains(Vector{130, 5, 50}))
	assert.False(t, b.Contains(Vector{265, 0, 50}))
	assert.False(t, b.Contains(Vector{0, -0.5, 50}))
	assert.False(t, b.Contains(Vector{10, 10, 100.1}))
}

func TestBoxBound(t *testing.T) {
	b := NewBox(10, 20, 30, 50, 0, 1)
	bound := b.Bound()
	assert.Equal(t, 10.0, bound.Min.X())
	assert.Equal(t, 30.0, bound.Min.Y())
	assert.Equal(t, 20.0, bound.Max.X())
	assert.Equal(t, 50.0, bound.Max.Y())
	assert.Equal(t, [6]float64{10, 20, 30, 50, 0, 1}, b.Values())
}

func TestVectorDistance(t *testing.T) {
	a := Vector{0, 3, 0}
	b := Vector{4, 0, 0}
	assert.Equal(t, 5.0, a.Distance(b))
	assert.Equal(t, Vector{4, -3, 0}, b.Sub(a))
	assert.Equal(t, Vector{8, 0, 0}, b.Scale(2))
}

func TestFlightPhaseString(t *testing.T) {
	assert.Equal(t, "climb", PhaseClimb.String())
	assert.Equal(t, "sweep-aoi", PhaseSweepInside.String())
	assert.True(t, PhaseSweepOutside.IsSweep())
	assert.False(t, PhaseDescend.IsSweep())
}
