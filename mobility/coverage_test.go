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

package mobility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/uavns/uavns/types"
	"github.com/uavns/uavns/vehicle"
)

func testParams() CoverageParams {
	return CoverageParams{
		Bounds:         NewBox(0, 20, 0, 20, 0, 10),
		AreaOfInterest: NewBox(5, 15, 5, 15, 0, 10),
		MaxHeight:      10,
		CruiseSpeed:    5,
		TurnStrength:   5,
		Tick:           time.Second,
	}
}

func advance(cm *CoverageModel, n int) {
	for i := 0; i < n; i++ {
		cm.Advance()
	}
}

func TestCoverageClimb(t *testing.T) {
	cm := NewCoverageModel(testParams())
	var _ FlightModel = cm

	cm.Advance()
	assert.Equal(t, Vector{Z: 5}, cm.Position())
	assert.Equal(t, PhaseClimb, cm.FlightPhase())
	assert.Equal(t, Vector{Z: 5}, cm.Velocity())
	assert.False(t, cm.State().ReachedCeiling)

	cm.Advance()
	assert.Equal(t, Vector{Z: 10}, cm.Position())
	assert.True(t, cm.State().ReachedCeiling)
	assert.Equal(t, PhaseClimb, cm.FlightPhase())
}

func TestCoverageClimbKeepsOvershoot(t *testing.T) {
	p := testParams()
	p.MaxHeight = 12
	cm := NewCoverageModel(p)
	advance(cm, 2)
	assert.Equal(t, 10.0, cm.Position().Z)
	assert.True(t, cm.State().ReachedCeiling)
}

func TestCoverageSweepAndTurn(t *testing.T) {
	cm := NewCoverageModel(testParams())
	advance(cm, 3)
	assert.Equal(t, Vector{X: 5, Z: 10}, cm.Position())
	assert.Equal(t, PhaseSweepOutside, cm.FlightPhase())
	assert.Equal(t, Vector{X: 5}, cm.Velocity())
	assert.True(t, cm.ComputeStarted())

	advance(cm, 3)
	assert.Equal(t, Vector{X: 20, Z: 10}, cm.Position())

	// boundary reached: lane change instead of the straight move
	cm.Advance()
	assert.Equal(t, Vector{X: 20, Y: 5, Z: 10}, cm.Position())
	assert.Equal(t, Vector{Y: 5}, cm.Velocity())
	assert.Equal(t, PhaseSweepOutside, cm.FlightPhase())
	assert.False(t, cm.TurnInProgress())
	assert.False(t, cm.State().Forward)

	cm.Advance()
	assert.Equal(t, Vector{X: 15, Y: 5, Z: 10}, cm.Position())
	assert.Equal(t, Vector{X: -5}, cm.Velocity())
	assert.Equal(t, PhaseSweepInside, cm.FlightPhase())
	assert.True(t, cm.InsideAreaOfInterest())
	assert.True(t, cm.ComputeStarted())

	advance(cm, 3)
	assert.Equal(t, Vector{X: 0, Y: 5, Z: 10}, cm.Position())
	assert.Equal(t, PhaseSweepOutside, cm.FlightPhase())
	assert.True(t, cm.ComputeStarted())

	cm.Advance()
	assert.Equal(t, Vector{X: 0, Y: 10, Z: 10}, cm.Position())
	assert.True(t, cm.State().Forward)
}

func TestCoverageMultiTickTurn(t *testing.T) {
	p := testParams()
	p.TurnStrength = 10
	cm := NewCoverageModel(p)
	advance(cm, 7)
	assert.Equal(t, Vector{X: 20, Y: 5, Z: 10}, cm.Position())
	assert.True(t, cm.TurnInProgress())
	assert.False(t, cm.ComputeStarted())
	assert.True(t, cm.State().Forward)

	cm.Advance()
	assert.Equal(t, Vector{X: 20, Y: 10, Z: 10}, cm.Position())
	assert.False(t, cm.TurnInProgress())
	assert.True(t, cm.ComputeStarted())
	assert.False(t, cm.State().Forward)

	cm.Advance()
	assert.Equal(t, Vector{X: 15, Y: 10, Z: 10}, cm.Position())
	assert.Equal(t, PhaseSweepInside, cm.FlightPhase())
}

func TestCoverageBoundaryStartTurnsFirst(t *testing.T) {
	p := testParams()
	p.Start = Vector{X: 20}
	cm := NewCoverageModel(p)
	advance(cm, 2)
	assert.True(t, cm.State().ReachedCeiling)

	cm.Advance()
	assert.Equal(t, Vector{X: 20, Y: 5, Z: 10}, cm.Position())
	assert.Equal(t, Vector{Y: 5}, cm.Velocity())
	assert.False(t, cm.State().Forward)
}

func TestCoverageDescendAndLand(t *testing.T) {
	cm := NewCoverageModel(testParams())
	advance(cm, 26)
	assert.Equal(t, Vector{X: 20, Y: 20, Z: 10}, cm.Position())
	assert.False(t, cm.State().Descending)

	// the lane change would leave the bounds
	cm.Advance()
	assert.Equal(t, Vector{X: 20, Y: 20, Z: 10}, cm.Position())
	assert.True(t, cm.State().Descending)
	assert.Equal(t, PhaseSweepInside, cm.FlightPhase())
	assert.Equal(t, Vector{}, cm.Velocity())

	cm.Advance()
	assert.Equal(t, 5.0, cm.Position().Z)
	assert.Equal(t, PhaseDescend, cm.FlightPhase())
	assert.Equal(t, Vector{Z: -5}, cm.Velocity())

	cm.Advance()
	assert.Equal(t, 0.0, cm.Position().Z)

	advance(cm, 10)
	assert.Equal(t, Vector{X: 20, Y: 20}, cm.Position())
	assert.Equal(t, PhaseDescend, cm.FlightPhase())
	assert.Equal(t, Vector{}, cm.Velocity())
}

func TestCoverageStaysInBounds(t *testing.T) {
	p := testParams()
	p.Tick = 300 * time.Millisecond
	p.TurnStrength = 4
	cm := NewCoverageModel(p)
	for i := 0; i < 2000; i++ {
		cm.Advance()
		pos := cm.Position()
		assert.GreaterOrEqual(t, pos.Z, 0.0)
		assert.LessOrEqual(t, pos.Z, p.MaxHeight)
		if cm.State().ReachedCeiling {
			assert.True(t, pos.X >= p.Bounds.XMin && pos.X <= p.Bounds.XMax, "x=%v", pos.X)
			assert.True(t, pos.Y >= p.Bounds.YMin && pos.Y <= p.Bounds.YMax, "y=%v", pos.Y)
		}
	}
	assert.True(t, cm.State().Descending)
	assert.Equal(t, 0.0, cm.Position().Z)
}

func TestCoverageDeterministic(t *testing.T) {
	p := ParamsFromProfile(vehicle.DefaultProfile(), time.Second)
	a := NewCoverageModel(p)
	b := NewCoverageModel(p)
	for i := 0; i < 5000; i++ {
		a.Advance()
		b.Advance()
		if !assert.Equal(t, a.State(), b.State(), "tick %d", i) {
			break
		}
	}
	assert.Equal(t, a.Distance(), b.Distance())
}

func TestCoverageDistance(t *testing.T) {
	cm := NewCoverageModel(testParams())
	advance(cm, 7)
	// 10 up, 20 along x, 5 lane change
	assert.Equal(t, 35.0, cm.Distance())
}
