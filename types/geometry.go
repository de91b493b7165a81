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
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Vector is a position or velocity in the local cartesian frame, in metres (or m/s).
type Vector struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

func (v Vector) Add(o Vector) Vector {
	return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector) Sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector) Scale(f float64) Vector {
	return Vector{v.X * f, v.Y * f, v.Z * f}
}

func (v Vector) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the euclidean distance between v and o.
func (v Vector) Distance(o Vector) float64 {
	return v.Sub(o).Length()
}

// Point returns the horizontal projection of v.
func (v Vector) Point() orb.Point {
	return orb.Point{v.X, v.Y}
}

func (v Vector) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Box is an axis-aligned volume. Containment is inclusive on all faces.
type Box struct {
	XMin float64 `yaml:"xMin" json:"xMin"`
	XMax float64 `yaml:"xMax" json:"xMax"`
	YMin float64 `yaml:"yMin" json:"yMin"`
	YMax float64 `yaml:"yMax" json:"yMax"`
	ZMin float64 `yaml:"zMin" json:"zMin"`
	ZMax float64 `yaml:"zMax" json:"zMax"`
}

func NewBox(xMin, xMax, yMin, yMax, zMin, zMax float64) Box {
	return Box{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax, ZMin: zMin, ZMax: zMax}
}

func (b Box) Contains(v Vector) bool {
	return v.X >= b.XMin && v.X <= b.XMax &&
		v.Y >= b.YMin && v.Y <= b.YMax &&
		v.Z >= b.ZMin && v.Z <= b.ZMax
}

// Values returns the six bounding values in xMin, xMax, yMin, yMax, zMin, zMax order.
func (b Box) Values() [6]float64 {
	return [6]float64{b.XMin, b.XMax, b.YMin, b.YMax, b.ZMin, b.ZMax}
}

// Bound returns the horizontal footprint of the box.
func (b Box) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.XMin, b.YMin}, Max: orb.Point{b.XMax, b.YMax}}
}

func (b Box) String() string {
	return fmt.Sprintf("[%g,%g]x[%g,%g]x[%g,%g]", b.XMin, b.XMax, b.YMin, b.YMax, b.ZMin, b.ZMax)
}
