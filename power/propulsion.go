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

// Package power implements the stateless power model of the vehicle: rotor-craft propulsion,
// on-board compute and the wireless uplink. Mass is given in grams, all other quantities in SI units.
package power

import "math"

// RotorDiscArea returns the total rotor disc area, 2*pi*r^2*n.
func RotorDiscArea(radius, count float64) float64 {
	return 2 * math.Pi * radius * radius * count
}

func weight(mass float64) float64 {
	return (mass / gramsPerKilogram) * GravityAcceleration
}

// InducedPower is the momentum-theory power needed to keep the vehicle airborne while moving
// horizontally with velocity (vx, vy). With vx = vy = 0 it is the hover power.
func InducedPower(mass, radius, count, vx, vy float64) float64 {
	omega := vx*vx + vy*vy
	area := RotorDiscArea(radius, count)
	w := weight(mass)
	vh := math.Sqrt(w / (2 * AirDensity * area))
	vh4 := vh * vh * vh * vh
	return (w * w / (math.Sqrt2 * AirDensity * area)) * (1 / math.Sqrt(omega+math.Sqrt(omega*omega+4*vh4)))
}

// ClimbPower is the power to lift the vehicle at vertical speed vz.
func ClimbPower(mass, vz float64) float64 {
	return weight(mass) * vz
}

// DragPower is the parasitic drag power at horizontal velocity (vx, vy).
func DragPower(dragCoeff, radius, count, vx, vy float64) float64 {
	omega := vx*vx + vy*vy
	area := RotorDiscArea(radius, count)
	return (1 / dragCoefficientDivisor) * dragCoeff * AirDensity * area * math.Pow(omega, 1.5)
}

// TotalPropulsionPower sums induced, climb and drag power, in that order.
func TotalPropulsionPower(mass, dragCoeff, radius, count, vx, vy, vz float64) float64 {
	return InducedPower(mass, radius, count, vx, vy) +
		ClimbPower(mass, vz) +
		DragPower(dragCoeff, radius, count, vx, vy)
}
