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

// Package mobility moves vehicles through space one simulation tick at a time.
package mobility

import (
	. "github.com/uavns/uavns/types"
)

// MobilityModel is the capability of a vehicle to move. Advance moves the vehicle by one tick.
type MobilityModel interface {
	Position() Vector
	Velocity() Vector
	Advance()
}

// FlightStateSource exposes the flight phase queries consumed by the energy model and the reporters.
type FlightStateSource interface {
	FlightPhase() FlightPhase
	InsideAreaOfInterest() bool
	TurnInProgress() bool
	ComputeStarted() bool
}

// FlightModel is a MobilityModel which also reports its flight state.
type FlightModel interface {
	MobilityModel
	FlightStateSource

	// State returns a copy of the complete mutable state.
	State() FlightState
	// Distance returns the total distance flown.
	Distance() float64
}

// FlightState is the mutable state of the coverage trajectory.
type FlightState struct {
	Position         Vector
	PreviousPosition Vector
	Velocity         Vector
	Phase            FlightPhase
	Forward          bool    // sweep direction along +x
	Turning          bool    // lane change in progress
	TurnRemaining    float64 // lateral distance still to cover in the current lane change
	ReachedCeiling   bool
	Descending       bool
}
