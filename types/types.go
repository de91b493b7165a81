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
)

type VehicleId = int

const (
	InvalidVehicleId VehicleId = 0
	MaxVehicleId     VehicleId = 0xffff
)

// FlightPhase is the discrete flight-state code produced by the trajectory state machine on every tick.
// The numeric values are part of the telemetry format.
type FlightPhase int

const (
	PhaseClimb        FlightPhase = 0
	PhaseSweepOutside FlightPhase = 1
	PhaseSweepInside  FlightPhase = 2
	PhaseDescend      FlightPhase = 3
)

func (p FlightPhase) String() string {
	switch p {
	case PhaseClimb:
		return "climb"
	case PhaseSweepOutside:
		return "sweep"
	case PhaseSweepInside:
		return "sweep-aoi"
	case PhaseDescend:
		return "descend"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// IsSweep returns true for both coverage phase codes.
func (p FlightPhase) IsSweep() bool {
	return p == PhaseSweepOutside || p == PhaseSweepInside
}

const NumFlightPhases = 4
