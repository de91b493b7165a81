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

package energy

import (
	"math"

	"github.com/uavns/uavns/power"
	. "github.com/uavns/uavns/types"
	"github.com/uavns/uavns/vehicle"
)

// CurrentModel converts the flight state of a vehicle into its current draw.
type CurrentModel struct {
	profile      *vehicle.VehicleProfile
	compute      float64
	idleHardware float64
	busyHardware float64
}

func NewCurrentModel(profile *vehicle.VehicleProfile) *CurrentModel {
	cm := &CurrentModel{
		profile: profile,
		compute: power.ComputePower(profile.SwitchCapacitance, profile.Voltage, profile.CyclesPerOperation,
			profile.OperationsPerDatum, profile.TrainingSetSize, profile.LocalIterations) / power.ComputeRailNormalizer,
	}
	for _, hw := range profile.Hardware {
		cm.idleHardware += hw.IdleCurrent()
		cm.busyHardware += hw.ActiveCurrent()
	}
	return cm
}

func (cm *CurrentModel) propulsion(vx, vy, vz float64) float64 {
	p := cm.profile
	return power.TotalPropulsionPower(p.Mass, p.DragCoefficient, p.PropellerRadius, p.PropellerCount, vx, vy, vz) /
		p.Voltage
}

// levelFlight returns the propulsion current at cruise speed along the axis of velocity, x unless the
// vehicle moves along y.
func (cm *CurrentModel) levelFlight(velocity Vector) float64 {
	speed := cm.profile.CruiseSpeed
	if math.Abs(velocity.Y) > math.Abs(velocity.X) {
		return cm.propulsion(0, speed, 0)
	}
	return cm.propulsion(speed, 0, 0)
}

// Breakdown returns the current drawn in phase, at velocity. While sweeping, the vehicle is charged for
// level flight at cruise speed, also on a tick it does not move. The compute payload and the peripherals
// idle outside the area of interest while computeStarted, and are busy in phase PhaseSweepInside.
func (cm *CurrentModel) Breakdown(phase FlightPhase, velocity Vector, computeStarted bool) CurrentBreakdown {
	switch phase {
	case PhaseSweepOutside:
		b := CurrentBreakdown{Mobility: cm.levelFlight(velocity)}
		if computeStarted {
			b.Compute = cm.compute
			b.Hardware = cm.idleHardware
		}
		return b
	case PhaseSweepInside:
		return CurrentBreakdown{
			Mobility: cm.levelFlight(velocity),
			Compute:  cm.compute,
			Hardware: cm.busyHardware,
		}
	default:
		// climb and descend draw the climb power at cruise speed
		return CurrentBreakdown{Mobility: cm.propulsion(0, 0, cm.profile.CruiseSpeed)}
	}
}

// InstantaneousCurrent returns the total current drawn in phase, at velocity.
func (cm *CurrentModel) InstantaneousCurrent(phase FlightPhase, velocity Vector, computeStarted bool) float64 {
	return cm.Breakdown(phase, velocity, computeStarted).Total()
}

// UplinkEnergy returns the energy of one local model upload from position to the base station.
func (cm *CurrentModel) UplinkEnergy(position Vector) float64 {
	p := cm.profile
	return power.CommunicationEnergy(p.TxPower, p.PayloadSize, p.Bandwidth, p.CarrierFrequency,
		position.Distance(p.BaseStation))
}
