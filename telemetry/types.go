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

// Package telemetry defines the telemetry record emitted by every vehicle tick, and the reporters
// consuming it.
package telemetry

import (
	"fmt"
	"strings"

	. "github.com/uavns/uavns/types"
)

// Record is the state of a vehicle after one tick.
type Record struct {
	RunId            string
	VehicleId        VehicleId
	Timestamp        uint64 // us
	Position         Vector
	Consumed         float64 // J
	AreaOfInterest   Box
	Current          float64 // A
	RemainingPercent float64
	Phase            FlightPhase
	MobilityCurrent  float64 // A
	HardwareCurrent  float64 // A
	ComputeCurrent   float64 // A
	UplinkEnergy     float64 // J, one model upload to the base station; not charged
	Depleted         bool
}

// Seconds returns the record timestamp in seconds.
func (r *Record) Seconds() float64 {
	return SecondsFromUs(r.Timestamp)
}

// Line formats the record as one space separated line: id, x, y, z, consumed, time, the six AoI values,
// current, remaining percentage, mobility, hardware and compute currents, and phase.
func (r *Record) Line() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %g %g %g %g %+gns", r.VehicleId, r.Position.X, r.Position.Y, r.Position.Z, r.Consumed,
		float64(r.Timestamp)*1000)
	for _, v := range r.AreaOfInterest.Values() {
		fmt.Fprintf(&sb, " %g", v)
	}
	fmt.Fprintf(&sb, " %g %g %g %g %g %d", r.Current, r.RemainingPercent, r.MobilityCurrent, r.HardwareCurrent,
		r.ComputeCurrent, int(r.Phase))
	return sb.String()
}

// VehicleInfo is the static information of a vehicle announced to reporters when it is added.
type VehicleInfo struct {
	Id             VehicleId
	ProfileIndex   int
	Bounds         Box
	AreaOfInterest Box
	Start          Vector
	Capacity       float64 // J
}

// Reporter consumes the telemetry of a run. Report and CloseVehicle may be called concurrently for
// different vehicles.
type Reporter interface {
	// Init prepares the reporter for the run.
	Init()

	// AddVehicle announces a new vehicle.
	AddVehicle(info VehicleInfo)

	// Report delivers the record of one vehicle tick.
	Report(rec Record)

	// CloseVehicle ends the reporting of a vehicle: it either depleted its energy or was deleted.
	CloseVehicle(id VehicleId, timestamp uint64)

	// AdvanceTime notifies that simulation time advanced to ts.
	AdvanceTime(ts uint64)

	// Stop flushes and closes the reporter at shutdown.
	Stop()
}
