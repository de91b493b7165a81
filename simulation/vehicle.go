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

package simulation

import (
	"sync"
	"time"

	"github.com/uavns/uavns/energy"
	"github.com/uavns/uavns/logger"
	"github.com/uavns/uavns/mobility"
	"github.com/uavns/uavns/telemetry"
	. "github.com/uavns/uavns/types"
	"github.com/uavns/uavns/vehicle"
)

// Vehicle owns the profile, trajectory, energy ledger and current model of one simulated vehicle. The mutex
// makes every tick appear atomic to readers.
type Vehicle struct {
	Id           VehicleId
	ProfileIndex int
	Logger       *logger.VehicleLogger

	mutex      sync.Mutex
	profile    *vehicle.VehicleProfile
	flight     mobility.FlightModel
	ledger     *energy.Ledger
	current    *energy.CurrentModel
	ticks      uint64
	phaseTicks [NumFlightPhases]uint64
	lastPhase  FlightPhase
	depletedAt uint64
}

func newVehicle(id VehicleId, profileIndex int, profile *vehicle.VehicleProfile, tick time.Duration,
	log *logger.VehicleLogger) *Vehicle {
	v := &Vehicle{
		Id:           id,
		ProfileIndex: profileIndex,
		Logger:       log,
		profile:      profile,
		flight:       mobility.NewCoverageModel(mobility.ParamsFromProfile(profile, tick)),
		ledger:       energy.NewLedger(profile.Capacity, profile.Voltage),
		current:      energy.NewCurrentModel(profile),
		lastPhase:    PhaseClimb,
	}
	log.Infof("created from profile %d at %v, capacity %g J", profileIndex, profile.Start, profile.Capacity)
	return v
}

// Profile returns the vehicle profile. It must not be modified.
func (v *Vehicle) Profile() *vehicle.VehicleProfile {
	return v.profile
}

// Tick advances the vehicle by one tick of dt seconds ending at ts, draws the resulting current from the
// ledger, and returns the telemetry record and the current breakdown.
func (v *Vehicle) Tick(ts uint64, dt float64) (telemetry.Record, energy.CurrentBreakdown) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.Logger.SetTimestamp(ts)
	v.flight.Advance()
	v.ticks++

	pos := v.flight.Position()
	phase := v.flight.FlightPhase()
	v.phaseTicks[phase]++
	if phase != v.lastPhase {
		v.Logger.Debugf("phase %v -> %v at %v", v.lastPhase, phase, pos)
		v.lastPhase = phase
	}

	b := v.current.Breakdown(phase, v.flight.Velocity(), v.flight.ComputeStarted())
	v.ledger.RecordDraw(b.Total(), dt)
	depleted := v.ledger.Depleted()
	if depleted {
		v.depletedAt = ts
		v.Logger.Infof("energy depleted after %d ticks: %g J consumed", v.ticks, v.ledger.Consumed())
	}
	v.Logger.Tracef("pos=%v phase=%v current=%g consumed=%g", pos, phase, b.Total(), v.ledger.Consumed())

	return telemetry.Record{
		VehicleId:        v.Id,
		Timestamp:        ts,
		Position:         pos,
		Consumed:         v.ledger.Consumed(),
		AreaOfInterest:   v.profile.AreaOfInterest,
		Current:          v.ledger.Current(),
		RemainingPercent: v.ledger.RemainingPercent(),
		Phase:            phase,
		MobilityCurrent:  b.Mobility,
		HardwareCurrent:  b.Hardware,
		ComputeCurrent:   b.Compute,
		UplinkEnergy:     v.current.UplinkEnergy(pos),
		Depleted:         depleted,
	}, b
}

// Status returns a snapshot of the vehicle.
func (v *Vehicle) Status() VehicleStatus {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return VehicleStatus{
		Id:               v.Id,
		ProfileIndex:     v.ProfileIndex,
		Position:         v.flight.Position(),
		Velocity:         v.flight.Velocity(),
		Phase:            v.flight.FlightPhase(),
		Consumed:         v.ledger.Consumed(),
		Capacity:         v.ledger.Capacity(),
		Current:          v.ledger.Current(),
		RemainingPercent: v.ledger.RemainingPercent(),
		Distance:         v.flight.Distance(),
		Ticks:            v.ticks,
		Depleted:         v.ledger.Depleted(),
		DepletedAt:       v.depletedAt,
	}
}

// PhaseTicks returns the number of ticks spent in each flight phase.
func (v *Vehicle) PhaseTicks() [NumFlightPhases]uint64 {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.phaseTicks
}

func (v *Vehicle) info() telemetry.VehicleInfo {
	return telemetry.VehicleInfo{
		Id:             v.Id,
		ProfileIndex:   v.ProfileIndex,
		Bounds:         v.profile.Bounds,
		AreaOfInterest: v.profile.AreaOfInterest,
		Start:          v.profile.Start,
		Capacity:       v.profile.Capacity,
	}
}

func (v *Vehicle) close() {
	v.Logger.Close()
}
