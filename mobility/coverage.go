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
	"time"

	. "github.com/uavns/uavns/types"
	"github.com/uavns/uavns/vehicle"
)

// CoverageParams configures a CoverageModel.
type CoverageParams struct {
	Start          Vector
	Bounds         Box
	AreaOfInterest Box
	MaxHeight      float64
	CruiseSpeed    float64 // m/s
	TurnStrength   float64 // m
	Tick           time.Duration
}

// ParamsFromProfile takes the trajectory parameters from a vehicle profile.
func ParamsFromProfile(p *vehicle.VehicleProfile, tick time.Duration) CoverageParams {
	return CoverageParams{
		Start:          p.Start,
		Bounds:         p.Bounds,
		AreaOfInterest: p.AreaOfInterest,
		MaxHeight:      p.MaxHeight,
		CruiseSpeed:    p.CruiseSpeed,
		TurnStrength:   p.TurnStrength,
		Tick:           tick,
	}
}

// Step returns the distance moved in one tick.
func (cp CoverageParams) Step() float64 {
	return cp.CruiseSpeed * cp.Tick.Seconds()
}

// CoverageModel flies a boustrophedon pattern: climb to the ceiling, sweep lanes along x while shifting
// along +y at each boundary, and descend once a lane change leaves the bounds. It never ends by itself;
// after landing it stays on the ground.
type CoverageModel struct {
	params   CoverageParams
	step     float64
	state    FlightState
	distance float64
}

// NewCoverageModel creates a model at the start position, climbing, with the sweep pointing towards +x.
func NewCoverageModel(params CoverageParams) *CoverageModel {
	return &CoverageModel{
		params: params,
		step:   params.Step(),
		state: FlightState{
			Position:         params.Start,
			PreviousPosition: params.Start,
			Phase:            PhaseClimb,
			Forward:          true,
		},
	}
}

func (cm *CoverageModel) Params() CoverageParams {
	return cm.params
}

func (cm *CoverageModel) Position() Vector {
	return cm.state.Position
}

func (cm *CoverageModel) Velocity() Vector {
	return cm.state.Velocity
}

func (cm *CoverageModel) FlightPhase() FlightPhase {
	return cm.state.Phase
}

func (cm *CoverageModel) InsideAreaOfInterest() bool {
	return cm.params.AreaOfInterest.Contains(cm.state.Position)
}

func (cm *CoverageModel) TurnInProgress() bool {
	return cm.state.Turning
}

// ComputeStarted reports whether the compute payload runs: on every straight leg, and not during a lane
// change.
func (cm *CoverageModel) ComputeStarted() bool {
	return !cm.state.Turning
}

func (cm *CoverageModel) State() FlightState {
	return cm.state
}

func (cm *CoverageModel) Distance() float64 {
	return cm.distance
}

// Advance moves the vehicle by one tick.
func (cm *CoverageModel) Advance() {
	start := cm.state.Position
	switch {
	case !cm.state.ReachedCeiling:
		cm.climb()
	case !cm.state.Descending:
		cm.sweep()
	default:
		cm.descend()
	}
	cm.distance += cm.state.Position.Distance(start)
}

func (cm *CoverageModel) climb() {
	s := &cm.state
	s.Position.Z += cm.step
	s.Phase = PhaseClimb
	s.Velocity = Vector{Z: cm.params.CruiseSpeed}
	if cm.params.MaxHeight-s.Position.Z < cm.step {
		s.ReachedCeiling = true
	}
}

func (cm *CoverageModel) sweep() {
	s := &cm.state
	s.PreviousPosition = s.Position

	dx := cm.step
	if !s.Forward {
		dx = -dx
	}
	s.Position.X += dx

	if !s.Turning && cm.params.Bounds.Contains(s.Position) {
		s.Phase = cm.aoiPhase()
		s.Velocity = Vector{X: dx / cm.params.Tick.Seconds()}
		return
	}

	// lane change: shift along y and take back the x move.
	s.Phase = PhaseSweepInside
	if s.TurnRemaining <= 0 {
		s.TurnRemaining = cm.params.TurnStrength
	}
	s.Position.Y += cm.step
	s.TurnRemaining -= cm.step
	s.Position.X -= dx

	if !cm.params.Bounds.Contains(s.Position) {
		// no lane left.
		s.Position = s.PreviousPosition
		s.Velocity = Vector{}
		s.Descending = true
		return
	}

	s.Phase = cm.aoiPhase()
	s.Velocity = Vector{Y: cm.params.CruiseSpeed}
	if s.TurnRemaining <= 0 {
		s.Turning = false
		s.Forward = !s.Forward
	} else {
		s.Turning = true
	}
}

func (cm *CoverageModel) aoiPhase() FlightPhase {
	if cm.InsideAreaOfInterest() {
		return PhaseSweepInside
	}
	return PhaseSweepOutside
}

func (cm *CoverageModel) descend() {
	s := &cm.state
	s.Phase = PhaseDescend
	if s.Position.Z == 0 {
		s.Velocity = Vector{}
		return
	}
	s.Velocity = Vector{Z: -cm.params.CruiseSpeed}
	if s.Position.Z-cm.step > 0 {
		s.Position.Z -= cm.step
	} else {
		s.Position.Z = 0
	}
}
