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

// Package vehicle holds the static vehicle profile and its loader.
package vehicle

import (
	. "github.com/uavns/uavns/types"
)

// defaults in force for any profile field that is absent from the configuration.
const (
	DefaultMaxHeight    = 100.0
	DefaultCruiseSpeed  = 5.0
	DefaultTurnStrength = 50.0
	DefaultAreaSize     = 260.0
	DefaultAoiMinHeight = 20.0
	DefaultAoiMaxHeight = 80.0
	SecondsPerHour      = 3600.0
)

// HardwareEntry is one peripheral (camera, lidar, ...) carried by the vehicle.
type HardwareEntry struct {
	Id          int     `yaml:"id"`
	IdlePower   float64 `yaml:"idlePower"`   // W
	ActivePower float64 `yaml:"activePower"` // W
	Voltage     float64 `yaml:"voltage"`     // V
}

// IdleCurrent returns the current drawn by the peripheral while the vehicle is outside the area of interest.
func (h HardwareEntry) IdleCurrent() float64 {
	return h.IdlePower / h.Voltage
}

// ActiveCurrent returns the current drawn by the peripheral inside the area of interest.
func (h HardwareEntry) ActiveCurrent() float64 {
	return h.ActivePower / h.Voltage
}

// VehicleProfile stores the physical and mission parameters of a vehicle. A profile is loaded once at
// vehicle creation and must not be modified afterwards; use Clone to derive a variant.
type VehicleProfile struct {
	Mass            float64 // g
	PropellerCount  float64 // number of rotors
	PropellerRadius float64 // m
	DragCoefficient float64 // dimensionless
	CruiseSpeed     float64 // m/s, used for climb, sweep and descent
	MaxHeight       float64 // m, climb ceiling
	TurnStrength    float64 // m, lateral distance of a lane change
	Bounds          Box     // bounding volume of the coverage pattern
	AreaOfInterest  Box     // sub-volume where the compute payload is active
	Start           Vector  // initial coordinates
	BaseStation     Vector  // uplink destination

	SwitchCapacitance  float64 // F, effective switched capacitance of the CPU
	Voltage            float64 // V, supply voltage
	CpuFrequency       float64 // Hz
	CyclesPerOperation float64
	OperationsPerDatum float64
	TrainingSetSize    float64 // number of local training samples
	LocalIterations    float64

	Bandwidth        float64 // Hz
	TxPower          float64 // W
	CarrierFrequency float64 // Hz
	PayloadSize      float64 // bits of the local model upload

	Hardware []HardwareEntry

	EnergyRating float64 // Wh, nominal battery rating
	Capacity     float64 // J, usable energy
}

// DefaultProfile returns the profile with all defaults in force. Numeric fields without a mission default are zero.
func DefaultProfile() *VehicleProfile {
	return &VehicleProfile{
		CruiseSpeed:    DefaultCruiseSpeed,
		MaxHeight:      DefaultMaxHeight,
		TurnStrength:   DefaultTurnStrength,
		Bounds:         NewBox(0, DefaultAreaSize, 0, DefaultAreaSize, 0, DefaultMaxHeight),
		AreaOfInterest: NewBox(0, DefaultAreaSize, 0, DefaultAreaSize, DefaultAoiMinHeight, DefaultAoiMaxHeight),
		BaseStation:    Vector{X: 100, Y: 100, Z: 0},
	}
}

// Clone returns a deep copy of the profile.
func (p *VehicleProfile) Clone() *VehicleProfile {
	c := *p
	c.Hardware = append([]HardwareEntry(nil), p.Hardware...)
	return &c
}

// CapacityFromRating converts a watt-hour rating into joules.
func CapacityFromRating(wattHours float64) float64 {
	return wattHours * SecondsPerHour
}
