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
	"io"

	"github.com/pkg/errors"

	. "github.com/uavns/uavns/types"
)

var (
	ErrVehicleExists        = errors.New("vehicle already exists")
	ErrVehicleNotFound      = errors.New("vehicle not found")
	CommandInterruptedError = errors.New("operation aborted due to simulation exit")
	readonlySimulationError = errors.New("simulation is readonly")
)

type CmdRunner interface {
	RunCommand(cmd string, output io.Writer) error

	// GetContextVehicleId gets the user's current selected vehicle ID context for running commands, or
	// types.InvalidVehicleId if no vehicle context selected.
	GetContextVehicleId() VehicleId
}

// VehicleStatus is a consistent snapshot of a vehicle, for display.
type VehicleStatus struct {
	Id               VehicleId
	ProfileIndex     int
	Position         Vector
	Velocity         Vector
	Phase            FlightPhase
	Consumed         float64 // J
	Capacity         float64 // J
	Current          float64 // A
	RemainingPercent float64
	Distance         float64 // m
	Ticks            uint64
	Depleted         bool
	DepletedAt       uint64 // us
}
