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
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/uavns/uavns/types"
)

type echoRunner struct{}

func (echoRunner) RunCommand(cmd string, output io.Writer) error {
	_, _ = fmt.Fprintf(output, "%s\nDone\n", cmd)
	return nil
}

func (echoRunner) GetContextVehicleId() VehicleId {
	return InvalidVehicleId
}

func TestCommandController(t *testing.T) {
	sim := &Simulation{cfg: DefaultConfig()}
	cc := NewCommandController(sim)

	_, err := cc.Command("time")
	assert.Error(t, err)

	sim.SetCmdRunner(echoRunner{})
	out, err := cc.Command("time")
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "Done"}, out)
}

func TestReadonlyCommandController(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadOnly = true
	cc := NewCommandController(&Simulation{cfg: cfg})
	_, err := cc.Command("time")
	assert.Equal(t, readonlySimulationError, err)
}
