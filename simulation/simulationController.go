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
	"bytes"

	"github.com/pkg/errors"
)

// commandController runs console commands on behalf of remote clients.
type commandController struct {
	sim *Simulation
}

func (cc *commandController) Command(cmd string) ([]string, error) {
	if cc.sim.cmdRunner == nil {
		return nil, errors.Errorf("no command runner")
	}
	var output bytes.Buffer
	err := cc.sim.cmdRunner.RunCommand(cmd, &output)
	return splitOutputLines(output.String()), err
}

type readonlyCommandController struct {
}

func (r readonlyCommandController) Command(string) ([]string, error) {
	return nil, readonlySimulationError
}

// CommandController is the remote command entry, satisfied by both controllers.
type CommandController interface {
	Command(cmd string) ([]string, error)
}

func NewCommandController(sim *Simulation) CommandController {
	if !sim.cfg.ReadOnly {
		return &commandController{sim}
	} else {
		return readonlyCommandController{}
	}
}
