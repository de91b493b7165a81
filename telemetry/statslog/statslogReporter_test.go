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

package telemetry_statslog

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uavns/uavns/telemetry"
	. "github.com/uavns/uavns/types"
)

func TestStatslogReporter(t *testing.T) {
	dir := t.TempDir()
	sr := NewStatslogReporter(dir, "run")
	sr.Init()

	sr.AddVehicle(telemetry.VehicleInfo{Id: 1})
	sr.AddVehicle(telemetry.VehicleInfo{Id: 2})
	sr.AdvanceTime(1000000)

	sr.Report(telemetry.Record{VehicleId: 1, Phase: PhaseSweepOutside})
	sr.Report(telemetry.Record{VehicleId: 2, Phase: PhaseClimb})
	sr.AdvanceTime(2000000)
	sr.Report(telemetry.Record{VehicleId: 2, Phase: PhaseClimb})
	sr.AdvanceTime(3000000)

	sr.Report(telemetry.Record{VehicleId: 1, Phase: PhaseSweepOutside, Depleted: true})
	sr.CloseVehicle(1, 3000000)
	sr.Stop()

	data, err := os.ReadFile(StatsLogFileName(dir, "run"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Equal(t, []string{
		"timeSec,nVehicles,nClimb,nSweep,nSweepAoi,nDescend,nDepleted",
		"    0.000000,   2,  2,  0,  0,  0,  0",
		"    1.000000,   2,  1,  1,  0,  0,  0",
		"    3.000000,   2,  1,  0,  0,  0,  1",
	}, lines)
}

func TestStatslogReporterDeletedVehicle(t *testing.T) {
	dir := t.TempDir()
	sr := NewStatslogReporter(dir, "del")
	sr.Init()
	sr.AddVehicle(telemetry.VehicleInfo{Id: 1})
	sr.AdvanceTime(1000000)
	sr.CloseVehicle(1, 1000000)
	sr.AdvanceTime(2000000)
	sr.Stop()

	data, err := os.ReadFile(StatsLogFileName(dir, "del"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "    1.000000,   0,  0,  0,  0,  0,  0\n")
}
