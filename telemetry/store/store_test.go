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

package telemetry_store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uavns/uavns/telemetry"
	. "github.com/uavns/uavns/types"
)

func TestIsPostgresDsn(t *testing.T) {
	assert.True(t, IsPostgresDsn("postgres://u:p@localhost:5432/uavns"))
	assert.True(t, IsPostgresDsn("host=localhost user=u dbname=uavns"))
	assert.False(t, IsPostgresDsn("telemetry.db"))
	assert.False(t, IsPostgresDsn(""))
}

func TestStoreReporter(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "telemetry.db"))
	require.NoError(t, err)

	sr, err := NewStoreReporter(db, "run-1")
	require.NoError(t, err)
	sr.SetBatchSize(2)

	sr.Init()
	sr.AddVehicle(telemetry.VehicleInfo{
		Id:             3,
		ProfileIndex:   1,
		AreaOfInterest: NewBox(5, 15, 5, 15, 0, 10),
		Capacity:       100,
	})
	for i := 1; i <= 3; i++ {
		sr.Report(telemetry.Record{
			VehicleId: 3,
			Timestamp: uint64(i) * 1000000,
			Position:  Vector{Z: float64(i) * 5},
			Consumed:  float64(i) * 10,
			Phase:     PhaseClimb,
			Depleted:  i == 3,
		})
		sr.AdvanceTime(uint64(i) * 1000000)
	}
	sr.CloseVehicle(3, 3000000)
	sr.Stop()

	rows, err := Records(db, "run-1", 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(1000000), rows[0].TimestampUs)
	assert.Equal(t, 15.0, rows[2].Z)
	assert.Equal(t, 30.0, rows[2].Consumed)
	assert.True(t, rows[2].Depleted)

	var v VehicleRow
	require.NoError(t, db.Where("run_id = ? AND vehicle_id = ?", "run-1", 3).First(&v).Error)
	assert.True(t, v.Closed)
	assert.Equal(t, int64(3000000), v.ClosedAtUs)
	assert.Equal(t, 15.0, v.AoiXMax)
	assert.Equal(t, 1, v.ProfileIndex)

	var run RunRow
	require.NoError(t, db.Where("run_id = ?", "run-1").First(&run).Error)
	assert.NotNil(t, run.StoppedAt)
}

func TestStoreReporterSeparatesRuns(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)

	a, err := NewStoreReporter(db, "a")
	require.NoError(t, err)
	b, err := NewStoreReporter(db, "b")
	require.NoError(t, err)

	a.Report(telemetry.Record{VehicleId: 1, Timestamp: 1})
	b.Report(telemetry.Record{VehicleId: 1, Timestamp: 1})
	b.Report(telemetry.Record{VehicleId: 1, Timestamp: 2})
	a.Stop()
	b.Stop()

	rows, err := Records(db, "a", 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	rows, err = Records(db, "b", 1)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
