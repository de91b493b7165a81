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

package telemetry

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/uavns/uavns/types"
)

func testRecord() Record {
	return Record{
		RunId:            "run",
		VehicleId:        1,
		Timestamp:        3000000,
		Position:         Vector{X: 5, Y: 0, Z: 10},
		Consumed:         12.5,
		AreaOfInterest:   NewBox(0, 260, 0, 260, 20, 80),
		Current:          2.5,
		RemainingPercent: 99.5,
		Phase:            PhaseSweepOutside,
		MobilityCurrent:  2,
		HardwareCurrent:  0.25,
		ComputeCurrent:   0.25,
	}
}

func TestRecordLine(t *testing.T) {
	rec := testRecord()
	assert.Equal(t, "1 5 0 10 12.5 +3e+09ns 0 260 0 260 20 80 2.5 99.5 2 0.25 0.25 1", rec.Line())
	assert.Equal(t, 3.0, rec.Seconds())
	assert.Len(t, strings.Fields(rec.Line()), 18)
}

func TestRunLogFlushOnce(t *testing.T) {
	dir := t.TempDir()
	rl := NewRunLog(dir, "abc")
	var _ Reporter = rl
	rl.Init()

	var wg sync.WaitGroup
	for i := 1; i <= 4; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rec := testRecord()
			rec.VehicleId = id
			rl.Report(rec)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, rl.Len())

	rl.Stop()
	rl.Report(testRecord())
	rl.Stop()

	data, err := os.ReadFile(RunLogFileName(dir, "abc"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Len(t, rl.Lines(), 5)
	assert.Equal(t, RunLogFileName(dir, "abc"), rl.FileName())
}

func TestRunLogFlushError(t *testing.T) {
	rl := NewRunLog("/nonexistent/dir", "x")
	assert.Error(t, rl.Flush())
	assert.NoError(t, rl.Flush())
}

func TestGeoJSONReporter(t *testing.T) {
	dir := t.TempDir()
	gr := NewGeoJSONReporter(dir, "run")
	gr.Init()
	gr.AddVehicle(VehicleInfo{Id: 2, AreaOfInterest: NewBox(10, 20, 10, 30, 0, 5)})
	gr.AddVehicle(VehicleInfo{Id: 1, AreaOfInterest: NewBox(0, 10, 0, 10, 0, 5), Start: Vector{Z: 0}})

	for _, pos := range []Vector{{Z: 5}, {Z: 10}, {X: 5, Z: 10}, {X: 5, Y: 5, Z: 10}} {
		rec := testRecord()
		rec.Position = pos
		gr.Report(rec)
	}
	rec := testRecord()
	rec.VehicleId = 9
	gr.Report(rec)
	gr.CloseVehicle(1, 4000000)
	gr.AdvanceTime(4000000)

	fc := gr.FeatureCollection()
	require.Len(t, fc.Features, 4)
	path := fc.Features[0]
	assert.Equal(t, "path", path.Properties["kind"])
	assert.Equal(t, 1, path.Properties["vehicle"])
	assert.Len(t, path.Geometry, 5)
	assert.Equal(t, 10.0, path.Properties["length"])
	assert.Equal(t, 4.0, path.Properties["closedAtSec"])
	assert.Equal(t, "aoi", fc.Features[1].Properties["kind"])
	assert.Equal(t, 2, fc.Features[2].Properties["vehicle"])

	gr.Stop()
	data, err := os.ReadFile(gr.FileName())
	require.NoError(t, err)
	loaded, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, loaded.Features, 4)
	assert.True(t, json.Valid(data))
}

func TestNopReporter(t *testing.T) {
	r := NewNopReporter()
	r.Init()
	r.AddVehicle(VehicleInfo{Id: 1})
	r.Report(testRecord())
	r.CloseVehicle(1, 0)
	r.AdvanceTime(1)
	r.Stop()
}
