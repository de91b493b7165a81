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

package telemetry_influx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uavns/uavns/telemetry"
	. "github.com/uavns/uavns/types"
)

type writeCapture struct {
	sync.Mutex
	requests int
	lines    []string
	query    string
}

func newInfluxServer(t *testing.T, status int) (*httptest.Server, *writeCapture) {
	wc := &writeCapture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		wc.Lock()
		wc.requests++
		wc.query = r.URL.RawQuery
		for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
			if line != "" {
				wc.lines = append(wc.lines, line)
			}
		}
		wc.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, wc
}

func TestInfluxReporterWritesPoints(t *testing.T) {
	srv, wc := newInfluxServer(t, http.StatusNoContent)

	ir, err := NewInfluxReporter(Config{Url: srv.URL, Token: "tok", Org: "uav", Bucket: "sim"}, "r1", time.Unix(0, 0))
	require.NoError(t, err)
	ir.SetBatchSize(2)

	ir.Init()
	ir.AddVehicle(telemetry.VehicleInfo{Id: 1, Capacity: 100})
	ir.Report(telemetry.Record{VehicleId: 1, Timestamp: 1000000, Consumed: 10, Phase: PhaseClimb})
	ir.AdvanceTime(1000000)
	ir.Report(telemetry.Record{VehicleId: 1, Timestamp: 2000000, Consumed: 20, Phase: PhaseClimb})
	ir.CloseVehicle(1, 2000000)
	ir.Stop()

	wc.Lock()
	defer wc.Unlock()
	assert.Equal(t, 2, wc.requests)
	require.Len(t, wc.lines, 4)
	assert.Contains(t, wc.query, "bucket=sim")
	assert.Contains(t, wc.query, "org=uav")
	assert.True(t, strings.HasPrefix(wc.lines[1], "vehicle_telemetry,phase=climb,run=r1,vehicle=1 "))
	assert.Contains(t, wc.lines[1], "consumed=10")
	assert.True(t, strings.HasSuffix(wc.lines[1], " 1000000000"))
	assert.True(t, strings.HasPrefix(wc.lines[3], "vehicle_event,run=r1,vehicle=1 "))
	assert.Equal(t, 4, ir.Written())
}

func TestInfluxReporterWriteFailure(t *testing.T) {
	srv, _ := newInfluxServer(t, http.StatusBadRequest)

	ir, err := NewInfluxReporter(Config{Url: srv.URL, Org: "uav", Bucket: "sim"}, "r2", time.Unix(0, 0))
	require.NoError(t, err)
	ir.Report(telemetry.Record{VehicleId: 1})
	ir.Stop()
	assert.Equal(t, 0, ir.Written())
}

func TestNewInfluxReporterConfig(t *testing.T) {
	_, err := NewInfluxReporter(Config{Url: "http://localhost:8086"}, "r", time.Now())
	assert.Error(t, err)
}
