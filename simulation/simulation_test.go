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
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uavns/uavns/dispatcher"
	"github.com/uavns/uavns/energy"
	"github.com/uavns/uavns/power"
	"github.com/uavns/uavns/progctx"
	"github.com/uavns/uavns/telemetry"
	. "github.com/uavns/uavns/types"
	"github.com/uavns/uavns/vehicle"
)

type testSim struct {
	*Simulation
	ctx    *progctx.ProgCtx
	runLog *telemetry.RunLog
}

func newTestSimulation(t *testing.T) *testSim {
	ctx := progctx.New(context.Background())
	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.RunId = "test"
	cfg.Speed = dispatcher.MaxSimulateSpeed
	cfg.ProfilesFile = "../vehicle/testdata/drones.json"

	sim, err := NewSimulation(ctx, cfg, nil)
	require.NoError(t, err)
	ts := &testSim{
		Simulation: sim,
		ctx:        ctx,
		runLog:     telemetry.NewRunLog(cfg.OutputDir, cfg.RunId),
	}
	sim.AddReporter(ts.runLog)

	go sim.Run()
	<-sim.Started
	t.Cleanup(ts.stop)
	return ts
}

func (ts *testSim) stop() {
	ts.ctx.Cancel("test done")
	ts.ctx.Wait()
}

func (ts *testSim) postWait(f func()) {
	done := make(chan struct{})
	ts.PostAsync(false, func() {
		defer close(done)
		f()
	})
	<-done
}

func climbProfile() *vehicle.VehicleProfile {
	p := vehicle.DefaultProfile()
	p.Mass = 1000
	p.PropellerCount = 4
	p.PropellerRadius = 0.2
	p.DragCoefficient = 0.02
	p.Voltage = 12.6
	p.MaxHeight = 50
	p.Bounds = NewBox(0, 100, 0, 100, 0, 50)
	p.AreaOfInterest = NewBox(20, 80, 20, 80, 10, 50)
	p.Capacity = 1e9
	return p
}

func TestSimulationDepletion(t *testing.T) {
	sim := newTestSimulation(t)

	climbCurrent := power.TotalPropulsionPower(1000, 0.02, 0.2, 4, 0, 0, 5) / 12.6
	p := climbProfile()
	p.Capacity = 3.5 * climbCurrent * 12.6

	var v *Vehicle
	var err error
	sim.postWait(func() {
		v, err = sim.AddVehicleWithProfile(0, 0, p)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Id)

	<-sim.Go(10 * time.Second)

	var st VehicleStatus
	var scheduled bool
	var ve energy.VehicleEnergy
	sim.postWait(func() {
		st = v.Status()
		scheduled = sim.Dispatcher().IsScheduled(1)
		ve = *sim.GetEnergyAnalyser().GetVehicle(1)
	})
	assert.Equal(t, uint64(4), st.Ticks)
	assert.True(t, st.Depleted)
	assert.Equal(t, uint64(4000000), st.DepletedAt)
	assert.Equal(t, Vector{Z: 20}, st.Position)
	assert.Equal(t, 0.0, st.RemainingPercent)
	assert.False(t, scheduled)
	assert.InDelta(t, 4*climbCurrent*12.6, ve.Mobility, 1e-9)
	assert.Equal(t, uint64(4000000), ve.DepletedAt)

	lines := sim.runLog.Lines()
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "1 0 0 5 "))
	assert.True(t, strings.HasPrefix(lines[3], "1 0 0 20 "))
	assert.True(t, strings.HasSuffix(lines[3], " 0"))

	outputDir := sim.GetConfig().OutputDir
	sim.stop()

	data, err := os.ReadFile(telemetry.RunLogFileName(outputDir, "test"))
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), "\n"))

	data, err = os.ReadFile(filepath.Join(outputDir, "test_kpi.json"))
	require.NoError(t, err)
	var kpi Kpi
	require.NoError(t, json.Unmarshal(data, &kpi))
	assert.Equal(t, "test", kpi.RunId)
	assert.Equal(t, 1, kpi.Fleet.NumVehicles)
	assert.Equal(t, 1, kpi.Fleet.NumDepleted)
	require.Contains(t, kpi.Vehicles, 1)
	kv := kpi.Vehicles[1]
	assert.Equal(t, uint64(4), kv.Ticks)
	assert.Equal(t, uint64(4), kv.PhaseTicks["climb"])
	assert.Equal(t, 4.0, kv.EnduranceSec)
	assert.Equal(t, 4.0, kv.DepletedAtSec)
	assert.Equal(t, 20.0, kv.DistanceM)
	assert.Equal(t, 3600.0, kv.AoiFootprintM2)
	assert.Equal(t, uint64(10000000), kpi.TimeUs.EndTimeUs)
}

func TestSimulationAddDeleteVehicles(t *testing.T) {
	sim := newTestSimulation(t)

	var err1, err2, errRange, errDup, errMissing error
	sim.postWait(func() {
		_, err1 = sim.AddVehicle(0)
		_, err2 = sim.AddVehicle(0)
		_, errRange = sim.AddVehicle(5)
		_, errDup = sim.AddVehicleWithProfile(1, 0, climbProfile())
		errMissing = sim.DeleteVehicle(7)
	})
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, errors.Is(errRange, vehicle.ErrIndexOutOfRange))
	assert.True(t, errors.Is(errDup, ErrVehicleExists))
	assert.True(t, errors.Is(errMissing, ErrVehicleNotFound))

	<-sim.Go(3 * time.Second)

	var ids []VehicleId
	var errDel error
	sim.postWait(func() {
		ids = sim.Vehicles()
		errDel = sim.DeleteVehicle(2)
	})
	assert.Equal(t, []VehicleId{1, 2}, ids)
	require.NoError(t, errDel)

	<-sim.Go(2 * time.Second)

	var st VehicleStatus
	var active int
	sim.postWait(func() {
		ids = sim.Vehicles()
		st = sim.Vehicle(1).Status()
		active = sim.ActiveVehicles()
	})
	assert.Equal(t, []VehicleId{1}, ids)
	assert.Equal(t, uint64(5), st.Ticks)
	assert.Equal(t, 1, active)
	assert.Len(t, sim.runLog.Lines(), 8)

	sim.postWait(func() {
		kpi := sim.GetKpiManager().Data()
		assert.True(t, kpi.Vehicles[2].Deleted)
		assert.Equal(t, uint64(3), kpi.Vehicles[2].Ticks)
		assert.Equal(t, uint64(5), kpi.Vehicles[1].Ticks)
	})
}

func TestSimulationSpeed(t *testing.T) {
	sim := newTestSimulation(t)
	var speeds []float64
	sim.postWait(func() {
		sim.SetSpeed(10)
		speeds = append(speeds, sim.GetSpeed())
		sim.SetSpeed(dispatcher.DefaultDispatcherSpeed)
		speeds = append(speeds, sim.GetSpeed())
	})
	assert.Equal(t, []float64{10, dispatcher.MaxSimulateSpeed}, speeds)
}

func TestSimulationFleetEnergy(t *testing.T) {
	sim := newTestSimulation(t)
	sim.postWait(func() {
		_, err := sim.AddVehicle(0)
		assert.NoError(t, err)
	})
	<-sim.Go(60 * time.Second)

	var history []energy.FleetConsumption
	var path string
	var err error
	sim.postWait(func() {
		history = sim.GetEnergyAnalyser().GetFleetEnergyHistory()
		path, err = sim.SaveEnergy("fleet")
	})
	require.Len(t, history, 2)
	assert.Equal(t, uint64(30000000), history[0].Timestamp)
	assert.Equal(t, uint64(60000000), history[1].Timestamp)
	assert.Greater(t, history[1].Total(), history[0].Total())

	require.NoError(t, err)
	_, err = os.Stat(path + "_vehicles.txt")
	assert.NoError(t, err)
}
