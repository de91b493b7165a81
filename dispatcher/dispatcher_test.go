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

package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/uavns/uavns/progctx"
	. "github.com/uavns/uavns/types"
)

type recordingHandler struct {
	mutex    sync.Mutex
	ticks    map[VehicleId][]uint64
	limit    map[VehicleId]int
	advanced []uint64
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		ticks: map[VehicleId][]uint64{},
		limit: map[VehicleId]int{},
	}
}

func (h *recordingHandler) OnTick(id VehicleId, timestamp uint64) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.ticks[id] = append(h.ticks[id], timestamp)
	limit, ok := h.limit[id]
	return !ok || len(h.ticks[id]) < limit
}

func (h *recordingHandler) OnAdvanceTime(timestamp uint64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.advanced = append(h.advanced, timestamp)
}

func startDispatcher(t *testing.T, cfg *Config, h TickHandler) *Dispatcher {
	ctx := progctx.New(context.Background())
	d := NewDispatcher(ctx, cfg, h)
	go d.Run()
	t.Cleanup(func() {
		ctx.Cancel("test done")
		ctx.Wait()
	})
	return d
}

func postWait(d *Dispatcher, f func()) {
	done := make(chan struct{})
	d.PostAsync(false, func() {
		defer close(done)
		f()
	})
	<-done
}

func TestDispatcherTicks(t *testing.T) {
	h := newRecordingHandler()
	h.limit[2] = 3
	d := startDispatcher(t, &Config{Speed: MaxSimulateSpeed, TickInterval: time.Second, Workers: 1}, h)

	postWait(d, func() {
		d.AddVehicle(1)
		d.AddVehicle(2)
	})
	<-d.Go(10 * time.Second)

	assert.Equal(t, uint64(10000000), d.CurTime)
	assert.Len(t, h.ticks[1], 10)
	assert.Equal(t, uint64(1000000), h.ticks[1][0])
	assert.Equal(t, uint64(10000000), h.ticks[1][9])
	assert.Equal(t, []uint64{1000000, 2000000, 3000000}, h.ticks[2])
	assert.Equal(t, uint64(13), d.Counters.TickEvents)
	assert.Equal(t, uint64(1), d.Counters.CancelledTimers)
	assert.Len(t, h.advanced, 10)

	postWait(d, func() {
		assert.True(t, d.IsScheduled(1))
		assert.False(t, d.IsScheduled(2))
		assert.Equal(t, 1, d.ScheduledCount())
		assert.Equal(t, uint64(11000000), d.NextTickTime(1))
		d.DeleteVehicle(1)
		d.DeleteVehicle(1)
	})
	<-d.Go(5 * time.Second)
	assert.Len(t, h.ticks[1], 10)
	assert.Equal(t, uint64(15000000), d.CurTime)
}

func TestDispatcherLateVehicleTicksFromNow(t *testing.T) {
	h := newRecordingHandler()
	d := startDispatcher(t, &Config{Speed: MaxSimulateSpeed, TickInterval: 500 * time.Millisecond}, h)

	<-d.Go(2 * time.Second)
	postWait(d, func() { d.AddVehicle(7) })
	<-d.Go(time.Second)
	assert.Equal(t, []uint64{2500000, 3000000}, h.ticks[7])
	assert.Equal(t, 500*time.Millisecond, d.TickInterval())
}

func TestDispatcherWorkers(t *testing.T) {
	h := newRecordingHandler()
	d := startDispatcher(t, &Config{Speed: MaxSimulateSpeed, TickInterval: time.Second, Workers: 4}, h)

	postWait(d, func() {
		for id := 1; id <= 10; id++ {
			d.AddVehicle(id)
		}
	})
	<-d.Go(20 * time.Second)
	for id := 1; id <= 10; id++ {
		assert.Len(t, h.ticks[id], 20, "vehicle %d", id)
	}
}

func TestDispatcherGoEverEndsWithoutTimers(t *testing.T) {
	h := newRecordingHandler()
	h.limit[1] = 5
	d := startDispatcher(t, &Config{Speed: MaxSimulateSpeed, TickInterval: time.Second}, h)

	postWait(d, func() { d.AddVehicle(1) })
	<-d.Go(EverDuration)
	assert.Len(t, h.ticks[1], 5)
	assert.Equal(t, uint64(5000000), d.CurTime)
}

func TestDispatcherSpeedPacing(t *testing.T) {
	h := newRecordingHandler()
	d := startDispatcher(t, &Config{Speed: 100, TickInterval: time.Second}, h)

	postWait(d, func() { d.AddVehicle(1) })
	start := time.Now()
	<-d.Go(5 * time.Second)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	assert.Len(t, h.ticks[1], 5)

	postWait(d, func() {
		d.SetSpeed(0)
		assert.Equal(t, 0.0, d.GetSpeed())
		d.SetSpeed(2 * MaxSimulateSpeed)
		assert.Equal(t, float64(MaxSimulateSpeed), d.GetSpeed())
	})
}

func TestAlarmMgrOrder(t *testing.T) {
	am := newAlarmMgr()
	am.AddVehicle(3, 100)
	am.AddVehicle(1, 100)
	am.AddVehicle(2, 50)
	assert.Equal(t, uint64(50), am.NextTimestamp())
	assert.Equal(t, 2, am.NextTimer().VehicleId)

	assert.Equal(t, []VehicleId{2}, am.PopDue(50, 100))
	assert.Equal(t, []VehicleId{1, 3}, am.PopDue(100, 100))
	assert.Equal(t, uint64(150), am.GetTimestamp(2))

	am.DeleteVehicle(2)
	assert.False(t, am.Contains(2))
	assert.Equal(t, uint64(200), am.NextTimestamp())

	am.SetTimestamp(3, 10)
	assert.Equal(t, 3, am.NextTimer().VehicleId)
	am.DeleteVehicle(1)
	am.DeleteVehicle(3)
	assert.Nil(t, am.NextTimer())
	assert.Equal(t, Ever, am.NextTimestamp())
}
