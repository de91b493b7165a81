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
	"container/heap"

	"github.com/uavns/uavns/logger"
	. "github.com/uavns/uavns/types"
)

// tickTimer is the repeating timer registration of one vehicle.
type tickTimer struct {
	VehicleId VehicleId
	Timestamp uint64 // timestamp of next tick

	index int
}

type timerQueue []*tickTimer

func (tq timerQueue) Len() int {
	return len(tq)
}

// Less orders by timestamp, then by vehicle id so that vehicles ticking together run in a fixed order.
func (tq timerQueue) Less(i, j int) bool {
	if tq[i].Timestamp != tq[j].Timestamp {
		return tq[i].Timestamp < tq[j].Timestamp
	}
	return tq[i].VehicleId < tq[j].VehicleId
}

func (tq timerQueue) Swap(i, j int) {
	a, b := tq[i], tq[j]
	if a.index != i && b.index != j {
		logger.Panicf("wrong index")
	}

	tq[i], tq[j] = b, a
	tq[i].index, tq[j].index = i, j
}

func (tq *timerQueue) Push(x interface{}) {
	e := x.(*tickTimer)
	*tq = append(*tq, e)
	e.index = len(*tq) - 1
}

func (tq *timerQueue) Pop() (elem interface{}) {
	n := len(*tq)
	elem = (*tq)[n-1]
	*tq = (*tq)[:n-1]
	return
}

type alarmMgr struct {
	q      timerQueue
	timers map[VehicleId]*tickTimer
}

func newAlarmMgr() *alarmMgr {
	mgr := &alarmMgr{
		q:      timerQueue{},
		timers: map[VehicleId]*tickTimer{},
	}

	heap.Init(&mgr.q)
	return mgr
}

// AddVehicle registers the timer of vehicle id, firing first at timestamp.
func (am *alarmMgr) AddVehicle(id VehicleId, timestamp uint64) {
	logger.AssertNil(am.timers[id])

	e := &tickTimer{
		VehicleId: id,
		Timestamp: timestamp,
	}
	heap.Push(&am.q, e)
	am.timers[id] = e
}

func (am *alarmMgr) Contains(id VehicleId) bool {
	_, ok := am.timers[id]
	return ok
}

func (am *alarmMgr) Len() int {
	return len(am.q)
}

func (am *alarmMgr) SetTimestamp(id VehicleId, timestamp uint64) {
	e := am.timers[id]
	logger.AssertNotNil(e)

	if e.Timestamp != timestamp {
		e.Timestamp = timestamp
		heap.Fix(&am.q, e.index)
	}
}

func (am *alarmMgr) GetTimestamp(id VehicleId) uint64 {
	e := am.timers[id]
	logger.AssertNotNil(e)

	return e.Timestamp
}

func (am *alarmMgr) NextTimer() *tickTimer {
	if len(am.q) == 0 {
		return nil
	}

	return am.q[0]
}

func (am *alarmMgr) NextTimestamp() uint64 {
	if len(am.q) == 0 {
		return Ever
	}

	return am.q[0].Timestamp
}

// PopDue reschedules every timer due at timestamp to timestamp+interval and returns their vehicle ids,
// in firing order.
func (am *alarmMgr) PopDue(timestamp uint64, interval uint64) []VehicleId {
	var due []VehicleId
	for len(am.q) > 0 && am.q[0].Timestamp == timestamp {
		e := am.q[0]
		due = append(due, e.VehicleId)
		e.Timestamp = timestamp + interval
		heap.Fix(&am.q, 0)
	}
	return due
}

func (am *alarmMgr) DeleteVehicle(id VehicleId) {
	e := am.timers[id]
	logger.AssertNotNil(e)
	heap.Remove(&am.q, e.index)
	delete(am.timers, id)
}
