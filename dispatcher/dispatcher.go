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

// Package dispatcher drives the simulation clock. Every vehicle owns a repeating tick timer; the dispatcher
// advances virtual time from one due timer to the next, paced against real time by the simulation speed.
package dispatcher

import (
	"sync"
	"time"

	"github.com/simonlingoogle/go-simplelogger"

	"github.com/uavns/uavns/logger"
	"github.com/uavns/uavns/progctx"
	. "github.com/uavns/uavns/types"
)

const (
	MaxSimulateSpeed = 1000000
	maxPacingSleep   = time.Millisecond * 10
)

type goDuration struct {
	duration time.Duration
	done     chan struct{}
}

type Dispatcher struct {
	ctx                *progctx.ProgCtx
	cfg                Config
	handler            TickHandler
	CurTime            uint64
	pauseTime          uint64
	interval           uint64
	alarmMgr           *alarmMgr
	taskChan           chan func()
	goDurationChan     chan goDuration
	speed              float64
	speedStartRealTime time.Time
	speedStartTime     uint64
	stopped            bool

	Counters struct {
		TickEvents      uint64
		CancelledTimers uint64
	}
}

func NewDispatcher(ctx *progctx.ProgCtx, cfg *Config, handler TickHandler) *Dispatcher {
	simplelogger.AssertTrue(cfg.TickInterval >= time.Microsecond, "tick interval too small: %v", cfg.TickInterval)

	d := &Dispatcher{
		ctx:                ctx,
		cfg:                *cfg,
		handler:            handler,
		interval:           UsFromDuration(cfg.TickInterval),
		alarmMgr:           newAlarmMgr(),
		taskChan:           make(chan func(), 100),
		goDurationChan:     make(chan goDuration, 10),
		speed:              cfg.Speed,
		speedStartRealTime: time.Now(),
	}
	if d.cfg.Workers < 1 {
		d.cfg.Workers = 1
	}
	d.speed = d.normalizeSpeed(d.speed)
	logger.Infof("dispatcher started: cfg=%+v", *cfg)

	return d
}

func (d *Dispatcher) Stop() {
	if d.stopped {
		return
	}
	d.stopped = true
	logger.Debugf("dispatcher stopped at %d us: %+v", d.CurTime, d.Counters)
}

// Go asks the dispatcher to advance simulation time by duration. The returned channel is closed when done.
func (d *Dispatcher) Go(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	d.goDurationChan <- goDuration{
		duration: duration,
		done:     done,
	}
	return done
}

func (d *Dispatcher) Run() {
	d.ctx.WaitAdd("dispatcher", 1)
	defer d.ctx.WaitDone("dispatcher")
	defer logger.Debugf("dispatcher exit.")

	defer d.Stop()

	done := d.ctx.Done()
loop:
	for {
		select {
		case f := <-d.taskChan:
			d.runTask(f)
		case duration := <-d.goDurationChan:
			// sync the speed start time with the current time
			d.speedStartRealTime = time.Now()
			d.speedStartTime = d.CurTime

			logger.AssertTrue(d.CurTime == d.pauseTime)
			oldPauseTime := d.pauseTime
			d.pauseTime += UsFromDuration(duration.duration)
			if duration.duration == EverDuration || d.pauseTime > Ever || d.pauseTime < oldPauseTime {
				d.pauseTime = Ever
			}

			d.goUntilPauseTime()

			if d.ctx.Err() != nil {
				close(duration.done)
				break loop
			}

			logger.AssertTrue(d.CurTime == d.pauseTime)
			close(duration.done)
		case <-done:
			break loop
		}
	}
}

func (d *Dispatcher) goUntilPauseTime() {
	for d.CurTime < d.pauseTime {
		d.handleTasks()

		if d.ctx.Err() != nil {
			break
		}

		if d.pauseTime == Ever && d.alarmMgr.Len() == 0 {
			// nothing left to simulate, forever ends now.
			d.pauseTime = d.CurTime
			break
		}

		if !d.processNextEvent() {
			d.advanceTime(d.pauseTime)
		}
	}
}

// processNextEvent fires all timers due at the next timer timestamp, sleeping first as needed to keep the
// simulation speed. It returns false if no timer is due before the pause time.
func (d *Dispatcher) processNextEvent() bool {
	logger.AssertTrue(d.CurTime <= d.pauseTime)

	nextTime := d.alarmMgr.NextTimestamp()

	if d.speed < MaxSimulateSpeed {
		sleepUntilTime := min(nextTime, d.pauseTime)

		var needSleepDuration time.Duration
		if d.speed <= 0 {
			needSleepDuration = time.Hour
		} else {
			needSleepDuration = time.Duration(float64(sleepUntilTime-d.speedStartTime)/d.speed) * time.Microsecond
		}
		sleepTime := time.Until(d.speedStartRealTime.Add(needSleepDuration))

		if sleepTime > 0 {
			if sleepTime > maxPacingSleep {
				sleepTime = maxPacingSleep
			}
			time.Sleep(sleepTime)
			return true
		}
	}

	if nextTime > d.pauseTime {
		return false
	}

	d.advanceTime(nextTime)
	due := d.alarmMgr.PopDue(nextTime, d.interval)
	d.Counters.TickEvents += uint64(len(due))

	keep := d.fire(due, nextTime)
	for i, id := range due {
		if !keep[i] && d.alarmMgr.Contains(id) {
			d.alarmMgr.DeleteVehicle(id)
			d.Counters.CancelledTimers++
		}
	}
	return true
}

// fire runs the ticks of the due vehicles and returns, per vehicle, whether its timer is kept.
func (d *Dispatcher) fire(due []VehicleId, timestamp uint64) []bool {
	keep := make([]bool, len(due))
	if d.cfg.Workers <= 1 || len(due) <= 1 {
		for i, id := range due {
			keep[i] = d.handler.OnTick(id, timestamp)
		}
		return keep
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, d.cfg.Workers)
	for i, id := range due {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, id VehicleId) {
			defer func() {
				<-sem
				wg.Done()
			}()
			keep[i] = d.handler.OnTick(id, timestamp)
		}(i, id)
	}
	wg.Wait()
	return keep
}

func (d *Dispatcher) advanceTime(ts uint64) {
	logger.AssertTrue(d.CurTime <= ts, "%v > %v", d.CurTime, ts)
	if d.CurTime < ts {
		d.CurTime = ts
		d.handler.OnAdvanceTime(ts)
	}
}

// AddVehicle registers the tick timer of vehicle id. The first tick fires one interval from now.
// It must be called from the dispatcher goroutine, i.e. within a PostAsync task or a TickHandler callback.
func (d *Dispatcher) AddVehicle(id VehicleId) {
	d.alarmMgr.AddVehicle(id, d.CurTime+d.interval)
}

// DeleteVehicle cancels the tick timer of vehicle id, if any.
func (d *Dispatcher) DeleteVehicle(id VehicleId) {
	if d.alarmMgr.Contains(id) {
		d.alarmMgr.DeleteVehicle(id)
		d.Counters.CancelledTimers++
	}
}

// IsScheduled returns true if vehicle id has a tick timer.
func (d *Dispatcher) IsScheduled(id VehicleId) bool {
	return d.alarmMgr.Contains(id)
}

// ScheduledCount returns the number of registered tick timers.
func (d *Dispatcher) ScheduledCount() int {
	return d.alarmMgr.Len()
}

// NextTickTime returns the timestamp of the next tick of vehicle id.
func (d *Dispatcher) NextTickTime(id VehicleId) uint64 {
	return d.alarmMgr.GetTimestamp(id)
}

func (d *Dispatcher) TickInterval() time.Duration {
	return DurationFromUs(d.interval)
}

func (d *Dispatcher) PostAsync(trivial bool, task func()) {
	if trivial {
		select {
		case d.taskChan <- task:
			break
		default:
			break
		}
	} else {
		d.taskChan <- task
	}
}

func (d *Dispatcher) runTask(task func()) {
	defer func() {
		err := recover()
		if err != nil {
			logger.Errorf("dispatcher handle task failed: %+v", err)
		}
	}()
	task()
}

func (d *Dispatcher) handleTasks() {
	for {
		select {
		case t := <-d.taskChan:
			d.runTask(t)
		default:
			return
		}
	}
}

func (d *Dispatcher) SetSpeed(f float64) {
	ns := d.normalizeSpeed(f)
	if ns == d.speed {
		return
	}

	// sync the speed start time with the current time
	d.speedStartRealTime = time.Now()
	d.speedStartTime = d.CurTime
	d.speed = ns
}

func (d *Dispatcher) normalizeSpeed(f float64) float64 {
	if f <= 0 {
		f = 0
	} else if f >= MaxSimulateSpeed {
		f = MaxSimulateSpeed
	}
	return f
}

func (d *Dispatcher) GetSpeed() float64 {
	return d.speed
}
