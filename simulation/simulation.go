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

// Package simulation runs a fleet of vehicles flying the coverage pattern, ticks them on the virtual
// clock of the dispatcher, and feeds their telemetry to the reporters.
package simulation

import (
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/uavns/uavns/dispatcher"
	"github.com/uavns/uavns/energy"
	"github.com/uavns/uavns/logger"
	"github.com/uavns/uavns/progctx"
	"github.com/uavns/uavns/telemetry"
	telemetry_multi "github.com/uavns/uavns/telemetry/multi"
	. "github.com/uavns/uavns/types"
	"github.com/uavns/uavns/vehicle"
)

type Simulation struct {
	Started          chan struct{}
	ctx              *progctx.ProgCtx
	stopped          bool
	cfg              *Config
	runId            string
	vehicles         map[VehicleId]*Vehicle
	d                *dispatcher.Dispatcher
	reporter         *telemetry_multi.MultiReporter
	reportersStarted bool
	cmdRunner        CmdRunner
	energyLock       sync.Mutex
	energyAnalyser   *energy.EnergyAnalyser
	nextEnergyTime   uint64
	kpiMgr           *KpiManager
	metrics          *simMetrics
	tickSeconds      float64
}

func NewSimulation(ctx *progctx.ProgCtx, cfg *Config, dispatcherCfg *dispatcher.Config) (*Simulation, error) {
	if cfg.RunId == "" {
		cfg.RunId = uuid.NewString()
	}
	if err := os.MkdirAll(cfg.OutputDir, 0775); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", cfg.OutputDir)
	}
	if err := cleanRunFiles(cfg.OutputDir, cfg.RunId); err != nil {
		return nil, errors.Wrapf(err, "clean output of run %s", cfg.RunId)
	}

	s := &Simulation{
		Started:        make(chan struct{}),
		ctx:            ctx,
		cfg:            cfg,
		runId:          cfg.RunId,
		vehicles:       map[VehicleId]*Vehicle{},
		reporter:       telemetry_multi.NewMultiReporter(),
		energyAnalyser: energy.NewEnergyAnalyser(),
		nextEnergyTime: energy.ComputePeriod,
		metrics:        newSimMetrics(cfg.RunId),
	}
	s.SetLogLevel(cfg.LogLevel)
	s.energyAnalyser.SetTitle(cfg.Title)

	if dispatcherCfg == nil {
		dispatcherCfg = dispatcher.DefaultConfig()
	}
	dispatcherCfg.Speed = cfg.Speed
	if cfg.TickInterval > 0 {
		dispatcherCfg.TickInterval = cfg.TickInterval
	}
	if cfg.Workers > 0 {
		dispatcherCfg.Workers = cfg.Workers
	}
	s.d = dispatcher.NewDispatcher(s.ctx, dispatcherCfg, s)
	s.tickSeconds = s.d.TickInterval().Seconds()

	s.kpiMgr = NewKpiManager()
	s.kpiMgr.Init(s)

	logger.Infof("simulation run %s created: output=%s profiles=%s", s.runId, cfg.OutputDir, cfg.ProfilesFile)
	return s, nil
}

// AddReporter adds a telemetry reporter. It must be called before the first vehicle is added.
func (s *Simulation) AddReporter(r telemetry.Reporter) {
	logger.AssertFalse(s.reportersStarted, "reporter added after start")
	s.reporter.AddReporter(r)
}

func (s *Simulation) startReporters() {
	if !s.reportersStarted {
		s.reportersStarted = true
		s.reporter.Init()
	}
}

// AddVehicle creates a vehicle from row profileIndex of the profiles file and schedules its ticks.
func (s *Simulation) AddVehicle(profileIndex int) (*Vehicle, error) {
	profile, err := s.LoadProfile(profileIndex)
	if err != nil {
		logger.Errorf("simulation add vehicle failed: %v", err)
		return nil, err
	}
	return s.AddVehicleWithProfile(0, profileIndex, profile)
}

// LoadProfile reads row profileIndex of the configured profiles file.
func (s *Simulation) LoadProfile(profileIndex int) (*vehicle.VehicleProfile, error) {
	if s.cfg.ReadOnly {
		return nil, readonlySimulationError
	}
	return vehicle.LoadProfile(s.cfg.ProfilesFile, profileIndex)
}

// AddVehicleWithProfile creates a vehicle from the given profile. If id is not positive, the lowest free
// id is used.
func (s *Simulation) AddVehicleWithProfile(id VehicleId, profileIndex int, profile *vehicle.VehicleProfile) (*Vehicle, error) {
	if s.ctx.Err() != nil {
		return nil, CommandInterruptedError
	}
	if id <= 0 {
		id = s.genVehicleId()
	}
	if s.vehicles[id] != nil {
		return nil, errors.Wrapf(ErrVehicleExists, "vehicle %d", id)
	}

	s.startReporters()
	log := logger.GetVehicleLogger(s.cfg.OutputDir, s.runId, id)
	v := newVehicle(id, profileIndex, profile, s.d.TickInterval(), log)
	s.vehicles[id] = v
	s.d.AddVehicle(id)

	s.energyLock.Lock()
	s.energyAnalyser.AddVehicle(id, s.d.CurTime)
	s.energyLock.Unlock()

	s.reporter.AddVehicle(v.info())
	s.metrics.vehicleStarted()
	logger.Debugf("simulation:AddVehicle: id=%d profile=%d", id, profileIndex)
	return v, nil
}

func (s *Simulation) genVehicleId() VehicleId {
	id := 1
	for s.vehicles[id] != nil {
		id += 1
	}
	return id
}

// DeleteVehicle cancels the ticks of a vehicle and removes it.
func (s *Simulation) DeleteVehicle(id VehicleId) error {
	v := s.vehicles[id]
	if v == nil {
		return errors.Wrapf(ErrVehicleNotFound, "vehicle %d", id)
	}
	if s.d.IsScheduled(id) {
		s.d.DeleteVehicle(id)
		s.reporter.CloseVehicle(id, s.d.CurTime)
		s.metrics.vehicleStopped()
	}
	s.kpiMgr.retireVehicle(v)

	s.energyLock.Lock()
	s.energyAnalyser.DeleteVehicle(id)
	s.energyLock.Unlock()

	v.Logger.Infof("deleted")
	v.close()
	delete(s.vehicles, id)
	return nil
}

// OnTick advances vehicle id by one tick. It returns false once the vehicle ran out of energy, which
// ends its timer. It is part of the implementation of dispatcher.TickHandler.
func (s *Simulation) OnTick(id VehicleId, ts uint64) bool {
	v := s.vehicles[id]
	if v == nil {
		return false
	}

	rec, b := v.Tick(ts, s.tickSeconds)
	rec.RunId = s.runId

	s.energyLock.Lock()
	s.energyAnalyser.RecordDraw(id, b, v.profile.Voltage, s.tickSeconds, ts)
	if rec.Depleted {
		s.energyAnalyser.MarkDepleted(id, ts)
	}
	s.energyLock.Unlock()

	s.metrics.recordTick(&rec, b.Total()*v.profile.Voltage*s.tickSeconds)
	s.reporter.Report(rec)

	if rec.Depleted {
		logger.Infof("vehicle %d depleted its energy at %.3f s", id, rec.Seconds())
		s.reporter.CloseVehicle(id, ts)
		s.metrics.vehicleStopped()
		return false
	}
	return true
}

// OnAdvanceTime is part of the implementation of dispatcher.TickHandler.
func (s *Simulation) OnAdvanceTime(ts uint64) {
	if s.reportersStarted {
		s.reporter.AdvanceTime(ts)
	}
	if ts >= s.nextEnergyTime {
		s.energyLock.Lock()
		s.energyAnalyser.StoreFleetEnergy(ts)
		s.energyLock.Unlock()
		for s.nextEnergyTime <= ts {
			s.nextEnergyTime += energy.ComputePeriod
		}
	}
}

func (s *Simulation) Run() {
	s.ctx.WaitAdd("simulation", 1)
	defer s.ctx.WaitDone("simulation")
	defer logger.Debugf("simulation exit.")
	defer s.Stop()

	s.kpiMgr.Start()
	close(s.Started)
	s.d.Run()
}

func (s *Simulation) Stop() {
	if s.stopped {
		return
	}
	logger.Infof("stopping simulation run %s ...", s.runId)
	s.stopped = true

	s.kpiMgr.Stop()
	s.startReporters()
	s.reporter.Stop()
	for _, v := range s.vehicles {
		v.close()
	}
	s.ctx.Cancel("simulation-stop")
	logger.Debugf("simulation stopped at %d us", s.d.CurTime)
}

func (s *Simulation) IsStopping() bool {
	return s.stopped || s.ctx.Err() != nil
}

// Vehicles returns the ids of all vehicles, sorted.
func (s *Simulation) Vehicles() []VehicleId {
	keys := make([]VehicleId, 0, len(s.vehicles))
	for key := range s.vehicles {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	return keys
}

func (s *Simulation) Vehicle(id VehicleId) *Vehicle {
	return s.vehicles[id]
}

func (s *Simulation) VisitVehiclesInOrder(cb func(v *Vehicle)) {
	for _, id := range s.Vehicles() {
		cb(s.vehicles[id])
	}
}

// ActiveVehicles returns the number of vehicles still ticking.
func (s *Simulation) ActiveVehicles() int {
	return s.d.ScheduledCount()
}

func (s *Simulation) PostAsync(trivial bool, f func()) {
	s.d.PostAsync(trivial, f)
}

func (s *Simulation) Dispatcher() *dispatcher.Dispatcher {
	return s.d
}

func (s *Simulation) CurTime() uint64 {
	return s.d.CurTime
}

// SetSpeed sets the simulation speed. dispatcher.DefaultDispatcherSpeed restores the configured speed.
func (s *Simulation) SetSpeed(speed float64) {
	if speed == dispatcher.DefaultDispatcherSpeed {
		speed = s.cfg.Speed
	}
	s.d.SetSpeed(speed)
}

func (s *Simulation) GetSpeed() float64 {
	return s.d.GetSpeed()
}

// Go runs the simulation for duration at the dispatcher's speed.
func (s *Simulation) Go(duration time.Duration) <-chan struct{} {
	return s.d.Go(duration)
}

func (s *Simulation) AutoGo() bool {
	return s.cfg.AutoGo
}

func (s *Simulation) RunId() string {
	return s.runId
}

func (s *Simulation) GetConfig() *Config {
	return s.cfg
}

func (s *Simulation) SetCmdRunner(cmdRunner CmdRunner) {
	logger.AssertTrue(s.cmdRunner == nil)
	s.cmdRunner = cmdRunner
}

// GetEnergyAnalyser returns the energy analyser. Callers must not use it concurrently with a running
// dispatcher, i.e. only from within PostAsync tasks.
func (s *Simulation) GetEnergyAnalyser() *energy.EnergyAnalyser {
	return s.energyAnalyser
}

// EnergySnapshot returns a copy of the energy spent per vehicle, sorted by vehicle id.
func (s *Simulation) EnergySnapshot() []energy.VehicleEnergy {
	s.energyLock.Lock()
	defer s.energyLock.Unlock()
	return s.energyAnalyser.Vehicles()
}

func (s *Simulation) SetTitle(title string) {
	s.cfg.Title = title
	s.energyLock.Lock()
	s.energyAnalyser.SetTitle(title)
	s.energyLock.Unlock()
}

func (s *Simulation) SaveEnergy(name string) (string, error) {
	s.energyLock.Lock()
	defer s.energyLock.Unlock()
	return s.energyAnalyser.SaveEnergyDataToFile(s.cfg.OutputDir, name, s.d.CurTime)
}

func (s *Simulation) GetKpiManager() *KpiManager {
	return s.kpiMgr
}

func (s *Simulation) GetLogLevel() logger.Level {
	return logger.GetLevel()
}

func (s *Simulation) SetLogLevel(level logger.Level) {
	logger.SetLevel(level)
}
