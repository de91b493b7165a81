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

// Package energy implements the energy accounting of the vehicles: current draw composition, the energy
// ledger integrating the draw against the battery capacity, and the fleet energy history.
package energy

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/uavns/uavns/logger"
)

// ResultsDir is the directory, within the output directory, where energy result files are saved.
const ResultsDir = "energy_results"

// VehicleEnergy is the energy spent by one vehicle, per subsystem.
type VehicleEnergy struct {
	VehicleId  int
	Consumption
	Created    uint64 // us
	Updated    uint64 // us
	DepletedAt uint64 // us, zero while the vehicle has energy left
}

type EnergyAnalyser struct {
	vehicles     map[int]*VehicleEnergy
	fleetHistory []FleetConsumption
	title        string
}

func (e *EnergyAnalyser) AddVehicle(id int, timestamp uint64) {
	if _, ok := e.vehicles[id]; ok {
		return
	}
	e.vehicles[id] = &VehicleEnergy{
		VehicleId: id,
		Created:   timestamp,
		Updated:   timestamp,
	}
}

func (e *EnergyAnalyser) DeleteVehicle(id int) {
	delete(e.vehicles, id)

	if len(e.vehicles) == 0 {
		e.ClearEnergyData()
	}
}

func (e *EnergyAnalyser) GetVehicle(id int) *VehicleEnergy {
	return e.vehicles[id]
}

// RecordDraw accounts the breakdown b drawn at voltage during dt seconds, ending at timestamp.
func (e *EnergyAnalyser) RecordDraw(id int, b CurrentBreakdown, voltage float64, dt float64, timestamp uint64) {
	ve := e.vehicles[id]
	if ve == nil {
		return
	}
	ve.add(b, voltage, dt)
	ve.Updated = timestamp
}

// MarkDepleted records the time at which the vehicle ran out of energy.
func (e *EnergyAnalyser) MarkDepleted(id int, timestamp uint64) {
	if ve := e.vehicles[id]; ve != nil && ve.DepletedAt == 0 {
		ve.DepletedAt = timestamp
	}
}

func (e *EnergyAnalyser) GetFleetEnergyHistory() []FleetConsumption {
	return e.fleetHistory
}

// StoreFleetEnergy appends a snapshot of the average consumption per vehicle to the history.
func (e *EnergyAnalyser) StoreFleetEnergy(timestamp uint64) {
	snapshot := FleetConsumption{
		Timestamp: timestamp,
	}
	fleetSize := float64(len(e.vehicles))
	for _, ve := range e.vehicles {
		snapshot.Mobility += ve.Mobility / fleetSize
		snapshot.Compute += ve.Compute / fleetSize
		snapshot.Hardware += ve.Hardware / fleetSize
	}
	e.fleetHistory = append(e.fleetHistory, snapshot)
}

func (e *EnergyAnalyser) sortedIds() []int {
	ids := make([]int, 0, len(e.vehicles))
	for id := range e.vehicles {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Vehicles returns the energy records of all vehicles, sorted by id.
func (e *EnergyAnalyser) Vehicles() []VehicleEnergy {
	res := make([]VehicleEnergy, 0, len(e.vehicles))
	for _, id := range e.sortedIds() {
		res = append(res, *e.vehicles[id])
	}
	return res
}

// SaveEnergyDataToFile writes the per-vehicle totals and the fleet history to the results directory
// under outputDir, and returns the path prefix of the written files.
func (e *EnergyAnalyser) SaveEnergyDataToFile(outputDir string, name string, timestamp uint64) (string, error) {
	if name == "" {
		if e.title == "" {
			name = "energy"
		} else {
			name = e.title
		}
	}

	dir := filepath.Join(outputDir, ResultsDir)
	if err := os.MkdirAll(dir, 0777); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}

	path := filepath.Join(dir, name)
	fileVehicles, err := os.Create(path + "_vehicles.txt")
	if err != nil {
		return "", err
	}
	defer fileVehicles.Close()

	fileFleet, err := os.Create(path + ".txt")
	if err != nil {
		return "", err
	}
	defer fileFleet.Close()

	e.writeEnergyByVehicles(fileVehicles, timestamp)
	e.writeFleetEnergy(fileFleet, timestamp)
	logger.Debugf("energy results saved to %s", path)
	return path, nil
}

func (e *EnergyAnalyser) writeEnergyByVehicles(w io.Writer, timestamp uint64) {
	fmt.Fprintf(w, "Duration of the simulated mission (in milliseconds): %d\n", timestamp/1000)
	fmt.Fprintf(w, "ID\tMobility (J)\tCompute (J)\tHardware (J)\tTotal (J)\tDepleted (ms)\n")

	for _, id := range e.sortedIds() {
		ve := e.vehicles[id]
		fmt.Fprintf(w, "%d\t%f\t%f\t%f\t%f\t%d\n", id, ve.Mobility, ve.Compute, ve.Hardware, ve.Total(),
			ve.DepletedAt/1000)
	}
}

func (e *EnergyAnalyser) writeFleetEnergy(w io.Writer, timestamp uint64) {
	fmt.Fprintf(w, "Duration of the simulated mission (in milliseconds): %d\n", timestamp/1000)
	fmt.Fprintf(w, "Time (ms)\tMobility (J)\tCompute (J)\tHardware (J)\n")
	for _, snapshot := range e.fleetHistory {
		fmt.Fprintf(w, "%d\t%f\t%f\t%f\n",
			snapshot.Timestamp/1000,
			snapshot.Mobility,
			snapshot.Compute,
			snapshot.Hardware,
		)
	}
}

func (e *EnergyAnalyser) ClearEnergyData() {
	logger.Debugf("Vehicle energy data cleared")
	e.fleetHistory = make([]FleetConsumption, 0, 3600)
}

func (e *EnergyAnalyser) SetTitle(title string) {
	e.title = title
}

func NewEnergyAnalyser() *EnergyAnalyser {
	return &EnergyAnalyser{
		vehicles:     make(map[int]*VehicleEnergy),
		fleetHistory: make([]FleetConsumption, 0, 3600),
	}
}
