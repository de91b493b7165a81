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
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb/planar"

	"github.com/uavns/uavns/logger"
	. "github.com/uavns/uavns/types"
)

type KpiManager struct {
	sim       *Simulation
	data      *Kpi
	retired   map[VehicleId]*KpiVehicle
	isRunning bool
}

// NewKpiManager creates a new KPI manager/bookkeeper for a particular simulation.
func NewKpiManager() *KpiManager {
	km := &KpiManager{}
	return km
}

// Init inits the KPI manager for the given simulation.
func (km *KpiManager) Init(sim *Simulation) {
	logger.AssertNil(km.sim)
	logger.AssertFalse(km.isRunning)
	km.sim = sim
	km.data = &Kpi{Status: "ok", RunId: sim.runId}
	km.retired = map[VehicleId]*KpiVehicle{}
}

func (km *KpiManager) Start() {
	logger.AssertNotNil(km.sim)
	km.data.TimeUs.StartTimeUs = km.sim.CurTime()
	km.isRunning = true
}

func (km *KpiManager) Stop() {
	if km.isRunning {
		km.isRunning = false
		km.calculateKpis()
		km.SaveDefaultFile()
	}
}

func (km *KpiManager) IsRunning() bool {
	return km.isRunning
}

// Data returns the KPIs, recalculated if the manager is running.
func (km *KpiManager) Data() *Kpi {
	if km.isRunning {
		km.calculateKpis()
	}
	return km.data
}

func (km *KpiManager) SaveDefaultFile() {
	km.SaveFile(km.DefaultSaveFileName())
}

func (km *KpiManager) SaveFile(fn string) {
	logger.AssertNotNil(km.sim)
	if km.isRunning {
		km.calculateKpis()
	}

	km.data.FileTime = time.Now().Format(time.RFC3339)
	json, err := json.MarshalIndent(km.data, "", "    ")
	if err != nil {
		logger.Fatalf("Could not marshal KPI JSON data: %v", err)
		return
	}

	err = os.WriteFile(fn, json, 0644)
	if err != nil {
		logger.Errorf("Could not write KPI JSON file %s: %v", fn, err)
		return
	}
}

// retireVehicle keeps the final KPIs of a vehicle that is being deleted.
func (km *KpiManager) retireVehicle(v *Vehicle) {
	kv := km.vehicleKpi(v, km.sim.CurTime())
	kv.Deleted = true
	km.retired[v.Id] = kv
}

func (km *KpiManager) vehicleKpi(v *Vehicle, endTime uint64) *KpiVehicle {
	st := v.Status()
	phaseTicks := v.PhaseTicks()
	kv := &KpiVehicle{
		ProfileIndex:     v.ProfileIndex,
		Ticks:            st.Ticks,
		PhaseTicks:       make(map[string]uint64, NumFlightPhases),
		Depleted:         st.Depleted,
		DistanceM:        st.Distance,
		RemainingPercent: st.RemainingPercent,
		AoiFootprintM2:   aoiFootprintArea(v.profile.AreaOfInterest),
	}
	for i, n := range phaseTicks {
		kv.PhaseTicks[FlightPhase(i).String()] = n
	}

	var created uint64
	km.sim.energyLock.Lock()
	if ve := km.sim.energyAnalyser.GetVehicle(v.Id); ve != nil {
		created = ve.Created
		kv.EnergyJ = KpiEnergy{
			Mobility: ve.Mobility,
			Compute:  ve.Compute,
			Hardware: ve.Hardware,
			Total:    ve.Total(),
		}
	}
	km.sim.energyLock.Unlock()

	end := endTime
	if st.Depleted {
		end = st.DepletedAt
		kv.DepletedAtSec = SecondsFromUs(st.DepletedAt)
	}
	if end > created {
		kv.EnduranceSec = SecondsFromUs(end - created)
	}
	return kv
}

// aoiFootprintArea returns the ground area of the area of interest, in m2.
func aoiFootprintArea(aoi Box) float64 {
	return math.Abs(planar.Area(aoi.Bound().ToPolygon()))
}

func (km *KpiManager) calculateKpis() {
	// time
	km.data.TimeUs.EndTimeUs = km.sim.CurTime()
	km.data.TimeUs.PeriodUs = km.data.TimeUs.EndTimeUs - km.data.TimeUs.StartTimeUs
	km.data.TimeSec.StartTimeSec = SecondsFromUs(km.data.TimeUs.StartTimeUs)
	km.data.TimeSec.EndTimeSec = SecondsFromUs(km.data.TimeUs.EndTimeUs)
	km.data.TimeSec.PeriodSec = SecondsFromUs(km.data.TimeUs.PeriodUs)

	// vehicles
	km.data.Vehicles = make(map[VehicleId]*KpiVehicle, len(km.sim.vehicles)+len(km.retired))
	for id, kv := range km.retired {
		km.data.Vehicles[id] = kv
	}
	km.sim.VisitVehiclesInOrder(func(v *Vehicle) {
		km.data.Vehicles[v.Id] = km.vehicleKpi(v, km.data.TimeUs.EndTimeUs)
	})

	// fleet
	fleet := KpiFleet{NumVehicles: len(km.data.Vehicles)}
	for _, kv := range km.data.Vehicles {
		fleet.EnergyJ.Add(kv.EnergyJ)
		fleet.DistanceM += kv.DistanceM
		fleet.MeanEnduranceSec += kv.EnduranceSec
		if kv.Depleted {
			fleet.NumDepleted++
		}
	}
	if fleet.NumVehicles > 0 {
		fleet.MeanEnduranceSec /= float64(fleet.NumVehicles)
	}
	km.data.Fleet = fleet
}

func (km *KpiManager) DefaultSaveFileName() string {
	return filepath.Join(km.sim.cfg.OutputDir, fmt.Sprintf("%s_kpi.json", km.sim.runId))
}
