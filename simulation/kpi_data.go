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
	"sort"

	. "github.com/uavns/uavns/types"
)

type KpiTimeUs struct {
	StartTimeUs uint64 `json:"start"`
	EndTimeUs   uint64 `json:"end"`
	PeriodUs    uint64 `json:"duration"`
}

type KpiTimeSec struct {
	StartTimeSec float64 `json:"start"`
	EndTimeSec   float64 `json:"end"`
	PeriodSec    float64 `json:"duration"`
}

type KpiEnergy struct {
	Mobility float64 `json:"mobility"`
	Compute  float64 `json:"compute"`
	Hardware float64 `json:"hardware"`
	Total    float64 `json:"total"`
}

func (ke *KpiEnergy) Add(o KpiEnergy) {
	ke.Mobility += o.Mobility
	ke.Compute += o.Compute
	ke.Hardware += o.Hardware
	ke.Total += o.Total
}

type KpiVehicle struct {
	ProfileIndex     int               `json:"profile"`
	Ticks            uint64            `json:"ticks"`
	PhaseTicks       map[string]uint64 `json:"phase_ticks"`
	EnduranceSec     float64           `json:"endurance_sec"`
	Depleted         bool              `json:"depleted"`
	DepletedAtSec    float64           `json:"depleted_at_sec,omitempty"`
	Deleted          bool              `json:"deleted,omitempty"`
	DistanceM        float64           `json:"distance_m"`
	EnergyJ          KpiEnergy         `json:"energy_j"`
	RemainingPercent float64           `json:"remaining_percent"`
	AoiFootprintM2   float64           `json:"aoi_footprint_m2"`
}

type KpiFleet struct {
	NumVehicles      int       `json:"vehicles"`
	NumDepleted      int       `json:"depleted"`
	EnergyJ          KpiEnergy `json:"energy_j"`
	MeanEnduranceSec float64   `json:"mean_endurance_sec"`
	DistanceM        float64   `json:"distance_m"`
}

type Kpi struct {
	FileTime string                    `json:"created"`
	Status   string                    `json:"status"`
	RunId    string                    `json:"run"`
	TimeUs   KpiTimeUs                 `json:"time_us"`
	TimeSec  KpiTimeSec                `json:"time_sec"`
	Fleet    KpiFleet                  `json:"fleet"`
	Vehicles map[VehicleId]*KpiVehicle `json:"vehicles"`
}

func (k *Kpi) SortedVehicleIds() []VehicleId {
	ids := make([]VehicleId, 0, len(k.Vehicles))
	for id := range k.Vehicles {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
