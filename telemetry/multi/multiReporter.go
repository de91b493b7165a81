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

package telemetry_multi

import (
	"github.com/uavns/uavns/telemetry"
	. "github.com/uavns/uavns/types"
)

type MultiReporter struct {
	rs []telemetry.Reporter
}

// NewMultiReporter creates a new Reporter that multiplexes to multiple Reporters.
func NewMultiReporter(rs ...telemetry.Reporter) *MultiReporter {
	return &MultiReporter{rs: rs}
}

// AddReporter adds reporters. It must be called before Init.
func (mr *MultiReporter) AddReporter(rs ...telemetry.Reporter) {
	mr.rs = append(mr.rs, rs...)
}

func (mr *MultiReporter) Len() int {
	return len(mr.rs)
}

func (mr *MultiReporter) Init() {
	for _, r := range mr.rs {
		r.Init()
	}
}

func (mr *MultiReporter) AddVehicle(info telemetry.VehicleInfo) {
	for _, r := range mr.rs {
		r.AddVehicle(info)
	}
}

func (mr *MultiReporter) Report(rec telemetry.Record) {
	for _, r := range mr.rs {
		r.Report(rec)
	}
}

func (mr *MultiReporter) CloseVehicle(id VehicleId, timestamp uint64) {
	for _, r := range mr.rs {
		r.CloseVehicle(id, timestamp)
	}
}

func (mr *MultiReporter) AdvanceTime(ts uint64) {
	for _, r := range mr.rs {
		r.AdvanceTime(ts)
	}
}

func (mr *MultiReporter) Stop() {
	for _, r := range mr.rs {
		r.Stop()
	}
}
