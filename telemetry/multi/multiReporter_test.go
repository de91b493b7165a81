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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uavns/uavns/telemetry"
	. "github.com/uavns/uavns/types"
)

type countingReporter struct {
	inits, adds, reports, closes, advances, stops int
}

func (c *countingReporter) Init() { c.inits++ }
func (c *countingReporter) AddVehicle(telemetry.VehicleInfo) { c.adds++ }
func (c *countingReporter) Report(telemetry.Record) { c.reports++ }
func (c *countingReporter) CloseVehicle(VehicleId, uint64) { c.closes++ }
func (c *countingReporter) AdvanceTime(uint64) { c.advances++ }
func (c *countingReporter) Stop() { c.stops++ }

func TestMultiReporter(t *testing.T) {
	a, b := &countingReporter{}, &countingReporter{}
	mr := NewMultiReporter(a)
	mr.AddReporter(b, telemetry.NewNopReporter())
	var _ telemetry.Reporter = mr
	assert.Equal(t, 3, mr.Len())

	mr.Init()
	mr.AddVehicle(telemetry.VehicleInfo{Id: 1})
	mr.Report(telemetry.Record{VehicleId: 1})
	mr.Report(telemetry.Record{VehicleId: 1})
	mr.CloseVehicle(1, 10)
	mr.AdvanceTime(10)
	mr.Stop()

	for _, c := range []*countingReporter{a, b} {
		assert.Equal(t, countingReporter{1, 1, 2, 1, 1, 1}, *c)
	}
}
