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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/uavns/uavns/logger"
	"github.com/uavns/uavns/telemetry"
)

const instrumentationName = "github.com/uavns/uavns/simulation"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// simMetrics are the OpenTelemetry instruments of a simulation. Without a configured meter provider
// they are no-ops.
type simMetrics struct {
	ticks      metric.Int64Counter
	depletions metric.Int64Counter
	energy     metric.Float64Counter
	vehicles   metric.Int64UpDownCounter
	runAttr    attribute.KeyValue
}

func newSimMetrics(runId string) *simMetrics {
	m := meter()
	sm := &simMetrics{
		runAttr: attribute.String("run", runId),
	}

	var err error
	sm.ticks, err = m.Int64Counter("uavns.vehicle.ticks",
		metric.WithDescription("Total vehicle ticks simulated"),
	)
	logger.PanicIfError(err)

	sm.depletions, err = m.Int64Counter("uavns.vehicle.depletions",
		metric.WithDescription("Total vehicles that ran out of energy"),
	)
	logger.PanicIfError(err)

	sm.energy, err = m.Float64Counter("uavns.vehicle.energy",
		metric.WithDescription("Energy drawn by the vehicles"),
		metric.WithUnit("J"),
	)
	logger.PanicIfError(err)

	sm.vehicles, err = m.Int64UpDownCounter("uavns.vehicles.active",
		metric.WithDescription("Vehicles with a running tick timer"),
	)
	logger.PanicIfError(err)
	return sm
}

func (sm *simMetrics) recordTick(rec *telemetry.Record, joules float64) {
	ctx := context.Background()
	phaseAttr := attribute.String("phase", rec.Phase.String())
	sm.ticks.Add(ctx, 1, metric.WithAttributes(sm.runAttr, phaseAttr))
	sm.energy.Add(ctx, joules, metric.WithAttributes(sm.runAttr, phaseAttr))
	if rec.Depleted {
		sm.depletions.Add(ctx, 1, metric.WithAttributes(sm.runAttr))
	}
}

func (sm *simMetrics) vehicleStarted() {
	sm.vehicles.Add(context.Background(), 1, metric.WithAttributes(sm.runAttr))
}

func (sm *simMetrics) vehicleStopped() {
	sm.vehicles.Add(context.Background(), -1, metric.WithAttributes(sm.runAttr))
}
