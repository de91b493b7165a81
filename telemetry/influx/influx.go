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

// Package telemetry_influx writes run telemetry as InfluxDB v2 points.
package telemetry_influx

import (
	"context"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/pkg/errors"

	"github.com/uavns/uavns/logger"
	"github.com/uavns/uavns/telemetry"
	. "github.com/uavns/uavns/types"
)

const (
	Measurement      = "vehicle_telemetry"
	EventMeasurement = "vehicle_event"
	DefaultBatchSize = 1000
	writeTimeout     = time.Second * 10
)

type Config struct {
	Url    string
	Token  string
	Org    string
	Bucket string
}

// InfluxReporter is a telemetry.Reporter sending points through a blocking write API. Points are
// buffered and written when the batch is full, and at Stop.
type InfluxReporter struct {
	mutex     sync.Mutex
	cfg       Config
	client    influxdb2.Client
	writer    influxdb2_api.WriteAPIBlocking
	runId     string
	epoch     time.Time
	batchSize int
	pending   []*influxdb2_write.Point
	written   int
	errCount  int
}

// NewInfluxReporter creates a reporter for the run. Point timestamps are the simulation time added to epoch.
func NewInfluxReporter(cfg Config, runId string, epoch time.Time) (*InfluxReporter, error) {
	if cfg.Url == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, errors.Errorf("influx reporter needs url, org and bucket: %+v", cfg)
	}
	client := influxdb2.NewClientWithOptions(cfg.Url, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(DefaultBatchSize).
			SetHTTPRequestTimeout(uint(writeTimeout/time.Second)))
	return &InfluxReporter{
		cfg:       cfg,
		client:    client,
		writer:    client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		runId:     runId,
		epoch:     epoch,
		batchSize: DefaultBatchSize,
	}, nil
}

func (ir *InfluxReporter) SetBatchSize(n int) {
	ir.mutex.Lock()
	defer ir.mutex.Unlock()
	if n < 1 {
		n = 1
	}
	ir.batchSize = n
}

// Written returns the number of points written successfully.
func (ir *InfluxReporter) Written() int {
	ir.mutex.Lock()
	defer ir.mutex.Unlock()
	return ir.written
}

func (ir *InfluxReporter) Init() {
	logger.Debugf("influx reporter writing to %s org=%s bucket=%s", ir.cfg.Url, ir.cfg.Org, ir.cfg.Bucket)
}

func (ir *InfluxReporter) tags(id VehicleId) map[string]string {
	return map[string]string{
		"run":     ir.runId,
		"vehicle": strconv.Itoa(int(id)),
	}
}

func (ir *InfluxReporter) simTime(ts uint64) time.Time {
	return ir.epoch.Add(time.Duration(ts) * time.Microsecond)
}

func (ir *InfluxReporter) AddVehicle(info telemetry.VehicleInfo) {
	p := influxdb2_write.NewPoint(EventMeasurement, ir.tags(info.Id), map[string]interface{}{
		"event":    "added",
		"profile":  info.ProfileIndex,
		"capacity": info.Capacity,
	}, ir.epoch)

	ir.mutex.Lock()
	defer ir.mutex.Unlock()
	ir.pending = append(ir.pending, p)
}

func (ir *InfluxReporter) Report(rec telemetry.Record) {
	tags := ir.tags(rec.VehicleId)
	tags["phase"] = rec.Phase.String()
	p := influxdb2_write.NewPoint(Measurement, tags, map[string]interface{}{
		"x":                rec.Position.X,
		"y":                rec.Position.Y,
		"z":                rec.Position.Z,
		"consumed":         rec.Consumed,
		"current":          rec.Current,
		"remainingPercent": rec.RemainingPercent,
		"mobilityCurrent":  rec.MobilityCurrent,
		"hardwareCurrent":  rec.HardwareCurrent,
		"computeCurrent":   rec.ComputeCurrent,
		"uplinkEnergy":     rec.UplinkEnergy,
		"depleted":         rec.Depleted,
	}, ir.simTime(rec.Timestamp))

	ir.mutex.Lock()
	defer ir.mutex.Unlock()
	ir.pending = append(ir.pending, p)
}

func (ir *InfluxReporter) CloseVehicle(id VehicleId, timestamp uint64) {
	p := influxdb2_write.NewPoint(EventMeasurement, ir.tags(id), map[string]interface{}{
		"event": "closed",
	}, ir.simTime(timestamp))

	ir.mutex.Lock()
	defer ir.mutex.Unlock()
	ir.pending = append(ir.pending, p)
}

func (ir *InfluxReporter) AdvanceTime(_ uint64) {
	ir.mutex.Lock()
	defer ir.mutex.Unlock()
	if len(ir.pending) >= ir.batchSize {
		ir.flush()
	}
}

func (ir *InfluxReporter) Stop() {
	ir.mutex.Lock()
	defer ir.mutex.Unlock()
	ir.flush()
	ir.client.Close()
	logger.Debugf("influx reporter stopped: %d points written, %d failed writes", ir.written, ir.errCount)
}

func (ir *InfluxReporter) flush() {
	if len(ir.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := ir.writer.WritePoint(ctx, ir.pending...); err != nil {
		ir.errCount++
		logger.Errorf("influx write of %d points failed: %v", len(ir.pending), err)
	} else {
		ir.written += len(ir.pending)
	}
	ir.pending = ir.pending[:0]
}
