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

// Package telemetry_grpc serves run telemetry to external viewers over gRPC, and accepts console commands.
package telemetry_grpc

import (
	"context"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/uavns/uavns/logger"
	"github.com/uavns/uavns/telemetry"
	. "github.com/uavns/uavns/types"
)

const (
	DefaultHeartbeatInterval = time.Second
	streamQueueSize          = 4096
)

// CommandRunner executes a console command and returns the output lines.
type CommandRunner interface {
	Command(cmd string) ([]string, error)
}

type grpcStream struct {
	queue   chan *structpb.Struct
	dropped int
}

// GrpcReporter is a telemetry.Reporter that forwards every event to the subscribed streams. A stream
// that falls behind loses events rather than blocking the simulation.
type GrpcReporter struct {
	sync.Mutex
	server    *grpc.Server
	address   string
	runId     string
	cmd       CommandRunner
	heartbeat time.Duration
	streams   map[*grpcStream]struct{}
	vehicles  map[VehicleId]*structpb.Struct
	done      chan struct{}
	stopped   bool
}

func NewGrpcReporter(address string, runId string, cmd CommandRunner) *GrpcReporter {
	server := grpc.NewServer(grpc.ReadBufferSize(1024*8), grpc.WriteBufferSize(1024*1024*1))
	gr := &GrpcReporter{
		server:    server,
		address:   address,
		runId:     runId,
		cmd:       cmd,
		heartbeat: DefaultHeartbeatInterval,
		streams:   map[*grpcStream]struct{}{},
		vehicles:  map[VehicleId]*structpb.Struct{},
		done:      make(chan struct{}),
	}
	RegisterTelemetryServiceServer(server, gr)
	return gr
}

func (gr *GrpcReporter) SetHeartbeatInterval(d time.Duration) {
	gr.Lock()
	defer gr.Unlock()
	gr.heartbeat = d
}

// Run listens on the configured address and serves until Stop.
func (gr *GrpcReporter) Run() error {
	lis, err := net.Listen("tcp", gr.address)
	if err != nil {
		return err
	}
	return gr.Serve(lis)
}

func (gr *GrpcReporter) Serve(lis net.Listener) error {
	logger.Infof("gRPC telemetry server serving on %s ...", lis.Addr())
	return gr.server.Serve(lis)
}

func (gr *GrpcReporter) Subscribe(_ *emptypb.Empty, stream TelemetryService_SubscribeServer) error {
	var err error
	contextDone := stream.Context().Done()
	heartbeatEvent := newEvent("heartbeat", gr.runId, nil)

	gstream := &grpcStream{queue: make(chan *structpb.Struct, streamQueueSize)}
	logger.Debugf("New gRPC subscribe request received.")

	gr.Lock()
	if gr.stopped {
		gr.Unlock()
		return status.Error(codes.Unavailable, "telemetry server stopped")
	}
	gr.prepareStream(gstream)
	gr.streams[gstream] = struct{}{}
	interval := gr.heartbeat
	gr.Unlock()

	defer gr.disposeStream(gstream)

	heartbeatTicker := time.NewTicker(interval)
	defer heartbeatTicker.Stop()

	for {
		select {
		case event := <-gstream.queue:
			err = stream.Send(event)
		case <-heartbeatTicker.C:
			err = stream.Send(heartbeatEvent)
		case <-gr.done:
			gr.drain(stream, gstream)
			logger.Debugf("Subscribe stream exit: server stopped")
			return nil
		case <-contextDone:
			err = stream.Context().Err()
		}
		if err != nil {
			logger.Debugf("Subscribe stream exit: %v", err)
			return err
		}
	}
}

// drain sends the events still queued for the stream.
func (gr *GrpcReporter) drain(stream TelemetryService_SubscribeServer, gstream *grpcStream) {
	for {
		select {
		case event := <-gstream.queue:
			if stream.Send(event) != nil {
				return
			}
		default:
			return
		}
	}
}

func (gr *GrpcReporter) Command(_ context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if gr.cmd == nil {
		return nil, status.Error(codes.Unimplemented, "no command runner")
	}
	output, err := gr.cmd.Command(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return wrapperspb.String(strings.Join(output, "\n")), nil
}

// prepareStream queues the vehicles already announced, so late subscribers see the whole fleet.
func (gr *GrpcReporter) prepareStream(gstream *grpcStream) {
	ids := make([]int, 0, len(gr.vehicles))
	for id := range gr.vehicles {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		select {
		case gstream.queue <- gr.vehicles[VehicleId(id)]:
		default:
			gstream.dropped++
		}
	}
}

func (gr *GrpcReporter) disposeStream(gstream *grpcStream) {
	gr.Lock()
	defer gr.Unlock()
	delete(gr.streams, gstream)
	if gstream.dropped > 0 {
		logger.Warnf("gRPC stream dropped %d events", gstream.dropped)
	}
}

func (gr *GrpcReporter) send(event *structpb.Struct) {
	for gstream := range gr.streams {
		select {
		case gstream.queue <- event:
		default:
			gstream.dropped++
		}
	}
}

func (gr *GrpcReporter) Init() {
}

func (gr *GrpcReporter) AddVehicle(info telemetry.VehicleInfo) {
	aoi := info.AreaOfInterest.Values()
	event := newEvent("vehicleAdded", gr.runId, map[string]interface{}{
		"vehicle":  int(info.Id),
		"profile":  info.ProfileIndex,
		"capacity": info.Capacity,
		"aoi":      []interface{}{aoi[0], aoi[1], aoi[2], aoi[3], aoi[4], aoi[5]},
	})

	gr.Lock()
	defer gr.Unlock()
	gr.vehicles[info.Id] = event
	gr.send(event)
}

func (gr *GrpcReporter) Report(rec telemetry.Record) {
	event := RecordEvent(gr.runId, &rec)
	gr.Lock()
	defer gr.Unlock()
	gr.send(event)
}

func (gr *GrpcReporter) CloseVehicle(id VehicleId, timestamp uint64) {
	event := newEvent("vehicleClosed", gr.runId, map[string]interface{}{
		"vehicle":   int(id),
		"timestamp": timestamp,
	})
	gr.Lock()
	defer gr.Unlock()
	delete(gr.vehicles, id)
	gr.send(event)
}

func (gr *GrpcReporter) AdvanceTime(ts uint64) {
	event := newEvent("advanceTime", gr.runId, map[string]interface{}{
		"timestamp": ts,
	})
	gr.Lock()
	defer gr.Unlock()
	gr.send(event)
}

func (gr *GrpcReporter) Stop() {
	gr.Lock()
	if gr.stopped {
		gr.Unlock()
		return
	}
	gr.stopped = true
	close(gr.done)
	gr.Unlock()

	gr.server.GracefulStop()
	logger.Debugf("gRPC telemetry server stopped")
}

// RecordEvent converts a telemetry record to a stream event.
func RecordEvent(runId string, rec *telemetry.Record) *structpb.Struct {
	return newEvent("record", runId, map[string]interface{}{
		"vehicle":          int(rec.VehicleId),
		"timestamp":        rec.Timestamp,
		"x":                rec.Position.X,
		"y":                rec.Position.Y,
		"z":                rec.Position.Z,
		"consumed":         rec.Consumed,
		"current":          rec.Current,
		"remainingPercent": rec.RemainingPercent,
		"phase":            int(rec.Phase),
		"mobilityCurrent":  rec.MobilityCurrent,
		"hardwareCurrent":  rec.HardwareCurrent,
		"computeCurrent":   rec.ComputeCurrent,
		"uplinkEnergy":     rec.UplinkEnergy,
		"depleted":         rec.Depleted,
	})
}

func newEvent(kind string, runId string, fields map[string]interface{}) *structpb.Struct {
	m := map[string]interface{}{
		"type": kind,
		"run":  runId,
	}
	for k, v := range fields {
		m[k] = v
	}
	event, err := structpb.NewStruct(m)
	logger.PanicIfError(err)
	return event
}
