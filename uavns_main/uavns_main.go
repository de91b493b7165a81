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

// Package uavns_main wires the configuration, the simulation, its reporters and the console into the uavns
// program.
package uavns_main

import (
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/simonlingoogle/go-simplelogger"

	"github.com/uavns/uavns/cli"
	"github.com/uavns/uavns/config"
	"github.com/uavns/uavns/dispatcher"
	"github.com/uavns/uavns/logger"
	"github.com/uavns/uavns/progctx"
	"github.com/uavns/uavns/simulation"
	"github.com/uavns/uavns/telemetry"
	telemetry_grpc "github.com/uavns/uavns/telemetry/grpc"
	telemetry_influx "github.com/uavns/uavns/telemetry/influx"
	telemetry_statslog "github.com/uavns/uavns/telemetry/statslog"
	telemetry_store "github.com/uavns/uavns/telemetry/store"
	. "github.com/uavns/uavns/types"
	"github.com/uavns/uavns/vehicle"
)

type MainArgs struct {
	ConfigFile   string
	RunId        string
	Title        string
	Speed        string
	TickInterval time.Duration
	Workers      int
	OutputDir    string
	LogLevel     string
	AutoGo       bool
	ReadOnly     bool
	VehiclesFile string
	Indices      string
	GeoJSON      bool
	StoreDsn     string
	InfluxUrl    string
	GrpcListen   string
}

var (
	args MainArgs
)

func parseArgs() {
	flag.StringVar(&args.ConfigFile, "config", "", "configuration file (default: uavns.json or uavns.yaml in . or ./config)")
	flag.StringVar(&args.RunId, "runid", "", "run id tagging all output (default: a new UUID)")
	flag.StringVar(&args.Title, "title", "", "run title, names the energy result files")
	flag.StringVar(&args.Speed, "speed", "1", "set simulating speed, or 'max'")
	flag.DurationVar(&args.TickInterval, "tick", dispatcher.DefaultTickInterval, "tick interval of every vehicle")
	flag.IntVar(&args.Workers, "workers", 1, "number of goroutines ticking vehicles due at the same time")
	flag.StringVar(&args.OutputDir, "output", "./tmp", "output directory")
	flag.StringVar(&args.LogLevel, "log", "info", "set logging level: trace, debug, info, note, warn, error, off.")
	flag.BoolVar(&args.AutoGo, "autogo", true, "auto go (adds the configured vehicles and runs until all are done, without issuing 'go' commands.)")
	flag.BoolVar(&args.ReadOnly, "readonly", false, "readonly simulation can not be manipulated by remote commands")
	flag.StringVar(&args.VehiclesFile, "vehicles", "drones.json", "vehicle profiles file (JSON or YAML)")
	flag.StringVar(&args.Indices, "indices", "0", "comma-separated profile indices of the vehicles added by autogo")
	flag.BoolVar(&args.GeoJSON, "geojson", false, "write the flight paths as GeoJSON")
	flag.StringVar(&args.StoreDsn, "store", "", "SQL telemetry store DSN: an sqlite file, or a postgres URL")
	flag.StringVar(&args.InfluxUrl, "influx", "", "InfluxDB v2 server URL for telemetry")
	flag.StringVar(&args.GrpcListen, "grpc", "", "gRPC telemetry server listen address, e.g. localhost:9001")

	flag.Parse()
}

// flagKeys maps flags to the configuration keys they override.
var flagKeys = map[string]string{
	"runid":    "runId",
	"title":    "title",
	"tick":     "tickInterval",
	"workers":  "workers",
	"output":   "outputDir",
	"log":      "logLevel",
	"autogo":   "autoGo",
	"vehicles": "vehicles.file",
	"geojson":  "reporters.geojson",
	"store":    "reporters.store.dsn",
	"influx":   "reporters.influx.url",
	"grpc":     "grpc.listen",
}

// overrideConfig applies the flags given on the command line over the configuration file.
func overrideConfig() {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "speed":
			config.Override("speed", parseSpeed(args.Speed))
		case "indices":
			config.Override("vehicles.indices", parseIndices(args.Indices))
		case "tick":
			config.Override("tickInterval", args.TickInterval.String())
		default:
			if key, ok := flagKeys[f.Name]; ok {
				config.Override(key, f.Value.String())
			}
		}
	})
}

func parseSpeed(s string) float64 {
	s = strings.ToLower(s)
	if s == "max" {
		return dispatcher.MaxSimulateSpeed
	}
	speed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		simplelogger.Fatalf("invalid speed: %s", s)
	}
	return speed
}

func parseIndices(s string) []int {
	var indices []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			simplelogger.Fatalf("invalid profile index: %s", part)
		}
		indices = append(indices, idx)
	}
	return indices
}

func Main(ctx *progctx.ProgCtx, cliOptions *cli.CliOptions) {
	parseArgs()
	if err := config.Load(args.ConfigFile); err != nil {
		simplelogger.Fatalf("%v", err)
	}
	overrideConfig()
	rc := config.Get()

	level, err := logger.ParseLevelString(rc.LogLevel)
	if err != nil {
		simplelogger.Fatalf("%v", err)
	}
	logger.SetLevel(level)
	if used := config.UsedFile(); used != "" {
		logger.Infof("configuration read from %s", used)
	}

	// run console in its own goroutine, and close its input when the program exits.
	ctx.Defer(func() {
		_ = os.Stdin.Close()
	})

	handleSignals(ctx)

	sim := createSimulation(ctx, rc, level)
	addReporters(ctx, sim, rc)
	rt := cli.NewCmdRunner(ctx, sim)
	logger.SetStdoutCallback(cli.Cli)

	go sim.Run()
	<-sim.Started

	go func() {
		err := cli.Cli.Run(rt, cliOptions)
		ctx.Cancel(errors.Wrapf(err, "console exit"))
	}()

	if rc.AutoGo {
		ctx.Go("autogo", func() {
			autoGo(ctx, sim, rc)
		})
	}

	<-ctx.Done()
	logger.Debugf("waiting for uavns to stop gracefully ...")
	ctx.Wait()
}

func handleSignals(ctx *progctx.ProgCtx) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)
	signal.Ignore(syscall.SIGALRM)

	ctx.WaitAdd("handleSignals", 1)
	go func() {
		defer simplelogger.Debugf("handleSignals exit.")
		defer ctx.WaitDone("handleSignals")

		for {
			select {
			case sig := <-c:
				simplelogger.Infof("signal received: %v", sig)
				ctx.Cancel(nil)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// autoGo adds the configured vehicles, runs the simulation until no vehicle is left ticking, and then
// stops it.
func autoGo(ctx *progctx.ProgCtx, sim *simulation.Simulation, rc *config.RunConfig) {
	added := make(chan struct{})
	sim.PostAsync(false, func() {
		defer close(added)
		for _, idx := range rc.VehicleIndices {
			profile, err := vehicle.LoadProfile(rc.VehiclesFile, idx)
			if err != nil {
				logger.Errorf("autogo: %v", err)
				continue
			}
			if _, err = sim.AddVehicleWithProfile(InvalidVehicleId, idx, profile); err != nil {
				logger.Errorf("autogo: add vehicle from profile %d failed: %v", idx, err)
			}
		}
	})

	select {
	case <-added:
	case <-ctx.Done():
		return
	}

	select {
	case <-sim.Go(EverDuration):
	case <-ctx.Done():
		return
	}
	if ctx.Err() != nil {
		return
	}

	logger.Infof("no vehicle left flying at %.3f s, stopping.", SecondsFromUs(sim.CurTime()))
	sim.PostAsync(false, sim.Stop)
}

func createSimulation(ctx *progctx.ProgCtx, rc *config.RunConfig, level logger.Level) *simulation.Simulation {
	simcfg := simulation.DefaultConfig()
	simcfg.RunId = rc.RunId
	simcfg.Title = rc.Title
	simcfg.Speed = rc.Speed
	simcfg.TickInterval = rc.TickInterval
	simcfg.Workers = rc.Workers
	simcfg.OutputDir = rc.OutputDir
	simcfg.ProfilesFile = rc.VehiclesFile
	simcfg.LogLevel = level
	simcfg.AutoGo = rc.AutoGo
	simcfg.ReadOnly = args.ReadOnly

	sim, err := simulation.NewSimulation(ctx, simcfg, dispatcher.DefaultConfig())
	simplelogger.FatalIfError(err)
	return sim
}

func addReporters(ctx *progctx.ProgCtx, sim *simulation.Simulation, rc *config.RunConfig) {
	runId := sim.RunId()

	if rc.RunLog {
		sim.AddReporter(telemetry.NewRunLog(rc.OutputDir, runId))
	}
	if rc.GeoJSON {
		sim.AddReporter(telemetry.NewGeoJSONReporter(rc.OutputDir, runId))
	}
	if rc.StatsLog {
		sim.AddReporter(telemetry_statslog.NewStatslogReporter(rc.OutputDir, runId))
	}

	if rc.StoreDsn != "" {
		store, err := telemetry_store.OpenStoreReporter(rc.StoreDsn, runId)
		simplelogger.FatalIfError(err)
		sim.AddReporter(store)
	}

	if rc.Influx.Url != "" {
		influx, err := telemetry_influx.NewInfluxReporter(telemetry_influx.Config{
			Url:    rc.Influx.Url,
			Token:  rc.Influx.Token,
			Org:    rc.Influx.Org,
			Bucket: rc.Influx.Bucket,
		}, runId, time.Now())
		simplelogger.FatalIfError(err)
		sim.AddReporter(influx)
	}

	if rc.GrpcListen != "" {
		gr := telemetry_grpc.NewGrpcReporter(rc.GrpcListen, runId, simulation.NewCommandController(sim))
		sim.AddReporter(gr)
		ctx.Go("grpcserver", func() {
			if err := gr.Run(); err != nil && ctx.Err() == nil {
				logger.Errorf("gRPC telemetry server stopped unexpectedly: %+v", err)
			}
		})
	}
}
