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

// Package config holds the run configuration, read with viper from an optional uavns.json or uavns.yaml file.
package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const ConfigName = "uavns"

type InfluxConfig struct {
	Url    string
	Token  string
	Org    string
	Bucket string
}

// RunConfig is the resolved configuration of one simulation run.
type RunConfig struct {
	RunId          string
	Title          string
	Speed          float64
	TickInterval   time.Duration
	Workers        int
	OutputDir      string
	LogLevel       string
	AutoGo         bool
	VehiclesFile   string
	VehicleIndices []int
	RunLog         bool
	GeoJSON        bool
	StatsLog       bool
	StoreDsn       string
	Influx         InfluxConfig
	GrpcListen     string
}

// SetDefaults sets the default value of every key.
func SetDefaults() {
	viper.SetDefault("runId", "")
	viper.SetDefault("title", "")
	viper.SetDefault("speed", 1.0)
	viper.SetDefault("tickInterval", "1s")
	viper.SetDefault("workers", 1)
	viper.SetDefault("outputDir", "./tmp")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("autoGo", true)

	viper.SetDefault("vehicles.file", "drones.json")
	viper.SetDefault("vehicles.indices", []int{0})

	viper.SetDefault("reporters.runlog", true)
	viper.SetDefault("reporters.geojson", false)
	viper.SetDefault("reporters.statslog", true)
	viper.SetDefault("reporters.store.dsn", "")
	viper.SetDefault("reporters.influx.url", "")
	viper.SetDefault("reporters.influx.token", "")
	viper.SetDefault("reporters.influx.org", "uavns")
	viper.SetDefault("reporters.influx.bucket", "telemetry")

	viper.SetDefault("grpc.listen", "")
}

// Load sets the defaults and reads the configuration file. If path is empty, uavns.json or uavns.yaml
// is searched in the working directory and in ./config, and a missing file leaves the defaults in force.
func Load(path string) error {
	SetDefaults()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "error reading config file %s", path)
		}
		return nil
	}

	viper.SetConfigName(ConfigName)
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "error reading config file")
	}
	return nil
}

// Override sets a key with the highest priority, e.g. from a command line flag.
func Override(key string, value interface{}) {
	viper.Set(key, value)
}

// UsedFile returns the configuration file read, or an empty string.
func UsedFile() string {
	return viper.ConfigFileUsed()
}

// Get resolves the current configuration.
func Get() *RunConfig {
	return &RunConfig{
		RunId:          viper.GetString("runId"),
		Title:          viper.GetString("title"),
		Speed:          viper.GetFloat64("speed"),
		TickInterval:   viper.GetDuration("tickInterval"),
		Workers:        viper.GetInt("workers"),
		OutputDir:      viper.GetString("outputDir"),
		LogLevel:       viper.GetString("logLevel"),
		AutoGo:         viper.GetBool("autoGo"),
		VehiclesFile:   viper.GetString("vehicles.file"),
		VehicleIndices: viper.GetIntSlice("vehicles.indices"),
		RunLog:         viper.GetBool("reporters.runlog"),
		GeoJSON:        viper.GetBool("reporters.geojson"),
		StatsLog:       viper.GetBool("reporters.statslog"),
		StoreDsn:       viper.GetString("reporters.store.dsn"),
		Influx: InfluxConfig{
			Url:    viper.GetString("reporters.influx.url"),
			Token:  viper.GetString("reporters.influx.token"),
			Org:    viper.GetString("reporters.influx.org"),
			Bucket: viper.GetString("reporters.influx.bucket"),
		},
		GrpcListen: viper.GetString("grpc.listen"),
	}
}
