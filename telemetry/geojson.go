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

package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"

	"github.com/uavns/uavns/logger"
	. "github.com/uavns/uavns/types"
)

type flightPath struct {
	info     VehicleInfo
	path     orb.LineString
	altitude []float64
	phases   []int
	closedAt uint64
}

// GeoJSONReporter collects the ground track of every vehicle and writes them, along with the footprint of
// each area of interest, as a GeoJSON feature collection at Stop. Coordinates are the local cartesian
// x and y in meters.
type GeoJSONReporter struct {
	mutex    sync.Mutex
	fileName string
	runId    string
	paths    map[VehicleId]*flightPath
}

func NewGeoJSONReporter(outputDir string, runId string) *GeoJSONReporter {
	return &GeoJSONReporter{
		fileName: filepath.Join(outputDir, fmt.Sprintf("%s_paths.geojson", runId)),
		runId:    runId,
		paths:    map[VehicleId]*flightPath{},
	}
}

func (gr *GeoJSONReporter) FileName() string {
	return gr.fileName
}

func (gr *GeoJSONReporter) Init() {
}

func (gr *GeoJSONReporter) AddVehicle(info VehicleInfo) {
	gr.mutex.Lock()
	defer gr.mutex.Unlock()
	gr.paths[info.Id] = &flightPath{
		info:     info,
		path:     orb.LineString{info.Start.Point()},
		altitude: []float64{info.Start.Z},
		phases:   []int{int(PhaseClimb)},
	}
}

func (gr *GeoJSONReporter) Report(rec Record) {
	gr.mutex.Lock()
	defer gr.mutex.Unlock()
	fp := gr.paths[rec.VehicleId]
	if fp == nil {
		return
	}
	fp.path = append(fp.path, rec.Position.Point())
	fp.altitude = append(fp.altitude, rec.Position.Z)
	fp.phases = append(fp.phases, int(rec.Phase))
}

func (gr *GeoJSONReporter) CloseVehicle(id VehicleId, timestamp uint64) {
	gr.mutex.Lock()
	defer gr.mutex.Unlock()
	if fp := gr.paths[id]; fp != nil {
		fp.closedAt = timestamp
	}
}

func (gr *GeoJSONReporter) AdvanceTime(uint64) {
}

// FeatureCollection returns the flight paths and areas of interest collected so far, sorted by vehicle id.
func (gr *GeoJSONReporter) FeatureCollection() *geojson.FeatureCollection {
	gr.mutex.Lock()
	defer gr.mutex.Unlock()

	ids := make([]int, 0, len(gr.paths))
	for id := range gr.paths {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fc := geojson.NewFeatureCollection()
	for _, id := range ids {
		fp := gr.paths[id]

		track := geojson.NewFeature(fp.path)
		track.Properties["kind"] = "path"
		track.Properties["run"] = gr.runId
		track.Properties["vehicle"] = id
		track.Properties["altitude"] = fp.altitude
		track.Properties["phase"] = fp.phases
		track.Properties["length"] = planar.Length(fp.path)
		if fp.closedAt > 0 {
			track.Properties["closedAtSec"] = SecondsFromUs(fp.closedAt)
		}
		fc.Append(track)

		aoi := geojson.NewFeature(fp.info.AreaOfInterest.Bound().ToPolygon())
		aoi.Properties["kind"] = "aoi"
		aoi.Properties["vehicle"] = id
		aoi.Properties["zMin"] = fp.info.AreaOfInterest.ZMin
		aoi.Properties["zMax"] = fp.info.AreaOfInterest.ZMax
		fc.Append(aoi)
	}
	return fc
}

func (gr *GeoJSONReporter) Stop() {
	if err := gr.Save(); err != nil {
		logger.Errorf("geojson: %v", err)
	}
}

// Save writes the feature collection to the GeoJSON file.
func (gr *GeoJSONReporter) Save() error {
	data, err := gr.FeatureCollection().MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "marshal flight paths")
	}
	if err = os.WriteFile(gr.fileName, data, 0644); err != nil {
		return errors.Wrapf(err, "write %s", gr.fileName)
	}
	logger.Debugf("flight paths saved to %s", gr.fileName)
	return nil
}
