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

package telemetry_statslog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/uavns/uavns/logger"
	"github.com/uavns/uavns/telemetry"
	. "github.com/uavns/uavns/types"
)

type statslogReporter struct {
	mutex          sync.Mutex
	logFile        *os.File
	logFileName    string
	isFileEnabled  bool
	changed        bool   // flag to track if some vehicle stats changed
	timestampUs    uint64 // simulation current timestamp
	logTimestampUs uint64 // last log entry timestamp
	stats          fleetStats
	oldStats       fleetStats

	phases   map[VehicleId]FlightPhase
	depleted map[VehicleId]struct{}
}

type fleetStats struct {
	numVehicles int
	numClimb    int
	numSweep    int
	numSweepAoi int
	numDescend  int
	numDepleted int
}

// NewStatslogReporter creates a new Reporter that writes a CSV log of fleet phase counts to file. An entry
// is added whenever the counts change.
func NewStatslogReporter(outputDir string, runId string) telemetry.Reporter {
	return &statslogReporter{
		logFileName:   StatsLogFileName(outputDir, runId),
		isFileEnabled: true,
		changed:       true,
		phases:        make(map[VehicleId]FlightPhase, 16),
		depleted:      make(map[VehicleId]struct{}),
	}
}

func StatsLogFileName(outputDir string, runId string) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s_stats.csv", runId))
}

func (sr *statslogReporter) Init() {
	sr.createLogFile()
}

func (sr *statslogReporter) AddVehicle(info telemetry.VehicleInfo) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	sr.changed = true
	sr.phases[info.Id] = PhaseClimb
}

func (sr *statslogReporter) Report(rec telemetry.Record) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	if old, ok := sr.phases[rec.VehicleId]; !ok || old != rec.Phase {
		sr.changed = true
		sr.phases[rec.VehicleId] = rec.Phase
	}
	if rec.Depleted {
		sr.changed = true
		sr.depleted[rec.VehicleId] = struct{}{}
	}
}

func (sr *statslogReporter) CloseVehicle(id VehicleId, _ uint64) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	if _, ok := sr.depleted[id]; !ok {
		// deleted before depletion
		sr.changed = true
		delete(sr.phases, id)
	}
}

func (sr *statslogReporter) AdvanceTime(ts uint64) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	if sr.changed && sr.checkLogEntryChange() {
		sr.writeLogEntry(sr.timestampUs, sr.stats)
		sr.logTimestampUs = sr.timestampUs
		sr.oldStats = sr.stats
	}
	sr.changed = false // this is kept to avoid sr.calcStats() call every time.
	sr.timestampUs = ts
}

func (sr *statslogReporter) Stop() {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	// add a final entry with final status
	sr.writeLogEntry(sr.timestampUs, sr.calcStats())
	sr.close()
	logger.Debugf("statslogReporter stopped and CSV log file closed.")
}

func (sr *statslogReporter) createLogFile() {
	logger.AssertNil(sr.logFile)

	var err error
	_ = os.Remove(sr.logFileName)

	sr.logFile, err = os.OpenFile(sr.logFileName, os.O_CREATE|os.O_WRONLY, 0664)
	if err != nil {
		logger.Errorf("creating new stats log file %s failed: %+v", sr.logFileName, err)
		sr.isFileEnabled = false
		return
	}
	sr.writeLogFileHeader()
	logger.Debugf("Stats log file '%s' created.", sr.logFileName)
}

func (sr *statslogReporter) writeLogFileHeader() {
	// RFC 4180 CSV file: no leading or trailing spaces in header field names
	header := "timeSec,nVehicles,nClimb,nSweep,nSweepAoi,nDescend,nDepleted"
	_ = sr.writeToLogFile(header)
}

func (sr *statslogReporter) calcStats() fleetStats {
	s := fleetStats{
		numVehicles: len(sr.phases),
		numDepleted: len(sr.depleted),
	}
	for id, phase := range sr.phases {
		if _, ok := sr.depleted[id]; ok {
			continue
		}
		switch phase {
		case PhaseClimb:
			s.numClimb++
		case PhaseSweepOutside:
			s.numSweep++
		case PhaseSweepInside:
			s.numSweepAoi++
		case PhaseDescend:
			s.numDescend++
		}
	}
	return s
}

func (sr *statslogReporter) checkLogEntryChange() bool {
	sr.stats = sr.calcStats()
	return sr.stats != sr.oldStats
}

func (sr *statslogReporter) writeLogEntry(ts uint64, stats fleetStats) {
	timeSec := float64(ts) / 1e6
	entry := fmt.Sprintf("%12.6f, %3d,%3d,%3d,%3d,%3d,%3d", timeSec, stats.numVehicles, stats.numClimb,
		stats.numSweep, stats.numSweepAoi, stats.numDescend, stats.numDepleted)
	_ = sr.writeToLogFile(entry)
	logger.Tracef("statslog entry added: %s", entry)
}

func (sr *statslogReporter) writeToLogFile(line string) error {
	if !sr.isFileEnabled {
		return nil
	}
	_, err := sr.logFile.WriteString(line + "\n")
	if err != nil {
		sr.close()
		sr.isFileEnabled = false
		logger.Errorf("couldn't write to stats log file (%s), closing it", sr.logFileName)
	}
	return err
}

func (sr *statslogReporter) close() {
	if sr.logFile != nil {
		_ = sr.logFile.Close()
		sr.logFile = nil
		sr.isFileEnabled = false
	}
}
