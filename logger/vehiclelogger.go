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

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// VehicleLogger is a vehicle-specific flight log. Display level and an optional log file are set per vehicle.
type VehicleLogger struct {
	Id           int
	fileLevel    Level
	displayLevel Level

	mutex       sync.Mutex
	logFile     *os.File
	logFileName string
	timestampUs uint64
}

var (
	vehicleLogs     = make(map[int]*VehicleLogger, 10)
	vehicleLogsLock sync.Mutex
)

// GetVehicleLogger gets the VehicleLogger for vehicle id, creating it when needed. If outputDir is not empty,
// the flight log is also written to a file named after the run id and vehicle id.
func GetVehicleLogger(outputDir string, runId string, id int) *VehicleLogger {
	vehicleLogsLock.Lock()
	defer vehicleLogsLock.Unlock()

	vl, ok := vehicleLogs[id]
	if !ok {
		vl = &VehicleLogger{
			Id:           id,
			fileLevel:    InfoLevel,
			displayLevel: ErrorLevel,
		}
		vehicleLogs[id] = vl
	}
	if outputDir != "" && vl.logFile == nil {
		vl.logFileName = VehicleLogFileName(outputDir, runId, id)
		vl.openLogFile()
	}
	return vl
}

// VehicleLogFileName returns the flight log path of vehicle id within run runId.
func VehicleLogFileName(outputDir string, runId string, id int) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s_%d.log", runId, id))
}

func (vl *VehicleLogger) openLogFile() {
	var err error
	vl.logFile, err = os.OpenFile(vl.logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0664)
	if err != nil {
		Errorf("creating flight log file %s failed: %+v", vl.logFileName, err)
		vl.logFile = nil
		return
	}
	header := fmt.Sprintf("#\n# Flight log for vehicle %d created %s\n", vl.Id, time.Now().Format(time.RFC3339)) +
		"#   SimTimeUs Lev   Message"
	vl.writeToLogFile(header)
}

func (vl *VehicleLogger) writeToLogFile(line string) {
	if _, err := vl.logFile.WriteString(line + "\n"); err != nil {
		_ = vl.logFile.Close()
		vl.logFile = nil
		Errorf("couldn't write to flight log file (%s), closing it", vl.logFileName)
	}
}

// SetTimestamp sets the simulation time (us) stamped on subsequent entries.
func (vl *VehicleLogger) SetTimestamp(ts uint64) {
	vl.mutex.Lock()
	vl.timestampUs = ts
	vl.mutex.Unlock()
}

func (vl *VehicleLogger) SetFileLevel(level Level) {
	vl.mutex.Lock()
	vl.fileLevel = level
	vl.mutex.Unlock()
}

func (vl *VehicleLogger) SetDisplayLevel(level Level) {
	vl.mutex.Lock()
	vl.displayLevel = level
	vl.mutex.Unlock()
}

func (vl *VehicleLogger) DisplayLevel() Level {
	vl.mutex.Lock()
	defer vl.mutex.Unlock()
	return vl.displayLevel
}

// IsFileEnabled returns true if the flight log is currently written to a file.
func (vl *VehicleLogger) IsFileEnabled() bool {
	vl.mutex.Lock()
	defer vl.mutex.Unlock()
	return vl.logFile != nil
}

func (vl *VehicleLogger) Logf(level Level, format string, args []interface{}) {
	vl.mutex.Lock()
	defer vl.mutex.Unlock()

	isSave := vl.logFile != nil && (level <= vl.fileLevel || level <= vl.displayLevel)
	isDisplay := level <= vl.displayLevel
	if !isSave && !isDisplay {
		return
	}
	line := fmt.Sprintf("%13d %-5s %s", vl.timestampUs, GetLevelString(level), getMessage(format, args))
	if isSave {
		vl.writeToLogFile(line)
	}
	if isDisplay {
		logAlways(level, fmt.Sprintf("vehicle %d: %s", vl.Id, line))
	}
}

func (vl *VehicleLogger) Tracef(format string, args ...interface{}) {
	vl.Logf(TraceLevel, format, args)
}

func (vl *VehicleLogger) Debugf(format string, args ...interface{}) {
	vl.Logf(DebugLevel, format, args)
}

func (vl *VehicleLogger) Infof(format string, args ...interface{}) {
	vl.Logf(InfoLevel, format, args)
}

func (vl *VehicleLogger) Notef(format string, args ...interface{}) {
	vl.Logf(NoteLevel, format, args)
}

func (vl *VehicleLogger) Warnf(format string, args ...interface{}) {
	vl.Logf(WarnLevel, format, args)
}

func (vl *VehicleLogger) Errorf(format string, args ...interface{}) {
	vl.Logf(ErrorLevel, format, args)
}

// Close closes the flight log file and forgets the logger.
func (vl *VehicleLogger) Close() {
	vehicleLogsLock.Lock()
	if vehicleLogs[vl.Id] == vl {
		delete(vehicleLogs, vl.Id)
	}
	vehicleLogsLock.Unlock()

	vl.mutex.Lock()
	defer vl.mutex.Unlock()
	if vl.logFile != nil {
		_ = vl.logFile.Close()
		vl.logFile = nil
	}
}
