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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/uavns/uavns/logger"
	. "github.com/uavns/uavns/types"
)

// RunLog is the append-only telemetry log of a run. Lines are kept in memory and written once, at Stop.
type RunLog struct {
	mutex    sync.Mutex
	fileName string
	lines    []string
	flushed  bool
}

// NewRunLog creates a RunLog which will be flushed to the telemetry file of runId in outputDir.
func NewRunLog(outputDir string, runId string) *RunLog {
	return &RunLog{
		fileName: RunLogFileName(outputDir, runId),
		lines:    make([]string, 0, 4096),
	}
}

func RunLogFileName(outputDir string, runId string) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s_telemetry.txt", runId))
}

func (rl *RunLog) FileName() string {
	return rl.fileName
}

func (rl *RunLog) Init() {
}

func (rl *RunLog) AddVehicle(VehicleInfo) {
}

func (rl *RunLog) Report(rec Record) {
	line := rec.Line()
	rl.mutex.Lock()
	rl.lines = append(rl.lines, line)
	rl.mutex.Unlock()
}

func (rl *RunLog) CloseVehicle(VehicleId, uint64) {
}

func (rl *RunLog) AdvanceTime(uint64) {
}

// Len returns the number of lines logged.
func (rl *RunLog) Len() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.lines)
}

// Lines returns a copy of the lines logged.
func (rl *RunLog) Lines() []string {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return append([]string(nil), rl.lines...)
}

func (rl *RunLog) Stop() {
	if err := rl.Flush(); err != nil {
		logger.Errorf("run log: %v", err)
	}
}

// Flush writes the log file. Only the first call writes.
func (rl *RunLog) Flush() error {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	if rl.flushed {
		return nil
	}
	rl.flushed = true

	f, err := os.Create(rl.fileName)
	if err != nil {
		return errors.Wrap(err, "create telemetry file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range rl.lines {
		if _, err = w.WriteString(line + "\n"); err != nil {
			return errors.Wrapf(err, "write %s", rl.fileName)
		}
	}
	if err = w.Flush(); err != nil {
		return errors.Wrapf(err, "write %s", rl.fileName)
	}
	logger.Infof("telemetry of %d ticks saved to %s", len(rl.lines), rl.fileName)
	return nil
}
