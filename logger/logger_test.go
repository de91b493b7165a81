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
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevelString(t *testing.T) {
	for _, lv := range []Level{MicroLevel, TraceLevel, DebugLevel, InfoLevel, NoteLevel, WarnLevel, ErrorLevel, OffLevel} {
		parsed, err := ParseLevelString(GetLevelString(lv))
		assert.NoError(t, err)
		assert.Equal(t, lv, parsed)
	}

	lv, err := ParseLevelString("default")
	assert.NoError(t, err)
	assert.Equal(t, DefaultLevel, lv)

	_, err = ParseLevelString("loud")
	assert.Error(t, err)
}

func TestSetLevel(t *testing.T) {
	old := GetLevel()
	defer SetLevel(old)

	SetLevel(WarnLevel)
	assert.Equal(t, WarnLevel, GetLevel())
	Debugf("not shown %d", 1)
}

func TestAssertHelpersPanic(t *testing.T) {
	assert.NotPanics(t, func() { AssertTrue(true) })
	assert.Panics(t, func() { AssertTrue(false) })
	assert.Panics(t, func() { AssertEqual(1, 2) })
	assert.Panics(t, func() { PanicIfError(os.ErrNotExist) })
}

func TestVehicleLoggerFile(t *testing.T) {
	dir := t.TempDir()
	vl := GetVehicleLogger(dir, "run1", 3)
	assert.True(t, vl.IsFileEnabled())
	assert.Same(t, vl, GetVehicleLogger(dir, "run1", 3))

	vl.SetTimestamp(1000000)
	vl.Infof("phase %s", "sweep")
	vl.Debugf("below file level")
	vl.Close()
	assert.False(t, vl.IsFileEnabled())

	data, err := os.ReadFile(VehicleLogFileName(dir, "run1", 3))
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "#\n# Flight log for vehicle 3"))
	assert.Contains(t, content, "      1000000 info  phase sweep")
	assert.NotContains(t, content, "below file level")
}

func TestVehicleLoggerNoFile(t *testing.T) {
	vl := GetVehicleLogger("", "run1", 4)
	defer vl.Close()
	assert.False(t, vl.IsFileEnabled())
	vl.SetDisplayLevel(DebugLevel)
	assert.Equal(t, DebugLevel, vl.DisplayLevel())
	vl.Debugf("shown on console")
}
