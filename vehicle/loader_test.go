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

package vehicle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/uavns/uavns/types"
)

func TestLoadProfileComplete(t *testing.T) {
	p, err := LoadProfile("testdata/drones.json", 0)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, p.Mass)
	assert.Equal(t, 4.0, p.PropellerCount)
	assert.Equal(t, 0.2, p.PropellerRadius)
	assert.Equal(t, 0.02, p.DragCoefficient)
	assert.Equal(t, 5.0, p.CruiseSpeed)
	assert.Equal(t, 50.0, p.MaxHeight)
	assert.Equal(t, DefaultTurnStrength, p.TurnStrength)
	assert.Equal(t, NewBox(0, 100, 0, 100, 0, 50), p.Bounds)
	assert.Equal(t, NewBox(20, 80, 20, 80, 10, 50), p.AreaOfInterest)
	assert.Equal(t, Vector{}, p.Start)
	assert.Equal(t, 8e-11, p.SwitchCapacitance)
	assert.Equal(t, 12.6, p.Voltage)
	assert.Equal(t, 1.5e9, p.CpuFrequency)
	assert.Equal(t, 2.0, p.CyclesPerOperation)
	assert.Equal(t, 1e6, p.OperationsPerDatum)
	assert.Equal(t, 60.0, p.TrainingSetSize)
	assert.Equal(t, 10.0, p.LocalIterations)
	assert.Equal(t, 2e7, p.Bandwidth)
	assert.Equal(t, 0.1, p.TxPower)
	assert.Equal(t, 2.4e9, p.CarrierFrequency)
	assert.Equal(t, 8e6, p.PayloadSize)
	assert.Equal(t, []HardwareEntry{{1, 2.5, 4.0, 5.0}, {2, 1.0, 3.3, 3.3}}, p.Hardware)
	assert.Equal(t, 55.5, p.EnergyRating)
	assert.Equal(t, 55.5*3600, p.Capacity)
}

func TestParseProfilePartialKeepsDefaults(t *testing.T) {
	data, err := os.ReadFile("testdata/drones.json")
	require.NoError(t, err)

	p, diag, err := ParseProfile(data, 1)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, 1500.0, p.Mass)
	assert.Equal(t, 0.0, p.PropellerCount) // malformed, default kept
	assert.Equal(t, 4.0, p.CruiseSpeed)
	assert.Equal(t, 20000.0, p.Capacity)
	assert.Equal(t, DefaultMaxHeight, p.MaxHeight)
	assert.Equal(t, NewBox(0, 50, 0, DefaultAreaSize, 0, DefaultMaxHeight), p.Bounds)
	assert.Equal(t, DefaultProfile().AreaOfInterest, p.AreaOfInterest)
	assert.Equal(t, []HardwareEntry{{3, 0.5, 1.5, 5.0}}, p.Hardware)

	assert.NotEmpty(t, diag)
	assert.Contains(t, diag, "fields missing, defaults kept: propellersRadius, dragCoefficient, maxHeight, aoi, "+
		"initialCoordinates, switchCapacitance, voltage, cpuCyclePerOperation, operationPerData, numbTrainDataSet, "+
		"numLocalIter, bandwidth, wirelessTransmissionPower, carrierFrequency, localModelSize, energy")
}

func TestParseProfileIndexOutOfRange(t *testing.T) {
	data, err := os.ReadFile("testdata/drones.json")
	require.NoError(t, err)

	p, _, err := ParseProfile(data, 2)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	p, _, err = ParseProfile(data, -1)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	_, err = LoadProfile("testdata/drones.json", 5)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestParseProfileYaml(t *testing.T) {
	p, err := LoadProfile("testdata/drones.yaml", 0)
	require.NoError(t, err)
	assert.Equal(t, 800.0, p.Mass)
	assert.Equal(t, 2.0, p.CruiseSpeed)
	assert.Equal(t, 10.0, p.TurnStrength)
	assert.Equal(t, 36000.0, p.Capacity)
}

func TestParseProfileTabIndentedJson(t *testing.T) {
	data := []byte("{\n\t\"Drones\": [\n\t\t{\"weight\": 900,\n\t\t\"speed\": 3}\n\t]\n}\n")
	p, _, err := ParseProfile(data, 0)
	require.NoError(t, err)
	assert.Equal(t, 900.0, p.Mass)
	assert.Equal(t, 3.0, p.CruiseSpeed)
}

func TestParseProfileNoArray(t *testing.T) {
	_, _, err := ParseProfile([]byte(`{"Vehicles": []}`), 0)
	assert.True(t, errors.Is(err, ErrNoProfiles))

	_, _, err = ParseProfile([]byte(`[1, 2]`), 0)
	assert.True(t, errors.Is(err, ErrNoProfiles))

	_, err = LoadProfile(filepath.Join(t.TempDir(), "absent.json"), 0)
	assert.Error(t, err)
}

func TestCountProfiles(t *testing.T) {
	data, err := os.ReadFile("testdata/drones.json")
	require.NoError(t, err)
	n, err := CountProfiles(data)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestProfileClone(t *testing.T) {
	p, err := LoadProfile("testdata/drones.json", 0)
	require.NoError(t, err)
	c := p.Clone()
	c.Hardware[0].IdlePower = 99
	assert.Equal(t, 2.5, p.Hardware[0].IdlePower)
	assert.Equal(t, 0.5, p.Hardware[0].IdleCurrent())
	assert.Equal(t, 0.8, p.Hardware[0].ActiveCurrent())
}
