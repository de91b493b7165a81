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
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/uavns/uavns/logger"
)

// ProfilesKey is the top-level key holding the array of vehicle profiles.
const ProfilesKey = "Drones"

var (
	ErrIndexOutOfRange = errors.New("vehicle profile index out of range")
	ErrNoProfiles      = errors.New("no vehicle profiles array")
)

// Diagnostics lists the non-fatal problems found while loading a profile.
type Diagnostics []string

func (d *Diagnostics) add(format string, args ...interface{}) {
	*d = append(*d, fmt.Sprintf(format, args...))
}

type fieldBinder func(p *VehicleProfile, n *yaml.Node, diag *Diagnostics) error

type profileField struct {
	key      string
	bind     fieldBinder
	optional bool
}

// profileFields lists the accepted keys, in the order they are reported when missing.
var profileFields = []profileField{
	{"weight", floatField(func(p *VehicleProfile) *float64 { return &p.Mass }), false},
	{"numbPropellers", floatField(func(p *VehicleProfile) *float64 { return &p.PropellerCount }), false},
	{"propellersRadius", floatField(func(p *VehicleProfile) *float64 { return &p.PropellerRadius }), false},
	{"dragCoefficient", floatField(func(p *VehicleProfile) *float64 { return &p.DragCoefficient }), false},
	{"speed", floatField(func(p *VehicleProfile) *float64 { return &p.CruiseSpeed }), false},
	{"avgVelocity", floatField(func(p *VehicleProfile) *float64 { return &p.CruiseSpeed }), true},
	{"maxHeight", floatField(func(p *VehicleProfile) *float64 { return &p.MaxHeight }), false},
	{"turnStrength", floatField(func(p *VehicleProfile) *float64 { return &p.TurnStrength }), true},
	{"bounds", boxField(func(p *VehicleProfile) *[6]*float64 {
		return &[6]*float64{&p.Bounds.XMin, &p.Bounds.XMax, &p.Bounds.YMin, &p.Bounds.YMax, &p.Bounds.ZMin, &p.Bounds.ZMax}
	}), false},
	{"aoi", boxField(func(p *VehicleProfile) *[6]*float64 {
		b := &p.AreaOfInterest
		return &[6]*float64{&b.XMin, &b.XMax, &b.YMin, &b.YMax, &b.ZMin, &b.ZMax}
	}), false},
	{"initialCoordinates", vectorField(func(p *VehicleProfile) *[3]*float64 {
		return &[3]*float64{&p.Start.X, &p.Start.Y, &p.Start.Z}
	}), false},
	{"baseStation", vectorField(func(p *VehicleProfile) *[3]*float64 {
		return &[3]*float64{&p.BaseStation.X, &p.BaseStation.Y, &p.BaseStation.Z}
	}), true},
	{"switchCapacitance", floatField(func(p *VehicleProfile) *float64 { return &p.SwitchCapacitance }), false},
	{"voltage", floatField(func(p *VehicleProfile) *float64 { return &p.Voltage }), false},
	{"cpuFreq", floatField(func(p *VehicleProfile) *float64 { return &p.CpuFrequency }), true},
	{"cpuCyclePerOperation", floatField(func(p *VehicleProfile) *float64 { return &p.CyclesPerOperation }), false},
	{"operationPerData", floatField(func(p *VehicleProfile) *float64 { return &p.OperationsPerDatum }), false},
	{"numbTrainDataSet", floatField(func(p *VehicleProfile) *float64 { return &p.TrainingSetSize }), false},
	{"numLocalIter", floatField(func(p *VehicleProfile) *float64 { return &p.LocalIterations }), false},
	{"bandwidth", floatField(func(p *VehicleProfile) *float64 { return &p.Bandwidth }), false},
	{"wirelessTransmissionPower", floatField(func(p *VehicleProfile) *float64 { return &p.TxPower }), false},
	{"carrierFrequency", floatField(func(p *VehicleProfile) *float64 { return &p.CarrierFrequency }), false},
	{"localModelSize", floatField(func(p *VehicleProfile) *float64 { return &p.PayloadSize }), false},
	{"hardware", hardwareField, false},
	{"energy", floatField(func(p *VehicleProfile) *float64 { return &p.EnergyRating }), false},
	{"capacity", floatField(func(p *VehicleProfile) *float64 { return &p.Capacity }), true},
}

func floatField(sel func(p *VehicleProfile) *float64) fieldBinder {
	return func(p *VehicleProfile, n *yaml.Node, _ *Diagnostics) error {
		var v float64
		if err := n.Decode(&v); err != nil {
			return err
		}
		*sel(p) = v
		return nil
	}
}

var boxKeys = [6]string{"xMin", "xMax", "yMin", "yMax", "zMin", "zMax"}
var vectorKeys = [3]string{"x", "y", "z"}

func boxField(sel func(p *VehicleProfile) *[6]*float64) fieldBinder {
	return func(p *VehicleProfile, n *yaml.Node, diag *Diagnostics) error {
		return bindComponents(n, boxKeys[:], sel(p)[:], diag)
	}
}

func vectorField(sel func(p *VehicleProfile) *[3]*float64) fieldBinder {
	return func(p *VehicleProfile, n *yaml.Node, diag *Diagnostics) error {
		return bindComponents(n, vectorKeys[:], sel(p)[:], diag)
	}
}

// bindComponents decodes a mapping of named numbers. Absent or malformed components keep their value.
func bindComponents(n *yaml.Node, keys []string, targets []*float64, diag *Diagnostics) error {
	if n.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: expected a mapping", n.Line)
	}
	for i, key := range keys {
		val := mappingValue(n, key)
		if val == nil {
			diag.add("component %q missing, keeping %g", key, *targets[i])
			continue
		}
		var v float64
		if err := val.Decode(&v); err != nil {
			diag.add("component %q ignored: %v", key, err)
			continue
		}
		*targets[i] = v
	}
	return nil
}

func hardwareField(p *VehicleProfile, n *yaml.Node, diag *Diagnostics) error {
	if n.Kind != yaml.SequenceNode {
		return errors.Errorf("line %d: expected an array", n.Line)
	}
	hw := make([]HardwareEntry, 0, len(n.Content))
	for i, item := range n.Content {
		var values []float64
		if err := item.Decode(&values); err != nil {
			diag.add("hardware entry %d ignored: %v", i, err)
			continue
		}
		if len(values) < 4 {
			diag.add("hardware entry %d ignored: expected 4 values, got %d", i, len(values))
			continue
		}
		hw = append(hw, HardwareEntry{
			Id:          int(values[0]),
			IdlePower:   values[1],
			ActivePower: values[2],
			Voltage:     values[3],
		})
	}
	p.Hardware = hw
	return nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// profileRows returns the sequence node of vehicle profiles in the document.
func profileRows(data []byte) (*yaml.Node, error) {
	// tabs are valid JSON whitespace but not valid YAML indentation.
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		data = bytes.ReplaceAll(data, []byte{'\t'}, []byte{' '})
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse vehicle profiles")
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, ErrNoProfiles
	}
	rows := mappingValue(doc.Content[0], ProfilesKey)
	if rows == nil || rows.Kind != yaml.SequenceNode {
		return nil, ErrNoProfiles
	}
	return rows, nil
}

// CountProfiles returns the number of profile rows in the data.
func CountProfiles(data []byte) (int, error) {
	rows, err := profileRows(data)
	if err != nil {
		return 0, err
	}
	return len(rows.Content), nil
}

// ParseProfile populates a profile from row index of the profiles array in data (JSON or YAML).
// Absent or malformed fields keep their defaults and are reported in the returned Diagnostics.
// An out of range index returns ErrIndexOutOfRange and no profile.
func ParseProfile(data []byte, index int) (*VehicleProfile, Diagnostics, error) {
	rows, err := profileRows(data)
	if err != nil {
		return nil, nil, err
	}
	if index < 0 || index >= len(rows.Content) {
		return nil, nil, errors.Wrapf(ErrIndexOutOfRange, "index %d, %d profiles available", index, len(rows.Content))
	}

	p := DefaultProfile()
	var diag Diagnostics
	row := rows.Content[index]
	if row.Kind != yaml.MappingNode {
		diag.add("profile %d is not a mapping, using defaults", index)
		return p, diag, nil
	}

	var missing []string
	for _, f := range profileFields {
		val := mappingValue(row, f.key)
		if val == nil {
			if !f.optional {
				missing = append(missing, f.key)
			}
			continue
		}
		if err := f.bind(p, val, &diag); err != nil {
			diag.add("field %q ignored: %v", f.key, err)
		}
	}
	if len(missing) > 0 {
		diag.add("fields missing, defaults kept: %s", strings.Join(missing, ", "))
	}

	if p.Capacity == 0 {
		p.Capacity = CapacityFromRating(p.EnergyRating)
	}
	return p, diag, nil
}

// LoadProfile reads the profiles file at path and returns the profile at row index.
// Diagnostics are logged as warnings.
func LoadProfile(path string, index int) (*VehicleProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read vehicle profiles %s", path)
	}
	p, diag, err := ParseProfile(data, index)
	if err != nil {
		return nil, errors.Wrapf(err, "vehicle profile %s", path)
	}
	for _, msg := range diag {
		logger.Warnf("vehicle profile %s[%d]: %s", path, index, msg)
	}
	return p, nil
}
