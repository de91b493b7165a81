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

package cli

import (
	"strconv"

	"github.com/alecthomas/participle"
)

// noinspection GoStructTag
type Command struct {
	Add      *AddCmd      `  @@` //nolint
	Del      *DelCmd      `| @@` //nolint
	Energy   *EnergyCmd   `| @@` //nolint
	Exit     *ExitCmd     `| @@` //nolint
	Go       *GoCmd       `| @@` //nolint
	Help     *HelpCmd     `| @@` //nolint
	Kpi      *KpiCmd      `| @@` //nolint
	LogLevel *LogLevelCmd `| @@` //nolint
	Speed    *SpeedCmd    `| @@` //nolint
	Time     *TimeCmd     `| @@` //nolint
	Title    *TitleCmd    `| @@` //nolint
	Unwatch  *UnwatchCmd  `| @@` //nolint
	Vehicle  *VehicleCmd  `| @@` //nolint
	Vehicles *VehiclesCmd `| @@` //nolint
	Watch    *WatchCmd    `| @@` //nolint
}

// noinspection GoStructTag
type VehicleSelector struct {
	Id int `@Int` //nolint
}

func (vs *VehicleSelector) String() string {
	return strconv.Itoa(vs.Id)
}

// noinspection GoStructTag
type GoCmd struct {
	Cmd   struct{}  `"go"`                                     //nolint
	Time  string    `( @((Int|Float)["h"|"us"|"m"|"ms"|"s"]) ` //nolint
	Ever  *EverFlag `| @@ )`                                   //nolint
	Speed *float64  `[ "speed" (@Int|@Float) ]`                //nolint
}

// noinspection GoStructTag
type EverFlag struct {
	Dummy struct{} `"ever"` //nolint
}

// noinspection GoStructTag
type SpeedCmd struct {
	Cmd   struct{}      `"speed"`               //nolint
	Max   *MaxSpeedFlag `( @@`                  //nolint
	Speed *float64      `| [ (@Int|@Float) ] )` //nolint
}

// noinspection GoStructTag
type MaxSpeedFlag struct {
	Dummy struct{} `( "max" | "inf")` //nolint
}

// noinspection GoStructTag
type TimeCmd struct {
	Cmd struct{} `"time"` //nolint
}

// noinspection GoStructTag
type TitleCmd struct {
	Cmd   struct{} `"title"`     //nolint
	Title *string  `[ @String ]` //nolint
}

// noinspection GoStructTag
type AddCmd struct {
	Cmd     struct{}      `"add"`  //nolint
	Profile int           `@Int`   //nolint
	Id      *AddVehicleId `[ @@ ]` //nolint
	Count   *CountFlag    `[ @@ ]` //nolint
}

// noinspection GoStructTag
type AddVehicleId struct {
	Val int `"id" @Int` //nolint
}

// noinspection GoStructTag
type CountFlag struct {
	Val int `("count" | "c") @Int` //nolint
}

// noinspection GoStructTag
type DelCmd struct {
	Cmd      struct{}          `"del"`   //nolint
	Vehicles []VehicleSelector `( @@ )+` //nolint
}

// noinspection GoStructTag
type VehicleCmd struct {
	Cmd     struct{}        `"vehicle"` //nolint
	Vehicle VehicleSelector `@@`        //nolint
}

// noinspection GoStructTag
type VehiclesCmd struct {
	Cmd struct{} `"vehicles"` //nolint
}

// noinspection GoStructTag
type ExitCmd struct {
	Cmd struct{} `"exit"` //nolint
}

// noinspection GoStructTag
type EnergyCmd struct {
	Cmd  struct{}  `"energy"` //nolint
	Save *SaveFlag `( @@ )?`  //nolint
	Name string    `@String?` //nolint
}

// noinspection GoStructTag
type KpiCmd struct {
	Cmd  struct{}  `"kpi"`    //nolint
	Save *SaveFlag `( @@ )?`  //nolint
	File string    `@String?` //nolint
}

// noinspection GoStructTag
type SaveFlag struct {
	Dummy struct{} `"save"` //nolint
}

// noinspection GoStructTag
type LogLevelCmd struct {
	Cmd   struct{} `"log"`                                                                                     //nolint
	Level string   `[@( "micro"|"trace"|"debug"|"info"|"note"|"warn"|"error"|"off"|"T"|"D"|"I"|"N"|"W"|"E" )]` //nolint
}

// noinspection GoStructTag
type WatchCmd struct {
	Cmd      struct{}          `"watch"`                                                                                  //nolint
	All      string            `[ @"all" ]`                                                                               //nolint
	Vehicles []VehicleSelector `[ ( @@ )+ ]`                                                                              //nolint
	Level    string            `[@( "trace"|"debug"|"info"|"note"|"warn"|"error"|"off"|"none"|"T"|"D"|"I"|"N"|"W"|"E" )]` //nolint
}

// noinspection GoStructTag
type UnwatchCmd struct {
	Cmd      struct{}          `"unwatch"`           //nolint
	Vehicles []VehicleSelector `( "all" | ( @@ )+ )` //nolint
}

// noinspection GoStructTag
type HelpCmd struct {
	Cmd       struct{} `"help"`       //nolint
	HelpTopic string   `[ (@Ident) ]` //nolint
}

var (
	commandParser = participle.MustBuild(&Command{})
)

func parseBytes(b []byte, cmd *Command) error {
	return commandParser.ParseBytes(b, cmd)
}
