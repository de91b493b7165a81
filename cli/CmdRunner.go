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
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/uavns/uavns/dispatcher"
	"github.com/uavns/uavns/logger"
	"github.com/uavns/uavns/progctx"
	"github.com/uavns/uavns/simulation"
	. "github.com/uavns/uavns/types"
)

const (
	Prompt = "> "
)

type CommandContext struct {
	context.Context
	*Command
	rt     *CmdRunner
	err    error
	output io.Writer
}

func (cc *CommandContext) outputStr(msg string) {
	_, _ = fmt.Fprint(cc.output, msg)
}

func (cc *CommandContext) outputf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cc.output, format, args...)
}

func (cc *CommandContext) errorf(format string, args ...interface{}) {
	cc.error(errors.Errorf(format, args...))
}

func (cc *CommandContext) error(err error) {
	if err != nil {
		if cc.err != nil { // if previous error, print it now and keep the last.
			cc.outputf("Error: %s\n", cc.err)
		}
		cc.err = err
	}
}

// Err returns the last error that occurred during command execution.
func (cc *CommandContext) Err() error {
	return cc.err
}

func (cc *CommandContext) outputItemsAsYaml(items interface{}) {
	var itemsYaml yaml.Node

	err := itemsYaml.Encode(items)
	logger.PanicIfError(err)

	for _, content := range itemsYaml.Content {
		content.Style = yaml.FlowStyle
	}

	data, err := yaml.Marshal(&itemsYaml)
	logger.PanicIfError(err)

	_, err = cc.output.Write(data)
	logger.PanicIfError(err)
}

type CmdRunner struct {
	sim              *simulation.Simulation
	ctx              *progctx.ProgCtx
	contextVehicleId VehicleId
	help             Help
}

func NewCmdRunner(ctx *progctx.ProgCtx, sim *simulation.Simulation) *CmdRunner {
	cr := &CmdRunner{
		ctx:              ctx,
		sim:              sim,
		contextVehicleId: InvalidVehicleId,
		help:             newHelp(),
	}
	sim.SetCmdRunner(cr)
	return cr
}

// RunCommand parses and runs one console command, writing its output and a final "Done" or "Error" line.
func (rt *CmdRunner) RunCommand(cmdline string, output io.Writer) error {
	if rt.ctx.Err() == nil {
		cmd := Command{}

		if err := parseBytes([]byte(cmdline), &cmd); err != nil {
			if _, err := fmt.Fprintf(output, "Error: %v\n", err); err != nil {
				return err
			}
		} else {
			rt.execute(&cmd, output)
		}
	}
	return rt.ctx.Err()
}

// HandleCommand runs a command typed at the console. Within a vehicle context, 'watch' and 'unwatch'
// without vehicle ids apply to the context vehicle.
func (rt *CmdRunner) HandleCommand(cmdline string, output io.Writer) error {
	if rt.ctx.Err() != nil {
		return rt.ctx.Err()
	}
	if rt.contextVehicleId != InvalidVehicleId && !isContextlessCommand(cmdline) {
		cmd := Command{}
		if err := parseBytes([]byte(cmdline), &cmd); err != nil {
			_, _ = fmt.Fprintf(output, "Error: %v\n", err)
			return nil
		}
		selector := []VehicleSelector{{Id: rt.contextVehicleId}}
		if cmd.Watch != nil && len(cmd.Watch.Vehicles) == 0 && cmd.Watch.All == "" && cmd.Watch.Level != "" {
			cmd.Watch.Vehicles = selector
		}
		rt.execute(&cmd, output)
		return rt.ctx.Err()
	}
	return rt.RunCommand(cmdline, output)
}

func (rt *CmdRunner) GetPrompt() string {
	if rt.contextVehicleId == InvalidVehicleId {
		return Prompt
	}
	return fmt.Sprintf("vehicle %d%s", rt.contextVehicleId, Prompt)
}

func (rt *CmdRunner) GetContextVehicleId() VehicleId {
	return rt.contextVehicleId
}

func (rt *CmdRunner) execute(cmd *Command, output io.Writer) {
	cc := &CommandContext{
		Command: cmd,
		rt:      rt,
		output:  output,
	}

	defer func() {
		if cc.Err() != nil {
			cc.outputf("Error: %v\n", cc.Err())
		} else {
			cc.outputf("Done\n")
		}
	}()

	defer func() {
		rerr := recover()

		if rerr != nil {
			if err, ok := rerr.(error); ok {
				cc.err = errors.Wrapf(err, "panic: %v", err)
			} else {
				cc.err = errors.Errorf("panic: %v", rerr)
			}
		}
	}()

	if cmd.Add != nil {
		rt.executeAddVehicle(cc, cmd.Add)
	} else if cmd.Del != nil {
		rt.executeDelVehicle(cc, cmd.Del)
	} else if cmd.Energy != nil {
		rt.executeEnergy(cc, cmd.Energy)
	} else if cmd.Exit != nil {
		rt.executeExit(cc, cmd.Exit)
	} else if cmd.Go != nil {
		rt.executeGo(cc, cmd.Go)
	} else if cmd.Help != nil {
		rt.executeHelp(cc, cmd.Help)
	} else if cmd.Kpi != nil {
		rt.executeKpi(cc, cmd.Kpi)
	} else if cmd.LogLevel != nil {
		rt.executeLogLevel(cc, cmd.LogLevel)
	} else if cmd.Speed != nil {
		rt.executeSpeed(cc, cmd.Speed)
	} else if cmd.Time != nil {
		rt.executeTime(cc, cmd.Time)
	} else if cmd.Title != nil {
		rt.executeTitle(cc, cmd.Title)
	} else if cmd.Unwatch != nil {
		rt.executeUnwatch(cc, cmd.Unwatch)
	} else if cmd.Vehicle != nil {
		rt.executeVehicle(cc, cmd.Vehicle)
	} else if cmd.Vehicles != nil {
		rt.executeVehicles(cc, cmd.Vehicles)
	} else if cmd.Watch != nil {
		rt.executeWatch(cc, cmd.Watch)
	} else {
		logger.Panicf("unimplemented command: %#v", cmd)
	}
}

func (rt *CmdRunner) executeGo(cc *CommandContext, cmd *GoCmd) {
	timeDurToGo := EverDuration
	if cmd.Ever == nil {
		var err error
		timeDurToGo, err = time.ParseDuration(cmd.Time)
		if err != nil {
			timeDurToGo, err = time.ParseDuration(cmd.Time + "s") // try parsing as seconds
			if err != nil {
				cc.errorf("could not parse time duration: %s", cmd.Time)
				return
			}
		}
	}

	var oldSpeed, speed float64
	var done <-chan struct{}
	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		oldSpeed = sim.GetSpeed()
		speed = oldSpeed
		if cmd.Speed != nil {
			speed = *cmd.Speed
		}
		if speed == 0 { // when paused, 'go' is used to jump time.
			speed = dispatcher.MaxSimulateSpeed
		}
		sim.SetSpeed(speed)
		done = sim.Go(timeDurToGo)
	})
	if cc.Err() != nil {
		return
	}

	select {
	case <-done:
	case <-rt.ctx.Done():
		cc.error(simulation.CommandInterruptedError)
		return
	}

	// a speed given for a finite duration only applies to that duration.
	if cmd.Ever == nil && speed != oldSpeed {
		rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
			sim.SetSpeed(oldSpeed)
		})
	}
}

func (rt *CmdRunner) executeSpeed(cc *CommandContext, cmd *SpeedCmd) {
	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		if cmd.Speed == nil && cmd.Max == nil {
			cc.outputf("%v\n", sim.GetSpeed())
		} else if cmd.Max != nil {
			sim.SetSpeed(dispatcher.MaxSimulateSpeed)
		} else {
			sim.SetSpeed(*cmd.Speed)
		}
	})
}

// postAsyncWait runs f on the dispatcher goroutine and waits for it to finish.
func (rt *CmdRunner) postAsyncWait(cc *CommandContext, f func(sim *simulation.Simulation)) {
	if rt.ctx.Err() != nil {
		cc.error(simulation.CommandInterruptedError)
		return
	}

	done := make(chan struct{})
	rt.sim.PostAsync(false, func() {
		defer close(done) // even if f() fails execution, 'done' should be closed.
		f(rt.sim)
	})

	select {
	case <-done:
	case <-rt.ctx.Done():
		select {
		case <-done:
		default:
			cc.error(simulation.CommandInterruptedError)
		}
	}
}

func (rt *CmdRunner) executeAddVehicle(cc *CommandContext, cmd *AddCmd) {
	logger.Debugf("Add: %#v", *cmd)
	count := 1
	if cmd.Count != nil {
		count = cmd.Count.Val
	}
	if count < 1 {
		cc.errorf("invalid vehicle count: %d", count)
		return
	}
	if cmd.Id != nil && count > 1 {
		cc.errorf("id can only be given when adding a single vehicle")
		return
	}

	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		profile, err := sim.LoadProfile(cmd.Profile)
		if err != nil {
			cc.error(err)
			return
		}

		for i := 0; i < count; i++ {
			id := InvalidVehicleId
			if cmd.Id != nil {
				id = cmd.Id.Val
			}
			v, err := sim.AddVehicleWithProfile(id, cmd.Profile, profile.Clone())
			if err != nil {
				cc.error(err)
				return
			}
			cc.outputf("%d\n", v.Id)
		}
	})
}

func (rt *CmdRunner) executeDelVehicle(cc *CommandContext, cmd *DelCmd) {
	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		for _, sel := range getUniqueAndSorted(cmd.Vehicles) {
			if err := sim.DeleteVehicle(sel.Id); err != nil {
				cc.error(err)
				continue
			}
			if rt.contextVehicleId == sel.Id {
				rt.contextVehicleId = InvalidVehicleId
			}
		}
	})
}

func (rt *CmdRunner) executeVehicle(cc *CommandContext, cmd *VehicleCmd) {
	var status *simulation.VehicleStatus
	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		if v := sim.Vehicle(cmd.Vehicle.Id); v != nil {
			st := v.Status()
			status = &st
		}
	})
	if cc.Err() != nil {
		return
	}
	if status == nil {
		cc.error(errors.Wrapf(simulation.ErrVehicleNotFound, "vehicle %d", cmd.Vehicle.Id))
		return
	}

	rt.contextVehicleId = status.Id
	cc.outputItemsAsYaml(vehicleStatusItem(status))
}

func (rt *CmdRunner) executeVehicles(cc *CommandContext, cmd *VehiclesCmd) {
	var items []map[string]interface{}
	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		sim.VisitVehiclesInOrder(func(v *simulation.Vehicle) {
			st := v.Status()
			items = append(items, vehicleSummaryItem(&st))
		})
	})
	if cc.Err() == nil && len(items) > 0 {
		cc.outputItemsAsYaml(items)
	}
}

func (rt *CmdRunner) executeExit(cc *CommandContext, cmd *ExitCmd) {
	if rt.contextVehicleId != InvalidVehicleId {
		rt.contextVehicleId = InvalidVehicleId
		return
	}
	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		sim.Stop()
	})
	if errors.Is(cc.err, simulation.CommandInterruptedError) {
		cc.err = nil
	}
}

func (rt *CmdRunner) executeTime(cc *CommandContext, cmd *TimeCmd) {
	var dispTime uint64
	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		dispTime = sim.CurTime()
	})
	cc.outputf("%d\n", dispTime)
}

func (rt *CmdRunner) executeTitle(cc *CommandContext, cmd *TitleCmd) {
	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		cfg := sim.GetConfig()
		if cmd.Title != nil {
			cfg.Title = *cmd.Title
			sim.SetTitle(cfg.Title)
		}
		cc.outputf("%s\n", cfg.Title)
	})
}

func (rt *CmdRunner) executeEnergy(cc *CommandContext, cmd *EnergyCmd) {
	if cmd.Save != nil {
		var fn string
		var err error
		rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
			fn, err = sim.SaveEnergy(cmd.Name)
		})
		if err != nil {
			cc.error(err)
			return
		}
		cc.outputf("%s\n", fn)
		return
	}

	var items []map[string]interface{}
	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		for _, ve := range sim.EnergySnapshot() {
			items = append(items, map[string]interface{}{
				"id":       ve.VehicleId,
				"mobility": roundJ(ve.Mobility),
				"compute":  roundJ(ve.Compute),
				"hardware": roundJ(ve.Hardware),
				"total":    roundJ(ve.Total()),
			})
		}
	})
	if cc.Err() == nil && len(items) > 0 {
		cc.outputItemsAsYaml(items)
	}
}

func (rt *CmdRunner) executeKpi(cc *CommandContext, cmd *KpiCmd) {
	if cmd.Save != nil {
		fn := cmd.File
		rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
			if len(fn) == 0 {
				fn = sim.GetKpiManager().DefaultSaveFileName()
			}
			sim.GetKpiManager().SaveFile(fn)
		})
		if cc.Err() == nil {
			cc.outputf("%s\n", fn)
		}
		return
	}

	var items []map[string]interface{}
	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		data := sim.GetKpiManager().Data()
		for _, id := range data.SortedVehicleIds() {
			kv := data.Vehicles[id]
			items = append(items, map[string]interface{}{
				"id":        id,
				"endurance": kv.EnduranceSec,
				"distance":  roundJ(kv.DistanceM),
				"energy":    roundJ(kv.EnergyJ.Total),
				"depleted":  kv.Depleted,
			})
		}
	})
	if cc.Err() == nil && len(items) > 0 {
		cc.outputItemsAsYaml(items)
	}
}

func (rt *CmdRunner) executeLogLevel(cc *CommandContext, cmd *LogLevelCmd) {
	if cmd.Level == "" {
		cc.outputf("%v\n", logger.GetLevelString(rt.sim.GetLogLevel()))
		return
	}
	level, err := logger.ParseLevelString(cmd.Level)
	if err != nil {
		cc.error(err)
		return
	}
	rt.sim.SetLogLevel(level)
}

func (rt *CmdRunner) executeWatch(cc *CommandContext, cmd *WatchCmd) {
	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		if len(cmd.Vehicles) == 0 && cmd.All == "" && cmd.Level == "" {
			// variant: 'watch'
			var watched []string
			sim.VisitVehiclesInOrder(func(v *simulation.Vehicle) {
				if v.Logger.DisplayLevel() > logger.ErrorLevel {
					watched = append(watched, fmt.Sprintf("%d", v.Id))
				}
			})
			cc.outputf("%s\n", strings.Join(watched, " "))
			return
		}

		level := logger.DefaultLevel
		if cmd.Level != "" {
			var err error
			if level, err = logger.ParseLevelString(cmd.Level); err != nil {
				cc.error(err)
				return
			}
		}

		targets := getUniqueAndSorted(cmd.Vehicles)
		if cmd.All != "" {
			targets = targets[:0]
			for _, id := range sim.Vehicles() {
				targets = append(targets, VehicleSelector{Id: id})
			}
		}
		for _, sel := range targets {
			v := sim.Vehicle(sel.Id)
			if v == nil {
				cc.error(errors.Wrapf(simulation.ErrVehicleNotFound, "vehicle %d", sel.Id))
				continue
			}
			v.Logger.SetDisplayLevel(level)
		}
	})
}

func (rt *CmdRunner) executeUnwatch(cc *CommandContext, cmd *UnwatchCmd) {
	rt.postAsyncWait(cc, func(sim *simulation.Simulation) {
		ids := sim.Vehicles()
		if len(cmd.Vehicles) > 0 {
			ids = ids[:0]
			for _, sel := range getUniqueAndSorted(cmd.Vehicles) {
				ids = append(ids, sel.Id)
			}
		}
		for _, id := range ids {
			if v := sim.Vehicle(id); v != nil {
				v.Logger.SetDisplayLevel(logger.ErrorLevel)
			}
		}
	})
}

func vehicleSummaryItem(st *simulation.VehicleStatus) map[string]interface{} {
	return map[string]interface{}{
		"id":        st.Id,
		"phase":     st.Phase.String(),
		"x":         roundM(st.Position.X),
		"y":         roundM(st.Position.Y),
		"z":         roundM(st.Position.Z),
		"remaining": roundM(st.RemainingPercent),
		"depleted":  st.Depleted,
	}
}

func vehicleStatusItem(st *simulation.VehicleStatus) map[string]interface{} {
	item := vehicleSummaryItem(st)
	item["profile"] = st.ProfileIndex
	item["velocity"] = []float64{roundM(st.Velocity.X), roundM(st.Velocity.Y), roundM(st.Velocity.Z)}
	item["consumed"] = roundJ(st.Consumed)
	item["capacity"] = roundJ(st.Capacity)
	item["current"] = roundM(st.Current)
	item["distance"] = roundM(st.Distance)
	item["ticks"] = st.Ticks
	if st.Depleted {
		item["depletedAt"] = st.DepletedAt
	}
	return item
}

// roundM rounds to millimetres, or to three decimals in general.
func roundM(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func roundJ(v float64) float64 {
	return math.Round(v*10) / 10
}

func (rt *CmdRunner) executeHelp(cc *CommandContext, cmd *HelpCmd) {
	if len(cmd.HelpTopic) > 0 {
		cc.outputStr(rt.help.outputCommandHelp(cmd.HelpTopic))
	} else {
		cc.outputStr(rt.help.outputGeneralHelp())
	}
}
