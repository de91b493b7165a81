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

package energy

const (
	// ComputePeriod is the period of the fleet energy history snapshots.
	ComputePeriod uint64 = 30000000 // in microseconds
)

// CurrentBreakdown is an instantaneous current draw split by subsystem, in amperes.
type CurrentBreakdown struct {
	Mobility float64
	Compute  float64
	Hardware float64
}

func (b CurrentBreakdown) Total() float64 {
	return b.Mobility + b.Compute + b.Hardware
}

// Consumption is energy spent per subsystem, in joules.
type Consumption struct {
	Mobility float64
	Compute  float64
	Hardware float64
}

func (c Consumption) Total() float64 {
	return c.Mobility + c.Compute + c.Hardware
}

func (c *Consumption) add(b CurrentBreakdown, voltage float64, dt float64) {
	c.Mobility += b.Mobility * voltage * dt
	c.Compute += b.Compute * voltage * dt
	c.Hardware += b.Hardware * voltage * dt
}

// FleetConsumption is a snapshot of the average consumption per vehicle.
type FleetConsumption struct {
	Timestamp uint64
	Consumption
}
