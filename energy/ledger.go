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

// EnergySource is the energy store of a vehicle: it is told the current drawn and reports the energy consumed.
type EnergySource interface {
	SetCurrent(amps float64)
	Current() float64
	Consumed() float64
}

// Ledger integrates current draw against a finite capacity. Consumption never decreases.
type Ledger struct {
	capacity float64 // J
	voltage  float64 // V
	consumed float64 // J
	current  float64 // A
}

var _ EnergySource = (*Ledger)(nil)

func NewLedger(capacity float64, voltage float64) *Ledger {
	return &Ledger{
		capacity: capacity,
		voltage:  voltage,
	}
}

func (l *Ledger) SetCurrent(amps float64) {
	l.current = amps
}

func (l *Ledger) Current() float64 {
	return l.current
}

func (l *Ledger) Consumed() float64 {
	return l.consumed
}

func (l *Ledger) Capacity() float64 {
	return l.capacity
}

func (l *Ledger) Voltage() float64 {
	return l.voltage
}

// RecordDraw sets the current and adds amps*V*dt joules to the consumption. It returns the consumed
// fraction of the capacity.
func (l *Ledger) RecordDraw(amps float64, dt float64) float64 {
	l.SetCurrent(amps)
	l.consumed += amps * l.voltage * dt
	return l.Fraction()
}

// depletionTolerance absorbs the rounding of per-tick summation, relative to the capacity.
const depletionTolerance = 1e-9

// Fraction returns consumed/capacity. A vehicle without capacity is fully consumed.
func (l *Ledger) Fraction() float64 {
	if l.capacity <= 0 {
		return 1
	}
	return l.consumed / l.capacity
}

// Depleted returns true once the whole capacity is consumed.
func (l *Ledger) Depleted() bool {
	return l.consumed >= l.capacity*(1-depletionTolerance)
}

// RemainingPercent returns the remaining capacity in percent, never below zero.
func (l *Ledger) RemainingPercent() float64 {
	if l.Depleted() {
		return 0
	}
	return 100 * (1 - l.Fraction())
}
