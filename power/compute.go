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

package power

import "math"

// ComputePower is the power drawn by local model training on the on-board CPU.
// One voltage factor cancels algebraically; the expression is kept in its published form.
func ComputePower(switchCapacitance, voltage, cyclesPerOp, opsPerDatum, trainingSetSize, localIterations float64) float64 {
	return switchCapacitance * math.Pow(voltage, 2) * cyclesPerOp * opsPerDatum * trainingSetSize * localIterations / voltage
}

// PathLoss is the free-space path loss in dB at carrier frequency f (Hz) and distance d (m).
func PathLoss(carrierFreq, distance float64) float64 {
	return 20 * math.Log10(4*math.Pi*carrierFreq*distance/SpeedOfLight)
}

// ChannelGain converts a path loss in dB into a linear gain.
func ChannelGain(pathLossDb float64) float64 {
	return math.Pow(10, -pathLossDb/10)
}

// DataRate is the Shannon capacity of the uplink, in bit/s.
func DataRate(bandwidth, txPower, channelGain, noiseDensity float64) float64 {
	return bandwidth * math.Log2(1+txPower*channelGain/(noiseDensity*bandwidth))
}

// CommunicationEnergy is the normalised energy to upload a payload of payloadSize bits at the given distance.
func CommunicationEnergy(txPower, payloadSize, bandwidth, carrierFreq, distance float64) float64 {
	gain := ChannelGain(PathLoss(carrierFreq, distance))
	rate := DataRate(bandwidth, txPower, gain, NoiseSpectralDensity)
	return (txPower * payloadSize / rate) / CommVoltageNormalizer
}
