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
	"regexp"
	"sort"
)

var (
	contextLessCommandsPat = regexp.MustCompile(`^(exit|vehicle|vehicles|help)\b`)
)

func isContextlessCommand(line string) bool {
	return contextLessCommandsPat.MatchString(line)
}

// getUniqueAndSorted returns the selectors with duplicate ids removed, sorted by id.
func getUniqueAndSorted(input []VehicleSelector) []VehicleSelector {
	seen := make(map[int]struct{}, len(input))
	ids := make([]int, 0, len(input))
	for _, vs := range input {
		if _, ok := seen[vs.Id]; ok {
			continue
		}
		seen[vs.Id] = struct{}{}
		ids = append(ids, vs.Id)
	}
	sort.Ints(ids)

	out := make([]VehicleSelector, 0, len(ids))
	for _, id := range ids {
		out = append(out, VehicleSelector{Id: id})
	}
	return out
}
