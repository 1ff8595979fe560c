/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package rfic

import (
	"sync/atomic"
)

const (
	// AGCHighThreshold catches samples pinned at full scale.
	AGCHighThreshold = SampleMax

	// AGCLowThreshold catches samples close to full scale, early enough
	// for the gain control loop to back off before actual clipping.
	AGCLowThreshold = 1792
)

// SaturationCount counts, across enabled cycles, how many samples of one
// channel pair had I or Q at or beyond its threshold on either side of
// zero. Counting is gated by the caller on actually-transferred samples:
// stalled or dropped samples are never counted. The counter is a
// free-running accumulator polled by the host; reads may race an
// increment and are eventually-consistent snapshots.
type SaturationCount struct {
	threshold int16
	count     uint64
}

func NewSaturationCount(threshold int16) *SaturationCount {
	return &SaturationCount{threshold: threshold}
}

// Observe accounts one transferred I/Q pair.
func (c *SaturationCount) Observe(i, q int16) {
	if i >= c.threshold || i <= -c.threshold-1 ||
		q >= c.threshold || q <= -c.threshold-1 {
		atomic.AddUint64(&c.count, 1)
	}
}

func (c *SaturationCount) Count() uint64 {
	return atomic.LoadUint64(&c.count)
}

func (c *SaturationCount) Clear() {
	atomic.StoreUint64(&c.count, 0)
}

// AGCCounts is a host-polled snapshot of the four saturation counters.
type AGCCounts struct {
	RX1Low  uint64 `json:"rx1_low"`
	RX1High uint64 `json:"rx1_high"`
	RX2Low  uint64 `json:"rx2_low"`
	RX2High uint64 `json:"rx2_high"`
}

// AGC bundles the saturation counters of both channel pairs at both
// threshold tiers. It taps the receive stream on the host side of the
// clock domain crossing.
type AGC struct {
	rx1Low  *SaturationCount
	rx1High *SaturationCount
	rx2Low  *SaturationCount
	rx2High *SaturationCount
}

func NewAGC() *AGC {
	return &AGC{
		rx1Low:  NewSaturationCount(AGCLowThreshold),
		rx1High: NewSaturationCount(AGCHighThreshold),
		rx2Low:  NewSaturationCount(AGCLowThreshold),
		rx2High: NewSaturationCount(AGCHighThreshold),
	}
}

// Observe accounts one transferred sample in all four counters.
func (a *AGC) Observe(s Sample) {
	a.rx1Low.Observe(s.IA, s.QA)
	a.rx1High.Observe(s.IA, s.QA)
	a.rx2Low.Observe(s.IB, s.QB)
	a.rx2High.Observe(s.IB, s.QB)
}

func (a *AGC) Counts() AGCCounts {
	return AGCCounts{
		RX1Low:  a.rx1Low.Count(),
		RX1High: a.rx1High.Count(),
		RX2Low:  a.rx2Low.Count(),
		RX2High: a.rx2High.Count(),
	}
}

// Clear resets all counters. Clearing is an explicit host request, the
// pipeline itself never resets them.
func (a *AGC) Clear() {
	a.rx1Low.Clear()
	a.rx1High.Clear()
	a.rx2Low.Clear()
	a.rx2High.Clear()
}
