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

// CMOSPHY is the single-ended PHY variant. Only the receive path is
// implemented: the bus is 12 bits wide, I sampled on the rising edge and
// Q on the falling edge, one cycle per channel A pair, and channel B is
// unconditionally zero. The transmit path and its dynamic loopback are a
// known gap, reported through the capability flag and rejected at
// configuration time rather than silently stubbed.
type CMOSPHY struct {
	// RX deserializer state.
	rxAligned bool
	rxFrameD  bool
	rxCycles  int

	syncLost uint32
}

// cmosFramePeriod is the expected distance between frame rising edges:
// the framing line toggles once per sample, one sample per bus cycle.
const cmosFramePeriod = 2

func NewCMOSPHY() *CMOSPHY {
	return &CMOSPHY{}
}

func (p *CMOSPHY) Variant() string        { return VariantCMOS }
func (p *CMOSPHY) SupportsTransmit() bool { return false }

func (p *CMOSPHY) SetMode(m Mode) error {
	if m != Mode1R1T {
		return ErrNotSupported{Variant: VariantCMOS, What: "2R2T mode"}
	}
	return nil
}

func (p *CMOSPHY) Mode() Mode {
	return Mode1R1T
}

func (p *CMOSPHY) SetLoopback(on bool) error {
	if on {
		return ErrNotSupported{Variant: VariantCMOS, What: "loopback"}
	}
	return nil
}

func (p *CMOSPHY) Loopback() bool {
	return false
}

// NextTX exists to satisfy the Phy contract; the datapath never drives
// it because SupportsTransmit reports false.
func (p *CMOSPHY) NextTX(fetch func() (Sample, bool)) BusCycle {
	return BusCycle{}
}

func (p *CMOSPHY) RXCycle(c BusCycle) (Sample, bool) {
	rising := c.Frame && !p.rxFrameD
	p.rxFrameD = c.Frame

	if rising {
		if p.rxAligned && p.rxCycles != cmosFramePeriod {
			atomic.StoreUint32(&p.syncLost, 1)
		}
		p.rxAligned = true
		p.rxCycles = 0
	} else if p.rxAligned && p.rxCycles >= cmosFramePeriod {
		atomic.StoreUint32(&p.syncLost, 1)
		p.rxAligned = false
	}

	if !p.rxAligned {
		return Sample{}, false
	}
	p.rxCycles++

	// One full pair per cycle, channel B forced to zero.
	return Sample{
		IA: SignExtend12(c.Rising),
		QA: SignExtend12(c.Falling),
	}, true
}

func (p *CMOSPHY) SyncLost() bool {
	return atomic.LoadUint32(&p.syncLost) != 0
}

func (p *CMOSPHY) Rearm() {
	atomic.StoreUint32(&p.syncLost, 0)
	p.rxAligned = false
	p.rxCycles = 0
}
