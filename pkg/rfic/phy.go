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
	"fmt"
	"sync/atomic"

	"jinr.ru/greenlab/go-rfic/pkg/stream"
)

const (
	VariantLVDS = "lvds"
	VariantCMOS = "cmos"
)

// Mode selects whether both channel pairs carry live antenna data.
type Mode uint8

const (
	Mode2R2T Mode = 0
	Mode1R1T Mode = 1
)

func (m Mode) String() string {
	if m == Mode1R1T {
		return "1R1T"
	}
	return "2R2T"
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "2R2T":
		return Mode2R2T, nil
	case "1R1T":
		return Mode1R1T, nil
	}
	return 0, fmt.Errorf("Unknown PHY mode: %s. Must be one of: 1R1T, 2R2T.", s)
}

// BusCycle is one cycle of the double-data-rate sample bus: the bits
// captured on the rising clock edge (the I half-word), the bits captured
// on the falling edge (the Q half-word) and the state of the framing
// line. The LVDS bus is 6 bits wide per edge, the CMOS bus 12.
type BusCycle struct {
	Rising  uint16
	Falling uint16
	Frame   bool
}

// Phy converts between the electrical sample bus and a sample-rate
// stream of 12-bit values. Implementations run entirely in the PHY clock
// domain: one RXCycle/NextTX call pair per transceiver clock tick.
type Phy interface {
	Variant() string
	SupportsTransmit() bool

	SetMode(m Mode) error
	Mode() Mode
	SetLoopback(on bool) error
	Loopback() bool

	// NextTX produces the next TX bus cycle. fetch is called at each
	// sample group boundary to pull the next sample from the pipeline;
	// when it reports no data the PHY serializes zeros.
	NextTX(fetch func() (Sample, bool)) BusCycle

	// RXCycle consumes one bus cycle and reports an assembled sample
	// when a full group has been seen. The deserializer is free-running:
	// it honors no backpressure from downstream.
	RXCycle(c BusCycle) (Sample, bool)

	// SyncLost reports whether a framing edge was seen outside the
	// expected period since the last Rearm. The condition is a status,
	// never fatal: the deserializer realigns on the offending edge.
	// SyncLost is safe from any goroutine; Rearm touches the alignment
	// state and must only run in the PHY domain, or while it is stopped.
	SyncLost() bool
	Rearm()
}

// lvdsGroupLen is the number of bus cycles per 2R2T sample group on the
// 6-bit DDR bus: two cycles per 12-bit pair, channel A then channel B.
const lvdsGroupLen = 4

// LVDSPHY is the differential high-speed PHY variant: full duplex, with
// an optional TX-RX loopback applied before serialization.
type LVDSPHY struct {
	mode     stream.Flag
	loopback stream.Flag

	// TX serializer state.
	txCnt    int
	txCur    Sample
	txSample uint64 // sample counter, drives the 1R1T frame toggle

	// RX deserializer state.
	rxAligned bool
	rxFrameD  bool
	rxCycles  int
	rxIAHi    uint16
	rxQAHi    uint16
	rxIA      uint16
	rxQA      uint16
	rxIBHi    uint16
	rxQBHi    uint16

	syncLost uint32
}

func NewLVDSPHY() *LVDSPHY {
	return &LVDSPHY{}
}

func (p *LVDSPHY) Variant() string        { return VariantLVDS }
func (p *LVDSPHY) SupportsTransmit() bool { return true }

func (p *LVDSPHY) SetMode(m Mode) error {
	p.mode.Set(m == Mode1R1T)
	return nil
}

func (p *LVDSPHY) Mode() Mode {
	if p.mode.Get() {
		return Mode1R1T
	}
	return Mode2R2T
}

func (p *LVDSPHY) SetLoopback(on bool) error {
	p.loopback.Set(on)
	return nil
}

func (p *LVDSPHY) Loopback() bool {
	return p.loopback.Get()
}

func half(v int16, hi bool) uint16 {
	u := uint16(v) & 0x0fff
	if hi {
		return u >> 6
	}
	return u & 0x3f
}

func (p *LVDSPHY) NextTX(fetch func() (Sample, bool)) BusCycle {
	mode1r1t := p.mode.Get()
	groupLen := lvdsGroupLen
	if mode1r1t {
		groupLen = 2
	}
	if p.txCnt == 0 {
		s, ok := fetch()
		if !ok {
			s = Sample{}
		}
		if mode1r1t {
			s.IB = 0
			s.QB = 0
		}
		p.txCur = s
		p.txSample++
	}

	var c BusCycle
	switch p.txCnt {
	case 0:
		c = BusCycle{Rising: half(p.txCur.IA, true), Falling: half(p.txCur.QA, true)}
	case 1:
		c = BusCycle{Rising: half(p.txCur.IA, false), Falling: half(p.txCur.QA, false)}
	case 2:
		c = BusCycle{Rising: half(p.txCur.IB, true), Falling: half(p.txCur.QB, true)}
	case 3:
		c = BusCycle{Rising: half(p.txCur.IB, false), Falling: half(p.txCur.QB, false)}
	}

	// The framing line toggles at half the sample rate: in 2R2T it is
	// high for the channel A cycles of each group, in 1R1T it is high
	// for every even-numbered sample.
	if mode1r1t {
		c.Frame = p.txSample%2 == 1
	} else {
		c.Frame = p.txCnt < 2
	}

	p.txCnt++
	if p.txCnt == groupLen {
		p.txCnt = 0
	}
	return c
}

func (p *LVDSPHY) RXCycle(c BusCycle) (Sample, bool) {
	rising := c.Frame && !p.rxFrameD
	p.rxFrameD = c.Frame

	if rising {
		// A rising frame edge is expected exactly once per
		// lvdsGroupLen cycles. Anything else is a loss of
		// synchronization; realign on the offending edge.
		if p.rxAligned && p.rxCycles != lvdsGroupLen {
			atomic.StoreUint32(&p.syncLost, 1)
		}
		p.rxAligned = true
		p.rxCycles = 0
	} else if p.rxAligned && p.rxCycles >= lvdsGroupLen {
		// The edge did not show up within the expected period.
		atomic.StoreUint32(&p.syncLost, 1)
		p.rxAligned = false
	}

	if !p.rxAligned {
		return Sample{}, false
	}

	mode1r1t := p.mode.Get()
	pos := p.rxCycles
	p.rxCycles++

	if mode1r1t {
		// Two cycles per sample, channel B is not transferred.
		if pos%2 == 0 {
			p.rxIAHi = c.Rising
			p.rxQAHi = c.Falling
			return Sample{}, false
		}
		return Sample{
			IA: SignExtend12(p.rxIAHi<<6 | c.Rising&0x3f),
			QA: SignExtend12(p.rxQAHi<<6 | c.Falling&0x3f),
		}, true
	}

	switch pos {
	case 0:
		p.rxIAHi = c.Rising
		p.rxQAHi = c.Falling
	case 1:
		p.rxIA = p.rxIAHi<<6 | c.Rising&0x3f
		p.rxQA = p.rxQAHi<<6 | c.Falling&0x3f
	case 2:
		p.rxIBHi = c.Rising
		p.rxQBHi = c.Falling
	case 3:
		return Sample{
			IA: SignExtend12(p.rxIA),
			QA: SignExtend12(p.rxQA),
			IB: SignExtend12(p.rxIBHi<<6 | c.Rising&0x3f),
			QB: SignExtend12(p.rxQBHi<<6 | c.Falling&0x3f),
		}, true
	}
	return Sample{}, false
}

func (p *LVDSPHY) SyncLost() bool {
	return atomic.LoadUint32(&p.syncLost) != 0
}

// Rearm clears the sticky sync-loss flag and forces a fresh alignment on
// the next frame edge.
func (p *LVDSPHY) Rearm() {
	atomic.StoreUint32(&p.syncLost, 0)
	p.rxAligned = false
	p.rxCycles = 0
	p.txCnt = 0
	p.txSample = 0
}
