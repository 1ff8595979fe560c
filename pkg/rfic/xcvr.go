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
	"sync"
	"time"

	"jinr.ru/greenlab/go-rfic/pkg/layers"
)

// Transceiver is the electrical far end of the PHY. It owns the sample
// clock: one Step call is one PHY clock cycle, and the implementation
// sets the pace by blocking inside Step. The datapath never tries to
// slow it down.
type Transceiver interface {
	Step(tx BusCycle) BusCycle
}

// LoopTransceiver wires the TX bus straight back to the RX bus, the
// moral equivalent of a cable loopback on the bench. A zero interval
// lets the PHY domain spin as fast as the host allows.
type LoopTransceiver struct {
	Interval time.Duration
}

func (t *LoopTransceiver) Step(tx BusCycle) BusCycle {
	if t.Interval > 0 {
		time.Sleep(t.Interval)
	}
	return tx
}

// RegisterFile is a software register file behind the serial port,
// standing in for the transceiver chip in tests and bench loopback
// setups. It decodes the transaction bit by bit, exactly as the chip
// would: 1 write flag bit, 15 address bits, then 8 data bits shifted in
// (write) or driven back (read).
type RegisterFile struct {
	mu      sync.Mutex
	regs    map[uint16]uint8
	shiftIn uint32
	bits    int
	data    uint8
}

func NewRegisterFile() *RegisterFile {
	return &RegisterFile{
		regs: make(map[uint16]uint8),
	}
}

func (f *RegisterFile) ChipSelect(assert bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if assert {
		f.shiftIn = 0
		f.bits = 0
		f.data = 0
	}
}

func (f *RegisterFile) Exchange(mosi uint8) uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.shiftIn = f.shiftIn<<1 | uint32(mosi&1)
	f.bits++

	spi := &layers.SPILayer{}
	switch {
	case f.bits == 16:
		// Flag and address are complete: preload the data phase for
		// a read.
		spi.FromWord(f.shiftIn << 8)
		if !spi.Write {
			f.data = f.regs[spi.Addr]
		}
		return 0
	case f.bits > 16:
		out := f.data >> uint(layers.SPIDataWidth-f.bits) & 1
		if f.bits == layers.SPIDataWidth {
			spi.FromWord(f.shiftIn)
			if spi.Write {
				f.regs[spi.Addr] = spi.Data
			}
		}
		return out
	}
	return 0
}

// Poke sets a register directly, bypassing the serial port.
func (f *RegisterFile) Poke(addr uint16, value uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs[addr] = value
}

// Peek reads a register directly, bypassing the serial port.
func (f *RegisterFile) Peek(addr uint16) uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs[addr]
}
