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

// SPIBitPeriod is the base period of the serial clock; the configurable
// divider scales it down from there.
const SPIBitPeriod = time.Microsecond

// SPISlave is the serial port of the transceiver chip. The register
// semantics behind it are opaque to the datapath: the master only shifts
// transaction words through it.
type SPISlave interface {
	// ChipSelect frames a transaction.
	ChipSelect(assert bool)
	// Exchange clocks one bit into the slave, MSB first, and returns
	// the bit the slave drives back on the same clock.
	Exchange(mosi uint8) uint8
}

// SPIMaster shifts register read/write transactions to the transceiver.
// A transaction is started and then polled for completion; the Write and
// Read helpers wrap that into synchronous calls.
type SPIMaster struct {
	slave     SPISlave
	dataWidth int
	divider   int

	mu     sync.Mutex
	busy   bool
	result uint32
}

func NewSPIMaster(slave SPISlave, dataWidth, clkDivider int) *SPIMaster {
	if clkDivider < 1 {
		clkDivider = 1
	}
	return &SPIMaster{
		slave:     slave,
		dataWidth: dataWidth,
		divider:   clkDivider,
	}
}

// Start begins shifting one transaction word. It fails with ErrBusy when
// a previous transaction is still on the wire.
func (m *SPIMaster) Start(word uint32) error {
	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return ErrBusy{}
	}
	m.busy = true
	m.mu.Unlock()

	go m.shift(word)
	return nil
}

func (m *SPIMaster) shift(word uint32) {
	period := time.Duration(m.divider) * SPIBitPeriod
	m.slave.ChipSelect(true)
	var miso uint32
	for i := m.dataWidth - 1; i >= 0; i-- {
		bit := uint8(word>>uint(i)) & 1
		miso = miso<<1 | uint32(m.slave.Exchange(bit)&1)
		time.Sleep(period)
	}
	m.slave.ChipSelect(false)

	m.mu.Lock()
	m.result = miso
	m.busy = false
	m.mu.Unlock()
}

// Done reports whether the master is ready for a new transaction. The
// caller polls it after Start.
func (m *SPIMaster) Done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.busy
}

// Result returns the word shifted back during the last transaction. Only
// valid when Done reports true.
func (m *SPIMaster) Result() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

func (m *SPIMaster) wait() {
	period := time.Duration(m.divider) * SPIBitPeriod
	for !m.Done() {
		time.Sleep(period)
	}
}

// Write runs one synchronous register write transaction.
func (m *SPIMaster) Write(addr uint16, value uint8) error {
	spi := &layers.SPILayer{Write: true, Addr: addr, Data: value}
	if err := m.Start(spi.Word()); err != nil {
		return err
	}
	m.wait()
	return nil
}

// Read runs one synchronous register read transaction and returns the
// value shifted back during the data phase.
func (m *SPIMaster) Read(addr uint16) (uint8, error) {
	spi := &layers.SPILayer{Write: false, Addr: addr}
	if err := m.Start(spi.Word()); err != nil {
		return 0, err
	}
	m.wait()
	return uint8(m.Result() & 0xff), nil
}
