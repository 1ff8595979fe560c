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
	"context"
	"fmt"
	"sync"

	"jinr.ru/greenlab/go-rfic/pkg/config"
	"jinr.ru/greenlab/go-rfic/pkg/layers"
	"jinr.ru/greenlab/go-rfic/pkg/log"
	"jinr.ru/greenlab/go-rfic/pkg/stream"
)

// RFIC is the streaming datapath between the transceiver PHY and the
// host-facing 64-bit word streams.
//
// Transmit: Sink -> buffer -> bit-mode widen -> TX CDC -> PHY serializer.
// Receive: PHY deserializer -> RX CDC -> bit-mode truncate -> buffer -> Source.
//
// The PHY side runs in its own execution context locked to the
// transceiver clock; the host side runs at whatever pace the transport
// sets. The only sample data shared between the two are the CDC queues,
// and the only control state shared are synchronized single-bit flags.
type RFIC struct {
	phy  Phy
	xcvr Transceiver
	spi  *SPIMaster

	// Sink and Source are the host-facing stream endpoints.
	Sink   *stream.Endpoint
	Source *stream.Endpoint

	txBuf *stream.Endpoint
	rxBuf *stream.Endpoint
	txCDC *stream.CDC
	rxCDC *stream.CDC

	bitmode8 stream.Flag
	prbsOn   stream.Flag

	ts  *Timestamp
	agc *AGC

	// PRBS state is owned by the PHY loop; only the synced flags cross
	// domains.
	prbsGen     *PRBSGenerator
	prbsCheckA  *PRBSChecker
	prbsCheckB  *PRBSChecker
	prbsSyncedA stream.Flag
	prbsSyncedB stream.Flag

	ctrlMu sync.Mutex
	ctrl   Controls

	// runMu serializes lifecycle transitions and the quiesce checks that
	// depend on them.
	runMu   sync.Mutex
	enabled stream.Flag
	rearm   stream.Flag
	cancel  context.CancelFunc
	done    chan struct{}
}

// Controls mirrors the control and status pins of the transceiver chip.
// They are plain stored configuration: the chip itself is an external
// collaborator.
type Controls struct {
	RstN   bool  `json:"rst_n"`
	Enable bool  `json:"enable"`
	TxNRx  bool  `json:"txnrx"`
	EnAGC  bool  `json:"en_agc"`
	Ctrl   uint8 `json:"ctrl"`
	Stat   uint8 `json:"stat"`
}

// Status is a host-polled snapshot of the datapath. Counter fields may
// race concurrent increments; they are eventually-consistent.
type Status struct {
	Enabled     bool      `json:"enabled"`
	PhyVariant  string    `json:"phy_variant"`
	PhyMode     string    `json:"phy_mode"`
	BitMode     int       `json:"bit_mode"`
	Loopback    bool      `json:"loopback"`
	SyncLost    bool      `json:"sync_lost"`
	PRBSEnabled bool      `json:"prbs_enabled"`
	PRBSSynced  bool      `json:"prbs_synced"`
	Timestamp   uint64    `json:"timestamp"`
	RXDrops     uint64    `json:"rx_drops"`
	AGC         AGCCounts `json:"agc"`
	Controls    Controls  `json:"controls"`
}

// New builds the datapath for the configured PHY variant. The
// transceiver and the serial register port are external collaborators
// supplied by the caller.
func New(cfg *config.Config, xcvr Transceiver, slave SPISlave) (*RFIC, error) {
	var phy Phy
	switch cfg.PhyVariant {
	case VariantLVDS:
		phy = NewLVDSPHY()
	case VariantCMOS:
		phy = NewCMOSPHY()
	default:
		return nil, fmt.Errorf("Unknown PHY variant: %s. Must be one of: lvds, cmos.", cfg.PhyVariant)
	}

	mode, err := ParseMode(cfg.PhyMode)
	if err != nil {
		return nil, err
	}
	if err := phy.SetMode(mode); err != nil {
		return nil, err
	}

	r := &RFIC{
		phy:        phy,
		xcvr:       xcvr,
		spi:        NewSPIMaster(slave, layers.SPIDataWidth, cfg.SPIClkDivider),
		Sink:       stream.NewEndpoint(1),
		Source:     stream.NewEndpoint(1),
		txBuf:      stream.NewEndpoint(1),
		rxBuf:      stream.NewEndpoint(1),
		txCDC:      stream.NewCDC(cfg.CDCDepth),
		rxCDC:      stream.NewCDC(cfg.CDCDepth),
		ts:         NewTimestamp(),
		agc:        NewAGC(),
		prbsGen:    NewPRBSGenerator(),
		prbsCheckA: NewPRBSChecker(),
		prbsCheckB: NewPRBSChecker(),
	}
	r.bitmode8.Set(cfg.BitMode == 8)
	return r, nil
}

// Enable starts both execution contexts of the datapath.
func (r *RFIC) Enable() error {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if r.enabled.Get() {
		return nil
	}
	log.Info("Enabling datapath: variant: %s mode: %s", r.phy.Variant(), r.phy.Mode())

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	pipeline := stream.NewPipeline(
		stream.Buffer(r.Sink, r.txBuf),
		TXBitMode(&r.bitmode8, r.txBuf, r.txCDC),
		RXBitMode(&r.bitmode8, r.rxCDC, r.rxBuf, r.agc.Observe),
		stream.Buffer(r.rxBuf, r.Source),
		r.phyLoop,
	)

	go func() {
		defer close(r.done)
		if err := pipeline.Run(ctx); err != nil {
			log.Error("Datapath pipeline stopped: %s", err)
		}
	}()

	r.enabled.Set(true)
	return nil
}

// Disable stops the datapath and discards everything in flight; nothing
// is drained to either end. The pipeline can be enabled again afterwards.
func (r *RFIC) Disable() {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if !r.enabled.Get() {
		return
	}
	log.Info("Disabling datapath")
	r.cancel()
	<-r.done
	r.enabled.Set(false)
	r.reset()
}

func (r *RFIC) Enabled() bool {
	return r.enabled.Get()
}

// reset returns the crossing queues, the PRBS machinery and the PHY
// alignment to their initial empty state. Both domains are stopped when
// this runs, which stands in for the shared reset pulse.
func (r *RFIC) reset() {
	r.rearm.Set(false)
	r.txCDC.Reset()
	r.rxCDC.Reset()
	r.Sink.Drain()
	r.Source.Drain()
	r.txBuf.Drain()
	r.rxBuf.Drain()
	r.prbsGen.Reset()
	r.prbsCheckA.Reset()
	r.prbsCheckB.Reset()
	r.prbsSyncedA.Set(false)
	r.prbsSyncedB.Set(false)
	r.phy.Rearm()
}

// phyLoop is the PHY clock domain: one iteration per transceiver clock
// cycle, paced by the transceiver itself. The deserializer side is a
// free-running source; when the RX CDC queue is full its samples are
// unrecoverably lost, which the queue accounts as drops.
func (r *RFIC) phyLoop(ctx context.Context) error {
	txCapable := r.phy.SupportsTransmit()
	prbsWas := false

	var loopS Sample
	var loopOK bool

	fetch := func() (Sample, bool) {
		if r.prbsOn.Get() {
			v := SignExtend12(r.prbsGen.Next())
			// Self-test data replaces both live lanes atomically.
			return Sample{IA: v, IB: v}, true
		}
		w, ok := r.txCDC.TryPop()
		if !ok {
			return Sample{}, false
		}
		return SampleFromWord(w), true
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if r.rearm.Get() {
			// Re-arm requests from the host are applied here so the
			// alignment state is only ever touched in this domain.
			r.rearm.Set(false)
			r.phy.Rearm()
		}

		if prbsNow := r.prbsOn.Get(); prbsNow != prbsWas {
			// Re-arm the generator and checkers on every enable
			// transition so each self-test starts from the seed.
			r.prbsGen.Reset()
			r.prbsCheckA.Reset()
			r.prbsCheckB.Reset()
			r.prbsSyncedA.Set(false)
			r.prbsSyncedB.Set(false)
			prbsWas = prbsNow
		}

		var tx BusCycle
		loopOK = false
		if txCapable {
			tx = r.phy.NextTX(func() (Sample, bool) {
				s, ok := fetch()
				loopS, loopOK = s, ok
				return s, ok
			})
		}

		rx := r.xcvr.Step(tx)
		r.ts.Tick()

		if r.phy.Loopback() {
			// TX-RX loopback bypasses serialization: the sample
			// fetched for this group is fed straight back, minus the
			// B pair the bus would not have carried in 1R1T.
			if loopOK {
				s := loopS
				if r.phy.Mode() == Mode1R1T {
					s.IB = 0
					s.QB = 0
				}
				r.feedRX(s)
			}
			continue
		}
		if s, ok := r.phy.RXCycle(rx); ok {
			r.feedRX(s)
		}
	}
}

func (r *RFIC) feedRX(s Sample) {
	r.prbsCheckA.Feed(uint16(s.IA))
	r.prbsCheckB.Feed(uint16(s.IB))
	r.prbsSyncedA.Set(r.prbsCheckA.Synced())
	r.prbsSyncedB.Set(r.prbsCheckB.Synced())
	r.rxCDC.Offer(s.Word())
}

// SetBitMode switches between the 12-bit and 8-bit sample formats. The
// pack and unpack stages read the shared flag independently, so the
// switch is only legal while the datapath is quiesced; otherwise a word
// packed under one mode could be observed under the other.
func (r *RFIC) SetBitMode(bits int) error {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if r.enabled.Get() {
		return ErrNotQuiesced{What: "Bit mode"}
	}
	switch bits {
	case 12:
		r.bitmode8.Set(false)
	case 8:
		r.bitmode8.Set(true)
	default:
		return fmt.Errorf("Unknown bit mode: %d. Must be one of: 12, 8.", bits)
	}
	return nil
}

func (r *RFIC) BitMode() int {
	if r.bitmode8.Get() {
		return 8
	}
	return 12
}

// SetPhyMode selects 1R1T or 2R2T. Like the bit mode, the channel
// layout on the bus must not change under in-flight sample groups.
func (r *RFIC) SetPhyMode(m Mode) error {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if r.enabled.Get() {
		return ErrNotQuiesced{What: "PHY mode"}
	}
	return r.phy.SetMode(m)
}

// SetLoopback routes TX back into RX before serialization. Rejected at
// configuration time by variants that cannot do it.
func (r *RFIC) SetLoopback(on bool) error {
	if on && !r.phy.SupportsTransmit() {
		return ErrNotSupported{Variant: r.phy.Variant(), What: "loopback"}
	}
	return r.phy.SetLoopback(on)
}

// EnablePRBS switches the self-test generator in or out of the TX lanes.
// The substitution happens at a sample group boundary, never inside one.
func (r *RFIC) EnablePRBS(on bool) error {
	if on && !r.phy.SupportsTransmit() {
		return ErrNotSupported{Variant: r.phy.Variant(), What: "PRBS generation"}
	}
	r.prbsOn.Set(on)
	return nil
}

// PRBSSynced reports the AND of all lane checkers.
func (r *RFIC) PRBSSynced() bool {
	return r.prbsSyncedA.Get() && r.prbsSyncedB.Get()
}

func (r *RFIC) SyncLost() bool {
	return r.phy.SyncLost()
}

// RearmSync clears the framing sync-loss condition; the deserializer
// realigns on the next frame edge. While the datapath runs the request
// is handed to the PHY loop through a synchronized flag, never applied
// from this side of the crossing.
func (r *RFIC) RearmSync() {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if r.enabled.Get() {
		r.rearm.Set(true)
		return
	}
	r.phy.Rearm()
}

func (r *RFIC) Timestamp() uint64 {
	return r.ts.Time()
}

func (r *RFIC) RXDrops() uint64 {
	return r.rxCDC.Drops()
}

func (r *RFIC) AGCCounts() AGCCounts {
	return r.agc.Counts()
}

func (r *RFIC) AGCClear() {
	r.agc.Clear()
}

// SPI returns the register-access master towards the transceiver.
func (r *RFIC) SPI() *SPIMaster {
	return r.spi
}

// SetControls updates the stored control pin state of the transceiver.
func (r *RFIC) SetControls(c Controls) {
	r.ctrlMu.Lock()
	defer r.ctrlMu.Unlock()
	r.ctrl = c
}

func (r *RFIC) Controls() Controls {
	r.ctrlMu.Lock()
	defer r.ctrlMu.Unlock()
	return r.ctrl
}

func (r *RFIC) Status() Status {
	return Status{
		Enabled:     r.enabled.Get(),
		PhyVariant:  r.phy.Variant(),
		PhyMode:     r.phy.Mode().String(),
		BitMode:     r.BitMode(),
		Loopback:    r.phy.Loopback(),
		SyncLost:    r.phy.SyncLost(),
		PRBSEnabled: r.prbsOn.Get(),
		PRBSSynced:  r.PRBSSynced(),
		Timestamp:   r.ts.Time(),
		RXDrops:     r.rxCDC.Drops(),
		AGC:         r.agc.Counts(),
		Controls:    r.Controls(),
	}
}
