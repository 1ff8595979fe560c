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

	"jinr.ru/greenlab/go-rfic/pkg/stream"
)

// Bit-mode conversion between the 12-bit (four 16-bit fields per word)
// and 8-bit (eight 8-bit fields per word, two samples) representations.
//
// The mode flag is shared by the pack and unpack stages and is read per
// word, so it must only change while the datapath is quiesced. That is a
// contract of the configuration surface, not something these stages can
// verify.

const bitModeShift = 8

// Pack8 truncates two samples to their top 8 bits and packs them into
// one 64-bit word, first sample in the low half. The truncation is an
// arithmetic shift, so the sign survives.
func Pack8(s0, s1 Sample) stream.Word {
	lo := uint32(uint8(s0.IA>>bitModeShift)) |
		uint32(uint8(s0.QA>>bitModeShift))<<8 |
		uint32(uint8(s0.IB>>bitModeShift))<<16 |
		uint32(uint8(s0.QB>>bitModeShift))<<24
	hi := uint32(uint8(s1.IA>>bitModeShift)) |
		uint32(uint8(s1.QA>>bitModeShift))<<8 |
		uint32(uint8(s1.IB>>bitModeShift))<<16 |
		uint32(uint8(s1.QB>>bitModeShift))<<24
	return stream.Word(lo) | stream.Word(hi)<<32
}

// Unpack8 is the inverse of Pack8. The truncated values are widened back
// by replicating the sign bit upward, so the low 8 bits of each restored
// field are zero. Unpacking a repacked word reproduces the same values.
func Unpack8(w stream.Word) (Sample, Sample) {
	ext := func(shift uint) int16 {
		return int16(int8(uint8(w>>shift))) << bitModeShift
	}
	s0 := Sample{IA: ext(0), QA: ext(8), IB: ext(16), QB: ext(24)}
	s1 := Sample{IA: ext(32), QA: ext(40), IB: ext(48), QB: ext(56)}
	return s0, s1
}

// TXBitMode is the transmit direction widen stage: words flow through
// untouched in 12-bit mode; in 8-bit mode each host word carries two
// truncated samples and becomes two full sample words towards the PHY.
func TXBitMode(mode8 *stream.Flag, from *stream.Endpoint, to *stream.CDC) stream.Stage {
	return func(ctx context.Context) error {
		for {
			w, err := from.Pop(ctx)
			if err != nil {
				return err
			}
			if mode8.Get() {
				s0, s1 := Unpack8(w)
				if err := to.Push(ctx, s0.Word()); err != nil {
					return err
				}
				if err := to.Push(ctx, s1.Word()); err != nil {
					return err
				}
				continue
			}
			if err := to.Push(ctx, w); err != nil {
				return err
			}
		}
	}
}

// RXBitMode is the receive direction truncate stage: the inverse of
// TXBitMode, two sample words become one packed host word in 8-bit
// mode, halving the transport bandwidth. observe is called for every
// sample word actually transferred out of the CDC queue, before
// conversion; it feeds the saturation counters.
func RXBitMode(mode8 *stream.Flag, from *stream.CDC, to *stream.Endpoint, observe func(Sample)) stream.Stage {
	return func(ctx context.Context) error {
		for {
			w, err := from.Pop(ctx)
			if err != nil {
				return err
			}
			if observe != nil {
				observe(SampleFromWord(w))
			}
			if mode8.Get() {
				w2, err := from.Pop(ctx)
				if err != nil {
					return err
				}
				if observe != nil {
					observe(SampleFromWord(w2))
				}
				w = Pack8(SampleFromWord(w), SampleFromWord(w2))
			}
			if err := to.Push(ctx, w); err != nil {
				return err
			}
		}
	}
}
