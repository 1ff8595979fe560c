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
	"jinr.ru/greenlab/go-rfic/pkg/stream"
)

const (
	// SampleBits is the native precision of the transceiver converters.
	SampleBits = 12

	// SampleMax and SampleMin are the representable extremes of a
	// sign-extended 12-bit sample.
	SampleMax = 2047
	SampleMin = -2048
)

// Sample is one atomic group of four signed values: the I/Q pair of
// channel A and the I/Q pair of channel B. Each value is logically 12
// bits and always carried sign-extended to 16 bits. The four fields
// transit the pipeline together or not at all.
type Sample struct {
	IA int16
	QA int16
	IB int16
	QB int16
}

// SignExtend12 widens a raw 12-bit bus value to a signed 16-bit value.
func SignExtend12(v uint16) int16 {
	v &= 0x0fff
	if v&0x0800 != 0 {
		v |= 0xf000
	}
	return int16(v)
}

// Word packs the sample into a 64-bit stream word as four 16-bit fields
// [IA, QA, IB, QB] from LSB to MSB.
func (s Sample) Word() stream.Word {
	return stream.Word(uint16(s.IA)) |
		stream.Word(uint16(s.QA))<<16 |
		stream.Word(uint16(s.IB))<<32 |
		stream.Word(uint16(s.QB))<<48
}

// SampleFromWord is the inverse of Sample.Word.
func SampleFromWord(w stream.Word) Sample {
	return Sample{
		IA: int16(uint16(w)),
		QA: int16(uint16(w >> 16)),
		IB: int16(uint16(w >> 32)),
		QB: int16(uint16(w >> 48)),
	}
}
