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

package srv

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-rfic/pkg/layers"
	"jinr.ru/greenlab/go-rfic/pkg/stream"
)

// Framer collects outbound sample words into fixed-size segments and
// prefixes each segment with a header block. The timestamp recorded in
// the header is sampled when the first word of the segment arrives, so
// it marks the age of the oldest sample in the segment.
type Framer struct {
	segmentSize int
	now         func() uint64

	mu    sync.Mutex
	words []stream.Word
	ts    uint64
}

func NewFramer(segmentSize int, now func() uint64) *Framer {
	return &Framer{
		segmentSize: segmentSize,
		now:         now,
		words:       make([]stream.Word, 0, segmentSize),
	}
}

// Append adds one word to the segment under construction. When the
// segment is complete it is serialized and returned; otherwise the
// returned bool is false.
func (f *Framer) Append(w stream.Word) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.words) == 0 {
		f.ts = f.now()
	}
	f.words = append(f.words, w)
	if len(f.words) < f.segmentSize {
		return nil, false, nil
	}
	data, err := f.serialize()
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (f *Framer) serialize() ([]byte, error) {
	payload := make([]byte, 8*len(f.words))
	for i, w := range f.words {
		binary.LittleEndian.PutUint64(payload[8*i:], uint64(w))
	}
	f.words = f.words[:0]

	header := &layers.HeaderLayer{
		Tag:       layers.HeaderTag,
		Timestamp: f.ts,
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}
	if err := gopacket.SerializeLayers(buf, opts, header, gopacket.Payload(payload)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Reset discards a partially collected segment. It must be called when
// the datapath is disabled so a stale partial segment is never glued to
// the front of the next session.
func (f *Framer) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.words = f.words[:0]
}

// Deframer strips the header block from inbound segments and unpacks
// the payload into sample words. It keeps the timestamp of the last
// decoded header for the host to poll.
type Deframer struct {
	lastTimestamp uint64
}

func NewDeframer() *Deframer {
	return &Deframer{}
}

// Decode splits one segment into its header timestamp and payload
// words. Segments shorter than the header block fail with
// ErrHeaderUnderrun, payloads that are not a whole number of words with
// ErrBadSegment.
func (d *Deframer) Decode(data []byte) (uint64, []stream.Word, error) {
	header := &layers.HeaderLayer{}
	if err := header.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return 0, nil, err
	}
	payload := header.LayerPayload()
	if len(payload)%8 != 0 {
		return 0, nil, ErrBadSegment{Length: len(payload)}
	}

	words := make([]stream.Word, len(payload)/8)
	for i := range words {
		words[i] = stream.Word(binary.LittleEndian.Uint64(payload[8*i:]))
	}
	atomic.StoreUint64(&d.lastTimestamp, header.Timestamp)
	return header.Timestamp, words, nil
}

// LastTimestamp returns the header timestamp of the most recently
// decoded segment.
func (d *Deframer) LastTimestamp() uint64 {
	return atomic.LoadUint64(&d.lastTimestamp)
}

// Reset clears the remembered timestamp.
func (d *Deframer) Reset() {
	atomic.StoreUint64(&d.lastTimestamp, 0)
}
