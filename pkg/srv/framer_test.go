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
	"testing"

	"jinr.ru/greenlab/go-rfic/pkg/layers"
	"jinr.ru/greenlab/go-rfic/pkg/stream"
)

func TestFramerRoundTrip(t *testing.T) {
	now := uint64(1000)
	f := NewFramer(4, func() uint64 { return now })
	d := NewDeframer()

	words := []stream.Word{1, 2, 3, 4}
	var segment []byte
	for i, w := range words {
		seg, ready, err := f.Append(w)
		if err != nil {
			t.Fatalf("could not append word %d: %+v", i, err)
		}
		if ready != (i == len(words)-1) {
			t.Fatalf("invalid ready at word %d: got=%t", i, ready)
		}
		if ready {
			segment = seg
		}
		// The timestamp must be the one sampled at the first word.
		now++
	}

	if len(segment) != layers.HeaderSize+8*len(words) {
		t.Fatalf("invalid segment length: got=%d, want=%d", len(segment), layers.HeaderSize+8*len(words))
	}
	if tag := binary.LittleEndian.Uint64(segment[:8]); tag != layers.HeaderTag {
		t.Fatalf("invalid tag: got=%#x, want=%#x", tag, layers.HeaderTag)
	}

	ts, got, err := d.Decode(segment)
	if err != nil {
		t.Fatalf("could not decode: %+v", err)
	}
	if ts != 1000 {
		t.Fatalf("invalid timestamp: got=%d, want=%d", ts, 1000)
	}
	if len(got) != len(words) {
		t.Fatalf("invalid word count: got=%d, want=%d", len(got), len(words))
	}
	for i := range words {
		if got[i] != words[i] {
			t.Fatalf("invalid word %d: got=%d, want=%d", i, got[i], words[i])
		}
	}
	if d.LastTimestamp() != 1000 {
		t.Fatalf("invalid last timestamp: got=%d, want=%d", d.LastTimestamp(), 1000)
	}
}

func TestFramerReset(t *testing.T) {
	now := uint64(0)
	f := NewFramer(2, func() uint64 { now += 100; return now })

	if _, ready, err := f.Append(7); err != nil || ready {
		t.Fatalf("unexpected segment after one word: ready=%t err=%v", ready, err)
	}
	f.Reset()

	// The discarded word must not leak into the next segment, and the
	// timestamp is sampled anew.
	seg, ready, err := f.Append(8)
	if err != nil || ready {
		t.Fatalf("unexpected segment after one word: ready=%t err=%v", ready, err)
	}
	seg, ready, err = f.Append(9)
	if err != nil {
		t.Fatalf("could not append: %+v", err)
	}
	if !ready {
		t.Fatalf("segment not ready")
	}

	ts, words, err := NewDeframer().Decode(seg)
	if err != nil {
		t.Fatalf("could not decode: %+v", err)
	}
	if ts != 200 {
		t.Fatalf("invalid timestamp: got=%d, want=%d", ts, 200)
	}
	if len(words) != 2 || words[0] != 8 || words[1] != 9 {
		t.Fatalf("invalid words: got=%v", words)
	}
}

func TestDeframerErrors(t *testing.T) {
	d := NewDeframer()

	if _, _, err := d.Decode(make([]byte, layers.HeaderSize-1)); err == nil {
		t.Fatalf("expected an error for a truncated header")
	} else if _, ok := err.(layers.ErrHeaderUnderrun); !ok {
		t.Fatalf("invalid error type: got=%T, want=ErrHeaderUnderrun", err)
	}

	if _, _, err := d.Decode(make([]byte, layers.HeaderSize+5)); err == nil {
		t.Fatalf("expected an error for a ragged payload")
	} else if _, ok := err.(ErrBadSegment); !ok {
		t.Fatalf("invalid error type: got=%T, want=ErrBadSegment", err)
	}

	// An empty payload is a valid, if pointless, segment.
	if _, words, err := d.Decode(make([]byte, layers.HeaderSize)); err != nil {
		t.Fatalf("could not decode: %+v", err)
	} else if len(words) != 0 {
		t.Fatalf("invalid word count: got=%d, want=%d", len(words), 0)
	}
}
