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

package layers

import (
	"encoding/binary"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// HeaderLayerNum identifies the layer
	HeaderLayerNum = 1996

	// HeaderTag is the fixed 8-byte tag opening every framed segment.
	// The value is arbitrary and not interpreted by either end.
	HeaderTag uint64 = 0x5aa55aa55aa55aa5

	// HeaderSize is the size of the header block in bytes: 8-byte tag
	// followed by an 8-byte timestamp.
	HeaderSize = 16
)

// HeaderLayer is the header block prefixed to each segment of 64-bit
// sample words exchanged with the host transport. The timestamp is the
// value of the free-running PHY domain counter sampled when the segment
// was framed. Everything is little-endian, matching the word endianness
// of the transport.
type HeaderLayer struct {
	layers.BaseLayer
	Tag       uint64
	Timestamp uint64
}

var HeaderLayerType = gopacket.RegisterLayerType(HeaderLayerNum,
	gopacket.LayerTypeMetadata{Name: "HeaderLayerType", Decoder: gopacket.DecodeFunc(DecodeHeaderLayer)})

// LayerType returns the type of the header layer in the layer catalog
func (h *HeaderLayer) LayerType() gopacket.LayerType {
	return HeaderLayerType
}

// Serialize writes the 16-byte header block to buf.
func (h *HeaderLayer) Serialize(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], h.Tag)
	binary.LittleEndian.PutUint64(buf[8:16], h.Timestamp)
}

// SerializeTo serializes the header layer into bytes and writes the bytes to the SerializeBuffer
func (h *HeaderLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(HeaderSize)
	if err != nil {
		return err
	}
	h.Serialize(bytes)
	return nil
}

func (h *HeaderLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	// A segment shorter than the header block is a truncated frame, not
	// a clean close, and must be distinguishable by the caller.
	if len(data) < HeaderSize {
		df.SetTruncated()
		return ErrHeaderUnderrun{Length: len(data)}
	}
	h.BaseLayer = layers.BaseLayer{
		Contents: data[:HeaderSize],
		Payload:  data[HeaderSize:],
	}
	h.Tag = binary.LittleEndian.Uint64(data[0:8])
	h.Timestamp = binary.LittleEndian.Uint64(data[8:16])
	return nil
}

func DecodeHeaderLayer(data []byte, p gopacket.PacketBuilder) error {
	h := &HeaderLayer{}
	err := h.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(h)
	return p.NextDecoder(gopacket.LayerTypePayload)
}
