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
	"bytes"
	"testing"

	"github.com/google/gopacket"
)

func TestHeaderLayerSerialize(t *testing.T) {
	header := &HeaderLayer{
		Tag:       HeaderTag,
		Timestamp: 0x0102030405060708,
	}
	payload := []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x11, 0x22}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}
	if err := gopacket.SerializeLayers(buf, opts, header, gopacket.Payload(payload)); err != nil {
		t.Fatalf("could not serialize: %+v", err)
	}

	data := buf.Bytes()
	if len(data) != HeaderSize+len(payload) {
		t.Fatalf("invalid length: got=%d, want=%d", len(data), HeaderSize+len(payload))
	}
	// Tag first, little-endian.
	wantTag := []byte{0xa5, 0x5a, 0xa5, 0x5a, 0xa5, 0x5a, 0xa5, 0x5a}
	if !bytes.Equal(data[:8], wantTag) {
		t.Fatalf("invalid tag bytes: got=%x, want=%x", data[:8], wantTag)
	}
	wantTS := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(data[8:16], wantTS) {
		t.Fatalf("invalid timestamp bytes: got=%x, want=%x", data[8:16], wantTS)
	}
	if !bytes.Equal(data[16:], payload) {
		t.Fatalf("invalid payload: got=%x, want=%x", data[16:], payload)
	}
}

func TestHeaderLayerDecode(t *testing.T) {
	header := &HeaderLayer{
		Tag:       HeaderTag,
		Timestamp: 42,
	}
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}
	if err := gopacket.SerializeLayers(buf, opts, header, gopacket.Payload(payload)); err != nil {
		t.Fatalf("could not serialize: %+v", err)
	}

	packet := gopacket.NewPacket(buf.Bytes(), HeaderLayerType, gopacket.Default)
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		t.Fatalf("could not decode: %+v", errLayer.Error())
	}

	decoded := packet.Layer(HeaderLayerType)
	if decoded == nil {
		t.Fatalf("header layer not found")
	}
	got := decoded.(*HeaderLayer)
	if got.Tag != HeaderTag {
		t.Fatalf("invalid tag: got=%#x, want=%#x", got.Tag, HeaderTag)
	}
	if got.Timestamp != 42 {
		t.Fatalf("invalid timestamp: got=%d, want=%d", got.Timestamp, 42)
	}
	if !bytes.Equal(got.LayerPayload(), payload) {
		t.Fatalf("invalid payload: got=%x, want=%x", got.LayerPayload(), payload)
	}
}

func TestHeaderLayerUnderrun(t *testing.T) {
	for _, tc := range []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "tag-only", data: make([]byte, 8)},
		{name: "one-short", data: make([]byte, HeaderSize-1)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			header := &HeaderLayer{}
			err := header.DecodeFromBytes(tc.data, gopacket.NilDecodeFeedback)
			if err == nil {
				t.Fatalf("expected an error")
			}
			underrun, ok := err.(ErrHeaderUnderrun)
			if !ok {
				t.Fatalf("invalid error type: got=%T, want=ErrHeaderUnderrun", err)
			}
			if underrun.Length != len(tc.data) {
				t.Fatalf("invalid length: got=%d, want=%d", underrun.Length, len(tc.data))
			}
		})
	}
}

func TestSPILayerWord(t *testing.T) {
	for _, tc := range []struct {
		name  string
		layer SPILayer
		want  uint32
	}{
		{
			name:  "write",
			layer: SPILayer{Write: true, Addr: 0x010, Data: 0xff},
			want:  0x8010ff,
		},
		{
			name:  "read",
			layer: SPILayer{Write: false, Addr: 0x7fff, Data: 0},
			want:  0x7fff00,
		},
		{
			name:  "zero",
			layer: SPILayer{},
			want:  0,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.layer.Word()
			if got != tc.want {
				t.Fatalf("invalid word: got=%#x, want=%#x", got, tc.want)
			}
			var back SPILayer
			back.FromWord(got)
			if back.Write != tc.layer.Write || back.Addr != tc.layer.Addr || back.Data != tc.layer.Data {
				t.Fatalf("invalid round trip: got=%+v, want=%+v", back, tc.layer)
			}
		})
	}
}

func TestSPILayerSerialize(t *testing.T) {
	spi := &SPILayer{Write: true, Addr: 0x123, Data: 0x45}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}
	if err := spi.SerializeTo(buf, opts); err != nil {
		t.Fatalf("could not serialize: %+v", err)
	}
	want := []byte{0x81, 0x23, 0x45}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("invalid bytes: got=%x, want=%x", buf.Bytes(), want)
	}

	var back SPILayer
	if err := back.DecodeFromBytes(buf.Bytes(), gopacket.NilDecodeFeedback); err != nil {
		t.Fatalf("could not decode: %+v", err)
	}
	if back.Write != spi.Write || back.Addr != spi.Addr || back.Data != spi.Data {
		t.Fatalf("invalid round trip: got=%+v, want=%+v", back, spi)
	}
}

func TestSPILayerTruncated(t *testing.T) {
	var spi SPILayer
	err := spi.DecodeFromBytes([]byte{0x81, 0x23}, gopacket.NilDecodeFeedback)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if _, ok := err.(ErrSPITruncated); !ok {
		t.Fatalf("invalid error type: got=%T, want=ErrSPITruncated", err)
	}
}
