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
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// SPILayerNum identifies the layer
	SPILayerNum = 1995

	// SPIDataWidth is the length of one serial register transaction in
	// bits: 1 write flag bit, 15 address bits, 8 data bits, MSB first.
	SPIDataWidth = 24

	spiWriteBit  = 1 << 23
	spiAddrShift = 8
	spiAddrMask  = 0x7fff
)

// SPILayer is one serial register-access transaction towards the
// transceiver: a write flag in the top bit, a 15-bit register address and
// an 8-bit data phase. For reads the data phase carries the value shifted
// back by the slave.
type SPILayer struct {
	layers.BaseLayer
	Write bool
	Addr  uint16
	Data  uint8
}

var SPILayerType = gopacket.RegisterLayerType(SPILayerNum,
	gopacket.LayerTypeMetadata{Name: "SPILayerType", Decoder: gopacket.DecodeFunc(DecodeSPILayer)})

// LayerType returns the type of the SPI layer in the layer catalog
func (spi *SPILayer) LayerType() gopacket.LayerType {
	return SPILayerType
}

// Word returns the transaction as a 24-bit word in shift order, MSB
// first on the wire.
func (spi *SPILayer) Word() uint32 {
	word := (uint32(spi.Addr) & spiAddrMask) << spiAddrShift
	word |= uint32(spi.Data)
	if spi.Write {
		word |= spiWriteBit
	}
	return word
}

// FromWord fills the layer from a 24-bit transaction word.
func (spi *SPILayer) FromWord(word uint32) {
	spi.Write = word&spiWriteBit != 0
	spi.Addr = uint16((word >> spiAddrShift) & spiAddrMask)
	spi.Data = uint8(word & 0xff)
}

// Serialize writes the transaction to buf as 3 bytes in shift order.
func (spi *SPILayer) Serialize(buf []byte) {
	word := spi.Word()
	buf[0] = uint8(word >> 16)
	buf[1] = uint8(word >> 8)
	buf[2] = uint8(word)
}

// SerializeTo serializes the SPI transaction layer into bytes and writes the bytes to the SerializeBuffer
func (spi *SPILayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.AppendBytes(SPIDataWidth / 8)
	if err != nil {
		return err
	}
	spi.Serialize(bytes)
	return nil
}

func (spi *SPILayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < SPIDataWidth/8 {
		df.SetTruncated()
		return ErrSPITruncated{Length: len(data)}
	}
	spi.BaseLayer = layers.BaseLayer{
		Contents: data[:SPIDataWidth/8],
		Payload:  []byte{},
	}
	spi.FromWord(uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2]))
	return nil
}

func DecodeSPILayer(data []byte, p gopacket.PacketBuilder) error {
	spi := &SPILayer{}
	err := spi.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(spi)
	return nil
}
