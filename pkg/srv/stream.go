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
	"context"
	"fmt"
	"io"
	"net"
	"path"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-rfic/pkg/config"
	"jinr.ru/greenlab/go-rfic/pkg/layers"
	"jinr.ru/greenlab/go-rfic/pkg/log"
	"jinr.ru/greenlab/go-rfic/pkg/rfic"
)

const (
	StreamPort   = 33555
	WriterChSize = 100
	InChSize     = 100
)

// StreamServer moves framed sample segments between the datapath and
// the network. Inbound segments are deframed and pushed into the
// transmit side of the datapath; words coming out of the receive side
// are framed and sent to every configured stream peer, and optionally
// written to a file.
type StreamServer struct {
	Server
	rfic  *rfic.RFIC
	state *State
	api   *ApiServer

	framer   *Framer
	deframer *Deframer
	peers    []*net.UDPAddr

	writer        io.Writer
	writerCh      chan []byte
	writerStateCh chan string
}

func NewStreamServer(ctx context.Context, cfg *config.Config, device *rfic.RFIC) (*StreamServer, error) {
	log.Info("Initializing stream server with address: %s port: %d", cfg.Address, StreamPort)

	uaddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", cfg.Address, StreamPort))
	if err != nil {
		return nil, err
	}

	var peers []*net.UDPAddr
	for _, peer := range cfg.StreamPeers {
		paddr, resolveErr := net.ResolveUDPAddr("udp", net.JoinHostPort(peer.Address, peer.Port))
		if resolveErr != nil {
			return nil, resolveErr
		}
		peers = append(peers, paddr)
	}

	state, err := NewState(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &StreamServer{
		Server: Server{
			Context: ctx,
			Config:  cfg,
			UDPAddr: uaddr,
			ChIn:    make(chan InPacket, InChSize),
			ChOut:   make(chan OutPacket),
		},
		rfic:          device,
		state:         state,
		framer:        NewFramer(cfg.SegmentSize, device.Timestamp),
		deframer:      NewDeframer(),
		peers:         peers,
		writer:        io.Discard,
		writerCh:      make(chan []byte, WriterChSize),
		writerStateCh: make(chan string),
	}

	apiServer, err := NewApiServer(ctx, cfg, s)
	if err != nil {
		return nil, err
	}
	s.api = apiServer

	return s, nil
}

func (s *StreamServer) Run() error {
	conn, err := net.ListenUDP("udp", s.UDPAddr)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer s.state.Close()

	errChan := make(chan error, 1)
	buffer := make([]byte, 1048576)

	// flush the writer before exit
	defer s.Flush()

	// Read packets from wire and put them to input queue
	go func() {
		for {
			length, addr, readErr := conn.ReadFrom(buffer)
			if readErr != nil {
				errChan <- readErr
				return
			}
			udpAddr, readErr := net.ResolveUDPAddr("udp", addr.String())
			if readErr != nil {
				errChan <- readErr
				return
			}
			log.Debug("Received segment from %s", udpAddr)

			captureInfo := gopacket.CaptureInfo{
				Length:        length,
				CaptureLength: length,
				Timestamp:     time.Now(),
				AncillaryData: []interface{}{udpAddr},
			}
			packet := InPacket{CaptureInfo: captureInfo, Data: make([]byte, length)}
			copy(packet.Data, buffer[:length])
			s.ChIn <- packet
		}
	}()

	// Read packets from output queue and send them to wire
	go func() {
		for {
			outPacket := <-s.ChOut
			_, sendErr := conn.WriteToUDP(outPacket.Data, outPacket.UDPAddr)
			if sendErr != nil {
				log.Error("Error while sending data to %s", outPacket.UDPAddr)
				errChan <- sendErr
				return
			}
		}
	}()

	// Deframe inbound segments and push their words into the transmit
	// side of the datapath
	go func() {
		source := gopacket.NewPacketSource(&s.Server, layers.HeaderLayerType)
		for packet := range source.Packets() {
			if errLayer := packet.ErrorLayer(); errLayer != nil {
				log.Error("Error while decoding segment: %s", errLayer.Error())
				continue
			}
			timestamp, words, decodeErr := s.deframer.Decode(packet.Data())
			if decodeErr != nil {
				log.Error("Error while deframing segment: %s", decodeErr)
				continue
			}
			log.Debug("Segment deframed: timestamp: %d words: %d", timestamp, len(words))
			for _, w := range words {
				if pushErr := s.rfic.Sink.Push(s.Context, w); pushErr != nil {
					return
				}
			}
		}
	}()

	// Frame words coming out of the receive side of the datapath and
	// fan the segments out to the stream peers and the writer
	go func() {
		for {
			w, popErr := s.rfic.Source.Pop(s.Context)
			if popErr != nil {
				return
			}
			segment, ready, frameErr := s.framer.Append(w)
			if frameErr != nil {
				log.Error("Error while framing segment: %s", frameErr)
				continue
			}
			if !ready {
				continue
			}
			for _, peer := range s.peers {
				s.ChOut <- OutPacket{
					Data:    segment,
					UDPAddr: peer,
				}
			}
			s.writerCh <- segment
		}
	}()

	// Run segment writer
	go func() {
		currentFilename := ""
		for {
			select {
			case filename := <-s.writerStateCh:
				if currentFilename != "" {
					w := s.writer.(*Writer)
					w.Flush()
				}
				if filename == "" {
					s.writer = io.Discard
				} else {
					w, newWriterErr := NewWriter(filename)
					if newWriterErr != nil {
						log.Error("Error while creating writer: %s", newWriterErr)
						continue
					}
					s.writer = w
				}
				currentFilename = filename
			default:
			}
			select {
			case bytes := <-s.writerCh:
				_, writeErr := s.writer.Write(bytes)
				if writeErr != nil {
					log.Error("Error while writing to file: %s", writeErr)
				}
			default:
				time.Sleep(10 * time.Millisecond)
			}
		}
	}()

	go func() {
		s.api.Run()
	}()

	if err = s.rfic.Enable(); err != nil {
		return err
	}
	defer s.rfic.Disable()

	select {
	case <-s.Context.Done():
		return s.Context.Err()
	case err = <-errChan:
		return err
	}
}

func (s *StreamServer) persistFilename(dir, prefix, suffix string) string {
	filename := fmt.Sprintf("rfic_%s.data", suffix)
	if prefix != "" {
		filename = fmt.Sprintf("%s_%s", prefix, filename)
	}
	return path.Join(dir, filename)
}

func (s *StreamServer) Flush() {
	log.Info("Flush writer")
	s.writerStateCh <- ""
}

func (s *StreamServer) Persist(dir, filePrefix string) {
	timestamp := time.Now().UTC().Format("20060102_150405")
	log.Info("Persist writer")
	s.writerStateCh <- s.persistFilename(dir, filePrefix, timestamp)
}
