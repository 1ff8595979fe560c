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
	"encoding/binary"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-rfic/pkg/config"
	"jinr.ru/greenlab/go-rfic/pkg/log"
	"jinr.ru/greenlab/go-rfic/pkg/rfic"
)

const (
	RegBucketName    = "rfic_regs"
	StatusBucketName = "rfic_status"
	StatusKey        = "snapshot"
)

// Reg is one cached transceiver register. The cache keeps the last value
// seen on the serial port for each address so the host can inspect the
// chip configuration without touching the wire.
type Reg struct {
	Addr  uint16 `json:"addr"`
	Value uint8  `json:"value"`
}

// State persists the register cache and the last datapath status
// snapshot across restarts.
type State struct {
	context.Context
	DB *bbolt.DB
}

func NewState(ctx context.Context, cfg *config.Config) (*State, error) {
	db, err := bbolt.Open(cfg.DBPath(), 0600, nil)
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		if _, err = tx.CreateBucketIfNotExists([]byte(RegBucketName)); err != nil {
			return err
		}
		if _, err = tx.CreateBucketIfNotExists([]byte(StatusBucketName)); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &State{
		Context: ctx,
		DB:      db,
	}, nil
}

func uint16ToByte(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

// Close ...
func (s *State) Close() {
	s.DB.Close()
}

// SetReg ...
func (s *State) SetReg(reg *Reg) error {
	log.Debug("Setting register: Addr: %x Value: %x", reg.Addr, reg.Value)
	if err := s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(RegBucketName))
		if b == nil {
			return errors.New(fmt.Sprintf("Bucket not found: %s", RegBucketName))
		}
		return b.Put(uint16ToByte(reg.Addr), []byte{reg.Value})
	}); err != nil {
		return err
	}
	return nil
}

// GetReg ...
func (s *State) GetReg(addr uint16) (*Reg, error) {
	log.Debug("Getting register: Addr: %x", addr)
	var value uint8
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(RegBucketName))
		if b == nil {
			return errors.New(fmt.Sprintf("Bucket not found: %s", RegBucketName))
		}
		valueBytes := b.Get(uint16ToByte(addr))
		if valueBytes == nil {
			return errors.New(fmt.Sprintf("Key not found: %d", addr))
		}
		value = valueBytes[0]
		return nil
	}); err != nil {
		return nil, err
	}
	return &Reg{
		Addr:  addr,
		Value: value,
	}, nil
}

// GetRegAll returns every register seen on the serial port so far, in
// address order.
func (s *State) GetRegAll() ([]*Reg, error) {
	log.Debug("Getting all registers")
	var regs []*Reg
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(RegBucketName))
		if b == nil {
			return errors.New(fmt.Sprintf("Bucket not found: %s", RegBucketName))
		}
		return b.ForEach(func(k, v []byte) error {
			regs = append(regs, &Reg{
				Addr:  binary.BigEndian.Uint16(k),
				Value: v[0],
			})
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return regs, nil
}

// SetStatus stores a datapath status snapshot.
func (s *State) SetStatus(status rfic.Status) error {
	data, err := yaml.Marshal(&status)
	if err != nil {
		return err
	}
	if err := s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(StatusBucketName))
		if b == nil {
			return errors.New(fmt.Sprintf("Bucket not found: %s", StatusBucketName))
		}
		return b.Put([]byte(StatusKey), data)
	}); err != nil {
		return err
	}
	return nil
}

// GetStatus returns the last stored status snapshot.
func (s *State) GetStatus() (*rfic.Status, error) {
	var data []byte
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(StatusBucketName))
		if b == nil {
			return errors.New(fmt.Sprintf("Bucket not found: %s", StatusBucketName))
		}
		stored := b.Get([]byte(StatusKey))
		if stored == nil {
			return errors.New(fmt.Sprintf("Key not found: %s", StatusKey))
		}
		data = append(data, stored...)
		return nil
	}); err != nil {
		return nil, err
	}
	status := &rfic.Status{}
	if err := yaml.Unmarshal(data, status); err != nil {
		return nil, err
	}
	return status, nil
}
