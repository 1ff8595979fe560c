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

package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-rfic/pkg/config"
	"jinr.ru/greenlab/go-rfic/pkg/rfic"
	"jinr.ru/greenlab/go-rfic/pkg/srv"
)

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s:%d/api", cfg.Address, srv.ApiPort),
	}
}

func (c *ApiClient) get(path string) (*req.Resp, error) {
	r, err := req.Get(fmt.Sprintf("%s/%s", c.ApiPrefix, path))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	return r, nil
}

func (c *ApiClient) post(path string, body interface{}) error {
	var r *req.Resp
	var err error
	if body == nil {
		r, err = req.Post(fmt.Sprintf("%s/%s", c.ApiPrefix, path))
	} else {
		r, err = req.Post(fmt.Sprintf("%s/%s", c.ApiPrefix, path), req.BodyJSON(body))
	}
	if err != nil {
		return err
	}
	if r.Response().StatusCode != 200 {
		return errors.New(r.Response().Status)
	}
	return nil
}

// Status sends request to get the datapath status snapshot
func (c *ApiClient) Status() (*rfic.Status, error) {
	r, err := c.get("status")
	if err != nil {
		return nil, err
	}
	status := &rfic.Status{}
	if err = r.ToJSON(status); err != nil {
		return nil, err
	}
	return status, nil
}

// DatapathEnable sends request to start the datapath
func (c *ApiClient) DatapathEnable() error {
	return c.post("datapath/enable", nil)
}

// DatapathDisable sends request to stop the datapath
func (c *ApiClient) DatapathDisable() error {
	return c.post("datapath/disable", nil)
}

// SetBitMode sends request to switch the sample format
func (c *ApiClient) SetBitMode(bits int) error {
	return c.post("bitmode", &srv.BitMode{Bits: bits})
}

// SetPhyMode sends request to switch the channel mode
func (c *ApiClient) SetPhyMode(mode string) error {
	return c.post("phymode", &srv.PhyMode{Mode: mode})
}

// SetLoopback sends request to switch the TX-RX loopback
func (c *ApiClient) SetLoopback(on bool) error {
	return c.post("loopback", &srv.Switch{On: on})
}

// PRBSEnable sends request to switch the self-test generator in or out
func (c *ApiClient) PRBSEnable(on bool) error {
	if on {
		return c.post("prbs/enable", nil)
	}
	return c.post("prbs/disable", nil)
}

// PRBSStatus sends request to get the self-test checker state
func (c *ApiClient) PRBSStatus() (*srv.PRBSStatus, error) {
	r, err := c.get("prbs/status")
	if err != nil {
		return nil, err
	}
	status := &srv.PRBSStatus{}
	if err = r.ToJSON(status); err != nil {
		return nil, err
	}
	return status, nil
}

// AGC sends request to get the saturation counters
func (c *ApiClient) AGC() (*rfic.AGCCounts, error) {
	r, err := c.get("agc")
	if err != nil {
		return nil, err
	}
	counts := &rfic.AGCCounts{}
	if err = r.ToJSON(counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// AGCClear sends request to clear the saturation counters
func (c *ApiClient) AGCClear() error {
	return c.post("agc/clear", nil)
}

// SyncRearm sends request to clear the framing sync-loss condition
func (c *ApiClient) SyncRearm() error {
	return c.post("sync/rearm", nil)
}

// RegGet sends request to read a transceiver register over the serial port
func (c *ApiClient) RegGet(addr string) (*srv.Reg, error) {
	addrInt, err := strconv.ParseUint(addr, 0, 15)
	if err != nil {
		return nil, err
	}
	r, err := c.get(fmt.Sprintf("reg/0x%03x", addrInt))
	if err != nil {
		return nil, err
	}
	reg := &srv.Reg{}
	if err = r.ToJSON(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// RegSet sends request to write a transceiver register over the serial port
func (c *ApiClient) RegSet(addr, value string) error {
	addrInt, err := strconv.ParseUint(addr, 0, 15)
	if err != nil {
		return err
	}
	valueInt, err := strconv.ParseUint(value, 0, 8)
	if err != nil {
		return err
	}
	return c.post("reg", &srv.Reg{Addr: uint16(addrInt), Value: uint8(valueInt)})
}

// RegGetAll sends request to get all cached register values
func (c *ApiClient) RegGetAll() ([]*srv.Reg, error) {
	r, err := c.get("reg")
	if err != nil {
		return nil, err
	}
	var regs []*srv.Reg
	if err = r.ToJSON(&regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// Persist sends request to start writing received segments to a file
func (c *ApiClient) Persist(dirPath, filePrefix string) error {
	return c.post("persist", &srv.Persist{
		Dir:        dirPath,
		FilePrefix: filePrefix,
	})
}

// Flush sends request to flush and close the segment file
func (c *ApiClient) Flush() error {
	_, err := c.get("flush")
	return err
}
