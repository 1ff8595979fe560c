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

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type StreamPeer struct {
	Address string `yaml:"address,omitempty"`
	Port    string `yaml:"port,omitempty"`
}

type Config struct {
	Address  string `yaml:"address,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`

	// PhyVariant selects the electrical variant of the PHY, either
	// "lvds" (full duplex) or "cmos" (receive only).
	PhyVariant string `yaml:"phy_variant,omitempty"`
	// PhyMode is either "2R2T" (both channel pairs live) or "1R1T"
	// (channel pair B forced to zero).
	PhyMode string `yaml:"phy_mode,omitempty"`
	// BitMode is the sample format: 12 (12-bit samples in 16-bit slots)
	// or 8 (8-bit truncated samples, two samples per word).
	BitMode int `yaml:"bit_mode,omitempty"`

	SegmentSize   int `yaml:"segment_size,omitempty"`
	CDCDepth      int `yaml:"cdc_depth,omitempty"`
	SPIClkDivider int `yaml:"spi_clk_divider,omitempty"`

	StreamPeers []*StreamPeer `yaml:"stream_peers"`

	filepath string
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(&c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	err = ioutil.WriteFile(c.filepath, data, 0644)
	if err != nil {
		return err
	}

	return nil
}

func (c *Config) Load() error {
	data, err := ioutil.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	if c.PhyVariant != "lvds" && c.PhyVariant != "cmos" {
		return fmt.Errorf("Unknown PHY variant: %s. Must be one of: lvds, cmos.", c.PhyVariant)
	}
	if c.PhyMode != "1R1T" && c.PhyMode != "2R2T" {
		return fmt.Errorf("Unknown PHY mode: %s. Must be one of: 1R1T, 2R2T.", c.PhyMode)
	}
	if c.BitMode != 12 && c.BitMode != 8 {
		return fmt.Errorf("Unknown bit mode: %d. Must be one of: 12, 8.", c.BitMode)
	}
	if c.CDCDepth < 2 {
		return fmt.Errorf("CDC depth too small: %d. Must be at least 2.", c.CDCDepth)
	}
	if c.SegmentSize < 1 {
		return fmt.Errorf("Segment size too small: %d. Must be at least 1.", c.SegmentSize)
	}
	return nil
}

func (c *Config) DBPath() string {
	return filepath.Join(filepath.Dir(c.filepath), DBFile)
}

// SetPath moves the config file location, and with it the state
// database kept next to it.
func (c *Config) SetPath(path string) {
	c.filepath = path
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		Address:       DefaultAddress,
		LogLevel:      DefaultLogLevel,
		PhyVariant:    DefaultPhyVariant,
		PhyMode:       DefaultPhyMode,
		BitMode:       DefaultBitMode,
		SegmentSize:   DefaultSegmentSize,
		CDCDepth:      DefaultCDCDepth,
		SPIClkDivider: DefaultSPIClkDivider,
		StreamPeers: []*StreamPeer{
			{
				Address: DefaultStreamPeerAddress,
				Port:    DefaultStreamPeerPort,
			},
		},
		filepath: DefaultConfigPath(),
	}
}
