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

package datapath

import (
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-rfic/pkg/command"
	"jinr.ru/greenlab/go-rfic/pkg/config"
)

const (
	BitsOptionName = "bits"
	ModeOptionName = "mode"
	OnOptionName   = "on"
)

func NewBitModeCommand() *cobra.Command {
	var bits int
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "bitmode",
		Short: "Set the sample format. The datapath must be disabled first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			return apiClient.SetBitMode(bits)
		},
	}
	cmd.Flags().IntVar(&bits, BitsOptionName, 12, "Bits per sample. Must be one of: 12, 8.")

	return cmd
}

func NewPhyModeCommand() *cobra.Command {
	var mode string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "phymode",
		Short: "Set the channel mode. The datapath must be disabled first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			return apiClient.SetPhyMode(mode)
		},
	}
	cmd.Flags().StringVar(&mode, ModeOptionName, "", "PHY mode. Must be one of: 1R1T, 2R2T.")

	return cmd
}

func NewLoopbackCommand() *cobra.Command {
	var on bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "loopback",
		Short: "Route TX back into RX before serialization",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			return apiClient.SetLoopback(on)
		},
	}
	cmd.Flags().BoolVar(&on, OnOptionName, false, "Loopback on or off")

	return cmd
}

func NewRearmCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "rearm",
		Short: "Clear the framing sync-loss condition",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			return apiClient.SyncRearm()
		},
	}
	return cmd
}
