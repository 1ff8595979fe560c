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

package stream

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-rfic/pkg/command"
	"jinr.ru/greenlab/go-rfic/pkg/config"
)

const (
	AddressOptionName    = "address"
	PhyVariantOptionName = "phy-variant"
	PhyModeOptionName    = "phy-mode"
)

// NewCommand creates a cobra command that starts the stream server
func NewCommand() *cobra.Command {
	var address, phyVariant, phyMode string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Start stream server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				cfg.Address = address
			}
			if phyVariant != "" {
				cfg.PhyVariant = phyVariant
			}
			if phyMode != "" {
				cfg.PhyMode = phyMode
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return command.StartStreamServer(cfg)
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Address to bind. E.g. %s", config.DefaultAddress))
	cmd.Flags().StringVar(&phyVariant, PhyVariantOptionName, "", "PHY variant. Must be one of: lvds, cmos.")
	cmd.Flags().StringVar(&phyMode, PhyModeOptionName, "", "PHY mode. Must be one of: 1R1T, 2R2T.")

	return cmd
}
