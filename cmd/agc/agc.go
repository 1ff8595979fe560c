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

package agc

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-rfic/pkg/command"
	"jinr.ru/greenlab/go-rfic/pkg/config"
)

// NewCommand creates the parent command for gain control counters
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agc",
		Short: "Inspect the gain control saturation counters",
	}
	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewClearCommand())
	return cmd
}

func NewShowCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saturation counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			counts, err := apiClient.AGC()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rx1: low: %d high: %d\n", counts.RX1Low, counts.RX1High)
			fmt.Fprintf(cmd.OutOrStdout(), "rx2: low: %d high: %d\n", counts.RX2Low, counts.RX2High)
			return nil
		},
	}
	return cmd
}

func NewClearCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the saturation counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			return apiClient.AGCClear()
		},
	}
	return cmd
}
