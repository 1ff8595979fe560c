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

package prbs

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-rfic/pkg/command"
	"jinr.ru/greenlab/go-rfic/pkg/config"
)

// NewCommand creates the parent command for self-test operations
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prbs",
		Short: "Control the PRBS self-test",
	}
	cmd.AddCommand(NewEnableCommand())
	cmd.AddCommand(NewDisableCommand())
	cmd.AddCommand(NewStatusCommand())
	return cmd
}

func NewEnableCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Switch the self-test generator into the TX lanes",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			return apiClient.PRBSEnable(true)
		},
	}
	return cmd
}

func NewDisableCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "disable",
		Short: "Switch the self-test generator out of the TX lanes",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			return apiClient.PRBSEnable(false)
		},
	}
	return cmd
}

func NewStatusCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the self-test checker state",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			status, err := apiClient.PRBSStatus()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enabled: %t synced: %t\n", status.Enabled, status.Synced)
			return nil
		},
	}
	return cmd
}
