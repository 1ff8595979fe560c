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
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-rfic/pkg/config"
)

const (
	OverwriteOptionName = "overwrite"
)

func NewPersistCommand() *cobra.Command {
	var overwrite bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "persist",
		Short: "Write configuration to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Persist(overwrite)
		},
	}
	cmd.Flags().BoolVar(&overwrite, OverwriteOptionName, false, "Overwrite existing config file")

	return cmd
}
