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

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-rfic/cmd/agc"
	"jinr.ru/greenlab/go-rfic/cmd/completion"
	"jinr.ru/greenlab/go-rfic/cmd/config"
	"jinr.ru/greenlab/go-rfic/cmd/datapath"
	"jinr.ru/greenlab/go-rfic/cmd/prbs"
	"jinr.ru/greenlab/go-rfic/cmd/reg"
	"jinr.ru/greenlab/go-rfic/cmd/status"
	"jinr.ru/greenlab/go-rfic/cmd/stream"
	pkgconfig "jinr.ru/greenlab/go-rfic/pkg/config"
	"jinr.ru/greenlab/go-rfic/pkg/log"
)

const (
	LogLevelOptionName = "log-level"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel string
	cfg := pkgconfig.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "go-rfic",
		Short: "Tool to work with the RFIC streaming datapath",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			log.Init(cmd.ErrOrStderr(), cfg.LogLevel)
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(config.NewCommand())
	cmd.AddCommand(stream.NewCommand())
	cmd.AddCommand(datapath.NewCommand())
	cmd.AddCommand(reg.NewCommand())
	cmd.AddCommand(prbs.NewCommand())
	cmd.AddCommand(agc.NewCommand())
	cmd.AddCommand(status.NewCommand())
	cmd.AddCommand(completion.NewCommand())
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	return cmd
}
