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

package reg

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-rfic/pkg/command"
	"jinr.ru/greenlab/go-rfic/pkg/config"
)

func NewGetCommand() *cobra.Command {
	var addr string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get reg value",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			reg, err := apiClient.RegGet(addr)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "0x%03x: 0x%02x\n", reg.Addr, reg.Value)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, AddrOptionName, "", "Register address. E.g. 0x010")

	return cmd
}
