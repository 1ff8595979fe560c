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

package completion

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the command that prints a bash completion script
// covering every subcommand and flag of the tool.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion",
		Short: "Print a bash completion script to stdout",
		Long: `Print a bash completion script to stdout. Source it into the current
shell for one session, or install it system-wide under
/etc/bash_completion.d to make tab completion permanent.`,
		Example: `  source <(go-rfic completion)
  go-rfic completion | sudo tee /etc/bash_completion.d/go-rfic`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		},
	}
}
