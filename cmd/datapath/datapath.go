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
)

// NewCommand creates the parent command for datapath operations
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datapath",
		Short: "Control the streaming datapath",
	}
	cmd.AddCommand(NewEnableCommand())
	cmd.AddCommand(NewDisableCommand())
	cmd.AddCommand(NewBitModeCommand())
	cmd.AddCommand(NewPhyModeCommand())
	cmd.AddCommand(NewLoopbackCommand())
	cmd.AddCommand(NewRearmCommand())
	return cmd
}
