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

package command

import (
	"context"
	"time"

	"jinr.ru/greenlab/go-rfic/pkg/config"
	"jinr.ru/greenlab/go-rfic/pkg/rfic"
	"jinr.ru/greenlab/go-rfic/pkg/srv"
)

// StepInterval paces the PHY clock domain of the software transceiver.
const StepInterval = time.Microsecond

// StartStreamServer builds the datapath against the software loopback
// transceiver and runs the stream server on it.
func StartStreamServer(cfg *config.Config) error {
	ctx := context.Background()

	device, err := rfic.New(cfg, &rfic.LoopTransceiver{Interval: StepInterval}, rfic.NewRegisterFile())
	if err != nil {
		return err
	}

	s, err := srv.NewStreamServer(ctx, cfg, device)
	if err != nil {
		return err
	}
	return s.Run()
}
