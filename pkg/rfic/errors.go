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

package rfic

import (
	"fmt"
)

// ErrNotSupported returned at configuration time when a capability is not
// implemented by the selected PHY variant, e.g. transmit or loopback on
// the receive-only CMOS PHY.
type ErrNotSupported struct {
	Variant string
	What    string
}

func (e ErrNotSupported) Error() string {
	return fmt.Sprintf("%s not supported by the %s PHY variant", e.What, e.Variant)
}

// ErrNotQuiesced returned when a configuration change that requires a
// drained datapath is requested while the datapath is enabled.
type ErrNotQuiesced struct {
	What string
}

func (e ErrNotQuiesced) Error() string {
	return fmt.Sprintf("%s can only change while the datapath is disabled", e.What)
}

// ErrBusy returned when a serial register transaction is started while a
// previous one is still shifting.
type ErrBusy struct{}

func (e ErrBusy) Error() string {
	return "SPI master busy"
}
