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

const (
	ConfigDir  = ".go-rfic"
	ConfigFile = "config"
	DBFile     = "state.db"

	DefaultAddress    = "127.0.0.1"
	DefaultLogLevel   = "info"
	DefaultPhyVariant = "lvds"
	DefaultPhyMode    = "2R2T"
	DefaultBitMode    = 12

	// DefaultSegmentSize is the number of 64-bit payload words per framed
	// segment on the host transport.
	DefaultSegmentSize = 512

	// DefaultCDCDepth is the elastic depth of the clock domain crossing
	// queues. The RX queue must absorb the rate mismatch between the
	// free-running PHY and the host side, so it must not be too small.
	DefaultCDCDepth = 64

	DefaultSPIClkDivider = 8

	DefaultStreamPeerAddress = "127.0.0.1"
	DefaultStreamPeerPort    = "33555"
)
