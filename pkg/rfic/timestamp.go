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
	"sync/atomic"
)

// Timestamp is the free-running monotonic counter of the PHY clock
// domain. It increments by exactly one per PHY tick, has no coupling to
// pipeline backpressure, wraps modulo 2^64, and is sampled (not
// consumed) by the header framer.
type Timestamp struct {
	t uint64
}

func NewTimestamp() *Timestamp {
	return &Timestamp{}
}

// Tick advances the counter by one. Called once per PHY domain cycle.
func (t *Timestamp) Tick() {
	atomic.AddUint64(&t.t, 1)
}

// Time returns the current counter value.
func (t *Timestamp) Time() uint64 {
	return atomic.LoadUint64(&t.t)
}

// Reset is synchronous to the PHY domain: the caller must hold the PHY
// loop stopped while resetting.
func (t *Timestamp) Reset() {
	atomic.StoreUint64(&t.t, 0)
}
