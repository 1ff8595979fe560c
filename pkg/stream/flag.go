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

package stream

import (
	"sync/atomic"
)

// Flag is a single-bit configuration value written by the host control
// surface and read from another execution context. It is the software
// rendition of a multi-stage flip-flop synchronizer: readers always see a
// settled value, never a torn one, but a concurrent write becomes visible
// only on a later read. Single writer, any number of readers.
type Flag struct {
	v uint32
}

func (f *Flag) Set(b bool) {
	var v uint32
	if b {
		v = 1
	}
	atomic.StoreUint32(&f.v, v)
}

func (f *Flag) Get() bool {
	return atomic.LoadUint32(&f.v) != 0
}
