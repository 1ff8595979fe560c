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

package layers

import (
	"fmt"
)

// ErrHeaderUnderrun returned when a segment ends before a complete header block was seen
type ErrHeaderUnderrun struct {
	Length int
}

func (e ErrHeaderUnderrun) Error() string {
	return fmt.Sprintf("Segment underrun: got %d bytes, header block is %d bytes", e.Length, HeaderSize)
}

// ErrSPITruncated returned when a serialized SPI transaction is shorter than one transaction word
type ErrSPITruncated struct {
	Length int
}

func (e ErrSPITruncated) Error() string {
	return fmt.Sprintf("SPI transaction truncated: got %d bytes, want %d", e.Length, SPIDataWidth/8)
}
