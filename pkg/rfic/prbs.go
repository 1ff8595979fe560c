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

const (
	// PRBSSeed is the initial LFSR state shared by every generator.
	PRBSSeed = 0x0a54

	// PRBSSyncThreshold is the number of consecutive matching samples
	// after which a checker declares itself synchronized.
	PRBSSyncThreshold = 16

	prbsMask = 0x0fff
)

// PRBSGenerator is a 16-bit linear feedback shift register producing the
// deterministic self-test sequence. Every instance uses the same
// generating polynomial; the feedback taps are bits
// 1,2,4,5,6,7,8,9,10,11,13,15 and the register shifts up one bit per
// step.
type PRBSGenerator struct {
	state uint16
}

func NewPRBSGenerator() *PRBSGenerator {
	return &PRBSGenerator{state: PRBSSeed}
}

func prbsNext(state uint16) uint16 {
	taps := (state >> 1) ^ (state >> 2) ^ (state >> 4) ^ (state >> 5) ^
		(state >> 6) ^ (state >> 7) ^ (state >> 8) ^ (state >> 9) ^
		(state >> 10) ^ (state >> 11) ^ (state >> 13) ^ (state >> 15)
	return state<<1 | taps&1
}

// Next returns the current output and advances the register.
func (g *PRBSGenerator) Next() uint16 {
	o := g.state
	g.state = prbsNext(g.state)
	return o
}

func (g *PRBSGenerator) Reset() {
	g.state = PRBSSeed
}

// PRBSChecker verifies one receive lane against an independently seeded
// shadow generator. It reports synchronized only after
// PRBSSyncThreshold consecutive samples matched the prediction, and it
// falls out of sync on the very next sample that does not match. On a
// mismatch the shadow register is reloaded from the observed value, so
// the checker re-locks by itself once the lane carries the sequence
// again.
type PRBSChecker struct {
	gen   PRBSGenerator
	count int
}

func NewPRBSChecker() *PRBSChecker {
	return &PRBSChecker{gen: PRBSGenerator{state: PRBSSeed}}
}

// Feed advances the checker with one observed 12-bit lane value.
func (c *PRBSChecker) Feed(v uint16) {
	v &= prbsMask
	if c.gen.state&prbsMask == v {
		if c.count < PRBSSyncThreshold {
			c.count++
		}
		c.gen.state = prbsNext(c.gen.state)
		return
	}
	// Out of sync: reseed from the wire and start counting over.
	c.count = 0
	c.gen.state = v
	if c.gen.state == 0 {
		// The all-zero state is a fixed point of the register.
		c.gen.state = PRBSSeed
	}
	c.gen.state = prbsNext(c.gen.state)
}

func (c *PRBSChecker) Synced() bool {
	return c.count >= PRBSSyncThreshold
}

func (c *PRBSChecker) Reset() {
	c.count = 0
	c.gen.Reset()
}
