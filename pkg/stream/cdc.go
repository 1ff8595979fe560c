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
	"context"
	"sync/atomic"
)

// CDC is the bounded queue that moves words between the PHY clock domain
// and the host-facing domain. The two domains have no fixed phase or
// frequency relation, so this queue is the only place where sample data
// may cross between them. Delivery is strict FIFO, no reordering and no
// duplication.
//
// The producing side has two personalities:
//   - Push backpressures the producer when the queue is full (TX path,
//     the host can always wait).
//   - Offer never waits and drops the word when the queue is full (RX
//     path, the PHY deserializer is a free-running source that cannot be
//     stalled). Drops are counted, not reported per word.
type CDC struct {
	ch    chan Word
	drops uint64
}

func NewCDC(depth int) *CDC {
	if depth < 2 {
		depth = 2
	}
	return &CDC{
		ch: make(chan Word, depth),
	}
}

// Push transfers one word into the queue, waiting while it is full.
func (q *CDC) Push(ctx context.Context, w Word) error {
	select {
	case q.ch <- w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Offer puts one word into the queue if there is room and reports whether
// it was accepted. A rejected word is unrecoverably lost and accounted in
// the drop counter.
func (q *CDC) Offer(w Word) bool {
	select {
	case q.ch <- w:
		return true
	default:
		atomic.AddUint64(&q.drops, 1)
		return false
	}
}

// Pop receives one word from the queue, waiting while it is empty.
func (q *CDC) Pop(ctx context.Context) (Word, error) {
	select {
	case w := <-q.ch:
		return w, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// TryPop receives one word without waiting.
func (q *CDC) TryPop() (Word, bool) {
	select {
	case w := <-q.ch:
		return w, true
	default:
		return 0, false
	}
}

func (q *CDC) Len() int {
	return len(q.ch)
}

// Drops returns the number of words lost on the Offer side since the last
// reset. The value is an eventually-consistent snapshot.
func (q *CDC) Drops() uint64 {
	return atomic.LoadUint64(&q.drops)
}

// Reset empties the queue and clears the drop counter. Words in flight
// are discarded, not drained to the consumer. Both domains must be
// stopped or quiesced around a reset, mirroring the shared reset pulse of
// the hardware crossing.
func (q *CDC) Reset() {
	for {
		select {
		case <-q.ch:
		default:
			atomic.StoreUint64(&q.drops, 0)
			return
		}
	}
}
