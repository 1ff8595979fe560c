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

	"golang.org/x/sync/errgroup"
)

// Word is one 64-bit element of a sample stream. In 12-bit mode it holds
// one sample as four sign-extended 16-bit fields [IA, QA, IB, QB] from
// LSB to MSB. In 8-bit mode it holds two samples as eight 8-bit fields.
type Word uint64

// Endpoint is a directional flow-controlled channel between two pipeline
// stages. A transfer happens only when the producer offers a word and the
// consumer accepts it. A stalled consumer delays the producer, it never
// loses a word already offered.
type Endpoint struct {
	ch chan Word
}

func NewEndpoint(depth int) *Endpoint {
	return &Endpoint{
		ch: make(chan Word, depth),
	}
}

// Push transfers one word to the endpoint, waiting for the consumer side
// to become ready.
func (e *Endpoint) Push(ctx context.Context, w Word) error {
	select {
	case e.ch <- w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPush offers one word without waiting and reports whether it was
// accepted. The word is not consumed when false is returned.
func (e *Endpoint) TryPush(w Word) bool {
	select {
	case e.ch <- w:
		return true
	default:
		return false
	}
}

// Pop receives one word from the endpoint, waiting for the producer side
// to offer one.
func (e *Endpoint) Pop(ctx context.Context) (Word, error) {
	select {
	case w := <-e.ch:
		return w, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// TryPop receives one word without waiting.
func (e *Endpoint) TryPop() (Word, bool) {
	select {
	case w := <-e.ch:
		return w, true
	default:
		return 0, false
	}
}

func (e *Endpoint) Len() int {
	return len(e.ch)
}

// Drain discards everything currently buffered in the endpoint.
func (e *Endpoint) Drain() {
	for {
		select {
		case <-e.ch:
		default:
			return
		}
	}
}

// Stage is one pipeline worker. It transfers words until the context is
// canceled and must return the context error in that case.
type Stage func(ctx context.Context) error

// Pipeline runs a set of stages, one goroutine per stage, and stops all
// of them when one fails or the context is canceled.
type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Add(s Stage) {
	p.stages = append(p.stages, s)
}

// Run blocks until all stages have stopped. Context cancellation is the
// normal way to stop a pipeline and is not reported as an error.
func (p *Pipeline) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, stage := range p.stages {
		stage := stage
		g.Go(func() error {
			return stage(ctx)
		})
	}
	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// Buffer is a one-entry elastic stage between two endpoints. It exists to
// decouple the timing of its neighbours, exactly like a skid buffer.
func Buffer(from, to *Endpoint) Stage {
	return func(ctx context.Context) error {
		for {
			w, err := from.Pop(ctx)
			if err != nil {
				return err
			}
			if err := to.Push(ctx, w); err != nil {
				return err
			}
		}
	}
}
