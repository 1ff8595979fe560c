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
	"testing"

	"jinr.ru/greenlab/go-rfic/pkg/stream"
)

func TestSignExtend12(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   uint16
		want int16
	}{
		{name: "zero", in: 0, want: 0},
		{name: "one", in: 1, want: 1},
		{name: "max", in: 0x7ff, want: SampleMax},
		{name: "min", in: 0x800, want: SampleMin},
		{name: "minus-one", in: 0xfff, want: -1},
		{name: "upper-bits-ignored", in: 0xf7ff, want: SampleMax},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := SignExtend12(tc.in)
			if got != tc.want {
				t.Fatalf("invalid value: got=%d, want=%d", got, tc.want)
			}
		})
	}
}

func TestSampleWord(t *testing.T) {
	for _, tc := range []struct {
		name   string
		sample Sample
		want   stream.Word
	}{
		{
			name:   "zero",
			sample: Sample{},
			want:   0,
		},
		{
			name:   "positive",
			sample: Sample{IA: 1, QA: 2, IB: 3, QB: 4},
			want:   0x0004000300020001,
		},
		{
			name:   "negative",
			sample: Sample{IA: -1, QA: -2, IB: -3, QB: -4},
			want:   0xfffcfffdfffeffff,
		},
		{
			name:   "extremes",
			sample: Sample{IA: SampleMax, QA: SampleMin, IB: SampleMax, QB: SampleMin},
			want:   0xf80007fff80007ff,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.sample.Word()
			if got != tc.want {
				t.Fatalf("invalid word: got=%#016x, want=%#016x", got, tc.want)
			}
			back := SampleFromWord(got)
			if back != tc.sample {
				t.Fatalf("invalid round trip: got=%+v, want=%+v", back, tc.sample)
			}
		})
	}
}
