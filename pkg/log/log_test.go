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

package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		name    string
		want    Level
		wantErr bool
	}{
		{name: "error", want: LevelError},
		{name: "info", want: LevelInfo},
		{name: "debug", want: LevelDebug},
		{name: "warning", want: LevelInfo, wantErr: true},
		{name: "", want: LevelInfo, wantErr: true},
	} {
		got, err := ParseLevel(tc.name)
		if tc.wantErr && err == nil {
			t.Fatalf("%q: expected an error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%q: unexpected error: %+v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%q: invalid level: got=%d, want=%d", tc.name, got, tc.want)
		}
	}
}

func TestThreshold(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "info")
	defer Init(&buf, "info")

	Debug("dropped line")
	Info("kept line")
	Error("kept error")

	got := buf.String()
	if strings.Contains(got, "dropped line") {
		t.Fatalf("debug line passed an info threshold: %q", got)
	}
	if !strings.Contains(got, "kept line") || !strings.Contains(got, "kept error") {
		t.Fatalf("info or error line filtered out: %q", got)
	}

	buf.Reset()
	Init(&buf, "debug")
	Debug("now visible")
	if !strings.Contains(buf.String(), "[debug] now visible") {
		t.Fatalf("debug line filtered out at debug threshold: %q", buf.String())
	}
}

func TestInitBadLevel(t *testing.T) {
	var buf bytes.Buffer
	// A typo in the flag must not panic; it falls back to info and says
	// so in the log.
	Init(&buf, "verbose")
	defer Init(&buf, "info")

	if !strings.Contains(buf.String(), "Unknown log level") {
		t.Fatalf("bad level not reported: %q", buf.String())
	}
	buf.Reset()
	Info("still logging")
	if !strings.Contains(buf.String(), "still logging") {
		t.Fatalf("logger unusable after bad level: %q", buf.String())
	}
}
