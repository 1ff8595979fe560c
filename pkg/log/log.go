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
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Level selects how much of the datapath chatter makes it to the log.
// The tool uses three tiers: errors always, lifecycle events at info,
// per-request and per-segment traces at debug.
type Level int32

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

const HelpLevels = "Must be one of: error, info, debug."

func (l Level) tag() string {
	switch l {
	case LevelError:
		return "[error] "
	case LevelDebug:
		return "[debug] "
	}
	return "[info] "
}

// ParseLevel maps a level name from the config or the command line to
// its Level. Unknown names report an error and the info default.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "error":
		return LevelError, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}
	return LevelInfo, fmt.Errorf("Unknown log level: %s. %s", s, HelpLevels)
}

var (
	threshold = int32(LevelInfo)
	out       = log.New(os.Stderr, "[go-rfic] ", log.LstdFlags)
)

// Init points the logger at w and sets the verbosity. A bad level name
// keeps the info default and is reported through the log itself rather
// than taking the tool down over a typo in a flag.
func Init(w io.Writer, level string) {
	out.SetOutput(w)
	l, err := ParseLevel(level)
	if err != nil {
		emit(LevelError, "%s", err)
	}
	atomic.StoreInt32(&threshold, int32(l))
}

func emit(l Level, format string, v ...interface{}) {
	if int32(l) <= atomic.LoadInt32(&threshold) {
		out.Printf(l.tag()+format, v...)
	}
}

func Error(format string, v ...interface{}) { emit(LevelError, format, v...) }
func Info(format string, v ...interface{})  { emit(LevelInfo, format, v...) }
func Debug(format string, v ...interface{}) { emit(LevelDebug, format, v...) }
