// Package script reads timed input scripts used to drive an App without a
// real view host.
//
// A script is a TOML file of [[event]] tables:
//
//	[[event]]
//	at_ms = 0
//	kind = "touch_begin"
//	x = 120.0
//	y = 300.0
//
//	[[event]]
//	at_ms = 40
//	kind = "text"
//	text = "hello"
package script

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/agiangrant/nativeapp"
)

// Event kinds
const (
	KindTouchBegin = "touch_begin"
	KindTouchMove  = "touch_move"
	KindTouchEnd   = "touch_end"
	KindText       = "text"
	KindBackspace  = "backspace"
)

// Script is an ordered list of input events.
type Script struct {
	Events []Event `toml:"event"`
}

// Event is one scripted input.
type Event struct {
	AtMs int64   `toml:"at_ms"`
	Kind string  `toml:"kind"`
	X    float32 `toml:"x"`
	Y    float32 `toml:"y"`
	Text string  `toml:"text"`
}

// At returns the event offset from the start of playback.
func (e Event) At() time.Duration {
	return time.Duration(e.AtMs) * time.Millisecond
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a script and sorts it by time. Events with the same time
// keep their file order.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	for i, e := range s.Events {
		switch e.Kind {
		case KindTouchBegin, KindTouchMove, KindTouchEnd, KindText, KindBackspace:
		default:
			return nil, fmt.Errorf("event %d: unknown kind %q", i, e.Kind)
		}
		if e.AtMs < 0 {
			return nil, fmt.Errorf("event %d: at_ms must be >= 0", i)
		}
	}

	sort.SliceStable(s.Events, func(i, j int) bool {
		return s.Events[i].AtMs < s.Events[j].AtMs
	})
	return &s, nil
}

// Duration returns the offset of the last event.
func (s *Script) Duration() time.Duration {
	if len(s.Events) == 0 {
		return 0
	}
	return s.Events[len(s.Events)-1].At()
}

// Apply forwards e to app.
func (e Event) Apply(app *nativeapp.App) error {
	switch e.Kind {
	case KindTouchBegin:
		return app.TouchBegin(e.X, e.Y)
	case KindTouchMove:
		return app.TouchMove(e.X, e.Y)
	case KindTouchEnd:
		return app.TouchEnd(e.X, e.Y)
	case KindText:
		return app.TextInput([]byte(e.Text))
	case KindBackspace:
		return app.Backspace()
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
}
