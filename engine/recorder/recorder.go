// Package recorder provides an instrumented stand-in for the native engine.
//
// A Recorder keeps every call it receives, in order, and checks that touches
// arrive as begin, any number of moves, then end. It backs the tests and the
// dry-run mode of the nativeapp command.
package recorder

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/touch"

	"github.com/agiangrant/nativeapp"
)

// Kind identifies what a Record describes.
type Kind int

const (
	KindFrame Kind = iota
	KindTouch
	KindText
	KindBackspace
	KindClose
)

func (k Kind) String() string {
	switch k {
	case KindFrame:
		return "frame"
	case KindTouch:
		return "touch"
	case KindText:
		return "text"
	case KindBackspace:
		return "backspace"
	case KindClose:
		return "close"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Record is one call observed by a Recorder.
type Record struct {
	Seq   int
	Kind  Kind
	Touch touch.Event
	Text  []byte
	Key   key.Event
	Frame uint64
}

func (r Record) String() string {
	switch r.Kind {
	case KindTouch:
		return fmt.Sprintf("#%d touch %s (%g, %g)", r.Seq, touchName(r.Touch.Type), r.Touch.X, r.Touch.Y)
	case KindText:
		return fmt.Sprintf("#%d text %q", r.Seq, r.Text)
	case KindFrame:
		return fmt.Sprintf("#%d frame %d", r.Seq, r.Frame)
	default:
		return fmt.Sprintf("#%d %s", r.Seq, r.Kind)
	}
}

func touchName(t touch.Type) string {
	switch t {
	case touch.TypeBegin:
		return "begin"
	case touch.TypeMove:
		return "move"
	case touch.TypeEnd:
		return "end"
	default:
		return fmt.Sprintf("type(%d)", t)
	}
}

var (
	// ErrSequence is returned for a touch that does not follow begin, move*, end.
	ErrSequence = errors.New("recorder: touch out of sequence")

	// ErrClosed is returned for any call after Close.
	ErrClosed = errors.New("recorder: engine closed")
)

// Recorder is an Engine that records calls. Safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	desc     nativeapp.ViewDescriptor
	records  []Record
	seq      int
	touching bool
	frames   uint64
	closed   bool

	// FailDraw, when set, is returned by DrawFrame.
	FailDraw error

	// Limit, when positive, keeps only the most recent Limit records.
	Limit int
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

func (r *Recorder) append(rec Record) {
	rec.Seq = r.seq
	r.seq++
	if r.Limit > 0 && len(r.records) >= r.Limit {
		// Shift in place so the backing array stays at Limit
		n := copy(r.records, r.records[len(r.records)-r.Limit+1:])
		r.records = r.records[:n]
	}
	r.records = append(r.records, rec)
}

func (r *Recorder) DrawFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.FailDraw != nil {
		return r.FailDraw
	}
	r.frames++
	r.append(Record{Kind: KindFrame, Frame: r.frames})
	return nil
}

func (r *Recorder) Touch(e touch.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	switch e.Type {
	case touch.TypeBegin:
		if r.touching {
			return fmt.Errorf("%w: begin while a touch is active", ErrSequence)
		}
		r.touching = true
	case touch.TypeMove:
		if !r.touching {
			return fmt.Errorf("%w: move without begin", ErrSequence)
		}
	case touch.TypeEnd:
		if !r.touching {
			return fmt.Errorf("%w: end without begin", ErrSequence)
		}
		r.touching = false
	default:
		return fmt.Errorf("%w: unknown touch type %d", ErrSequence, e.Type)
	}

	r.append(Record{Kind: KindTouch, Touch: e})
	return nil
}

func (r *Recorder) TextInput(text []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	// The caller's buffer is only borrowed for the call
	r.append(Record{Kind: KindText, Text: append([]byte(nil), text...)})
	return nil
}

func (r *Recorder) Backspace() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.append(Record{
		Kind: KindBackspace,
		Key:  key.Event{Code: key.CodeDeleteBackspace, Direction: key.DirPress},
	})
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	r.append(Record{Kind: KindClose})
	return nil
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Descriptor returns the descriptor the Recorder was created for.
func (r *Recorder) Descriptor() nativeapp.ViewDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.desc
}

// Closed reports whether Close has been called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Log renders the records one per line.
func (r *Recorder) Log() string {
	var b strings.Builder
	for _, rec := range r.Records() {
		b.WriteString(rec.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Factory creates Recorders and remembers each one it hands out.
type Factory struct {
	// Limit is copied into every Recorder created.
	Limit int

	mu      sync.Mutex
	created []*Recorder
}

// EngineFactory adapts f to nativeapp.EngineFactory.
func (f *Factory) EngineFactory() nativeapp.EngineFactory {
	return func(desc nativeapp.ViewDescriptor) (nativeapp.Engine, error) {
		rec := New()
		rec.desc = desc
		rec.Limit = f.Limit
		f.mu.Lock()
		f.created = append(f.created, rec)
		f.mu.Unlock()
		return rec, nil
	}
}

// Last returns the most recently created Recorder, or nil.
func (f *Factory) Last() *Recorder {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

// Created returns every Recorder handed out so far.
func (f *Factory) Created() []*Recorder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Recorder(nil), f.created...)
}
