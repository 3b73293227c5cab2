// Package nop provides an engine that accepts every call and keeps nothing.
//
// It is the default behind the exported C library, so a host can link and
// drive the bridge before a real engine is configured.
package nop

import (
	"errors"
	"sync/atomic"

	"golang.org/x/mobile/event/touch"

	"github.com/agiangrant/nativeapp"
)

// ErrClosed is returned for any call after Close.
var ErrClosed = errors.New("nop: engine closed")

// Engine discards input. Only the close state is tracked.
type Engine struct {
	closed atomic.Bool
}

// Factory returns an EngineFactory creating nop engines.
func Factory() nativeapp.EngineFactory {
	return func(nativeapp.ViewDescriptor) (nativeapp.Engine, error) {
		return &Engine{}, nil
	}
}

func (e *Engine) check() error {
	if e.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (e *Engine) DrawFrame() error { return e.check() }

func (e *Engine) Touch(ev touch.Event) error {
	if err := e.check(); err != nil {
		return err
	}
	switch ev.Type {
	case touch.TypeBegin, touch.TypeMove, touch.TypeEnd:
		return nil
	default:
		return errors.New("nop: unknown touch type")
	}
}

func (e *Engine) TextInput([]byte) error { return e.check() }

func (e *Engine) Backspace() error { return e.check() }

func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return ErrClosed
	}
	return nil
}
