package nativeapp

import (
	"sync"

	"golang.org/x/mobile/event/touch"
)

// Engine is the opaque rendering and input engine behind an App.
// Implementations receive calls in the order the host issued them; the
// bridge never calls an Engine concurrently for the same App.
type Engine interface {
	// DrawFrame renders one frame into the layer from the descriptor.
	DrawFrame() error

	// Touch forwards one touch transition. Type is Begin, Move or End.
	Touch(e touch.Event) error

	// TextInput forwards a non-empty text fragment. The slice is only
	// valid for the duration of the call.
	TextInput(text []byte) error

	// Backspace forwards a discrete delete-backward key.
	Backspace() error

	// Close releases the engine instance. It is called at most once.
	Close() error
}

// EngineFactory builds one Engine for a negotiated descriptor.
type EngineFactory func(desc ViewDescriptor) (Engine, error)

var (
	defaultFactory   EngineFactory
	defaultFactoryMu sync.RWMutex
)

// SetDefaultEngineFactory installs the factory used by Create when no
// WithEngineFactory option is given.
func SetDefaultEngineFactory(f EngineFactory) {
	defaultFactoryMu.Lock()
	defer defaultFactoryMu.Unlock()
	defaultFactory = f
}

// DefaultEngineFactory returns the installed default factory, or nil.
func DefaultEngineFactory() EngineFactory {
	defaultFactoryMu.RLock()
	defer defaultFactoryMu.RUnlock()
	return defaultFactory
}
