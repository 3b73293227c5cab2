package nativeapp

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/mobile/event/touch"
)

var nextAppID atomic.Uint64

// App is the host-owned handle to one engine instance.
//
// An App is created once per view, driven with DrawFrame and the input
// methods, and released with Destroy. Calls on one App are serialised so that
// Destroy cannot race an in-flight frame; anything beyond that is the
// engine's concern.
//
// The engine may call the host's Keyboard or Notifier while it handles a
// call. Calls into the same App made from inside those callbacks are
// rejected with KindUnsupported instead of blocking on the App's own lock.
type App struct {
	id     uint64
	desc   ViewDescriptor
	log    *zap.Logger
	mu     sync.Mutex
	engine Engine
	closed bool
	stats  Stats

	// callbacks counts host callbacks currently running inside an engine call
	callbacks atomic.Int32
}

// Stats counts what an App has forwarded to its engine.
type Stats struct {
	Frames     uint64
	Touches    uint64
	TextBytes  uint64
	Backspaces uint64
}

// Option configures Create.
type Option func(*createOptions)

type createOptions struct {
	factory EngineFactory
	logger  *zap.Logger
}

// WithEngineFactory selects the engine factory for this App.
func WithEngineFactory(f EngineFactory) Option {
	return func(o *createOptions) {
		o.factory = f
	}
}

// WithLogger overrides the package logger for this App.
func WithLogger(l *zap.Logger) Option {
	return func(o *createOptions) {
		o.logger = l
	}
}

// Create negotiates the descriptor and builds an engine instance for it.
func Create(desc ViewDescriptor, opts ...Option) (*App, error) {
	const op = "create_app"

	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.factory == nil {
		o.factory = DefaultEngineFactory()
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	if o.factory == nil {
		return nil, newError(op, KindNoEngine, nil, "no engine factory configured")
	}

	negotiated, err := desc.Negotiate()
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Op = op
		}
		return nil, err
	}

	id := nextAppID.Add(1)
	app := &App{
		id:   id,
		desc: negotiated,
		log:  o.logger.With(zap.Uint64("app", id)),
	}

	engine, err := o.factory(app.guard(negotiated))
	if err != nil {
		return nil, newError(op, KindEngineCreate, err, "")
	}
	if engine == nil {
		return nil, newError(op, KindEngineCreate, nil, "factory returned a nil engine")
	}
	app.engine = engine
	app.log.Info("app created",
		zap.Stringer("revision", negotiated.Revision),
		zap.Int32("maximum_frames", negotiated.MaximumFrames),
		zap.Bool("notifier", negotiated.Notifier != nil),
	)
	return app, nil
}

// ID returns the process-unique, non-zero identifier of the App.
func (a *App) ID() uint64 {
	return a.id
}

// Descriptor returns the negotiated descriptor the App was created with.
func (a *App) Descriptor() ViewDescriptor {
	return a.desc
}

// Stats returns a snapshot of the forwarding counters.
func (a *App) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// DrawFrame asks the engine to render one frame.
func (a *App) DrawFrame() error {
	return a.call("draw_frame", func(e Engine) error {
		if err := e.DrawFrame(); err != nil {
			return err
		}
		a.stats.Frames++
		return nil
	})
}

// TouchBegin forwards the start of a touch at surface coordinates (x, y).
func (a *App) TouchBegin(x, y float32) error {
	return a.touch("event_touch_begin", touch.TypeBegin, x, y)
}

// TouchMove forwards a touch movement.
func (a *App) TouchMove(x, y float32) error {
	return a.touch("event_touch_move", touch.TypeMove, x, y)
}

// TouchEnd forwards the end of a touch.
func (a *App) TouchEnd(x, y float32) error {
	return a.touch("event_touch_end", touch.TypeEnd, x, y)
}

func (a *App) touch(op string, typ touch.Type, x, y float32) error {
	return a.call(op, func(e Engine) error {
		if err := e.Touch(touch.Event{X: x, Y: y, Type: typ}); err != nil {
			return err
		}
		a.stats.Touches++
		return nil
	})
}

// TextInput forwards a byte-exact text fragment. An empty fragment is a no-op.
// The engine does not keep text after the call returns.
func (a *App) TextInput(text []byte) error {
	if len(text) == 0 {
		return a.call("event_text_input", func(Engine) error { return nil })
	}
	return a.call("event_text_input", func(e Engine) error {
		if err := e.TextInput(text); err != nil {
			return err
		}
		a.stats.TextBytes += uint64(len(text))
		return nil
	})
}

// Backspace forwards a delete-backward key press.
func (a *App) Backspace() error {
	return a.call("event_key_typed_backspace", func(e Engine) error {
		if err := e.Backspace(); err != nil {
			return err
		}
		a.stats.Backspaces++
		return nil
	})
}

// Destroy closes the engine. It is safe to call more than once.
func (a *App) Destroy() error {
	if err := a.checkReentry("destroy_app"); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	err := a.engine.Close()
	a.engine = nil
	if err != nil {
		a.log.Warn("engine close failed", zap.Error(err))
		return EngineError("destroy_app", err)
	}
	a.log.Info("app destroyed",
		zap.Uint64("frames", a.stats.Frames),
		zap.Uint64("touches", a.stats.Touches),
	)
	return nil
}

func (a *App) call(op string, fn func(Engine) error) error {
	if err := a.checkReentry(op); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return newError(op, KindDestroyed, nil, "app %d", a.id)
	}
	if err := fn(a.engine); err != nil {
		a.log.Debug("engine call failed", zap.String("op", op), zap.Error(err))
		return EngineError(op, err)
	}
	return nil
}

func (a *App) checkReentry(op string) error {
	if a.callbacks.Load() > 0 {
		a.log.Warn("host callback called back into its app", zap.String("op", op))
		return newError(op, KindUnsupported, nil, "call from inside a host callback of app %d", a.id)
	}
	return nil
}

// guard wraps the host callbacks in desc so that App can tell when it is
// being called from inside one.
func (a *App) guard(desc ViewDescriptor) ViewDescriptor {
	desc.Keyboard = guardedKeyboard{app: a, kb: desc.Keyboard}
	if desc.Notifier != nil {
		desc.Notifier = guardedNotifier{app: a, n: desc.Notifier}
	}
	return desc
}

type guardedKeyboard struct {
	app *App
	kb  Keyboard
}

func (g guardedKeyboard) OpenKeyboard() {
	g.app.callbacks.Add(1)
	defer g.app.callbacks.Add(-1)
	g.kb.OpenKeyboard()
}

func (g guardedKeyboard) CloseKeyboard() {
	g.app.callbacks.Add(1)
	defer g.app.callbacks.Add(-1)
	g.kb.CloseKeyboard()
}

type guardedNotifier struct {
	app *App
	n   Notifier
}

func (g guardedNotifier) Notify(code int32) {
	g.app.callbacks.Add(1)
	defer g.app.callbacks.Add(-1)
	g.n.Notify(code)
}
