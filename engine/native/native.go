//go:build !js

// Package native runs Apps on a native_app engine library loaded at runtime.
package native

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/mobile/event/touch"

	"github.com/agiangrant/nativeapp"
	"github.com/agiangrant/nativeapp/internal/ffi"
)

// Library is the subset of a loaded native_app library the engine uses.
type Library interface {
	ABIRevision() int
	CreateApp(obj ffi.ViewObj) (uintptr, error)
	DestroyApp(app uintptr) error
	DrawFrame(app uintptr)
	TouchBegin(app uintptr, x, y float32)
	TouchMove(app uintptr, x, y float32)
	TouchEnd(app uintptr, x, y float32)
	TextInput(app uintptr, text []byte) error
	Backspace(app uintptr)
}

// acquireCallbacks is swapped in tests that cannot mint purego callbacks.
var acquireCallbacks = ffi.AcquireCallbacks

// Engine forwards bridge calls to one native_app instance.
type Engine struct {
	lib       Library
	app       uintptr
	callbacks *ffi.CallbackSet
	log       *zap.Logger
}

// Open loads the library at path and returns a factory bound to it.
func Open(path string) (nativeapp.EngineFactory, error) {
	lib, err := ffi.Open(path)
	if err != nil {
		return nil, nativeapp.LibraryError("open", err)
	}
	nativeapp.Logger().Info("native_app library loaded",
		zap.String("path", lib.Path()),
		zap.Int("abi_revision", lib.ABIRevision()),
		zap.Bool("destroy_app", lib.HasDestroy()),
	)
	return Factory(lib), nil
}

// Factory returns an EngineFactory creating instances from lib.
func Factory(lib Library) nativeapp.EngineFactory {
	return func(desc nativeapp.ViewDescriptor) (nativeapp.Engine, error) {
		return New(lib, desc)
	}
}

// New creates a native_app instance for desc.
func New(lib Library, desc nativeapp.ViewDescriptor) (*Engine, error) {
	const op = "native.New"

	if desc.Layer.IsZero() {
		return nil, nativeapp.InvalidDescriptor(op, "native engine requires a rendering layer")
	}
	if abi := lib.ABIRevision(); abi != 0 && abi != int(desc.Revision) {
		return nil, nativeapp.RevisionMismatch(op, "library built for rev%d, descriptor is %s", abi, desc.Revision)
	}

	cb := ffi.HostCallbacks{}
	if kb := desc.Keyboard; kb != nil {
		cb.OpenKeyboard = kb.OpenKeyboard
		cb.CloseKeyboard = kb.CloseKeyboard
	}
	if n := desc.Notifier; n != nil {
		cb.Notify = n.Notify
	}
	set := acquireCallbacks(cb)

	obj := ffi.ViewObj{
		Revision:      int(desc.Revision),
		View:          uintptr(desc.View),
		MetalLayer:    uintptr(desc.Layer),
		MaximumFrames: desc.MaximumFrames,
		OpenKeyboard:  set.OpenKeyboard,
		CloseKeyboard: set.CloseKeyboard,
	}
	if desc.Revision.HasNotifier() {
		obj.CallbackToSwift = set.CallbackToSwift
	}

	app, err := lib.CreateApp(obj)
	if err != nil {
		set.Release()
		return nil, fmt.Errorf("create_app: %w", err)
	}

	return &Engine{
		lib:       lib,
		app:       app,
		callbacks: set,
		log:       nativeapp.Logger().With(zap.Uintptr("native_app", app)),
	}, nil
}

func (e *Engine) DrawFrame() error {
	e.lib.DrawFrame(e.app)
	return nil
}

func (e *Engine) Touch(ev touch.Event) error {
	switch ev.Type {
	case touch.TypeBegin:
		e.lib.TouchBegin(e.app, ev.X, ev.Y)
	case touch.TypeMove:
		e.lib.TouchMove(e.app, ev.X, ev.Y)
	case touch.TypeEnd:
		e.lib.TouchEnd(e.app, ev.X, ev.Y)
	default:
		return fmt.Errorf("unknown touch type %v", ev.Type)
	}
	return nil
}

func (e *Engine) TextInput(text []byte) error {
	return e.lib.TextInput(e.app, text)
}

func (e *Engine) Backspace() error {
	e.lib.Backspace(e.app)
	return nil
}

// Close destroys the instance when the library exports destroy_app.
// Otherwise the instance is left to the process exit and its callbacks stay
// attached, since the engine may still call them.
func (e *Engine) Close() error {
	err := e.lib.DestroyApp(e.app)
	if errors.Is(err, ffi.ErrNoDestroy) {
		e.log.Warn("library has no destroy_app; instance lives until exit")
		return nil
	}
	if err != nil {
		return err
	}
	e.callbacks.Release()
	return nil
}
