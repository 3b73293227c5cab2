package main

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/mobile/event/touch"

	"github.com/agiangrant/nativeapp"
	"github.com/agiangrant/nativeapp/engine/native"
	"github.com/agiangrant/nativeapp/engine/nop"
	"github.com/agiangrant/nativeapp/engine/recorder"
)

// recordLimit caps the recorder engine when the exported library is
// configured with it.
const recordLimit = 1024

// envConfigPath points the exported library at a nativeapp.toml.
const envConfigPath = "NATIVEAPP_CONFIG"

// bridge holds the process-wide state behind the exported C functions.
// The C side only ever sees handle IDs from handles.
type bridge struct {
	once    sync.Once
	initErr error

	handles *nativeapp.Handles
	factory nativeapp.EngineFactory
	log     *zap.Logger

	loadConfig func() (nativeapp.Config, error)
	openNative func(path string) (nativeapp.EngineFactory, error)
}

func newBridge() *bridge {
	return &bridge{
		handles: nativeapp.NewHandles(),
		log:     zap.NewNop(),
		loadConfig: func() (nativeapp.Config, error) {
			path := os.Getenv(envConfigPath)
			if path == "" {
				path = nativeapp.ConfigFile
			}
			return nativeapp.LoadConfig(path)
		},
		openNative: native.Open,
	}
}

// init loads configuration and picks the engine on first use.
func (b *bridge) init() error {
	b.once.Do(func() {
		cfg, err := b.loadConfig()
		if err != nil {
			b.initErr = fmt.Errorf("load config: %w", err)
			return
		}

		l, err := cfg.Log.NewLogger()
		if err != nil {
			b.initErr = fmt.Errorf("build logger: %w", err)
			return
		}
		b.log = l
		nativeapp.SetLogger(l)

		if rev := nativeapp.Revision(cfg.Engine.Revision); rev != nativeapp.RevisionAuto && rev != abiRevision {
			b.initErr = nativeapp.RevisionMismatch("init",
				"engine.revision is %s but the library was built for %s", rev, abiRevision)
			b.log.Error("bridge not initialised", zap.Error(b.initErr))
			return
		}

		switch cfg.Engine.Kind {
		case nativeapp.EngineNative:
			b.factory, b.initErr = b.openNative(cfg.Engine.LibPath)
		case nativeapp.EngineRecorder:
			f := &recorder.Factory{Limit: recordLimit}
			b.factory = f.EngineFactory()
		default:
			b.factory = nop.Factory()
		}

		b.log.Info("bridge initialised",
			zap.String("engine", cfg.Engine.Kind),
			zap.Stringer("abi_revision", abiRevision),
			zap.Error(b.initErr),
		)
	})
	return b.initErr
}

// create builds an App and returns its handle ID. desc.Revision must
// already be set to the header revision the library was built with.
func (b *bridge) create(desc nativeapp.ViewDescriptor) (uintptr, error) {
	if err := b.init(); err != nil {
		return 0, err
	}

	app, err := nativeapp.Create(desc,
		nativeapp.WithEngineFactory(b.factory),
		nativeapp.WithLogger(b.log),
	)
	if err != nil {
		return 0, err
	}
	return b.handles.Register(app), nil
}

func (b *bridge) lookup(op string, id uintptr) *nativeapp.App {
	app, err := b.handles.Lookup(id)
	if err != nil {
		b.log.Warn("call on invalid handle", zap.String("op", op), zap.Uintptr("handle", id))
		return nil
	}
	return app
}

func (b *bridge) report(op string, err error) {
	if err != nil {
		b.log.Error("bridge call failed", zap.String("op", op), zap.Error(err))
	}
}

func (b *bridge) destroy(id uintptr) {
	app, err := b.handles.Release(id)
	if err != nil {
		b.log.Warn("destroy of invalid handle", zap.Uintptr("handle", id))
		return
	}
	b.report("destroy_app", app.Destroy())
}

func (b *bridge) drawFrame(id uintptr) {
	if app := b.lookup("draw_frame", id); app != nil {
		b.report("draw_frame", app.DrawFrame())
	}
}

func (b *bridge) touch(id uintptr, typ touch.Type, x, y float32) {
	app := b.lookup("touch", id)
	if app == nil {
		return
	}
	var err error
	switch typ {
	case touch.TypeBegin:
		err = app.TouchBegin(x, y)
	case touch.TypeMove:
		err = app.TouchMove(x, y)
	case touch.TypeEnd:
		err = app.TouchEnd(x, y)
	}
	b.report("touch", err)
}

func (b *bridge) textInput(id uintptr, text []byte) {
	if app := b.lookup("event_text_input", id); app != nil {
		b.report("event_text_input", app.TextInput(text))
	}
}

func (b *bridge) backspace(id uintptr) {
	if app := b.lookup("event_key_typed_backspace", id); app != nil {
		b.report("event_key_typed_backspace", app.Backspace())
	}
}

// viewFields is ios_view_obj copied out of C memory.
type viewFields struct {
	view          uintptr
	layer         uintptr
	maximumFrames int32
	openKeyboard  unsafe.Pointer
	closeKeyboard unsafe.Pointer
	// notify is callback_to_swift; always nil for revision 2 builds
	notify unsafe.Pointer
}

func (f viewFields) descriptor() nativeapp.ViewDescriptor {
	return nativeapp.ViewDescriptor{
		View:          nativeapp.NativeRef(f.view),
		Layer:         nativeapp.NativeRef(f.layer),
		MaximumFrames: f.maximumFrames,
		Keyboard:      cKeyboard{open: f.openKeyboard, close: f.closeKeyboard},
		Notifier:      newNotifier(f.notify),
		Revision:      abiRevision,
	}
}

// checkRevision verifies the revision a create_app_ptr caller was compiled
// against.
func checkRevision(revision int32) error {
	if nativeapp.Revision(revision) != abiRevision {
		return nativeapp.RevisionMismatch("create_app_ptr",
			"caller uses %s, library was built for %s", nativeapp.Revision(revision), abiRevision)
	}
	return nil
}

// createFrom creates an App from a descriptor received over the C ABI.
// fields is nil when the caller passed NULL.
func (b *bridge) createFrom(op string, fields *viewFields, revision int32) (uintptr, error) {
	if fields == nil {
		return 0, nativeapp.InvalidDescriptor(op, "NULL descriptor")
	}
	if err := checkRevision(revision); err != nil {
		return 0, err
	}
	return b.create(fields.descriptor())
}

// textFrom borrows n bytes at ptr. NULL or an empty length yields no text; a
// negative length is an error.
func textFrom(ptr unsafe.Pointer, n int32) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("event_text_input: negative length %d", n)
	}
	if ptr == nil || n == 0 {
		return nil, nil
	}
	return unsafe.Slice((*byte)(ptr), int(n)), nil
}
