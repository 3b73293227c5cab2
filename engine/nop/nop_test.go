package nop

import (
	"errors"
	"runtime"
	"testing"

	"golang.org/x/mobile/event/touch"

	"github.com/agiangrant/nativeapp"
)

func TestEngineAcceptsEverything(t *testing.T) {
	app, err := nativeapp.Create(nativeapp.ViewDescriptor{}, nativeapp.WithEngineFactory(Factory()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"begin", func() error { return app.TouchBegin(1, 1) }},
		{"move", func() error { return app.TouchMove(2, 2) }},
		{"end", func() error { return app.TouchEnd(2, 2) }},
		{"text", func() error { return app.TextInput([]byte("abc")) }},
		{"backspace", app.Backspace},
		{"draw", app.DrawFrame},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			t.Errorf("%s: error = %v", s.name, err)
		}
	}

	if err := app.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
}

func TestEngineClosed(t *testing.T) {
	e := &Engine{}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.DrawFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("DrawFrame() after Close = %v, want ErrClosed", err)
	}
	if err := e.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() = %v, want ErrClosed", err)
	}
	if err := (&Engine{}).Touch(touch.Event{Type: touch.Type(42)}); err == nil {
		t.Error("Touch() should reject unknown types")
	}
}

func TestEngineDoesNotGrow(t *testing.T) {
	app, err := nativeapp.Create(nativeapp.ViewDescriptor{}, nativeapp.WithEngineFactory(Factory()))
	if err != nil {
		t.Fatal(err)
	}
	defer app.Destroy()

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	// An hour of frames at 120 Hz
	for i := 0; i < 432000; i++ {
		if err := app.DrawFrame(); err != nil {
			t.Fatal(err)
		}
	}

	runtime.GC()
	runtime.ReadMemStats(&after)
	if grown := int64(after.HeapAlloc) - int64(before.HeapAlloc); grown > 1<<20 {
		t.Errorf("heap grew by %d bytes over 432000 frames", grown)
	}
}
