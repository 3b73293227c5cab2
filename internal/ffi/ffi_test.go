//go:build !js

package ffi

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"unsafe"
)

func TestViewObjLayout(t *testing.T) {
	ptr := unsafe.Sizeof(uintptr(0))
	// int32 maximum_frames is padded up to pointer alignment
	afterFrames := 3 * ptr

	var r1 ViewObjRev1C
	var r2 ViewObjRev2C

	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"rev1.view", unsafe.Offsetof(r1.View), 0},
		{"rev1.metal_layer", unsafe.Offsetof(r1.MetalLayer), ptr},
		{"rev1.maximum_frames", unsafe.Offsetof(r1.MaximumFrames), 2 * ptr},
		{"rev1.callback_to_swift", unsafe.Offsetof(r1.CallbackToSwift), afterFrames},
		{"rev1.open_keyboard", unsafe.Offsetof(r1.OpenKeyboard), afterFrames + ptr},
		{"rev1.close_keyboard", unsafe.Offsetof(r1.CloseKeyboard), afterFrames + 2*ptr},
		{"rev1.size", unsafe.Sizeof(r1), afterFrames + 3*ptr},
		{"rev2.view", unsafe.Offsetof(r2.View), 0},
		{"rev2.metal_layer", unsafe.Offsetof(r2.MetalLayer), ptr},
		{"rev2.maximum_frames", unsafe.Offsetof(r2.MaximumFrames), 2 * ptr},
		{"rev2.open_keyboard", unsafe.Offsetof(r2.OpenKeyboard), afterFrames},
		{"rev2.close_keyboard", unsafe.Offsetof(r2.CloseKeyboard), afterFrames + ptr},
		{"rev2.size", unsafe.Sizeof(r2), afterFrames + 2*ptr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("offset = %d, want %d", tt.got, tt.want)
			}
		})
	}

	if unsafe.Sizeof(r1)-unsafe.Sizeof(r2) != ptr {
		t.Errorf("rev1 should be exactly one pointer wider than rev2")
	}
}

func TestViewObjRevisions(t *testing.T) {
	obj := ViewObj{
		View:          0x1000,
		MetalLayer:    0x2000,
		MaximumFrames: 3,
		OpenKeyboard:  0x3000,
		CloseKeyboard: 0x4000,
	}

	r2, err := obj.Rev2()
	if err != nil {
		t.Fatalf("Rev2() error = %v", err)
	}
	if r2.View != obj.View || r2.MetalLayer != obj.MetalLayer || r2.MaximumFrames != 3 {
		t.Errorf("Rev2() = %+v, fields not carried over", r2)
	}
	if r2.OpenKeyboard != obj.OpenKeyboard || r2.CloseKeyboard != obj.CloseKeyboard {
		t.Errorf("Rev2() keyboard callbacks not carried over")
	}

	obj.CallbackToSwift = 0x5000
	if _, err := obj.Rev2(); err == nil {
		t.Error("Rev2() should refuse to drop callback_to_swift")
	}

	r1 := obj.Rev1()
	if r1.CallbackToSwift != 0x5000 {
		t.Errorf("Rev1().CallbackToSwift = %#x, want 0x5000", r1.CallbackToSwift)
	}
}

func TestLibraryName(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "libnative_app.dylib"},
		{"ios", "libnative_app.dylib"},
		{"linux", "libnative_app.so"},
		{"android", "libnative_app.so"},
		{"windows", "native_app.dll"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			if got := libraryName(tt.goos); got != tt.want {
				t.Errorf("libraryName(%q) = %q, want %q", tt.goos, got, tt.want)
			}
		})
	}
}

func TestLibraryPathFromEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "libcustom.so")
	t.Setenv(EnvLibraryPath, want)

	if got := LibraryPath(); got != want {
		t.Errorf("LibraryPath() = %q, want %q", got, want)
	}
}

func TestOpenMissingLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist", libraryName("linux"))

	_, err := Open(path)
	if err == nil {
		t.Fatal("Open() should fail for a missing library")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q should mention the path", err)
	}
}

func TestCallbackSetRouting(t *testing.T) {
	var opened, closed int
	var codes []int32

	set := &CallbackSet{}
	set.target = HostCallbacks{
		OpenKeyboard:  func() { opened++ },
		CloseKeyboard: func() { closed++ },
		Notify:        func(code int32) { codes = append(codes, code) },
	}

	set.openKeyboard()
	set.openKeyboard()
	set.closeKeyboard()
	set.notify(7)

	if opened != 2 || closed != 1 {
		t.Errorf("opened=%d closed=%d, want 2 and 1", opened, closed)
	}
	if len(codes) != 1 || codes[0] != 7 {
		t.Errorf("codes = %v, want [7]", codes)
	}

	set.mu.Lock()
	set.target = HostCallbacks{}
	set.mu.Unlock()

	// Detached sets drop calls
	set.openKeyboard()
	set.notify(1)
	if opened != 2 || len(codes) != 1 {
		t.Error("detached callback set should not forward")
	}
}

// Memory handed to C must be passed as a pointer type so purego keeps it
// alive and in place for the duration of the call.
func TestPointerArgumentsAreTyped(t *testing.T) {
	var l Library

	tests := []struct {
		name string
		fn   any
		arg  int
		want reflect.Kind
	}{
		{"create_app_ptr object", l.createAppPtr, 0, reflect.UnsafePointer},
		{"event_text_input bytes", l.textInput, 1, reflect.Pointer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reflect.TypeOf(tt.fn).In(tt.arg).Kind(); got != tt.want {
				t.Errorf("argument %d kind = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}
}
