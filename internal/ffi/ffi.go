//go:build !js

// Package ffi binds a native_app engine library at runtime via purego.
// No CGo is involved, so the host-side tooling cross-compiles freely.
package ffi

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Symbol names exported by a native_app library.
const (
	SymCreateApp      = "create_app"
	SymCreateAppPtr   = "create_app_ptr"
	SymDestroyApp     = "destroy_app"
	SymDrawFrame      = "draw_frame"
	SymTouchBegin     = "event_touch_begin"
	SymTouchMove      = "event_touch_move"
	SymTouchEnd       = "event_touch_end"
	SymTextInput      = "event_text_input"
	SymKeyBackspace   = "event_key_typed_backspace"
	SymABIRevision    = "native_app_abi_revision"
	EnvLibraryPath    = "NATIVEAPP_LIB_PATH"
	defaultLibBase    = "native_app"
	maxTextInputBytes = 1<<31 - 1
)

var requiredSymbols = []string{
	SymDrawFrame,
	SymTouchBegin,
	SymTouchMove,
	SymTouchEnd,
	SymTextInput,
	SymKeyBackspace,
}

var optionalSymbols = []string{
	SymCreateApp,
	SymCreateAppPtr,
	SymDestroyApp,
	SymABIRevision,
}

// ViewObjRev1C matches ios_view_obj from the header revision that still
// carries callback_to_swift. Go's field alignment matches the C layout.
type ViewObjRev1C struct {
	View            uintptr
	MetalLayer      uintptr
	MaximumFrames   int32
	CallbackToSwift uintptr
	OpenKeyboard    uintptr
	CloseKeyboard   uintptr
}

// ViewObjRev2C matches ios_view_obj from the current header revision.
type ViewObjRev2C struct {
	View          uintptr
	MetalLayer    uintptr
	MaximumFrames int32
	OpenKeyboard  uintptr
	CloseKeyboard uintptr
}

// ViewObj is the revision-independent form of ios_view_obj. Revision picks
// which C layout is sent across the boundary.
type ViewObj struct {
	Revision        int
	View            uintptr
	MetalLayer      uintptr
	MaximumFrames   int32
	CallbackToSwift uintptr
	OpenKeyboard    uintptr
	CloseKeyboard   uintptr
}

// Rev1 returns the revision 1 layout.
func (v ViewObj) Rev1() ViewObjRev1C {
	return ViewObjRev1C{
		View:            v.View,
		MetalLayer:      v.MetalLayer,
		MaximumFrames:   v.MaximumFrames,
		CallbackToSwift: v.CallbackToSwift,
		OpenKeyboard:    v.OpenKeyboard,
		CloseKeyboard:   v.CloseKeyboard,
	}
}

// Rev2 returns the revision 2 layout. It fails if CallbackToSwift is set,
// since revision 2 has nowhere to carry it.
func (v ViewObj) Rev2() (ViewObjRev2C, error) {
	if v.CallbackToSwift != 0 {
		return ViewObjRev2C{}, fmt.Errorf("ios_view_obj rev2 has no callback_to_swift field")
	}
	return ViewObjRev2C{
		View:          v.View,
		MetalLayer:    v.MetalLayer,
		MaximumFrames: v.MaximumFrames,
		OpenKeyboard:  v.OpenKeyboard,
		CloseKeyboard: v.CloseKeyboard,
	}, nil
}

// Library is a loaded native_app engine.
type Library struct {
	path    string
	handle  uintptr
	symbols map[string]bool

	createAppRev1 func(obj ViewObjRev1C) uintptr
	createAppRev2 func(obj ViewObjRev2C) uintptr
	createAppPtr  func(obj unsafe.Pointer, revision int32) uintptr
	destroyApp    func(app uintptr)
	drawFrame     func(app uintptr)
	touchBegin    func(app uintptr, x, y float32)
	touchMove     func(app uintptr, x, y float32)
	touchEnd      func(app uintptr, x, y float32)
	textInput     func(app uintptr, bytes *byte, length int32)
	backspace     func(app uintptr)
	abiRevision   func() int32
}

var (
	libsMu sync.Mutex
	libs   = map[string]*Library{}
)

// Open loads the library at path, or at the default location when path is
// empty. Libraries are cached per resolved path and never unloaded.
func Open(path string) (*Library, error) {
	if path == "" {
		path = LibraryPath()
	}

	libsMu.Lock()
	defer libsMu.Unlock()

	if lib, ok := libs[path]; ok {
		return lib, nil
	}

	handle, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load native_app library from %s: %w", path, err)
	}

	lib := &Library{
		path:    path,
		handle:  handle,
		symbols: make(map[string]bool),
	}
	if err := lib.register(); err != nil {
		return nil, err
	}

	libs[path] = lib
	return lib, nil
}

// LibraryPath returns the path Open uses when given an empty path.
func LibraryPath() string {
	if path := os.Getenv(EnvLibraryPath); path != "" {
		return path
	}

	libName := libraryName(runtime.GOOS)

	searchPaths := []string{
		libName,
		filepath.Join("lib", libName),
	}

	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		searchPaths = append(searchPaths,
			filepath.Join(execDir, libName),
			filepath.Join(execDir, "..", "lib", libName),
		)
		// App bundle locations
		if runtime.GOOS == "ios" || runtime.GOOS == "darwin" {
			searchPaths = append(searchPaths,
				filepath.Join(execDir, "Frameworks", libName),
				filepath.Join(execDir, "..", "Frameworks", libName),
			)
		}
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			if absPath, err := filepath.Abs(path); err == nil {
				return absPath
			}
			return path
		}
	}

	// Let the dynamic loader search for it
	return libName
}

func libraryName(goos string) string {
	switch goos {
	case "darwin", "ios":
		return "lib" + defaultLibBase + ".dylib"
	case "windows":
		return defaultLibBase + ".dll"
	default:
		return "lib" + defaultLibBase + ".so"
	}
}

func (l *Library) register() error {
	for _, name := range requiredSymbols {
		if _, err := getSymbol(l.handle, name); err != nil {
			return fmt.Errorf("%s: missing required symbol %s: %w", l.path, name, err)
		}
	}

	l.bind(SymDrawFrame, &l.drawFrame)
	l.bind(SymTouchBegin, &l.touchBegin)
	l.bind(SymTouchMove, &l.touchMove)
	l.bind(SymTouchEnd, &l.touchEnd)
	l.bind(SymTextInput, &l.textInput)
	l.bind(SymKeyBackspace, &l.backspace)

	l.bind(SymCreateAppPtr, &l.createAppPtr)
	l.bind(SymDestroyApp, &l.destroyApp)
	l.bind(SymABIRevision, &l.abiRevision)

	// Struct arguments by value are only supported by purego on darwin.
	// Elsewhere the library has to export create_app_ptr.
	if runtime.GOOS == "darwin" {
		if l.bind(SymCreateApp, &l.createAppRev1) {
			l.bind(SymCreateApp, &l.createAppRev2)
		}
	} else if _, err := getSymbol(l.handle, SymCreateApp); err == nil {
		l.symbols[SymCreateApp] = true
	}

	if l.createAppPtr == nil && l.createAppRev2 == nil {
		return fmt.Errorf("%s: no usable constructor (need %s, or %s on darwin)", l.path, SymCreateAppPtr, SymCreateApp)
	}
	return nil
}

// bind resolves name and registers it into fptr. It reports whether the
// symbol exists; a missing symbol leaves fptr nil.
func (l *Library) bind(name string, fptr any) bool {
	addr, err := getSymbol(l.handle, name)
	if err != nil || addr == 0 {
		return false
	}
	purego.RegisterFunc(fptr, addr)
	l.symbols[name] = true
	return true
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// SymbolStatus is one row of Symbols.
type SymbolStatus struct {
	Name     string
	Required bool
	Found    bool
}

// Symbols reports every known symbol and whether it resolved.
func (l *Library) Symbols() []SymbolStatus {
	out := make([]SymbolStatus, 0, len(requiredSymbols)+len(optionalSymbols))
	for _, name := range requiredSymbols {
		out = append(out, SymbolStatus{Name: name, Required: true, Found: l.symbols[name]})
	}
	for _, name := range optionalSymbols {
		out = append(out, SymbolStatus{Name: name, Found: l.symbols[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// HasDestroy reports whether the library exports destroy_app.
func (l *Library) HasDestroy() bool {
	return l.destroyApp != nil
}

// ABIRevision returns the ios_view_obj revision the library was built
// against, or 0 if it does not say.
func (l *Library) ABIRevision() int {
	if l.abiRevision == nil {
		return 0
	}
	return int(l.abiRevision())
}

// CreateApp constructs one engine instance. The returned value is the
// opaque native_app pointer.
func (l *Library) CreateApp(obj ViewObj) (uintptr, error) {
	var app uintptr

	switch {
	case l.createAppPtr != nil:
		switch obj.Revision {
		case 1:
			c := obj.Rev1()
			app = l.createAppPtr(unsafe.Pointer(&c), 1)
		default:
			c, err := obj.Rev2()
			if err != nil {
				return 0, err
			}
			app = l.createAppPtr(unsafe.Pointer(&c), 2)
		}
	case obj.Revision == 1:
		app = l.createAppRev1(obj.Rev1())
	default:
		c, err := obj.Rev2()
		if err != nil {
			return 0, err
		}
		app = l.createAppRev2(c)
	}

	if app == 0 {
		return 0, &CallError{Symbol: SymCreateApp, Detail: "returned NULL"}
	}
	return app, nil
}

// DestroyApp releases app. It returns ErrNoDestroy when the library has no
// destructor; the instance then lives until the process exits.
func (l *Library) DestroyApp(app uintptr) error {
	if l.destroyApp == nil {
		return ErrNoDestroy
	}
	l.destroyApp(app)
	return nil
}

// DrawFrame renders one frame.
func (l *Library) DrawFrame(app uintptr) {
	l.drawFrame(app)
}

// TouchBegin forwards a touch start.
func (l *Library) TouchBegin(app uintptr, x, y float32) {
	l.touchBegin(app, x, y)
}

// TouchMove forwards a touch move.
func (l *Library) TouchMove(app uintptr, x, y float32) {
	l.touchMove(app, x, y)
}

// TouchEnd forwards a touch end.
func (l *Library) TouchEnd(app uintptr, x, y float32) {
	l.touchEnd(app, x, y)
}

// TextInput forwards text as a pointer/length pair. The buffer is not
// NUL-terminated and is only borrowed for the call.
func (l *Library) TextInput(app uintptr, text []byte) error {
	if len(text) == 0 {
		return nil
	}
	if len(text) > maxTextInputBytes {
		return &CallError{Symbol: SymTextInput, Detail: fmt.Sprintf("%d bytes exceeds int range", len(text))}
	}
	l.textInput(app, &text[0], int32(len(text)))
	return nil
}

// Backspace forwards a delete-backward key.
func (l *Library) Backspace(app uintptr) {
	l.backspace(app)
}

// CallError reports a failed call into the library.
type CallError struct {
	Symbol string
	Detail string
}

func (e *CallError) Error() string {
	return e.Symbol + ": " + e.Detail
}

// ErrNoDestroy is returned by DestroyApp when the library has no destroy_app.
var ErrNoDestroy = &CallError{Symbol: SymDestroyApp, Detail: "not exported by library"}
