package nativeapp

import "fmt"

// NativeRef is a borrowed, opaque host pointer (a UIView or CAMetalLayer).
// The bridge passes it through unchanged and never dereferences or frees it.
// The host must keep the referenced object alive until the App is destroyed.
type NativeRef uintptr

// IsZero reports whether the reference is NULL
func (r NativeRef) IsZero() bool {
	return r == 0
}

// Revision identifies a layout of the ios_view_obj struct.
type Revision int

const (
	// RevisionAuto negotiates the revision from the descriptor contents.
	RevisionAuto Revision = 0

	// Revision1 carries callback_to_swift in addition to the keyboard callbacks.
	Revision1 Revision = 1

	// Revision2 drops callback_to_swift.
	Revision2 Revision = 2

	// LatestRevision is the revision new hosts should target.
	LatestRevision = Revision2
)

func (r Revision) String() string {
	switch r {
	case RevisionAuto:
		return "auto"
	case Revision1:
		return "rev1"
	case Revision2:
		return "rev2"
	default:
		return fmt.Sprintf("rev(%d)", int(r))
	}
}

// HasNotifier reports whether the revision's struct carries callback_to_swift.
func (r Revision) HasNotifier() bool {
	return r == Revision1
}

// Codes the engine passes to callback_to_swift.
const (
	NotifyCanvasCreated int32 = 0
	NotifyEnterFrame    int32 = 1
)

// Keyboard is the host capability for showing and hiding the software keyboard.
type Keyboard interface {
	OpenKeyboard()
	CloseKeyboard()
}

// Notifier is the host capability behind callback_to_swift.
type Notifier interface {
	Notify(code int32)
}

// KeyboardFuncs adapts a pair of functions to Keyboard. Nil fields are skipped.
type KeyboardFuncs struct {
	Open  func()
	Close func()
}

func (k KeyboardFuncs) OpenKeyboard() {
	if k.Open != nil {
		k.Open()
	}
}

func (k KeyboardFuncs) CloseKeyboard() {
	if k.Close != nil {
		k.Close()
	}
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(code int32)

func (f NotifierFunc) Notify(code int32) {
	f(code)
}

type noKeyboard struct{}

func (noKeyboard) OpenKeyboard()  {}
func (noKeyboard) CloseKeyboard() {}

// ViewDescriptor is the bundle the host hands over once, at creation time.
type ViewDescriptor struct {
	View          NativeRef
	Layer         NativeRef
	MaximumFrames int32
	Keyboard      Keyboard
	Notifier      Notifier
	Revision      Revision
}

// Negotiate resolves RevisionAuto and checks that every field the host
// supplied can be carried by the chosen revision. A Notifier on a revision
// without callback_to_swift is rejected rather than dropped.
func (d ViewDescriptor) Negotiate() (ViewDescriptor, error) {
	const op = "negotiate"

	if d.MaximumFrames < 0 {
		return d, InvalidDescriptor(op, "maximum_frames must be >= 0, got %d", d.MaximumFrames)
	}

	switch d.Revision {
	case RevisionAuto:
		if d.Notifier != nil {
			d.Revision = Revision1
		} else {
			d.Revision = LatestRevision
		}
	case Revision1, Revision2:
	default:
		return d, InvalidDescriptor(op, "unknown revision %d", int(d.Revision))
	}

	if d.Notifier != nil && !d.Revision.HasNotifier() {
		return d, RevisionMismatch(op, "%s has no callback_to_swift but a notifier was supplied", d.Revision)
	}

	if d.Keyboard == nil {
		d.Keyboard = noKeyboard{}
	}
	return d, nil
}
