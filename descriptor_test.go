package nativeapp

import (
	"errors"
	"testing"
)

func TestNegotiate(t *testing.T) {
	notifier := NotifierFunc(func(int32) {})

	tests := []struct {
		name         string
		desc         ViewDescriptor
		wantRevision Revision
		wantFrames   int32
		wantErr      error
	}{
		{
			name:         "auto without notifier",
			desc:         ViewDescriptor{},
			wantRevision: Revision2,
			wantFrames:   0,
		},
		{
			name:         "auto with notifier",
			desc:         ViewDescriptor{Notifier: notifier, MaximumFrames: 120},
			wantRevision: Revision1,
			wantFrames:   120,
		},
		{
			name:         "explicit rev1 without notifier",
			desc:         ViewDescriptor{Revision: Revision1, MaximumFrames: 2},
			wantRevision: Revision1,
			wantFrames:   2,
		},
		{
			name:         "explicit rev2",
			desc:         ViewDescriptor{Revision: Revision2, MaximumFrames: 60},
			wantRevision: Revision2,
			wantFrames:   60,
		},
		{
			name:    "notifier on rev2",
			desc:    ViewDescriptor{Revision: Revision2, Notifier: notifier},
			wantErr: ErrRevisionMismatch,
		},
		{
			name:    "unknown revision",
			desc:    ViewDescriptor{Revision: 7},
			wantErr: ErrInvalidDescriptor,
		},
		{
			name:    "negative frames",
			desc:    ViewDescriptor{MaximumFrames: -3},
			wantErr: ErrInvalidDescriptor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.desc.Negotiate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Negotiate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Negotiate() error = %v", err)
			}
			if got.Revision != tt.wantRevision {
				t.Errorf("Revision = %v, want %v", got.Revision, tt.wantRevision)
			}
			if got.MaximumFrames != tt.wantFrames {
				t.Errorf("MaximumFrames = %d, want %d", got.MaximumFrames, tt.wantFrames)
			}
			if got.Keyboard == nil {
				t.Error("Keyboard should default to a no-op")
			}
		})
	}
}

func TestNegotiateKeepsBorrowedRefs(t *testing.T) {
	desc := ViewDescriptor{View: 0xdead, Layer: 0xbeef}
	got, err := desc.Negotiate()
	if err != nil {
		t.Fatal(err)
	}
	if got.View != 0xdead || got.Layer != 0xbeef {
		t.Errorf("refs changed: view=%#x layer=%#x", got.View, got.Layer)
	}
}

func TestKeyboardFuncs(t *testing.T) {
	var opened, closed bool
	kb := KeyboardFuncs{
		Open:  func() { opened = true },
		Close: func() { closed = true },
	}
	kb.OpenKeyboard()
	kb.CloseKeyboard()
	if !opened || !closed {
		t.Errorf("opened=%v closed=%v", opened, closed)
	}

	// Nil funcs are skipped
	KeyboardFuncs{}.OpenKeyboard()
	KeyboardFuncs{}.CloseKeyboard()
}

func TestRevisionString(t *testing.T) {
	tests := map[Revision]string{
		RevisionAuto: "auto",
		Revision1:    "rev1",
		Revision2:    "rev2",
		Revision(9):  "rev(9)",
	}
	for rev, want := range tests {
		if got := rev.String(); got != want {
			t.Errorf("Revision(%d).String() = %q, want %q", int(rev), got, want)
		}
	}
}
