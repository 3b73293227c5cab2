package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agiangrant/nativeapp"
	"github.com/agiangrant/nativeapp/engine/recorder"
)

const sample = `
[[event]]
at_ms = 50
kind = "touch_end"
x = 10.0
y = 20.0

[[event]]
at_ms = 0
kind = "touch_begin"
x = 10.0
y = 20.0

[[event]]
at_ms = 20
kind = "touch_move"
x = 10.0
y = 20.0

[[event]]
at_ms = 50
kind = "text"
text = "hi"

[[event]]
at_ms = 60
kind = "backspace"
`

func TestParseSorts(t *testing.T) {
	s, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{KindTouchBegin, KindTouchMove, KindTouchEnd, KindText, KindBackspace}
	if len(s.Events) != len(want) {
		t.Fatalf("got %d events, want %d", len(s.Events), len(want))
	}
	for i, kind := range want {
		if s.Events[i].Kind != kind {
			t.Errorf("event %d = %q, want %q", i, s.Events[i].Kind, kind)
		}
	}
	if s.Duration() != 60*time.Millisecond {
		t.Errorf("Duration() = %v, want 60ms", s.Duration())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"unknown kind", "[[event]]\nkind = \"pinch\"\n", "unknown kind"},
		{"negative time", "[[event]]\nkind = \"backspace\"\nat_ms = -1\n", "at_ms"},
		{"bad toml", "[[event]\n", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestEmptyScript(t *testing.T) {
	s, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if len(s.Events) != 0 || s.Duration() != 0 {
		t.Errorf("empty script = %+v", s)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.toml")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(s.Events) != 5 {
		t.Errorf("Load() got %d events", len(s.Events))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestApply(t *testing.T) {
	var f recorder.Factory
	app, err := nativeapp.Create(nativeapp.ViewDescriptor{}, nativeapp.WithEngineFactory(f.EngineFactory()))
	if err != nil {
		t.Fatal(err)
	}
	defer app.Destroy()

	s, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range s.Events {
		if err := e.Apply(app); err != nil {
			t.Fatalf("Apply(%s) error = %v", e.Kind, err)
		}
	}

	recs := f.Last().Records()
	wantKinds := []recorder.Kind{
		recorder.KindTouch, recorder.KindTouch, recorder.KindTouch,
		recorder.KindText, recorder.KindBackspace,
	}
	if len(recs) != len(wantKinds) {
		t.Fatalf("records:\n%s", f.Last().Log())
	}
	for i, k := range wantKinds {
		if recs[i].Kind != k {
			t.Errorf("record %d = %v, want %v", i, recs[i].Kind, k)
		}
	}

	if err := (Event{Kind: "pinch"}).Apply(app); err == nil {
		t.Error("Apply() should reject unknown kinds")
	}
}
