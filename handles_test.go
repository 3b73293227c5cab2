package nativeapp

import (
	"errors"
	"sync"
	"testing"
)

func TestHandles(t *testing.T) {
	h := NewHandles()
	a, b := &App{id: 1}, &App{id: 2}

	ida := h.Register(a)
	idb := h.Register(b)
	if ida == 0 || idb == 0 || ida == idb {
		t.Fatalf("bad handle IDs %d, %d", ida, idb)
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}

	got, err := h.Lookup(ida)
	if err != nil || got != a {
		t.Errorf("Lookup(%d) = %v, %v", ida, got, err)
	}

	released, err := h.Release(ida)
	if err != nil || released != a {
		t.Errorf("Release(%d) = %v, %v", ida, released, err)
	}
	if _, err := h.Lookup(ida); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Lookup after Release error = %v, want ErrInvalidHandle", err)
	}
	if _, err := h.Release(ida); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("double Release error = %v, want ErrInvalidHandle", err)
	}
	if _, err := h.Lookup(0); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Lookup(0) error = %v, want ErrInvalidHandle", err)
	}

	// IDs are not reused
	idc := h.Register(a)
	if idc == ida || idc == idb {
		t.Errorf("handle ID %d reused", idc)
	}
}

func TestHandlesConcurrent(t *testing.T) {
	h := NewHandles()
	var wg sync.WaitGroup
	ids := make(chan uintptr, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- h.Register(&App{})
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uintptr]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate handle %d", id)
		}
		seen[id] = true
	}
	if h.Len() != 100 {
		t.Errorf("Len() = %d, want 100", h.Len())
	}
}
