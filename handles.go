package nativeapp

import "sync"

// Handles maps integer handle IDs to Apps so that C code can refer to an App
// without holding a Go pointer. IDs start at 1 and are never reused.
//
// Safe for concurrent use.
type Handles struct {
	mu     sync.RWMutex
	apps   map[uintptr]*App
	nextID uintptr
}

// NewHandles returns an empty handle table.
func NewHandles() *Handles {
	return &Handles{
		apps:   make(map[uintptr]*App),
		nextID: 1,
	}
}

// Register stores app and returns its handle ID.
func (h *Handles) Register(app *App) uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.apps[id] = app
	return id
}

// Lookup returns the App for id.
func (h *Handles) Lookup(id uintptr) (*App, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	app, ok := h.apps[id]
	if !ok {
		return nil, newError("lookup", KindInvalidHandle, nil, "unknown handle %d", id)
	}
	return app, nil
}

// Release removes id from the table and returns the App it referred to.
func (h *Handles) Release(id uintptr) (*App, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	app, ok := h.apps[id]
	if !ok {
		return nil, newError("release", KindInvalidHandle, nil, "unknown handle %d", id)
	}
	delete(h.apps, id)
	return app, nil
}

// Len returns the number of live handles.
func (h *Handles) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.apps)
}
