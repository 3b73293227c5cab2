//go:build !js

package ffi

import (
	"sync"

	"github.com/ebitengine/purego"
)

// HostCallbacks is the Go side of the function pointers in ios_view_obj.
// Nil fields are never invoked.
type HostCallbacks struct {
	OpenKeyboard  func()
	CloseKeyboard func()
	Notify        func(code int32)
}

// CallbackSet holds C function pointers that forward into one HostCallbacks.
//
// purego callbacks can never be freed and the process-wide supply is
// limited, so sets are pooled: Release returns the trampolines for reuse by
// the next engine instance instead of minting new ones.
type CallbackSet struct {
	OpenKeyboard    uintptr
	CloseKeyboard   uintptr
	CallbackToSwift uintptr

	mu     sync.RWMutex
	target HostCallbacks
}

var (
	callbackPoolMu sync.Mutex
	callbackPool   []*CallbackSet
)

// AcquireCallbacks returns a set of C function pointers routed to cb.
func AcquireCallbacks(cb HostCallbacks) *CallbackSet {
	callbackPoolMu.Lock()
	var set *CallbackSet
	if n := len(callbackPool); n > 0 {
		set = callbackPool[n-1]
		callbackPool = callbackPool[:n-1]
	}
	callbackPoolMu.Unlock()

	if set == nil {
		set = newCallbackSet()
	}
	set.mu.Lock()
	set.target = cb
	set.mu.Unlock()
	return set
}

// Release detaches the set from its callbacks and returns it to the pool.
// Calls arriving from C after Release are dropped.
func (s *CallbackSet) Release() {
	s.mu.Lock()
	s.target = HostCallbacks{}
	s.mu.Unlock()

	callbackPoolMu.Lock()
	callbackPool = append(callbackPool, s)
	callbackPoolMu.Unlock()
}

func newCallbackSet() *CallbackSet {
	s := &CallbackSet{}
	s.OpenKeyboard = purego.NewCallback(s.openKeyboard)
	s.CloseKeyboard = purego.NewCallback(s.closeKeyboard)
	s.CallbackToSwift = purego.NewCallback(s.notify)
	return s
}

func (s *CallbackSet) openKeyboard() {
	s.mu.RLock()
	fn := s.target.OpenKeyboard
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (s *CallbackSet) closeKeyboard() {
	s.mu.RLock()
	fn := s.target.CloseKeyboard
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (s *CallbackSet) notify(code int32) {
	s.mu.RLock()
	fn := s.target.Notify
	s.mu.RUnlock()
	if fn != nil {
		fn(code)
	}
}
