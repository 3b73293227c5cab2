//go:build windows

package ffi

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"
)

var (
	winDLLsMu sync.Mutex
	winDLLs   = map[uintptr]*windows.DLL{}
)

// openLibrary loads a dynamic library on Windows
func openLibrary(path string) (uintptr, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return 0, fmt.Errorf("LoadDLL failed: %w", err)
	}
	winDLLsMu.Lock()
	winDLLs[uintptr(dll.Handle)] = dll
	winDLLsMu.Unlock()
	// Return the actual HMODULE handle, not a pointer to the DLL struct
	return uintptr(dll.Handle), nil
}

// getSymbol retrieves a symbol from the loaded library on Windows
func getSymbol(handle uintptr, name string) (uintptr, error) {
	winDLLsMu.Lock()
	dll := winDLLs[handle]
	winDLLsMu.Unlock()
	if dll == nil {
		return 0, fmt.Errorf("library not loaded")
	}
	proc, err := dll.FindProc(name)
	if err != nil {
		return 0, fmt.Errorf("FindProc(%s) failed: %w", name, err)
	}
	return proc.Addr(), nil
}
