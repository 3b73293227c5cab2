//go:build nativeapp_rev1

package main

/*
#cgo CFLAGS: -DNATIVE_APP_REVISION=1
#define NATIVE_APP_INTERNAL
#define NATIVE_APP_NO_PROTOTYPES
#include "native_app.h"
*/
import "C"

import (
	"unsafe"

	"github.com/agiangrant/nativeapp"
)

const abiRevision = nativeapp.Revision1

// cNotifier forwards Notify to callback_to_swift.
type cNotifier struct {
	fn unsafe.Pointer
}

func (n cNotifier) Notify(code int32) {
	C.nativeapp_call_int32((*[0]byte)(n.fn), C.int32_t(code))
}

func newNotifier(fn unsafe.Pointer) nativeapp.Notifier {
	if fn == nil {
		return nil
	}
	return cNotifier{fn: fn}
}

func notifyPointer(obj *C.ios_view_obj) unsafe.Pointer {
	return unsafe.Pointer(obj.callback_to_swift)
}
