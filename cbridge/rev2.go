//go:build !nativeapp_rev1

package main

/*
#define NATIVE_APP_INTERNAL
#define NATIVE_APP_NO_PROTOTYPES
#include "native_app.h"
*/
import "C"

import (
	"unsafe"

	"github.com/agiangrant/nativeapp"
)

const abiRevision = nativeapp.Revision2

// Revision 2 has no callback_to_swift.
func newNotifier(unsafe.Pointer) nativeapp.Notifier {
	return nil
}

func notifyPointer(*C.ios_view_obj) unsafe.Pointer {
	return nil
}
