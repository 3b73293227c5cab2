// Command cbridge builds the native_app C ABI for view hosts.
//
// Build it as a static archive for iOS or as a shared library elsewhere:
//
//	go build -buildmode=c-archive -o libnative_app.a ./cbridge
//	go build -buildmode=c-shared -o libnative_app.so ./cbridge
//
// Add -tags nativeapp_rev1 for hosts using the ios_view_obj layout with
// callback_to_swift. The engine behind the exported functions is chosen by
// nativeapp.toml (or the file named by NATIVEAPP_CONFIG).
package main

/*
#include <stdlib.h>
#define NATIVE_APP_INTERNAL
#define NATIVE_APP_NO_PROTOTYPES
#include "native_app.h"
*/
import "C"

import (
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/mobile/event/touch"
)

var exported = newBridge()

// cKeyboard forwards to the open_keyboard/close_keyboard host pointers.
type cKeyboard struct {
	open  unsafe.Pointer
	close unsafe.Pointer
}

func (k cKeyboard) OpenKeyboard() {
	C.nativeapp_call_void((*[0]byte)(k.open))
}

func (k cKeyboard) CloseKeyboard() {
	C.nativeapp_call_void((*[0]byte)(k.close))
}

func fieldsFrom(obj *C.ios_view_obj) *viewFields {
	if obj == nil {
		return nil
	}
	return &viewFields{
		view:          uintptr(obj.view),
		layer:         uintptr(obj.metal_layer),
		maximumFrames: int32(obj.maximum_frames),
		openKeyboard:  unsafe.Pointer(obj.open_keyboard),
		closeKeyboard: unsafe.Pointer(obj.close_keyboard),
		notify:        notifyPointer(obj),
	}
}

func newHandle(op string, obj *C.ios_view_obj, revision int32) *C.native_app {
	id, err := exported.createFrom(op, fieldsFrom(obj), revision)
	if err != nil {
		exported.log.Error("create failed", zap.String("op", op), zap.Error(err))
		return nil
	}

	data := (*C.native_app)(C.malloc(C.size_t(unsafe.Sizeof(C.native_app{}))))
	if data == nil {
		exported.destroy(id)
		return nil
	}
	data.handle = C.uintptr_t(id)
	return data
}

func handleID(data *C.native_app) uintptr {
	if data == nil {
		return 0
	}
	return uintptr(data.handle)
}

//export create_app
func create_app(object C.ios_view_obj) *C.native_app {
	return newHandle("create_app", &object, int32(abiRevision))
}

//export create_app_ptr
func create_app_ptr(object *C.ios_view_obj, revision C.int32_t) *C.native_app {
	return newHandle("create_app_ptr", object, int32(revision))
}

//export destroy_app
func destroy_app(data *C.native_app) {
	if data == nil {
		return
	}
	exported.destroy(handleID(data))
	C.free(unsafe.Pointer(data))
}

//export draw_frame
func draw_frame(data *C.native_app) {
	exported.drawFrame(handleID(data))
}

//export event_touch_begin
func event_touch_begin(data *C.native_app, x, y C.float) {
	exported.touch(handleID(data), touch.TypeBegin, float32(x), float32(y))
}

//export event_touch_move
func event_touch_move(data *C.native_app, x, y C.float) {
	exported.touch(handleID(data), touch.TypeMove, float32(x), float32(y))
}

//export event_touch_end
func event_touch_end(data *C.native_app, x, y C.float) {
	exported.touch(handleID(data), touch.TypeEnd, float32(x), float32(y))
}

//export event_text_input
func event_text_input(data *C.native_app, bytes *C.char, bytes_len C.int) {
	// Borrowed for the duration of the call only
	text, err := textFrom(unsafe.Pointer(bytes), int32(bytes_len))
	if err != nil {
		exported.log.Warn("event_text_input ignored", zap.Error(err))
		return
	}
	exported.textInput(handleID(data), text)
}

//export event_key_typed_backspace
func event_key_typed_backspace(data *C.native_app) {
	exported.backspace(handleID(data))
}

//export native_app_abi_revision
func native_app_abi_revision() C.int32_t {
	return C.int32_t(abiRevision)
}

func main() {}
