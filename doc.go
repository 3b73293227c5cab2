// Package nativeapp is the bridge between a mobile view host and a
// native_app rendering engine.
//
// The host creates one App per view from a ViewDescriptor, calls DrawFrame
// on its render cadence, forwards touch and keyboard input as it arrives, and
// calls Destroy when the view goes away:
//
//	app, err := nativeapp.Create(nativeapp.ViewDescriptor{
//		View:     viewRef,
//		Layer:    layerRef,
//		Keyboard: kb,
//	}, nativeapp.WithEngineFactory(factory))
//	if err != nil {
//		return err
//	}
//	defer app.Destroy()
//
//	app.TouchBegin(x, y)
//	app.DrawFrame()
//
// View and layer references are borrowed: the bridge passes them to the
// engine untouched and the host keeps them alive for the App's lifetime.
//
// Two layouts of the C ios_view_obj exist. Revision1 carries a
// callback_to_swift pointer (a Notifier); Revision2 does not. Negotiate
// picks one and refuses descriptors that would lose a callback.
//
// The engine itself sits behind the Engine interface. engine/native drives
// a native_app library loaded at runtime; engine/recorder is an
// instrumented stand-in. The cbridge command builds the C ABI for hosts.
package nativeapp
