// Package transport binds the terminal engine to real hardware.
//
// Two bindings implement Transport:
//   - USB talks to the WebUSB interface directly through libusb (gousb)
//   - Serial talks to the tty the operating system creates for a CDC-ACM device
//
// Both deliver inbound data, transfer errors and detach notifications on an
// event channel:
//
//	t := transport.NewUSB(0x8086, 0xF8A1)
//	if err := t.Open(ctx); err != nil {
//	    return err
//	}
//	defer t.Close()
//	for ev := range t.Events() {
//	    ...
//	}
package transport
