// Package terminal runs an interactive ZephyrJS terminal session over a
// USB CDC-ACM transport.
//
// # Overview
//
// A Session owns the transport and runs two paths concurrently:
//   - Inbound: device output is tracked for mode sentinels, filtered of
//     prompt and echo artifacts, reassembled into lines and displayed
//   - Outbound: user input and upload plans are written to the device,
//     never interleaved with each other
//
// # Basic Usage
//
// Interactive terminal on stdin:
//
//	t := transport.NewUSB(0x8086, 0xF8A1)
//	sess := terminal.New(t)
//	if err := sess.Run(ctx, os.Stdin, nil); err != nil {
//	    log.Fatal(err)
//	}
//
// # Uploads
//
// Uploads are planned in full before the first frame is sent:
//
//	plan, err := terminal.PlanExecute(source, nil)  // load and run a script
//	plan, err := terminal.PlanSave("blink.js", data) // store a file
//
//	err = sess.Run(ctx, os.Stdin, plan)
//
// PlanSave checks the device's 8.3 filename rule and fails with a
// *protocol.ValidationError before anything is built.
//
// # Configuration Options
//
//	sess := terminal.New(t,
//	    terminal.WithInterface(2),
//	    terminal.WithSettleDelay(2*time.Second),
//	    terminal.WithFrameDelay(5*time.Millisecond),
//	    terminal.WithProgressCallback(progressFunc),
//	    terminal.WithLogger(myLogger),
//	    terminal.WithOutput(os.Stdout),
//	    terminal.WithPrompt(true),
//	)
//
// # Lifecycle
//
// Connecting -> Claimed -> Listening -> Idle <-> Transferring, and from any
// of these to Closing -> Closed. A detach, a transport error or an error
// reported on either endpoint ends the session; there is no reconnection.
//
// # Thread Safety
//
// Session methods are safe for concurrent use. Assembler is not.
package terminal
