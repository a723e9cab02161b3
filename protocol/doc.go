// Package protocol implements the line-oriented shell protocol spoken by
// ZephyrJS (ashell) firmware over a USB CDC-ACM endpoint.
//
// # Protocol Overview
//
// Every outbound command is one newline-terminated write:
//
//	echo off | echo on | set transfer ihex | set transfer raw
//	stop | load | load <name> | run <name>
//
// The firmware answers with ordinary console output interleaved with mode
// markers that are never shown to the user:
//
//	raw | hex (ihex) | echo_off | echo_on
//
// # Mode Tracking
//
// A ModeController consumes the markers and keeps the session's ModeFlags:
//
//	mc := protocol.NewModeController()
//	text, flags := mc.Observe(chunk)
//	if !protocol.ShouldSuppress(text, flags) {
//	    render(text)
//	}
//
// # Command Builders
//
// Use the Build* functions to create frames:
//
//	frame := protocol.BuildEchoOffCmd()
//	frame, err := protocol.BuildLoadCmd("blink.js")
//	frame, err := protocol.BuildRunCmd(protocol.UploadFilename)
//
// # Error Handling
//
// Files saved on the device must follow the 8.3 rule. ValidateFilename and
// BuildLoadCmd return a *ValidationError otherwise:
//
//	if err := protocol.ValidateFilename("averylongname.js"); err != nil {
//	    // err.Error() returns:
//	    // invalid filename "averylongname.js": base name longer than 8 characters (expected 8.3 format)
//	}
package protocol
