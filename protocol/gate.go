package protocol

import (
	"regexp"
	"strings"
)

// statusLine matches inbound text that starts with a firmware status line or
// a bare line break. Firmware prints these while it consumes a hex upload.
var statusLine = regexp.MustCompile(`^(\n|\[.*\])`)

// SuppressReason names the rule that hid an inbound unit.
type SuppressReason int

const (
	// NotSuppressed means the unit is user-visible output
	NotSuppressed SuppressReason = iota

	// SuppressedByFraming means a status line arrived during a hex upload
	SuppressedByFraming

	// SuppressedByEcho means an echo artifact arrived while echo is off
	SuppressedByEcho
)

func (r SuppressReason) String() string {
	switch r {
	case NotSuppressed:
		return "none"
	case SuppressedByFraming:
		return "framing"
	case SuppressedByEcho:
		return "echo"
	default:
		return "unknown"
	}
}

// ShouldSuppress reports whether an inbound unit is a device prompt, echo or
// status artifact that must not be rendered under the given flags.
func ShouldSuppress(text string, flags ModeFlags) bool {
	return Classify(text, flags) != NotSuppressed
}

// Classify applies the two suppression rules and reports which one fired.
//
// Framing rule, hex framing only: empty text, text starting with a newline,
// and bracketed status markers such as "[booting]".
//
// Echo rule, echo off only: text starting with a carriage return, a newline,
// or the colored prompt escape sequence.
func Classify(text string, flags ModeFlags) SuppressReason {
	if flags.Framing == FramingHex && (text == "" || statusLine.MatchString(text)) {
		return SuppressedByFraming
	}
	if flags.Echo == EchoOff && isEchoArtifact(text) {
		return SuppressedByEcho
	}
	return NotSuppressed
}

func isEchoArtifact(text string) bool {
	return strings.HasPrefix(text, "\r") ||
		strings.HasPrefix(text, "\n") ||
		strings.HasPrefix(text, PromptEscape)
}
