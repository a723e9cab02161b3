package protocol

// Framing is the transfer framing mode reported by the firmware.
type Framing int

const (
	// FramingRaw is plain line-oriented text
	FramingRaw Framing = iota

	// FramingHex is Intel-HEX framed upload
	FramingHex
)

func (f Framing) String() string {
	switch f {
	case FramingRaw:
		return "raw"
	case FramingHex:
		return "hex"
	default:
		return "unknown"
	}
}

// Echo is the firmware's echo mode.
type Echo int

const (
	// EchoOn means the firmware echoes keystrokes and prompts
	EchoOn Echo = iota

	// EchoOff means echo is disabled for the duration of a transfer
	EchoOff
)

func (e Echo) String() string {
	switch e {
	case EchoOn:
		return "on"
	case EchoOff:
		return "off"
	default:
		return "unknown"
	}
}

// ModeFlags holds the two independent mode flags of a session.
// The zero value is the state of a freshly attached device: raw framing, echo on.
type ModeFlags struct {
	// Framing is the current transfer framing
	Framing Framing

	// Echo is the current echo mode
	Echo Echo
}
