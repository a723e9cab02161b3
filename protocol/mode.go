package protocol

// ModeController tracks the session's ModeFlags from the sentinel tokens the
// firmware embeds in its output. It is the only writer of the flags; outbound
// commands never change them, only what the device reports back does.
//
// ModeController is not safe for concurrent use. A session feeds it from its
// single inbound path.
type ModeController struct {
	flags ModeFlags
}

// NewModeController returns a controller in the initial raw/echo-on state.
func NewModeController() *ModeController {
	return &ModeController{}
}

// Flags returns the current mode flags.
func (m *ModeController) Flags() ModeFlags {
	return m.flags
}

// Observe inspects one decoded inbound unit. A unit that is exactly a
// sentinel updates the flags and is consumed: the returned text is empty.
// Any other unit is returned unchanged.
//
// Sentinels are matched in this order: raw, hex (or ihex), echo_off, echo_on.
func (m *ModeController) Observe(text string) (string, ModeFlags) {
	switch text {
	case SentinelRaw:
		m.flags.Framing = FramingRaw
	case SentinelHex, SentinelIHex:
		m.flags.Framing = FramingHex
	case SentinelEchoOff:
		m.flags.Echo = EchoOff
	case SentinelEchoOn:
		m.flags.Echo = EchoOn
	default:
		return text, m.flags
	}
	return "", m.flags
}

// Reset returns the controller to raw framing with echo on.
func (m *ModeController) Reset() {
	m.flags = ModeFlags{}
}

// IsSentinel reports whether text is one of the inbound mode markers.
func IsSentinel(text string) bool {
	switch text {
	case SentinelRaw, SentinelHex, SentinelIHex, SentinelEchoOff, SentinelEchoOn:
		return true
	}
	return false
}
