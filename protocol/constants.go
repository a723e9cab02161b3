package protocol

// Inbound mode markers emitted by the firmware. They are protocol tokens,
// never user-visible output.
const (
	// SentinelRaw switches the framing mode to plain line-oriented text
	SentinelRaw = "raw"

	// SentinelHex switches the framing mode to Intel-HEX upload
	SentinelHex = "hex"

	// SentinelIHex is the spelling used by ashell firmware for SentinelHex
	SentinelIHex = "ihex"

	// SentinelEchoOff reports that the firmware stopped echoing input
	SentinelEchoOff = "echo_off"

	// SentinelEchoOn reports that the firmware echoes input again
	SentinelEchoOn = "echo_on"
)

// Outbound commands understood by the firmware shell. Every command is sent
// as its own write, terminated by LineTerminator.
const (
	// CmdEchoOff disables keystroke and prompt echo
	CmdEchoOff = "echo off"

	// CmdEchoOn re-enables keystroke and prompt echo
	CmdEchoOn = "echo on"

	// CmdTransferIHex selects Intel-HEX framing for the next load
	CmdTransferIHex = "set transfer ihex"

	// CmdTransferRaw selects raw text framing
	CmdTransferRaw = "set transfer raw"

	// CmdStop stops the running JavaScript program
	CmdStop = "stop"

	// CmdLoad starts a load into the firmware's temporary file, or into the
	// named file when followed by a filename
	CmdLoad = "load"

	// CmdRun runs a file stored on the device
	CmdRun = "run"

	// CmdEval is the firmware's inline evaluation command
	CmdEval = "eval"
)

const (
	// LineTerminator ends every outbound frame
	LineTerminator = "\n"

	// EndOfTransmission terminates a raw save (Ctrl-Z / SUB)
	EndOfTransmission = 0x1A

	// UploadFilename is the fixed device file an execute upload is loaded into
	UploadFilename = "temp.dat"
)

// Prompt constants.
const (
	// PromptMarker identifies the firmware's interactive prompt
	PromptMarker = "acm>"

	// Prompt is the colored prompt drawn by both the firmware and the host
	Prompt = "\x1b[33macm> \x1b[39;0m"

	// PromptEscape is the colored-prompt prefix the firmware still emits
	// while echo is disabled
	PromptEscape = "\x1b[33macm"

	// MaxPromptLength is the longest chunk treated as a bare prompt
	MaxPromptLength = 18
)

// CDC-ACM configuration sent once after the interface is claimed.
const (
	// RequestTypeClassInterfaceOut is bmRequestType for a host-to-device,
	// class-specific, interface-recipient request (0x21)
	RequestTypeClassInterfaceOut = 0x21

	// RequestSetControlLineState is the CDC SET_CONTROL_LINE_STATE request (0x22)
	RequestSetControlLineState = 0x22

	// ControlLineStateDTR asserts DTR, telling the firmware a host is attached
	ControlLineStateDTR = 0x01

	// DefaultInterface is the WebUSB interface claimed when the device
	// catalog does not name one
	DefaultInterface = 0x02
)

// 8.3 filename limits for files saved on the device.
const (
	// MaxBaseNameLength is the longest allowed name before the extension
	MaxBaseNameLength = 8

	// MaxExtensionLength is the longest allowed extension
	MaxExtensionLength = 3
)
