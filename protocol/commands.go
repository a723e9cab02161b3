package protocol

import (
	"fmt"
	"strings"
)

// BuildCommand terminates a firmware shell command with LineTerminator.
// The command must be a single line.
//
// Frame structure:
//
//	[COMMAND...]['\n']
func BuildCommand(cmd string) ([]byte, error) {
	if cmd == "" {
		return nil, fmt.Errorf("command cannot be empty")
	}
	if strings.ContainsAny(cmd, "\r\n") {
		return nil, fmt.Errorf("command must be a single line: %q", cmd)
	}

	frame := make([]byte, 0, len(cmd)+len(LineTerminator))
	frame = append(frame, cmd...)
	frame = append(frame, LineTerminator...)
	return frame, nil
}

// BuildEchoOffCmd constructs the "echo off" frame.
func BuildEchoOffCmd() []byte {
	return mustBuild(CmdEchoOff)
}

// BuildEchoOnCmd constructs the "echo on" frame.
func BuildEchoOnCmd() []byte {
	return mustBuild(CmdEchoOn)
}

// BuildTransferIHexCmd constructs the "set transfer ihex" frame.
func BuildTransferIHexCmd() []byte {
	return mustBuild(CmdTransferIHex)
}

// BuildTransferRawCmd constructs the "set transfer raw" frame.
func BuildTransferRawCmd() []byte {
	return mustBuild(CmdTransferRaw)
}

// BuildStopCmd constructs the "stop" frame.
func BuildStopCmd() []byte {
	return mustBuild(CmdStop)
}

// BuildLoadCmd constructs a load frame. An empty name loads into the
// firmware's temporary upload file ("load"); otherwise the name must be a
// valid 8.3 filename ("load <name>").
func BuildLoadCmd(name string) ([]byte, error) {
	if name == "" {
		return mustBuild(CmdLoad), nil
	}
	if err := ValidateFilename(name); err != nil {
		return nil, err
	}
	return BuildCommand(CmdLoad + " " + name)
}

// BuildRunCmd constructs the "run <name>" frame.
func BuildRunCmd(name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("run requires a filename")
	}
	return BuildCommand(CmdRun + " " + name)
}

// BuildDataLine frames one line of payload. Unlike commands, payload lines
// may be empty.
func BuildDataLine(line string) []byte {
	frame := make([]byte, 0, len(line)+len(LineTerminator))
	frame = append(frame, line...)
	frame = append(frame, LineTerminator...)
	return frame
}

// BuildEndOfTransmission constructs the frame that closes a raw save.
func BuildEndOfTransmission() []byte {
	return []byte{EndOfTransmission, '\n'}
}

// BuildInputLine frames one line of interactive user input.
func BuildInputLine(input string) []byte {
	return BuildDataLine(input)
}

// IsUnsupportedInput reports whether interactive input names a firmware
// command that cannot work over this terminal ("load" or "eval").
func IsUnsupportedInput(input string) bool {
	return strings.Contains(input, CmdLoad) || strings.Contains(input, CmdEval)
}

// IsQuitInput reports whether interactive input asks to end the session.
func IsQuitInput(input string) bool {
	return input == "quit" || input == "exit"
}

func mustBuild(cmd string) []byte {
	frame, err := BuildCommand(cmd)
	if err != nil {
		panic(err)
	}
	return frame
}
