package terminal

import (
	"regexp"
	"strings"

	"github.com/moffa90/go-zjs/ihex"
	"github.com/moffa90/go-zjs/protocol"
)

var (
	// commentPattern matches a line comment up to the end of its line
	commentPattern = regexp.MustCompile(`//.*`)

	// blankLinePattern matches a line holding only spaces and tabs
	blankLinePattern = regexp.MustCompile(`(?m)^[ \t]*\n`)
)

// HexEncoder converts source text into newline-separated Intel-HEX records.
type HexEncoder func(text string) string

// PlanKind is the kind of upload a TransferPlan performs.
type PlanKind int

const (
	// KindExecute loads a script into the temporary file and runs it
	KindExecute PlanKind = iota

	// KindSave stores a file on the device filesystem
	KindSave
)

func (k PlanKind) String() string {
	switch k {
	case KindExecute:
		return "execute"
	case KindSave:
		return "save"
	default:
		return "unknown"
	}
}

// TransferPlan is the complete, ordered list of outbound frames for one
// upload. It is built in full before the first frame is sent.
type TransferPlan struct {
	// Kind is the upload kind
	Kind PlanKind

	// Name is the device file the payload is written to
	Name string

	// Source is the text the payload was built from: the comment and
	// blank-line stripped script for execute plans, the raw data for save plans
	Source string

	// Frames are the outbound writes, in order
	Frames [][]byte

	// PayloadStart and PayloadEnd delimit the payload frames
	PayloadStart int
	PayloadEnd   int
}

// PayloadBytes returns the size of the payload frames in bytes.
func (p *TransferPlan) PayloadBytes() int {
	n := 0
	for _, f := range p.Frames[p.PayloadStart:p.PayloadEnd] {
		n += len(f)
	}
	return n
}

// StripComments removes "//" line comments. Whitespace before the comment
// is kept.
func StripComments(source string) string {
	return commentPattern.ReplaceAllString(source, "")
}

// StripBlankLines removes lines that hold nothing but spaces and tabs.
func StripBlankLines(source string) string {
	return blankLinePattern.ReplaceAllString(source, "")
}

// PlanExecute builds the frames that load source as Intel-HEX into the
// firmware's temporary file and run it:
//
//	echo off, set transfer ihex, stop, load, <records...>,
//	run temp.dat, set transfer raw, echo on
//
// A nil encode uses ihex.EncodeString.
func PlanExecute(source string, encode HexEncoder) (*TransferPlan, error) {
	if encode == nil {
		encode = ihex.EncodeString
	}

	stripped := StripBlankLines(StripComments(source))

	load, err := protocol.BuildLoadCmd("")
	if err != nil {
		return nil, err
	}
	run, err := protocol.BuildRunCmd(protocol.UploadFilename)
	if err != nil {
		return nil, err
	}

	plan := &TransferPlan{
		Kind:   KindExecute,
		Name:   protocol.UploadFilename,
		Source: stripped,
	}
	plan.Frames = append(plan.Frames,
		protocol.BuildEchoOffCmd(),
		protocol.BuildTransferIHexCmd(),
		protocol.BuildStopCmd(),
		load,
	)

	plan.PayloadStart = len(plan.Frames)
	for _, record := range strings.Split(encode(stripped), "\n") {
		record = strings.TrimRight(record, "\r")
		if record == "" {
			continue
		}
		plan.Frames = append(plan.Frames, protocol.BuildDataLine(record))
	}
	plan.PayloadEnd = len(plan.Frames)

	plan.Frames = append(plan.Frames,
		run,
		protocol.BuildTransferRawCmd(),
		protocol.BuildEchoOnCmd(),
	)
	return plan, nil
}

// PlanSave builds the frames that store data in the named device file:
//
//	echo off, set transfer raw, stop, load <name>, <lines...>, ^Z, echo on
//
// The name is validated against the 8.3 rule before anything is built; a
// *protocol.ValidationError is returned if it does not fit.
func PlanSave(name, data string) (*TransferPlan, error) {
	if err := protocol.ValidateFilename(name); err != nil {
		return nil, err
	}

	load, err := protocol.BuildLoadCmd(name)
	if err != nil {
		return nil, err
	}

	plan := &TransferPlan{
		Kind:   KindSave,
		Name:   name,
		Source: data,
	}
	plan.Frames = append(plan.Frames,
		protocol.BuildEchoOffCmd(),
		protocol.BuildTransferRawCmd(),
		protocol.BuildStopCmd(),
		load,
	)

	plan.PayloadStart = len(plan.Frames)
	lines := strings.Split(data, "\n")
	// A trailing newline ends the last line rather than starting a new one
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for _, line := range lines {
		plan.Frames = append(plan.Frames, protocol.BuildDataLine(line))
	}
	plan.PayloadEnd = len(plan.Frames)

	plan.Frames = append(plan.Frames,
		protocol.BuildEndOfTransmission(),
		protocol.BuildEchoOnCmd(),
	)
	return plan, nil
}
