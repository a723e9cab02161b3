package terminal

import (
	"bytes"
	"strings"

	"github.com/moffa90/go-zjs/protocol"
)

// Line is one unit of device output ready for display.
type Line struct {
	// Text is the line without its '\n' delimiter
	Text string

	// Partial marks text that will never get a delimiter, such as the
	// firmware prompt. It is displayed without a trailing newline.
	Partial bool
}

// Assembler reassembles device output from arbitrary USB transfer
// boundaries into complete lines. The unterminated remainder stays buffered
// across calls; no byte is dropped or duplicated.
//
// Assembler is not safe for concurrent use.
type Assembler struct {
	buf  []byte
	prev string
}

// NewAssembler returns an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Feed consumes one inbound chunk and returns the lines it completes, in
// order.
//
// A single byte other than '\r' or '\n' that follows a chunk ending in '\r'
// is a CRLF pair split across two transfers; a line break is inserted before
// it. A chunk of at most protocol.MaxPromptLength bytes containing the prompt
// marker bypasses the buffer and is returned as a Partial line with carriage
// returns removed.
func (a *Assembler) Feed(chunk []byte) []Line {
	text := string(chunk)
	if len(text) == 1 && text[0] != '\r' && text[0] != '\n' && strings.HasSuffix(a.prev, "\r") {
		text = "\r\n" + text
	}
	a.prev = text

	if len(text) <= protocol.MaxPromptLength && strings.Contains(text, protocol.PromptMarker) {
		return []Line{{Text: strings.ReplaceAll(text, "\r", ""), Partial: true}}
	}

	a.buf = append(a.buf, text...)

	var lines []Line
	start := 0
	for {
		i := bytes.IndexByte(a.buf[start:], '\n')
		if i < 0 {
			break
		}
		lines = append(lines, Line{Text: string(a.buf[start : start+i])})
		start += i + 1
	}
	if start > 0 {
		n := copy(a.buf, a.buf[start:])
		a.buf = a.buf[:n]
	}
	return lines
}

// Pending returns the buffered, unterminated remainder.
func (a *Assembler) Pending() string {
	return string(a.buf)
}

// Flush returns the buffered remainder as a Partial line and empties the
// buffer. It returns nil when nothing is buffered.
func (a *Assembler) Flush() []Line {
	if len(a.buf) == 0 {
		return nil
	}
	line := Line{Text: string(a.buf), Partial: true}
	a.buf = a.buf[:0]
	return []Line{line}
}

// SetPrevious records text as the previous chunk without feeding it. A
// consumed mode sentinel reaches the assembler this way as "".
func (a *Assembler) SetPrevious(text string) {
	a.prev = text
}

// Reset discards the buffer and the previous-chunk state.
func (a *Assembler) Reset() {
	a.buf = a.buf[:0]
	a.prev = ""
}
