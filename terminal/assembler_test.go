package terminal

import (
	"reflect"
	"testing"
)

func feedAll(a *Assembler, chunks ...string) []Line {
	var lines []Line
	for _, c := range chunks {
		lines = append(lines, a.Feed([]byte(c))...)
	}
	return lines
}

func TestAssembler_RoundTrip(t *testing.T) {
	want := []Line{{Text: "abc"}, {Text: "def"}}

	tests := []struct {
		name   string
		chunks []string
	}{
		{"one chunk", []string{"abc\ndef\n"}},
		{"two chunks", []string{"ab", "c\ndef\n"}},
		{"split at delimiter", []string{"abc", "\ndef", "\n"}},
		{"split after delimiter", []string{"abc\n", "def\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler()
			got := feedAll(a, tt.chunks...)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("lines = %+v, want %+v", got, want)
			}
			if a.Pending() != "" {
				t.Errorf("Pending() = %q, want empty", a.Pending())
			}
		})
	}
}

// Every split of a single-delimiter stream yields the same line and remainder.
func TestAssembler_SplitInvariance(t *testing.T) {
	const stream = "value: 42\nrest of output"

	for i := 0; i <= len(stream); i++ {
		for j := i; j <= len(stream); j++ {
			a := NewAssembler()
			got := feedAll(a, stream[:i], stream[i:j], stream[j:])

			if len(got) != 1 || got[0].Text != "value: 42" || got[0].Partial {
				t.Fatalf("split %d/%d: lines = %+v, want one complete line", i, j, got)
			}
			if a.Pending() != "rest of output" {
				t.Fatalf("split %d/%d: Pending() = %q", i, j, a.Pending())
			}
		}
	}
}

func TestAssembler_CRLFContinuation(t *testing.T) {
	a := NewAssembler()

	got := feedAll(a, "first line\r", "x", "\n")
	want := []Line{{Text: "first line\r\r"}, {Text: "x"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %+v, want %+v", got, want)
	}

	t.Run("no continuation without carriage return", func(t *testing.T) {
		a := NewAssembler()
		got := feedAll(a, "abc", "d", "\n")
		if len(got) != 1 || got[0].Text != "abcd" {
			t.Errorf("lines = %+v, want [abcd]", got)
		}
	})

	t.Run("newline byte is not prefixed", func(t *testing.T) {
		a := NewAssembler()
		got := feedAll(a, "abc\r", "\n")
		if len(got) != 1 || got[0].Text != "abc\r" {
			t.Errorf("lines = %+v, want [abc\\r]", got)
		}
	})
}

func TestAssembler_PromptShortCircuit(t *testing.T) {
	a := NewAssembler()
	a.Feed([]byte("partial"))

	got := a.Feed([]byte("\r\x1b[33macm> \x1b[39;0m"))
	want := []Line{{Text: "\x1b[33macm> \x1b[39;0m", Partial: true}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %+v, want %+v", got, want)
	}
	if a.Pending() != "partial" {
		t.Errorf("buffer changed to %q", a.Pending())
	}

	t.Run("long chunk is buffered", func(t *testing.T) {
		a := NewAssembler()
		got := a.Feed([]byte("this output mentions acm> but is long"))
		if len(got) != 0 {
			t.Errorf("lines = %+v, want none", got)
		}
	})
}

func TestAssembler_Flush(t *testing.T) {
	a := NewAssembler()
	if lines := a.Flush(); lines != nil {
		t.Errorf("Flush() on empty = %+v, want nil", lines)
	}

	a.Feed([]byte("done\ntail"))
	got := a.Flush()
	want := []Line{{Text: "tail", Partial: true}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flush() = %+v, want %+v", got, want)
	}
	if a.Pending() != "" {
		t.Errorf("Pending() after Flush = %q", a.Pending())
	}
}

func TestAssembler_Reset(t *testing.T) {
	a := NewAssembler()
	a.Feed([]byte("abc\r"))
	a.Reset()

	if a.Pending() != "" {
		t.Errorf("Pending() after Reset = %q", a.Pending())
	}
	if got := a.Feed([]byte("x")); len(got) != 0 {
		t.Errorf("Feed after Reset = %+v, want no continuation", got)
	}
	if a.Pending() != "x" {
		t.Errorf("Pending() = %q, want x", a.Pending())
	}
}

func TestAssembler_SetPrevious(t *testing.T) {
	tests := []struct {
		name  string
		prev  string
		chunk string
		want  string
	}{
		{"cleared previous", "", "x", "x"},
		{"carriage return previous", "foo\r", "x", "\r\nx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler()
			a.Feed([]byte("foo\r"))
			a.SetPrevious(tt.prev)
			a.Feed([]byte(tt.chunk))

			if got := a.Pending(); got != "foo\r"+tt.want {
				t.Errorf("Pending() = %q, want %q", got, "foo\r"+tt.want)
			}
		})
	}
}
