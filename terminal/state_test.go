package terminal

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateConnecting, StateClaimed, true},
		{StateClaimed, StateListening, true},
		{StateListening, StateIdle, true},
		{StateIdle, StateTransferring, true},
		{StateTransferring, StateIdle, true},
		{StateClosing, StateClosed, true},

		{StateConnecting, StateIdle, false},
		{StateClaimed, StateIdle, false},
		{StateIdle, StateIdle, false},
		{StateTransferring, StateTransferring, false},
		{StateIdle, StateClosed, false},
		{StateClosed, StateIdle, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := canTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("canTransition(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCanTransition_Closing(t *testing.T) {
	for s := StateConnecting; s <= StateTransferring; s++ {
		if !canTransition(s, StateClosing) {
			t.Errorf("%v should be able to move to closing", s)
		}
	}
	if canTransition(StateClosing, StateClosing) {
		t.Error("closing -> closing should be rejected")
	}
	if canTransition(StateClosed, StateClosing) {
		t.Error("closed -> closing should be rejected")
	}
}

func TestState_String(t *testing.T) {
	want := []string{"connecting", "claimed", "listening", "idle", "transferring", "closing", "closed"}
	for i, name := range want {
		if got := State(i).String(); got != name {
			t.Errorf("State(%d).String() = %q, want %q", i, got, name)
		}
	}
	if got := State(99).String(); got != "unknown" {
		t.Errorf("State(99).String() = %q, want unknown", got)
	}
}
