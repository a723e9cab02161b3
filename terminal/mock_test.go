package terminal

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/moffa90/go-zjs/transport"
)

// MockTransport simulates a CDC-ACM device for testing
type MockTransport struct {
	mu sync.Mutex

	events    chan transport.Event
	closeOnce sync.Once

	writes   [][]byte
	controls []controlCall
	claimed  int

	openErr    error
	claimErr   error
	listenErr  error
	controlErr error
	writeErr   error
	closeErr   error

	// writeHook runs before a write is recorded
	writeHook func(n int, p []byte)
}

type controlCall struct {
	request uint8
	value   uint16
	index   uint16
}

func NewMockTransport() *MockTransport {
	return &MockTransport{
		events:  make(chan transport.Event, transport.DefaultEventBuffer),
		claimed: -1,
	}
}

func (m *MockTransport) Open(ctx context.Context) error {
	return m.openErr
}

func (m *MockTransport) ClaimInterface(n int) error {
	if m.claimErr != nil {
		return m.claimErr
	}
	m.mu.Lock()
	m.claimed = n
	m.mu.Unlock()
	return nil
}

func (m *MockTransport) StartListening(ctx context.Context) error {
	return m.listenErr
}

func (m *MockTransport) ControlWrite(request uint8, value, index uint16) ([]byte, error) {
	if m.controlErr != nil {
		return nil, m.controlErr
	}
	m.mu.Lock()
	m.controls = append(m.controls, controlCall{request, value, index})
	m.mu.Unlock()
	return nil, nil
}

func (m *MockTransport) Write(p []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.mu.Lock()
	n := len(m.writes)
	m.mu.Unlock()

	if m.writeHook != nil {
		m.writeHook(n, p)
	}

	m.mu.Lock()
	m.writes = append(m.writes, append([]byte(nil), p...))
	m.mu.Unlock()
	return nil
}

func (m *MockTransport) Close() error {
	m.closeOnce.Do(func() {
		close(m.events)
	})
	return m.closeErr
}

func (m *MockTransport) Events() <-chan transport.Event {
	return m.events
}

// Send queues inbound device output.
func (m *MockTransport) Send(text string) {
	m.events <- transport.Event{Kind: transport.EventData, Data: []byte(text)}
}

func (m *MockTransport) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.writes...)
}

// syncBuffer is a bytes.Buffer safe for the inbound goroutine and the test
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// recordingLogger keeps every message it is given
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("%s %s %v", level, msg, kv))
}

func (l *recordingLogger) Debug(msg string, kv ...interface{}) { l.record("DEBUG", msg, kv) }
func (l *recordingLogger) Info(msg string, kv ...interface{})  { l.record("INFO", msg, kv) }
func (l *recordingLogger) Error(msg string, kv ...interface{}) { l.record("ERROR", msg, kv) }

func (l *recordingLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

// waitFor polls cond until it holds or the test times out
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
