package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/moffa90/go-zjs/protocol"
	"go.bug.st/serial"
)

// Serial port defaults. CDC-ACM ignores the baud rate but the tty layer
// still wants one.
const (
	DefaultBaudRate    = 115200
	serialReadTimeout  = 100 * time.Millisecond
	serialReadBufBytes = 256
)

// Serial is a Transport over the tty the host's CDC-ACM driver exposes for
// the device, such as /dev/ttyACM0 or COM3.
type Serial struct {
	name     string
	baudRate int
	openPort func(name string, mode *serial.Mode) (serial.Port, error)

	mu       sync.Mutex
	port     serial.Port
	events   chan Event
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	listened bool
}

// SerialOption configures a Serial transport.
type SerialOption func(*Serial)

// WithBaudRate overrides DefaultBaudRate.
func WithBaudRate(baud int) SerialOption {
	return func(s *Serial) {
		if baud > 0 {
			s.baudRate = baud
		}
	}
}

// NewSerial returns a transport for the named serial port.
func NewSerial(name string, opts ...SerialOption) *Serial {
	s := &Serial{
		name:     name,
		baudRate: DefaultBaudRate,
		openPort: serial.Open,
		events:   make(chan Event, DefaultEventBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the port in 8N1 mode with a short read timeout so the
// listener can notice cancellation.
func (s *Serial) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	port, err := s.openPort(s.name, &serial.Mode{
		BaudRate: s.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", s.name, err)
	}
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		_ = port.Close()
		return fmt.Errorf("set read timeout: %w", err)
	}

	s.port = port
	return nil
}

// ClaimInterface is a no-op: the tty is already bound to the ACM interface.
func (s *Serial) ClaimInterface(int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return ErrNotOpen
	}
	return nil
}

// StartListening starts the port reader.
func (s *Serial) StartListening(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return ErrNotOpen
	}
	if s.listened {
		return ErrAlreadyListening
	}
	s.listened = true

	readCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.readLoop(readCtx, s.port)
	return nil
}

func (s *Serial) readLoop(ctx context.Context, port serial.Port) {
	defer s.wg.Done()
	defer close(s.events)

	buf := make([]byte, serialReadBufBytes)
	for {
		n, err := port.Read(buf)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			emit(ctx, s.events, Event{Kind: EventError, Err: err, Endpoint: EndpointIn})
			return
		}
		// A zero-length read is a timeout
		if n == 0 {
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		if !emit(ctx, s.events, Event{Kind: EventData, Data: data}) {
			return
		}
	}
}

// ControlWrite maps SET_CONTROL_LINE_STATE onto the port's DTR and RTS
// lines. Other requests cannot be expressed through a tty.
func (s *Serial) ControlWrite(request uint8, value, _ uint16) ([]byte, error) {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()

	if port == nil {
		return nil, ErrNotOpen
	}
	if request != protocol.RequestSetControlLineState {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnsupportedRequest, request)
	}
	if err := port.SetDTR(value&0x01 != 0); err != nil {
		return nil, fmt.Errorf("set DTR: %w", err)
	}
	if err := port.SetRTS(value&0x02 != 0); err != nil {
		return nil, fmt.Errorf("set RTS: %w", err)
	}
	return nil, nil
}

// Write sends p to the port.
func (s *Serial) Write(p []byte) error {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()

	if port == nil {
		return ErrNotOpen
	}
	n, err := port.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(p))
	}
	return nil
}

// Close stops the reader and closes the port.
func (s *Serial) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	port := s.port
	s.port = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	var err error
	if port != nil {
		err = port.Close()
	}
	s.wg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close serial port %s: %w", s.name, err)
	}
	return nil
}

// Events returns the inbound notification channel.
func (s *Serial) Events() <-chan Event {
	return s.events
}
