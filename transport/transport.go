package transport

import (
	"context"
	"errors"
)

// Endpoint names reported with error events.
const (
	// EndpointIn is the device-to-host bulk endpoint
	EndpointIn = "in"

	// EndpointOut is the host-to-device bulk endpoint
	EndpointOut = "out"
)

// DefaultEventBuffer is the capacity of a transport's event channel.
const DefaultEventBuffer = 64

var (
	// ErrDeviceNotFound indicates no device matched the requested IDs or port.
	ErrDeviceNotFound = errors.New("transport: device not found")

	// ErrNotOpen indicates an operation on a transport that is not open.
	ErrNotOpen = errors.New("transport: not open")

	// ErrNotClaimed indicates an operation that needs a claimed interface.
	ErrNotClaimed = errors.New("transport: interface not claimed")

	// ErrAlreadyListening indicates StartListening was called twice.
	ErrAlreadyListening = errors.New("transport: already listening")

	// ErrUnsupportedRequest indicates a control request the binding cannot express.
	ErrUnsupportedRequest = errors.New("transport: unsupported control request")
)

// EventKind classifies asynchronous transport notifications.
type EventKind int

const (
	// EventData carries bytes read from the device
	EventData EventKind = iota

	// EventError reports a failed transfer on one of the endpoints
	EventError

	// EventDetach reports that the device went away
	EventDetach
)

func (k EventKind) String() string {
	switch k {
	case EventData:
		return "data"
	case EventError:
		return "error"
	case EventDetach:
		return "detach"
	default:
		return "unknown"
	}
}

// Event is one asynchronous notification from a transport.
type Event struct {
	// Kind is the notification type
	Kind EventKind

	// Data holds the received bytes for EventData. The slice is owned by
	// the receiver.
	Data []byte

	// Err is the transfer error for EventError
	Err error

	// Endpoint names the endpoint an EventError originated on
	Endpoint string
}

// Transport is the duplex byte pipe to a CDC-ACM device.
//
// The lifecycle is Open, ClaimInterface, StartListening, then any number of
// ControlWrite and Write calls, then Close. Inbound data and failures are
// delivered on the Events channel, which is closed once the listener stops.
type Transport interface {
	// Open opens the device.
	Open(ctx context.Context) error

	// ClaimInterface claims interface n for exclusive use.
	ClaimInterface(n int) error

	// StartListening starts delivering inbound events. The listener runs
	// until Close is called or ctx is cancelled.
	StartListening(ctx context.Context) error

	// ControlWrite sends a class, interface-recipient control request.
	ControlWrite(request uint8, value, index uint16) ([]byte, error)

	// Write sends p as one outbound transfer.
	Write(p []byte) error

	// Close stops the listener and releases the device.
	Close() error

	// Events returns the inbound notification channel.
	Events() <-chan Event
}

// emit delivers ev unless ctx is done first.
func emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
