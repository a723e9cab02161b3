package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/gousb"
	"github.com/moffa90/go-zjs/protocol"
)

// USB is a Transport over a WebUSB/CDC-ACM interface opened with libusb.
type USB struct {
	vendorID  gousb.ID
	productID gousb.ID
	debug     int

	mu       sync.Mutex
	ctx      *gousb.Context
	dev      *gousb.Device
	cfg      *gousb.Config
	intf     *gousb.Interface
	in       *gousb.InEndpoint
	out      *gousb.OutEndpoint
	events   chan Event
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	listened bool
}

// USBOption configures a USB transport.
type USBOption func(*USB)

// WithDebugLevel sets the libusb debug level (0 to 4).
func WithDebugLevel(level int) USBOption {
	return func(u *USB) {
		if level >= 0 && level <= 4 {
			u.debug = level
		}
	}
}

// NewUSB returns a transport for the first device with the given IDs.
// Nothing is opened until Open is called.
func NewUSB(vendorID, productID uint16, opts ...USBOption) *USB {
	u := &USB{
		vendorID:  gousb.ID(vendorID),
		productID: gousb.ID(productID),
		events:    make(chan Event, DefaultEventBuffer),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Open opens the device and lets libusb detach any kernel driver bound to
// the interface that gets claimed later.
func (u *USB) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	usbCtx := gousb.NewContext()
	if u.debug > 0 {
		usbCtx.Debug(u.debug)
	}

	dev, err := usbCtx.OpenDeviceWithVIDPID(u.vendorID, u.productID)
	if err != nil {
		_ = usbCtx.Close()
		return fmt.Errorf("open %s:%s: %w", u.vendorID, u.productID, err)
	}
	if dev == nil {
		_ = usbCtx.Close()
		return fmt.Errorf("%w (VID=0x%04X PID=0x%04X)", ErrDeviceNotFound, uint16(u.vendorID), uint16(u.productID))
	}

	if err := dev.SetAutoDetach(true); err != nil {
		_ = dev.Close()
		_ = usbCtx.Close()
		return fmt.Errorf("set auto detach: %w", err)
	}

	u.ctx = usbCtx
	u.dev = dev
	return nil
}

// ClaimInterface claims interface n of the active configuration and
// locates its bulk endpoints.
func (u *USB) ClaimInterface(n int) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.dev == nil {
		return ErrNotOpen
	}

	num, err := u.dev.ActiveConfigNum()
	if err != nil {
		return fmt.Errorf("get active config: %w", err)
	}
	cfg, err := u.dev.Config(num)
	if err != nil {
		return fmt.Errorf("get config %d: %w", num, err)
	}
	intf, err := cfg.Interface(n, 0)
	if err != nil {
		_ = cfg.Close()
		return fmt.Errorf("claim interface %d: %w", n, err)
	}

	inNum, outNum, err := bulkEndpoints(intf.Setting)
	if err != nil {
		intf.Close()
		_ = cfg.Close()
		return err
	}
	in, err := intf.InEndpoint(inNum)
	if err != nil {
		intf.Close()
		_ = cfg.Close()
		return fmt.Errorf("open bulk in endpoint: %w", err)
	}
	out, err := intf.OutEndpoint(outNum)
	if err != nil {
		intf.Close()
		_ = cfg.Close()
		return fmt.Errorf("open bulk out endpoint: %w", err)
	}

	u.cfg = cfg
	u.intf = intf
	u.in = in
	u.out = out
	return nil
}

// bulkEndpoints returns the numbers of the first bulk IN and OUT endpoints.
func bulkEndpoints(setting gousb.InterfaceSetting) (in, out int, err error) {
	in, out = -1, -1
	for _, ep := range setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch ep.Direction {
		case gousb.EndpointDirectionIn:
			if in < 0 {
				in = ep.Number
			}
		case gousb.EndpointDirectionOut:
			if out < 0 {
				out = ep.Number
			}
		}
	}
	if in < 0 || out < 0 {
		return 0, 0, fmt.Errorf("interface %d has no bulk endpoint pair", setting.Number)
	}
	return in, out, nil
}

// StartListening starts the bulk IN reader.
func (u *USB) StartListening(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.in == nil {
		return ErrNotClaimed
	}
	if u.listened {
		return ErrAlreadyListening
	}
	u.listened = true

	readCtx, cancel := context.WithCancel(ctx)
	u.cancel = cancel

	size := u.in.Desc.MaxPacketSize
	if size <= 0 {
		size = 64
	}

	u.wg.Add(1)
	go u.readLoop(readCtx, u.in, size)
	return nil
}

func (u *USB) readLoop(ctx context.Context, in *gousb.InEndpoint, size int) {
	defer u.wg.Done()
	defer close(u.events)

	buf := make([]byte, size)
	for {
		n, err := in.ReadContext(ctx, buf)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if isNoDevice(err) {
				emit(ctx, u.events, Event{Kind: EventDetach})
			} else {
				emit(ctx, u.events, Event{Kind: EventError, Err: err, Endpoint: EndpointIn})
			}
			return
		}
		if n == 0 {
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		if !emit(ctx, u.events, Event{Kind: EventData, Data: data}) {
			return
		}
	}
}

func isNoDevice(err error) bool {
	return errors.Is(err, gousb.ErrorNoDevice) || errors.Is(err, gousb.TransferNoDevice)
}

// ControlWrite sends a class, interface-recipient, host-to-device request
// without a data stage.
func (u *USB) ControlWrite(request uint8, value, index uint16) ([]byte, error) {
	u.mu.Lock()
	dev := u.dev
	u.mu.Unlock()

	if dev == nil {
		return nil, ErrNotOpen
	}
	if _, err := dev.Control(protocol.RequestTypeClassInterfaceOut, request, value, index, nil); err != nil {
		return nil, fmt.Errorf("control request 0x%02X: %w", request, err)
	}
	return nil, nil
}

// Write sends p on the bulk OUT endpoint.
func (u *USB) Write(p []byte) error {
	u.mu.Lock()
	out := u.out
	u.mu.Unlock()

	if out == nil {
		return ErrNotClaimed
	}
	n, err := out.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(p))
	}
	return nil
}

// Close stops the reader and releases the interface, configuration,
// device and libusb context, in that order.
func (u *USB) Close() error {
	u.mu.Lock()
	cancel := u.cancel
	u.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	u.wg.Wait()

	u.mu.Lock()
	defer u.mu.Unlock()

	var errs []error
	if u.intf != nil {
		u.intf.Close()
		u.intf = nil
	}
	if u.cfg != nil {
		errs = append(errs, u.cfg.Close())
		u.cfg = nil
	}
	if u.dev != nil {
		errs = append(errs, u.dev.Close())
		u.dev = nil
	}
	if u.ctx != nil {
		errs = append(errs, u.ctx.Close())
		u.ctx = nil
	}
	u.in, u.out = nil, nil
	return errors.Join(errs...)
}

// Events returns the inbound notification channel.
func (u *USB) Events() <-chan Event {
	return u.events
}
