package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/moffa90/go-zjs/protocol"
	"github.com/moffa90/go-zjs/transport"
)

// closeWait bounds how long Close waits for the inbound path to drain.
const closeWait = time.Second

// maxInputLine is the longest line of user input Run accepts.
const maxInputLine = 1 << 20

// Session runs one interactive terminal against a ZephyrJS device.
// It owns the transport, the mode flags and the reassembly buffer.
//
// Inbound device output is processed on its own goroutine. Outbound writes
// are serialized: an upload holds the outbound lock for its whole duration,
// so user input submitted meanwhile waits until the session is Idle again.
type Session struct {
	transport transport.Transport
	config    Config

	// stateMu guards state
	stateMu sync.Mutex
	state   State

	// outMu serializes outbound writes
	outMu sync.Mutex

	// ioMu guards modes, assembler and the output writer
	ioMu      sync.Mutex
	modes     *protocol.ModeController
	assembler *Assembler

	ctx         context.Context
	cancel      context.CancelCauseFunc
	inboundDone chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// New creates a Session over the given transport.
//
// Example:
//
//	t := transport.NewUSB(0x8086, 0xF8A1)
//	sess := terminal.New(t,
//	    terminal.WithInterface(2),
//	    terminal.WithLogger(logger),
//	)
//	err := sess.Run(ctx, os.Stdin, nil)
func New(t transport.Transport, opts ...Option) *Session {
	if t == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	return &Session{
		transport: t,
		config:    cfg,
		state:     StateConnecting,
		modes:     protocol.NewModeController(),
		assembler: NewAssembler(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// Flags returns the current mode flags.
func (s *Session) Flags() protocol.ModeFlags {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()
	return s.modes.Flags()
}

// Done is closed once the session has failed or been closed.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Err returns the error that ended the session: a *DeviceError, a
// *TransportError or ErrDetached. It returns nil while the session is alive
// and after an orderly Close.
func (s *Session) Err() error {
	cause := context.Cause(s.ctx)
	if cause == nil || errors.Is(cause, ErrClosed) {
		return nil
	}
	return cause
}

// Connect brings the device up: open, claim the interface, start listening,
// send the control-line request, then wait out the settle delay. On success
// the session is Idle.
func (s *Session) Connect(ctx context.Context) error {
	if st := s.State(); st != StateConnecting {
		return fmt.Errorf("connect from %s: %w", st, ErrInvalidTransition)
	}

	if err := s.transport.Open(ctx); err != nil {
		return s.fail("open", err)
	}
	if err := s.transport.ClaimInterface(s.config.Interface); err != nil {
		return s.fail("claim", err)
	}
	if err := s.setState(StateClaimed); err != nil {
		return err
	}
	s.logDebug("interface claimed", "interface", s.config.Interface)

	if err := s.transport.StartListening(s.ctx); err != nil {
		return s.fail("listen", err)
	}
	if err := s.setState(StateListening); err != nil {
		return err
	}
	s.inboundDone = make(chan struct{})
	go s.inbound(s.transport.Events())

	if _, err := s.transport.ControlWrite(
		protocol.RequestSetControlLineState,
		protocol.ControlLineStateDTR,
		protocol.DefaultInterface,
	); err != nil {
		return s.fail("control", err)
	}

	s.logDebug("waiting for device to settle", "delay", s.config.SettleDelay)
	if err := s.sleep(ctx, s.config.SettleDelay); err != nil {
		return err
	}

	if err := s.setState(StateIdle); err != nil {
		return err
	}
	s.logInfo("device ready", "interface", s.config.Interface)
	return nil
}

// Execute sends every frame of plan in order. The session is Transferring
// for the duration and returns to Idle when the plan completes. Cancellation
// of ctx, or a fatal session error, aborts the plan between frames.
func (s *Session) Execute(ctx context.Context, plan *TransferPlan) error {
	if plan == nil {
		return fmt.Errorf("plan cannot be nil")
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()

	if err := s.setState(StateTransferring); err != nil {
		return err
	}
	defer func() {
		if s.Err() == nil {
			// A concurrent Close may already have moved us to Closing
			_ = s.setState(StateIdle)
		}
	}()

	s.logInfo("starting upload",
		"kind", plan.Kind.String(),
		"name", plan.Name,
		"frames", len(plan.Frames),
		"payload_bytes", plan.PayloadBytes(),
	)

	startTime := time.Now()
	total := len(plan.Frames)
	bytesWritten := 0
	for i, frame := range plan.Frames {
		if err := s.interrupted(ctx); err != nil {
			s.logInfo("upload aborted", "frame", i, "total", total)
			return fmt.Errorf("cancelled: %w", err)
		}

		if err := s.transport.Write(frame); err != nil {
			return s.fail("write", err)
		}
		bytesWritten += len(frame)

		s.reportProgress(Progress{
			Phase:        planPhase(plan, i),
			CurrentFrame: i + 1,
			TotalFrames:  total,
			Percentage:   float64(i+1) / float64(total) * 100,
			BytesWritten: bytesWritten,
			ElapsedTime:  time.Since(startTime),
		})

		if s.config.FrameDelay > 0 && i < total-1 {
			if err := s.sleep(ctx, s.config.FrameDelay); err != nil {
				return fmt.Errorf("cancelled: %w", err)
			}
		}
	}

	s.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentFrame: total,
		TotalFrames:  total,
		Percentage:   100,
		BytesWritten: bytesWritten,
		ElapsedTime:  time.Since(startTime),
	})
	s.logInfo("upload complete", "bytes", bytesWritten, "elapsed", time.Since(startTime))
	return nil
}

// HandleInput processes one line of user input. It reports quit for "quit"
// and "exit". Empty input redraws the prompt; input naming the firmware's
// load or eval commands is rejected locally and nothing is sent. Any other
// line is sent to the device with a line terminator.
//
// Input other than quit waits for a running upload to finish before anything
// is displayed or sent.
func (s *Session) HandleInput(ctx context.Context, line string) (quit bool, err error) {
	switch st := s.State(); st {
	case StateClosing, StateClosed:
		return false, ErrClosed
	}
	if protocol.IsQuitInput(line) {
		return true, nil
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()

	if err := s.interrupted(ctx); err != nil {
		return false, err
	}

	st := s.State()
	switch {
	case st == StateClosing || st == StateClosed:
		return false, ErrClosed
	case line == "":
		s.drawPrompt()
		return false, nil
	case protocol.IsUnsupportedInput(line):
		s.logDebug("rejected input", "input", line)
		s.printLine("'load' and 'eval' commands are unsupported in CLI mode")
		s.drawPrompt()
		return false, nil
	case st != StateIdle:
		return false, fmt.Errorf("input in state %s: %w", st, ErrNotIdle)
	}

	if err := s.transport.Write(protocol.BuildInputLine(line)); err != nil {
		return false, s.fail("write", err)
	}
	return false, nil
}

// Run connects, submits plan if it is not nil (otherwise draws the prompt)
// and then forwards lines from input until the user quits, ctx is cancelled
// or the device goes away. The session is always closed before Run returns.
//
// Run returns nil for a quit or an interrupt, and the fatal error otherwise.
// End of input stops reading but keeps the session open for device output.
func (s *Session) Run(ctx context.Context, input io.Reader, plan *TransferPlan) error {
	defer s.Close()

	if err := s.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connect: %w", err)
	}

	var lines <-chan string
	if input != nil {
		lines = s.readLines(input)
	}

	if plan != nil {
		if err := s.Execute(ctx, plan); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%s %s: %w", plan.Kind, plan.Name, err)
		}
	} else {
		s.drawPrompt()
	}

	for {
		select {
		case <-ctx.Done():
			s.logInfo("interrupted")
			return nil
		case <-s.ctx.Done():
			return s.Err()
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			quit, err := s.HandleInput(ctx, line)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// Close moves the session to Closing, releases the transport, displays any
// buffered partial output and finishes in Closed. A close failure is logged
// and returned as a *TransportError. Calling Close more than once returns
// the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.close()
	})
	return s.closeErr
}

func (s *Session) close() error {
	if err := s.setState(StateClosing); err != nil {
		s.logDebug("closing", "error", err)
	}
	s.cancel(ErrClosed)

	closeErr := s.transport.Close()

	if s.inboundDone != nil {
		select {
		case <-s.inboundDone:
		case <-time.After(closeWait):
			s.logError("inbound path did not stop")
		}
	}

	s.ioMu.Lock()
	s.render(s.assembler.Flush())
	s.ioMu.Unlock()

	defer s.forceState(StateClosed)

	if closeErr != nil {
		s.logError("close failed", "error", closeErr)
		s.printLine("Failed to close the USB device!")
		return &TransportError{Op: "close", Err: closeErr}
	}
	s.printLine("Device closed")
	return nil
}

// inbound drains the transport's event channel until it is closed.
func (s *Session) inbound(events <-chan transport.Event) {
	defer close(s.inboundDone)

	for ev := range events {
		switch ev.Kind {
		case transport.EventData:
			s.handleData(ev.Data)
		case transport.EventError:
			s.logError("error on "+ev.Endpoint, "error", ev.Err)
			s.cancel(&DeviceError{Endpoint: ev.Endpoint, Err: ev.Err})
		case transport.EventDetach:
			s.logInfo("device detached")
			s.cancel(ErrDetached)
		}
	}
}

// handleData runs one inbound unit through mode tracking, suppression and
// line reassembly, then renders the completed lines.
func (s *Session) handleData(data []byte) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	text := string(data)
	if protocol.IsSentinel(text) {
		rest, flags := s.modes.Observe(text)
		s.logDebug("mode changed", "framing", flags.Framing.String(), "echo", flags.Echo.String())
		if protocol.Classify(rest, flags) == protocol.NotSuppressed {
			s.assembler.SetPrevious(rest)
		}
		return
	}

	flags := s.modes.Flags()
	if reason := protocol.Classify(text, flags); reason != protocol.NotSuppressed {
		s.logDebug("suppressed output", "reason", reason.String(), "text", fmt.Sprintf("%q", text))
		return
	}

	s.render(s.assembler.Feed(data))
}

// render writes lines to the output. Callers hold ioMu.
func (s *Session) render(lines []Line) {
	for _, line := range lines {
		if line.Partial {
			fmt.Fprint(s.config.Output, line.Text)
			continue
		}
		fmt.Fprintln(s.config.Output, line.Text)
	}
}

func (s *Session) drawPrompt() {
	if !s.config.ShowPrompt {
		return
	}
	s.ioMu.Lock()
	defer s.ioMu.Unlock()
	fmt.Fprint(s.config.Output, protocol.Prompt)
}

func (s *Session) printLine(msg string) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()
	fmt.Fprintln(s.config.Output, msg)
}

// readLines forwards input lines until EOF or the session ends.
func (s *Session) readLines(input io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxInputLine)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimRight(scanner.Text(), "\r"):
			case <-s.ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.logError("reading input", "error", err)
			s.printLine("Stopped reading input: " + err.Error())
		}
	}()
	return lines
}

// fail wraps a transport failure, ends the session with it and returns it.
func (s *Session) fail(op string, err error) error {
	te := &TransportError{Op: op, Err: err}
	s.logError("transport "+op+" failed", "error", err)
	s.cancel(te)
	return te
}

// interrupted reports caller cancellation or a fatal session error.
func (s *Session) interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Err(); err != nil {
		return err
	}
	if s.ctx.Err() != nil {
		return ErrClosed
	}
	return nil
}

// sleep waits for d unless ctx is cancelled or the session ends first.
func (s *Session) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return s.interrupted(ctx)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		if err := s.Err(); err != nil {
			return err
		}
		return ErrClosed
	}
}

func (s *Session) setState(to State) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	from := s.state
	if !canTransition(from, to) {
		if from == StateClosing || from == StateClosed {
			return ErrClosed
		}
		return fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}
	s.state = to
	s.logDebug("state changed", "from", from.String(), "to", to.String())
	return nil
}

func (s *Session) forceState(to State) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = to
}

// planPhase names the phase frame i of plan belongs to.
func planPhase(plan *TransferPlan, i int) string {
	switch {
	case i < plan.PayloadStart:
		return PhasePreparing
	case i < plan.PayloadEnd:
		return PhaseLoading
	default:
		return PhaseFinishing
	}
}

// reportProgress calls the progress callback if configured.
func (s *Session) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Session) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
