package terminal

import "time"

// Progress contains information about an upload in flight.
// Passed to ProgressCallback after every frame.
type Progress struct {
	// Phase describes the current upload phase:
	//   "preparing" - Switching the firmware into load mode
	//   "loading"   - Sending payload frames
	//   "finishing" - Running the script and restoring modes
	//   "complete"  - All frames sent
	Phase string

	// CurrentFrame is the number of frames sent so far
	CurrentFrame int

	// TotalFrames is the total number of frames in the plan
	TotalFrames int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// BytesWritten is the total number of bytes written so far
	BytesWritten int

	// ElapsedTime is the time elapsed since the upload started
	ElapsedTime time.Duration
}

// Upload phases reported in Progress.Phase.
const (
	PhasePreparing = "preparing"
	PhaseLoading   = "loading"
	PhaseFinishing = "finishing"
	PhaseComplete  = "complete"
)

// ProgressCallback is called after every frame of an upload.
// Implementations should return quickly; the outbound path waits for them.
//
// Example:
//
//	sess := terminal.New(t,
//	    terminal.WithProgressCallback(func(p terminal.Progress) {
//	        fmt.Printf("[%s] %.1f%% - Frame %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentFrame, p.TotalFrames)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to a session.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	sess := terminal.New(t, terminal.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
