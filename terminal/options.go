package terminal

import (
	"io"
	"os"
	"time"

	"github.com/moffa90/go-zjs/protocol"
)

// Config holds the session configuration.
type Config struct {
	// Interface is the WebUSB interface number to claim
	Interface int

	// SettleDelay is how long to wait after configuring the device before
	// the first prompt or upload
	SettleDelay time.Duration

	// FrameDelay is an optional pause between upload frames
	FrameDelay time.Duration

	// ProgressCallback is called during uploads to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Output receives rendered device output, prompts and status messages
	Output io.Writer

	// ShowPrompt enables drawing the local "acm>" prompt
	ShowPrompt bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Interface:   protocol.DefaultInterface,
		SettleDelay: 2 * time.Second,
		Output:      os.Stdout,
		ShowPrompt:  true,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithInterface sets the WebUSB interface number to claim.
//
// Example:
//
//	sess := terminal.New(t, terminal.WithInterface(dev.Interface))
func WithInterface(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.Interface = n
		}
	}
}

// WithSettleDelay sets the delay between device configuration and the
// first prompt or upload. Default is 2 seconds.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.SettleDelay = d
		}
	}
}

// WithFrameDelay sets a pause between upload frames for slow firmware.
func WithFrameDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.FrameDelay = d
		}
	}
}

// WithProgressCallback sets a callback function to track upload progress.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for session operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithOutput sets where device output is rendered. Default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Config) {
		if w != nil {
			c.Output = w
		}
	}
}

// WithPrompt enables or disables the local prompt. Default is true.
func WithPrompt(show bool) Option {
	return func(c *Config) {
		c.ShowPrompt = show
	}
}
