package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moffa90/go-zjs/catalog"
	"github.com/moffa90/go-zjs/protocol"
	"github.com/moffa90/go-zjs/terminal"
)

const testCatalog = `
arduino101:
  name: Arduino 101
  vendorID: 0x8086
  productID: 0xF8A1
  webUSBInterface: 2
frdm:
  name: FRDM-K64F
  vendorID: 0x0D28
  productID: 0x0204
  webUSBInterface: 3
`

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("catalog.Parse() error = %v", err)
	}
	return cat
}

func TestResolveDevice(t *testing.T) {
	cat := mustCatalog(t)

	tests := []struct {
		name       string
		vid, pid   uint16
		wantKey    string
		wantNotice bool
		wantErr    string
	}{
		{name: "no ids uses first", wantKey: "arduino101", wantNotice: true},
		{name: "only vid uses first", vid: 0x0D28, wantKey: "arduino101", wantNotice: true},
		{name: "known ids", vid: 0x0D28, pid: 0x0204, wantKey: "frdm"},
		{name: "unknown ids", vid: 0x1234, pid: 0x5678, wantErr: "VID 0x1234 and PID 0x5678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			dev, err := resolveDevice(&out, cat, tt.vid, tt.pid)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("resolveDevice() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveDevice() error = %v", err)
			}
			if dev.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", dev.Key, tt.wantKey)
			}
			gotNotice := strings.Contains(out.String(), "No VID or PID provided")
			if gotNotice != tt.wantNotice {
				t.Errorf("notice = %v, want %v (output %q)", gotNotice, tt.wantNotice, out.String())
			}
		})
	}
}

func TestOpenTransport_Interface(t *testing.T) {
	cat := mustCatalog(t)

	_, iface, err := openTransport(&bytes.Buffer{}, cat, &options{vid: 0x0D28, pid: 0x0204})
	if err != nil {
		t.Fatalf("openTransport() error = %v", err)
	}
	if iface != 3 {
		t.Errorf("interface = %d, want 3", iface)
	}

	_, iface, err = openTransport(&bytes.Buffer{}, cat, &options{port: "/dev/ttyACM0"})
	if err != nil {
		t.Fatalf("openTransport() error = %v", err)
	}
	if iface != protocol.DefaultInterface {
		t.Errorf("serial interface = %d, want %d", iface, protocol.DefaultInterface)
	}
}

func TestBuildPlan(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "blink.js")
	if err := os.WriteFile(script, []byte("led(1); // on\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	long := filepath.Join(dir, "averylongname.js")
	if err := os.WriteFile(long, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("none", func(t *testing.T) {
		plan, err := buildPlan(&options{})
		if plan != nil || err != nil {
			t.Errorf("buildPlan() = %v, %v; want nil, nil", plan, err)
		}
	})

	t.Run("file", func(t *testing.T) {
		plan, err := buildPlan(&options{file: script})
		if err != nil {
			t.Fatalf("buildPlan() error = %v", err)
		}
		if plan.Kind != terminal.KindExecute || plan.Source != "led(1); \n" {
			t.Errorf("plan = %v %q", plan.Kind, plan.Source)
		}
	})

	t.Run("save uses base name", func(t *testing.T) {
		plan, err := buildPlan(&options{save: script})
		if err != nil {
			t.Fatalf("buildPlan() error = %v", err)
		}
		if plan.Kind != terminal.KindSave || plan.Name != "blink.js" {
			t.Errorf("plan = %v %q, want save blink.js", plan.Kind, plan.Name)
		}
	})

	t.Run("save rejects long name before reading", func(t *testing.T) {
		_, err := buildPlan(&options{save: long})
		if !protocol.IsValidationError(err) {
			t.Fatalf("buildPlan() error = %v, want validation error", err)
		}
		if !strings.Contains(err.Error(), "8.3 format") {
			t.Errorf("error message should mention 8.3 format, got: %s", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := buildPlan(&options{file: filepath.Join(dir, "nope.js")})
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("buildPlan() error = %v, want not-exist", err)
		}
	})
}

func TestSessionExit(t *testing.T) {
	failure := errors.New("write failed")

	tests := []struct {
		name       string
		err        error
		wantErr    error
		wantNotice bool
	}{
		{"quit", nil, nil, false},
		{"detached", terminal.ErrDetached, nil, true},
		{"detached during upload", fmt.Errorf("execute main.js: cancelled: %w", terminal.ErrDetached), nil, true},
		{"failure", failure, failure, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := sessionExit(&out, tt.err)
			if err != tt.wantErr {
				t.Errorf("sessionExit() error = %v, want %v", err, tt.wantErr)
			}
			if got := strings.Contains(out.String(), "Detached device"); got != tt.wantNotice {
				t.Errorf("output = %q, want notice %v", out.String(), tt.wantNotice)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "info")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	adapter := zerologAdapter{log: log}
	adapter.Debug("hidden", "k", 1)
	adapter.Info("device ready", "interface", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at info level: %q", out)
	}
	if !strings.Contains(out, "device ready") || !strings.Contains(out, "interface") {
		t.Errorf("info message missing: %q", out)
	}

	if _, err := newLogger(&buf, "loud"); err == nil {
		t.Error("newLogger() should reject unknown levels")
	}
}

func TestRootCmd(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
		wantOut string
	}{
		{name: "debug out of range", args: []string{"-d", "5"}, wantErr: "debug level must be between 0 and 4"},
		{name: "bad log level", args: []string{"--log-level", "loud", "-c"}, wantErr: "invalid log level"},
		{name: "bad save name", args: []string{"-s", "dir/averylongname.js"}, wantErr: "8.3 format"},
		{name: "unknown device", args: []string{"-c", "-v", "0x1234", "-p", "0x5678"}, wantErr: "no WebUSB device exists"},
		{name: "no flags prints help", args: []string{}, wantOut: "Usage:"},
		{name: "version", args: []string{"--version"}, wantOut: version},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			cmd := newRootCmd(streams{in: strings.NewReader(""), out: &out, err: &errOut})
			cmd.SetArgs(tt.args)
			cmd.SetOut(&out)
			cmd.SetErr(&errOut)

			err := cmd.Execute()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Execute() error = %v, want containing %q", err, tt.wantErr)
				}
				if !strings.Contains(errOut.String(), tt.wantErr) {
					t.Errorf("stderr = %q, want the error reported", errOut.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output = %q, want containing %q", out.String(), tt.wantOut)
			}
		})
	}
}
