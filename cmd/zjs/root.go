package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-zjs/catalog"
	"github.com/moffa90/go-zjs/protocol"
	"github.com/moffa90/go-zjs/terminal"
	"github.com/moffa90/go-zjs/transport"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const maxDebugLevel = 4

// streams are the process's standard streams.
type streams struct {
	in    io.Reader
	out   io.Writer
	err   io.Writer
	isTTY bool
}

type options struct {
	connect    bool
	debug      int
	list       bool
	vid        uint16
	pid        uint16
	file       string
	save       string
	webUSBList bool

	port        string
	catalogPath string
	settle      time.Duration
	logLevel    string
}

func newRootCmd(s streams) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "zjs",
		Short: "Upload and debug JavaScript on ZephyrJS devices over WebUSB",
		Long: `zjs talks to the ZephyrJS interactive shell over a USB CDC-ACM link.

It can run a script once (--file), store a file on the device (--save) or
open an interactive terminal (--connect). Type "quit" or "exit" to leave.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().NFlag() == 0 {
				return cmd.Help()
			}
			err := run(cmd, o, s)
			if err != nil {
				fmt.Fprintln(s.err, errorStyle.Render("Error: "+err.Error()))
			}
			return err
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&o.connect, "connect", "c", false, "Connect to the WebUSB device")
	f.IntVarP(&o.debug, "debug", "d", 0, "Set the libusb debug level (0 to 4)")
	f.BoolVarP(&o.list, "list", "l", false, "List all connected USB devices")
	f.Uint16VarP(&o.vid, "vid", "v", 0, "Vendor ID of the USB device")
	f.Uint16VarP(&o.pid, "pid", "p", 0, "Product ID of the USB device")
	f.StringVarP(&o.file, "file", "f", "", "JavaScript file to upload and execute")
	f.StringVarP(&o.save, "save", "s", "", "Save file to device")
	f.BoolVarP(&o.webUSBList, "webusblist", "w", false, "List all connected WebUSB devices")
	f.StringVar(&o.port, "port", "", "Use a serial port instead of libusb (e.g. /dev/ttyACM0)")
	f.StringVar(&o.catalogPath, "catalog", "", "Device catalog file (defaults to the built-in catalog)")
	f.DurationVar(&o.settle, "settle", 2*time.Second, "Delay between device setup and the first prompt or upload")
	f.StringVar(&o.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	return cmd
}

func run(cmd *cobra.Command, o *options, s streams) error {
	if o.debug < 0 || o.debug > maxDebugLevel {
		return fmt.Errorf("debug level must be between 0 and %d, got %d", maxDebugLevel, o.debug)
	}

	log, err := newLogger(s.err, o.logLevel)
	if err != nil {
		return err
	}

	cat := catalog.Default()
	if o.catalogPath != "" {
		if cat, err = catalog.Load(o.catalogPath); err != nil {
			return err
		}
	}

	if o.webUSBList || o.list {
		if err := printDevices(s.out, cat, o); err != nil {
			return err
		}
	}

	plan, err := buildPlan(o)
	if err != nil {
		return err
	}
	if plan != nil {
		o.connect = true
	}
	if !o.connect {
		return nil
	}

	t, iface, err := openTransport(s.out, cat, o)
	if err != nil {
		return err
	}

	sess := terminal.New(t,
		terminal.WithInterface(iface),
		terminal.WithSettleDelay(o.settle),
		terminal.WithOutput(s.out),
		terminal.WithPrompt(s.isTTY),
		terminal.WithLogger(zerologAdapter{log: log}),
		terminal.WithProgressCallback(func(p terminal.Progress) {
			log.Debug().
				Str("phase", p.Phase).
				Int("frame", p.CurrentFrame).
				Int("total", p.TotalFrames).
				Int("bytes", p.BytesWritten).
				Msg("upload progress")
		}),
	)

	return sessionExit(s.out, sess.Run(cmd.Context(), s.in, plan))
}

// sessionExit maps the result of a session run to the command's result. A
// detached device ends the session normally after a notice on w.
func sessionExit(w io.Writer, err error) error {
	if errors.Is(err, terminal.ErrDetached) {
		fmt.Fprintln(w, noticeStyle.Render("Detached device"))
		return nil
	}
	return err
}

// buildPlan reads the --file or --save source into an upload plan. It
// returns nil when neither flag is set.
func buildPlan(o *options) (*terminal.TransferPlan, error) {
	switch {
	case o.save != "":
		name := filepath.Base(o.save)
		if err := protocol.ValidateFilename(name); err != nil {
			return nil, fmt.Errorf("filename should be in the 8.3 format: %w", err)
		}
		data, err := os.ReadFile(o.save)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", o.save, err)
		}
		return terminal.PlanSave(name, string(data))

	case o.file != "":
		data, err := os.ReadFile(o.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", o.file, err)
		}
		return terminal.PlanExecute(string(data), nil)
	}
	return nil, nil
}

// openTransport picks the serial port given with --port, or the catalog
// device matching --vid/--pid over libusb. It returns the interface to claim.
func openTransport(w io.Writer, cat *catalog.Catalog, o *options) (transport.Transport, int, error) {
	if o.port != "" {
		return transport.NewSerial(o.port), protocol.DefaultInterface, nil
	}

	dev, err := resolveDevice(w, cat, o.vid, o.pid)
	if err != nil {
		return nil, 0, err
	}
	return transport.NewUSB(dev.VendorID, dev.ProductID, transport.WithDebugLevel(o.debug)), dev.Interface, nil
}

// resolveDevice finds the catalog entry for vid/pid. Without both IDs the
// first catalog entry is used and a notice is written to w.
func resolveDevice(w io.Writer, cat *catalog.Catalog, vid, pid uint16) (catalog.Device, error) {
	if vid == 0 || pid == 0 {
		fmt.Fprintln(w, noticeStyle.Render(
			"No VID or PID provided, so connecting to the first known WebUSB device in the configuration."))
		return cat.First(), nil
	}

	dev, ok := cat.Lookup(vid, pid)
	if !ok {
		return catalog.Device{}, fmt.Errorf("no WebUSB device exists in the configuration for VID 0x%04x and PID 0x%04x", vid, pid)
	}
	return dev, nil
}

// printDevices writes the --list and --webusblist reports.
func printDevices(w io.Writer, cat *catalog.Catalog, o *options) error {
	devices, err := transport.ListUSB(o.debug)
	if err != nil {
		return err
	}

	if o.webUSBList {
		fmt.Fprintln(w, headerStyle.Render("WebUSB devices"))
		found := 0
		for _, d := range devices {
			if known, ok := cat.Lookup(d.VendorID, d.ProductID); ok {
				fmt.Fprintf(w, "  %s %s\n", knownStyle.Render(d.String()), dimStyle.Render(known.Name))
				found++
			}
		}
		if found == 0 {
			fmt.Fprintln(w, dimStyle.Render("  none"))
		}
	}

	if o.list {
		fmt.Fprintln(w, headerStyle.Render("USB devices"))
		for _, d := range devices {
			line := d.String()
			if cat.Contains(d.VendorID, d.ProductID) {
				line = knownStyle.Render(line)
			}
			fmt.Fprintln(w, "  "+line)
		}

		ports, err := transport.ListSerial()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, headerStyle.Render("Serial ports"))
		for _, p := range ports {
			if p.IsUSB {
				fmt.Fprintf(w, "  %s %s\n", p.Name, dimStyle.Render(fmt.Sprintf("%04x:%04x %s", p.VendorID, p.ProductID, p.Product)))
				continue
			}
			fmt.Fprintln(w, "  "+p.Name)
		}
	}
	return nil
}
