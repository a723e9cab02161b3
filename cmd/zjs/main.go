// Command zjs uploads and runs JavaScript on ZephyrJS devices and opens an
// interactive terminal to them over WebUSB.
package main

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(streams{
		in:    os.Stdin,
		out:   os.Stdout,
		err:   os.Stderr,
		isTTY: term.IsTerminal(int(os.Stdin.Fd())),
	})
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
