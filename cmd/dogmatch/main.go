// Command dogmatch is the terminal client of the dog adoption service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/patric-chuzhbe/dogmatch/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		exit(1)
	}
}

// exit stays out of main.main so the deferred work there always runs.
func exit(code int) {
	os.Exit(code)
}
