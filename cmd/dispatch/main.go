package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/logitrack/dispatch/internal/app"
	"github.com/logitrack/dispatch/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override dispatch config path (optional)")
	sessionPath := flag.String("session", "", "override persisted session path (optional)")
	pollSeconds := flag.Int("poll", 0, "courier refresh interval in seconds (optional, defaults to 5s)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:  *configPath,
		SessionPath: *sessionPath,
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	a, err := app.New(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dispatch: %v\n", err)
		return 1
	}

	if err := ui.Run(ui.Options{
		Context:  ctx,
		App:      a,
		PollTick: time.Second,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "dispatch: %v\n", err)
		return 1
	}
	return 0
}
