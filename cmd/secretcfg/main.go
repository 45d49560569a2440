package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/systmms/secretcfg/cmd/secretcfg/commands"
	dserrors "github.com/systmms/secretcfg/internal/errors"
	"github.com/systmms/secretcfg/internal/secure"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer secure.Purge()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := commands.NewApp()
	root := commands.NewRootCommand(app, fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date))
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, app.Report(err))
		return dserrors.ExitCode(err)
	}
	return 0
}
