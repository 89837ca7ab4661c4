package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/open-cli-collective/md2conf/internal/cmd/root"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := root.NewCmdRoot()
	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error(err.Error())
		stop()
		os.Exit(1)
	}
}
