package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logrus.StandardLogger().WithField("type", "syrup-cli").WithError(err).Error("command failed")
		cancel()
		os.Exit(1)
	}
}
