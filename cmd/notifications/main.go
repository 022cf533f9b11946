// Package main runs the recruiter notifications inbox command.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	notificationscmd "github.com/hirecrest/talentline/internal/cmd/notifications"
	"github.com/hirecrest/talentline/internal/platform/config"
)

func main() {
	cfg, err := notificationscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := notificationscmd.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
