// Package main runs one background-check reconciliation pass.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	reconcilecmd "github.com/hirecrest/talentline/internal/cmd/reconcile"
	"github.com/hirecrest/talentline/internal/platform/config"
)

func main() {
	cfg, err := reconcilecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := reconcilecmd.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
