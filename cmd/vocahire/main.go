// Package main is the vocahire interview client entrypoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/anshc022/vocahire/internal/app"
)

func main() {
	// SIGTERM ends the owner loop the same way `vocahire cancel` does.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(app.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr))
}
