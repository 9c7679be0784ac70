package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/plasmalabs/flashloan-harness/cmd"
	"github.com/plasmalabs/flashloan-harness/utils"
)

func main() {
	// Cancellation is wired before the command runs so an interrupt can
	// abort a pending receipt wait instead of killing the process.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := cmd.ExecuteContext(ctx)

	utils.CleanupLogger()
	if err != nil {
		os.Exit(1)
	}
}
