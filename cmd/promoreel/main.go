package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

const usage = `promoreel renders a product promo video from a storyboard.

Usage:
  promoreel <command> [flags]

Commands:
  render     composite every frame and encode the video (default)
  still      export a single frame as png, jpg or webp
  validate   compile the storyboard and check its assets
  durations  measure the referenced audio (-write saves a measured copy)
  preview    scrub the timeline in the terminal

Run "promoreel <command> -h" for the flags of a command.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "[-] Error: %v\n", err)
		os.Exit(1)
	}
}
