// shout - a length-prefixed uppercase-echo exchange over TCP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shout/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "shout: %v\n", err)
		os.Exit(1)
	}
}
