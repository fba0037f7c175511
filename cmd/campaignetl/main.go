// Command campaignetl splits zipped bank marketing-campaign CSVs into
// client, campaign and economics tables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"campaignetl/internal/cli"

	// register all backends with the storage factory.
	_ "campaignetl/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "campaignetl: %v\n", err)
		os.Exit(1)
	}
}
