// Command quarterly builds quarterly financial statements from SEC company facts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quarterly_financials/cmd/quarterly/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}
}
