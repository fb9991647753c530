package main

import (
	"context"
	"fmt"
	"os"

	"fraudgate/internal/cli"
	"fraudgate/internal/platform/logger"
)

func main() {
	// Logs go to stderr so --format json output stays parseable.
	log := logger.NewWithWriter(os.Stderr, envOr("LOG_LEVEL", "warn"))
	root := cli.NewRootCommand(cli.OpenFromConfig(log))
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
