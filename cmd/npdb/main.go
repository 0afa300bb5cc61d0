package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/jo-hoe/cnpdb/internal/cli"
)

func main() {
	// load .env if present so CNPDB_REFERENCE_PATH can be set there
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "npdb:", err)
		os.Exit(1)
	}
}
