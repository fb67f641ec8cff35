package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"

	"github.com/calque-dev/calque/internal/cli"
)

func main() {
	// A .env file is a convenience, not a requirement.
	_ = godotenv.Load()

	if err := fang.Execute(context.Background(), cli.RootCmd); err != nil {
		os.Exit(1)
	}
}
