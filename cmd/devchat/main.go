package main

import (
	"log/slog"
	"os"

	"devchat/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
