package main

import (
	"os"

	"github.com/joho/godotenv"

	"nconnect-cli/internal/cli"
)

func main() {
	// A .env in the working directory seeds the environment; real env vars win.
	_ = godotenv.Load()

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
