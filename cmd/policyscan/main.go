package main

import (
	"fmt"
	"os"

	"github.com/ApexForge13/policyscan/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	// Load API keys from .env when present; a missing file is fine
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
