package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rmera/commpare/cmd/commpare/cmd"
)

func main() {
	// COMMPARE_* variables can also come from a .env file
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
