package main

import (
	"os"

	"github.com/storedeck/storedeck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
