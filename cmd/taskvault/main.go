package main

import (
	"os"

	"github.com/taskvault/taskvault/cmd/taskvault/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
