package main

import (
	"os"

	"github.com/ticolabs/papibot/cmd/papibot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
