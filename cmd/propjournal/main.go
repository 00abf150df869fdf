package main

import (
	"os"

	"github.com/rustyeddy/propjournal/cmd/propjournal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
