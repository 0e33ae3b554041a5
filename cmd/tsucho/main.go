package main

import (
	"os"

	"github.com/tsucho-dev/tsucho/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
