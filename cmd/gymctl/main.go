package main

import (
	"os"

	"elite-gym/cmd/gymctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
