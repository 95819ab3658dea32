package main

import (
	"os"

	"authstate/cmd/authstate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
