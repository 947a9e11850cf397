package main

import (
	"os"

	"fortunecookie/cmd/fortune/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
