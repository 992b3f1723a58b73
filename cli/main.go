package main

import (
	"os"

	"github.com/katungi/drizzle-orm/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
