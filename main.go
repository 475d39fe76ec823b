package main

import (
	"os"

	"github.com/zeu5/tictactoe-rl/commands"
)

// main entry point to training, serving and analysis
func main() {
	rootCommand := commands.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
