package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	version = "0.1.0"
)

func main() {
	app := &cli.App{
		Name:    "agentchat",
		Usage:   "Run a two-agent conversation between a user proxy and an assistant",
		Version: version,
		Flags:   flags(),
		Action:  run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
