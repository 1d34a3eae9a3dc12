package main

import (
	"fmt"
	"os"

	"github.com/mcdonaldj/rarlens/internal/adapters/tuisvc"
	"github.com/mcdonaldj/rarlens/internal/cli"
	"github.com/mcdonaldj/rarlens/internal/tui"
)

// version is set via ldflags at build time: -ldflags "-X main.version=x.y.z"
var version = "dev"

func main() {
	// Handle TUI mode (ui/tui command)
	if len(os.Args) > 1 && (os.Args[1] == "ui" || os.Args[1] == "tui") {
		args, password := cli.ParseArgs(os.Args)
		if len(args) < 3 {
			fmt.Println("Usage: rarlens ui <archive> [--password=<pw>]")
			os.Exit(1)
		}
		svc := tuisvc.New(tuisvc.WithPassword(password))
		if err := tui.Run(svc, args[2]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Use CLI for all other commands
	c := cli.New(version)
	c.Run()
}
