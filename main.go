package main

import (
	"fmt"
	"os"

	"github.com/akhmetov/librarian/internal/cli"
	"github.com/akhmetov/librarian/internal/config"
	"github.com/akhmetov/librarian/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "acquire":
		cmd := cli.NewAcquireCommand()
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version":
		fmt.Printf("librarian %s (%s)\n", Version, Commit)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`Librarian - personal e-book library

Usage:
  %s [serve]            Start the HTTP server (default)
  %s acquire [options]  Download a book from the catalog
  %s version            Show version information
  %s help               Show this help

Run '%s acquire -h' for command-specific options.
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}
