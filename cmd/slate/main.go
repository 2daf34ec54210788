package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/drafts"
	"github.com/hpungsan/slate/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands are the first arguments that select CLI mode. Anything else,
// including no argument at all, serves MCP over stdio.
var cliCommands = map[string]bool{
	"check": true, "schema": true, "export-outline": true,
	"elements": true, "sync": true, "geometry": true,
	"draft": true, "serve": true,
	"help": true,
}

var helpFlags = map[string]bool{"--help": true, "-h": true, "--version": true, "-v": true}

func firstArg() string {
	if len(os.Args) < 2 {
		return ""
	}
	return os.Args[1]
}

func isCLIMode() bool {
	arg := firstArg()
	return cliCommands[arg] || helpFlags[arg]
}

// isHelpOrVersion reports whether the invocation only needs usage or
// version output, so no store has to be opened.
func isHelpOrVersion() bool {
	arg := firstArg()
	return helpFlags[arg] || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ _       _
  / __| |__ _ | |_ ___
  \__ \ / _' ||  _/ -_)
  |___/_\__,_| \__\___|

  Structured slide documents

  Usage: slate <command> [options]
         slate --help

  MCP server mode requires piped input.`)
}

// warnUnknownDisabled logs disabled_tools and disabled_types entries that
// match nothing, so typos in config.json do not go unnoticed.
func warnUnknownDisabled(cfg *config.Config) {
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Printf("warning: unknown disabled_tools: %v", unknown)
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		log.Printf("warning: unknown disabled_types: %v (known: %v)", unknown, mcp.KnownTypes)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return 0
	}
	if isHelpOrVersion() {
		return runCLI(newCLIApp(nil, nil))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		return 1
	}
	baseDir := filepath.Join(homeDir, ".slate")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = baseDir
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		return 1
	}

	store, err := drafts.Open(context.Background(), cfg, baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to open draft store: %v\n", err)
		return 1
	}
	defer store.Close()

	if isCLIMode() {
		return runCLI(newCLIApp(store, cfg))
	}

	// An unknown argument typed at a terminal is a mistake, not an MCP client.
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'slate --help' for usage.\n")
		return 1
	}

	warnUnknownDisabled(cfg)
	if err := mcp.Run(store, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func runCLI(app *cli.App) int {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
