package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tylertestin/InnovationAward/internal/clock"
	"github.com/tylertestin/InnovationAward/internal/config"
	"github.com/tylertestin/InnovationAward/internal/engine"
	"github.com/tylertestin/InnovationAward/internal/ingest"
	"github.com/tylertestin/InnovationAward/internal/mcp"
	"github.com/tylertestin/InnovationAward/internal/persist"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"add": true, "note": true, "import": true,
	"capture-page": true, "capture-slide": true,
	"list": true, "timeline": true, "impact": true,
	"export": true, "import-state": true, "reset": true,
	"serve": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
                                _
    __ ___      ____ _ _ __ __| |
   / _' \ \ /\ / / _' | '__/ _' |
  | (_| |\ V  V / (_| | | | (_| |
   \__,_| \_/\_/ \__,_|_|  \__,_|

  Local stakeholder relationship tracker

  Usage: award <command> [options]
         award --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before state init (nothing needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".award")

	local, err := persist.Open(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	defer local.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	local.ConfigurePool(cfg)

	var remote persist.Remote
	if cfg.SyncURL != "" {
		remote = persist.NewHTTPRemote(cfg.SyncURL)
	}

	clk := clock.NewSystem()
	eng := engine.New(local, remote, clk)
	eng.Load()
	pl := ingest.New(eng, clk)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(eng, pl, cfg, clk)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'award --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(eng, pl, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
