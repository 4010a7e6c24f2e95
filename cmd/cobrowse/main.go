// Package main provides the co-browsing portfolio assistant.
//
// The default command opens a chat in the terminal that drives a portfolio
// page: a live Chromium page through Playwright, or a local HTML file loaded
// into an in-memory document. The serve command exposes the server-mediated
// variant as an HTTP chat endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

const version = "0.1.0" // Version of the co-browse assistant

// Flags holds the command line options.
type Flags struct {
	ConfigPath string
	Mode       string
	Provider   string
	Model      string
	PagePath   string
	URL        string
	Portfolio  string
	Script     string
	Plain      bool
	ShowTools  bool
	ShowVer    bool
	Command    string
}

func main() {
	flags := parseFlags(os.Args[1:])

	if flags.ShowVer {
		fmt.Printf("cobrowse v%s\n", version)
		return
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, flags); err != nil {
		cancel()
		log.Fatalf("Application error: %v", err)
	}
	cancel()
}

// parseFlags parses command line flags. The first positional argument is
// the command: chat (default), serve or run.
func parseFlags(args []string) *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet("cobrowse", flag.ExitOnError)

	fs.StringVar(&f.ConfigPath, "config", "", "Path to the YAML configuration file (optional)")
	fs.StringVar(&f.Mode, "mode", "", "Orchestration mode: client or server (overrides config)")
	fs.StringVar(&f.Provider, "provider", "", "Model provider: openai, anthropic or remote (overrides config)")
	fs.StringVar(&f.Model, "model", "", "Model name (overrides config)")
	fs.StringVar(&f.PagePath, "page", "", "Local HTML file to drive instead of a live browser")
	fs.StringVar(&f.URL, "url", "", "URL of the live page to drive (overrides config)")
	fs.StringVar(&f.Portfolio, "portfolio", "", "YAML portfolio file (overrides config)")
	fs.StringVar(&f.Script, "script", "", "YAML conversation script for the run command")
	fs.BoolVar(&f.Plain, "cli", false, "Use the plain line-based interface instead of the TUI")
	fs.BoolVar(&f.ShowTools, "show-tools", true, "Print tool calls in the plain interface")
	fs.BoolVar(&f.ShowVer, "version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "cobrowse - a co-browsing portfolio assistant\n\n")
		fmt.Fprintf(os.Stderr, "Usage: cobrowse [options] [chat|serve|run]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (also read from .env.local and .env):\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY       OpenAI API key\n")
		fmt.Fprintf(os.Stderr, "  ANTHROPIC_API_KEY    Anthropic API key\n")
		fmt.Fprintf(os.Stderr, "  COBROWSE_*           Configuration overrides (MODE, PROVIDER, MODEL, ...)\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  cobrowse -url http://localhost:5173          # Drive a running site\n")
		fmt.Fprintf(os.Stderr, "  cobrowse -page ./index.html -cli             # Drive a local file\n")
		fmt.Fprintf(os.Stderr, "  cobrowse serve                               # Start the chat endpoint\n")
		fmt.Fprintf(os.Stderr, "  cobrowse -page ./index.html -script smoke.yaml run  # Replay a scripted conversation\n")
		fmt.Fprintf(os.Stderr, "  cobrowse -mode server -provider remote       # Chat through a running endpoint\n")
	}

	_ = fs.Parse(args)

	f.Command = "chat"
	if fs.NArg() > 0 {
		f.Command = fs.Arg(0)
	}
	return f
}

// run executes the selected command.
func run(ctx context.Context, flags *Flags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	switch flags.Command {
	case "chat":
		return runChat(ctx, cfg, flags)
	case "serve":
		return runServe(ctx, cfg)
	case "run":
		return runScript(ctx, cfg, flags)
	default:
		return fmt.Errorf("unknown command %q (must be 'chat', 'serve' or 'run')", flags.Command)
	}
}
