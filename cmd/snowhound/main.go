package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/i474232898/snowhound/internal/config"
	"github.com/i474232898/snowhound/internal/di"
)

const usage = `Usage: snowhound <command> [flags]

Commands:
  forecast    compare snowfall forecasts across models for a location
  search      find a location by name
  favorites   list, add or remove favorite locations
  models      list the forecast models
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(stderr, usage)
		return 2
	}
	name, rest := args[0], args[1:]

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", name, usage)
		return 2
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.StringP("config", "c", "", "path to a YAML config file")
	opts := cmd.flags(fs)
	if err := fs.Parse(rest); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	// stdout carries exported data
	if cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}

	client, cleanup, err := di.InitializeClient(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, client, opts, fs.Args(), stdout); err != nil {
		client.Log.Error().Err(err).Str("command", name).Msg("command failed")
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
