// Command chartlens serves the UK Top 50 chart dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"chartlens/internal/app"
	apperrors "chartlens/internal/errors"
	"chartlens/internal/config"
	"chartlens/internal/dataprocessing"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

// options are the command line overrides
type options struct {
	host      string
	port      int
	data      string
	noBrowser bool
	set       map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{set: map[string]bool{}}
	fs.StringVar(&opts.host, "host", "127.0.0.1", "interface to listen on")
	fs.IntVar(&opts.port, "port", config.DefaultPort, "port to listen on")
	fs.StringVar(&opts.data, "data", config.DefaultDataPath, "chart export to load (.csv or .xlsx)")
	fs.BoolVar(&opts.noBrowser, "no-browser", false, "do not open the dashboard in a browser")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// apply lets explicit flags win over environment and config file values
func (o *options) apply(cfg *config.Config) error {
	if o.set["host"] {
		cfg.Server.Host = o.host
	}
	if o.set["port"] {
		cfg.Server.Port = o.port
	}
	if o.set["data"] {
		cfg.Data.Path = o.data
	}
	if o.noBrowser {
		cfg.Browser.Open = false
	}
	if err := cfg.Validate(); err != nil {
		return apperrors.NewConfigError("invalid command line", err)
	}
	return nil
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return 1
	}
	if err := opts.apply(cfg); err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return 1
	}

	application, err := app.NewApplication(ctx, cfg)
	if err != nil {
		var loadErr *dataprocessing.LoadError
		if errors.As(err, &loadErr) {
			slog.Error("Failed to load chart data",
				slog.String("path", loadErr.Path),
				slog.String("reason", loadErr.Reason))
			fmt.Fprintf(stderr, "cannot load %s: %v\n", cfg.Data.Path, loadErr)
			return 1
		}
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
