package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/papertrade/server"
	"github.com/etnz/papertrade/yahoo"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type serveCmd struct {
	addr    string
	timeout time.Duration
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the portfolio HTTP API" }
func (*serveCmd) Usage() string {
	return `pts serve [-addr <address>]

  Serves the portfolio API (search, historical-data, buy, sell, portfolio,
  portfolio-value). On startup the bar cache is warmed for every held
  symbol. The address can also be set with the PAPERTRADE_ADDR environment
  variable, optionally from a .env file.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address (default :8000)")
	f.DurationVar(&c.timeout, "quote-timeout", 10*time.Second, "Timeout for quote source requests")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// A missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	addr := c.addr
	if addr == "" {
		addr = os.Getenv("PAPERTRADE_ADDR")
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	quotes := newQuotes(yahoo.WithTimeout(c.timeout))
	sim, err := newSimulator(quotes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	srv := server.New(server.Config{Addr: addr}, sim, quotes, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: server stopped: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
