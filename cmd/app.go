// Package cmd implements the CLI application to drive the simulator.
package cmd

import (
	"flag"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/yahoo"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "server")

	c.Register(&searchCmd{}, "market data")
	c.Register(&fetchCmd{}, "market data")

	c.Register(&buyCmd{}, "trading")
	c.Register(&sellCmd{}, "trading")
	c.Register(&summaryCmd{}, "trading")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "portfolio.json", "Path to the ledger file (JSON format)")
var dataDir = flag.String("data-dir", "data", "Path to the bar cache folder (one CSV file per symbol)")
var startCapital = flag.Float64("start-capital", 0, "Starting cash for a freshly created ledger (default 1000000)")

// newQuotes creates the quote source client shared by all commands.
func newQuotes(opts ...yahoo.Option) *yahoo.Client {
	return yahoo.New(opts...)
}

// newSimulator assembles a simulator from the app-level flags.
func newSimulator(quotes papertrade.QuoteSource) (*papertrade.Simulator, error) {
	store := papertrade.NewLedgerStore(*ledgerFile, papertrade.M(*startCapital, papertrade.USD))
	cache := papertrade.NewBarCache(*dataDir)
	return papertrade.NewSimulator(store, cache, quotes)
}
