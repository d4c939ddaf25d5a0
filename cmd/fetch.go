package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/yahoo"
	"github.com/google/subcommands"
)

type fetchCmd struct {
	period string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch historical bars into the local cache" }
func (*fetchCmd) Usage() string {
	return `pts fetch [-p <period>] <symbol...>

  Fetches the daily price history for each symbol from the quote source and
  stores it as a CSV file in the data directory. Buying a symbol requires
  its history to be cached first.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", yahoo.DefaultPeriod, "History period (1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd, max)")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one symbol is required.")
		return subcommands.ExitUsageError
	}

	quotes := newQuotes()
	sim, err := newSimulator(quotes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	status := subcommands.ExitSuccess
	for _, symbol := range f.Args() {
		symbol = papertrade.NormalizeSymbol(symbol)
		series, err := sim.FetchHistory(ctx, symbol, c.period)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching %s: %v\n", symbol, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("Fetched %d bars for %s into %s\n", len(series), symbol, sim.Cache().Path(symbol))
	}
	return status
}
