package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/google/subcommands"
	"golang.org/x/exp/maps"
)

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display cash, holdings and live market value" }
func (*summaryCmd) Usage() string {
	return `pts summary

  Displays the cash balance, the open positions and the live market value
  of the holdings (cash excluded).
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sim, err := newSimulator(newQuotes())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	cash, holdings := sim.Ledger()

	var b strings.Builder
	b.WriteString("# Portfolio Summary\n\n")
	fmt.Fprintf(&b, "Remaining capital: **%s**\n\n", cash)

	if len(holdings) == 0 {
		b.WriteString("No open positions.\n")
		printMarkdown(b.String())
		return subcommands.ExitSuccess
	}

	b.WriteString("| Symbol | Quantity | Last Close |\n")
	b.WriteString("|--------|---------:|-----------:|\n")
	symbols := maps.Keys(holdings)
	slices.Sort(symbols)
	for _, symbol := range symbols {
		price, err := sim.LatestClose(ctx, symbol)
		if err != nil {
			fmt.Fprintf(&b, "| %s | %d | n/a |\n", symbol, holdings[symbol])
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %s |\n", symbol, holdings[symbol], price)
	}

	total, err := sim.Valuation(ctx)
	if err != nil {
		fmt.Fprintf(&b, "\nMarket value unavailable: %v\n", err)
	} else {
		fmt.Fprintf(&b, "\nMarket value (excl. cash): **%s**\n", total)
	}

	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
