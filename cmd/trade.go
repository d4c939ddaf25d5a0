package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// --- Buy Command ---

type buyCmd struct {
	symbol   string
	quantity int64
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "purchase shares at the latest cached close" }
func (*buyCmd) Usage() string {
	return `pts buy -s <symbol> -q <quantity>

  Purchases shares of a symbol. The cost, latest cached close times
  quantity, is debited from the cash balance. The symbol's history must be
  fetched first (see 'pts fetch').
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Symbol to buy")
	f.Int64Var(&c.quantity, "q", 0, "Number of shares")
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" || c.quantity <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	sim, err := newSimulator(newQuotes())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	cash, holdings, err := sim.Buy(ctx, c.symbol, c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Bought %d shares of %s, remaining capital %s\n", c.quantity, c.symbol, cash)
	printHoldings(holdings)
	return subcommands.ExitSuccess
}

// --- Sell Command ---

type sellCmd struct {
	symbol   string
	quantity int64
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell shares at the latest live close" }
func (*sellCmd) Usage() string {
	return `pts sell -s <symbol> -q <quantity>

  Sells shares of a symbol. The proceeds, latest live close times quantity,
  are credited to the cash balance. Selling every held share removes the
  position entirely.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Symbol to sell")
	f.Int64Var(&c.quantity, "q", 0, "Number of shares")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" || c.quantity <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	sim, err := newSimulator(newQuotes())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	cash, holdings, err := sim.Sell(ctx, c.symbol, c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Sold %d shares of %s, remaining capital %s\n", c.quantity, c.symbol, cash)
	printHoldings(holdings)
	return subcommands.ExitSuccess
}

func printHoldings(holdings map[string]int64) {
	if len(holdings) == 0 {
		fmt.Println("No open positions.")
		return
	}
	for symbol, quantity := range holdings {
		fmt.Printf("  %-10s %d shares\n", symbol, quantity)
	}
}
