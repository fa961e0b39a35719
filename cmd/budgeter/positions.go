package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bobmcallan/budgeter/internal/app"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/google/subcommands"
)

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	page int
	size int
	raw  bool
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "list investment positions with cost basis and realized gains" }
func (*positionsCmd) Usage() string {
	return `budgeter positions [-page <n>] [-size <n>] [-raw]

  Lists the stored investment positions. Requires a persistent storage backend;
  the memory backend starts empty on every run.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.page, "page", 0, "zero-based page number")
	f.IntVar(&c.size, "size", models.DefaultPageSize, "positions per page")
	f.BoolVar(&c.raw, "raw", false, "print plain markdown instead of rendering it for the terminal")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing app: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	page, err := a.InvestmentService.ListInvestments(ctx, models.PageRequest{Page: c.page, Size: c.size})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing positions: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := printMarkdown(os.Stdout, positionsMarkdown(page), c.raw); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
