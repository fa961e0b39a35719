package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobmcallan/budgeter/internal/app"
	"github.com/google/subcommands"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	raw bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a broker CSV export into the investment ledger" }
func (*importCmd) Usage() string {
	return `budgeter import [-raw] <file.csv>

  Records every valid row of the broker export as an investment transaction
  and prints the import report. Rows that fail are listed with their line number.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print plain markdown instead of rendering it for the terminal")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "import requires exactly one CSV file")
		return subcommands.ExitUsageError
	}
	file := f.Arg(0)

	in, err := os.Open(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", file, err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing app: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	result, err := a.ImportService.Import(ctx, filepath.Base(file), in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", file, err)
		return subcommands.ExitFailure
	}

	if err := printMarkdown(os.Stdout, importMarkdown(result), c.raw); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if result.Imported == 0 && result.RowsRead > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
