package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/google/subcommands"
)

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "print build information" }
func (*versionCmd) Usage() string            { return "budgeter version\n" }
func (*versionCmd) SetFlags(_ *flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Printf("budgeter %s\n", common.GetVersionInfo())
	return subcommands.ExitSuccess
}
