// Copyright (c) 2025 BVK Chaitanya

package ledger

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bvk/skinbot/api"
	"github.com/bvk/skinbot/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Profit struct {
	cmdutil.ClientFlags
}

func (c *Profit) Purpose() string {
	return "Prints realized profit summaries"
}

func (c *Profit) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("profit", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "profit", fset, cli.CmdFunc(c.run)
}

func (c *Profit) Description() string {
	return `
Command "profit" summarizes purchases, sales and realized profit over a
reporting period. An optional argument selects one of the well-known
periods "today", "yesterday", "this-week", "last-week", "this-month",
"last-month", "this-year", "last-year" or "lifetime"; without an
argument all periods are reported.
`
}

func (c *Profit) run(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("this command takes at most one (period) argument: %w", os.ErrInvalid)
	}

	req := &api.LedgerProfitRequest{}
	if len(args) == 1 {
		req.Period = args[0]
	}
	resp, err := cmdutil.Post[api.LedgerProfitResponse](ctx, &c.ClientFlags, api.LedgerProfitPath, req)
	if err != nil {
		return fmt.Errorf("could not fetch profit summary: %w", err)
	}

	tw := tabwriter.NewWriter(cli.Stdout(ctx), 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "Period\tBought\tSold\tSpent\tEarned\tProfit\t\n")
	for _, s := range resp.Summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t\n", s.Period, s.NumBought, s.NumSold,
			s.Bought.StringFixed(2), s.Sold.StringFixed(2), s.Profit.StringFixed(3))
	}
	return tw.Flush()
}
