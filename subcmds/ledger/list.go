// Copyright (c) 2025 BVK Chaitanya

// Package ledger implements subcommands to inspect the trade history
// recorded by a running daemon.
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

type List struct {
	cmdutil.ClientFlags

	unsold bool
}

func (c *List) Purpose() string {
	return "Prints items bought and sold by the daemon"
}

func (c *List) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.BoolVar(&c.unsold, "unsold", false, "lists only items waiting for a sale")
	return "list", fset, cli.CmdFunc(c.run)
}

func (c *List) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments: %w", os.ErrInvalid)
	}

	req := &api.LedgerListRequest{
		Unsold: c.unsold,
	}
	resp, err := cmdutil.Post[api.LedgerListResponse](ctx, &c.ClientFlags, api.LedgerListPath, req)
	if err != nil {
		return fmt.Errorf("could not fetch ledger items: %w", err)
	}

	tw := tabwriter.NewWriter(cli.Stdout(ctx), 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "AssetID\tGame\tTitle\tBuyPrice\tBoughtAt\tSellPrice\tSoldAt\t\n")
	for _, item := range resp.Items {
		sellPrice, soldAt := "-", "-"
		if !item.SellPrice.IsZero() {
			sellPrice = item.SellPrice.StringFixed(2)
		}
		if !item.SoldAt.IsZero() {
			soldAt = item.SoldAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n", item.AssetID, item.GameID, item.Title,
			item.BuyPrice.StringFixed(2), item.BoughtAt.Format("2006-01-02"), sellPrice, soldAt)
	}
	return tw.Flush()
}
