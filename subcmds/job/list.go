// Copyright (c) 2023 BVK Chaitanya

// Package job implements subcommands to control the trade jobs on a
// running daemon.
package job

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
}

func (c *List) Purpose() string {
	return "Prints trade jobs and their states"
}

func (c *List) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "list", fset, cli.CmdFunc(c.run)
}

func (c *List) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments: %w", os.ErrInvalid)
	}

	resp, err := cmdutil.Post[api.JobListResponse](ctx, &c.ClientFlags, api.JobListPath, &api.JobListRequest{})
	if err != nil {
		return fmt.Errorf("could not fetch job list: %w", err)
	}

	tw := tabwriter.NewWriter(cli.Stdout(ctx), 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\tState\t\n")
	for _, j := range resp.Jobs {
		state := j.State
		if j.Manual {
			state = state + " (manual)"
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", j.Name, state)
	}
	return tw.Flush()
}
