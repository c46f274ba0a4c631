// Copyright (c) 2023 BVK Chaitanya

package job

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bvk/skinbot/api"
	"github.com/bvk/skinbot/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Cancel struct {
	cmdutil.ClientFlags
}

func (c *Cancel) Purpose() string {
	return "Cancels a trade job permanently"
}

func (c *Cancel) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("cancel", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "cancel", fset, cli.CmdFunc(c.run)
}

func (c *Cancel) Description() string {
	return `
Command "cancel" stops a trade job and marks it as canceled. Canceled
jobs cannot be resumed again; the daemon recreates a fresh job with
the same name on the next restart.
`
}

func (c *Cancel) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (job-name) argument: %w", os.ErrInvalid)
	}

	req := &api.JobCancelRequest{
		Name: args[0],
	}
	resp, err := cmdutil.Post[api.JobCancelResponse](ctx, &c.ClientFlags, api.JobCancelPath, req)
	if err != nil {
		return fmt.Errorf("could not cancel job %q: %w", args[0], err)
	}
	fmt.Fprintf(cli.Stdout(ctx), "%s\n", resp.FinalState)
	return nil
}
