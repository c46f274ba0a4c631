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

type Pause struct {
	cmdutil.ClientFlags
}

func (c *Pause) Purpose() string {
	return "Pauses a trade job"
}

func (c *Pause) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("pause", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "pause", fset, cli.CmdFunc(c.run)
}

func (c *Pause) Description() string {
	return `
Command "pause" stops a trade job and marks it as manually paused, so
that it is not resumed automatically on daemon restarts. Use the
"resume" command to start it again.
`
}

func (c *Pause) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (job-name) argument: %w", os.ErrInvalid)
	}

	req := &api.JobPauseRequest{
		Name: args[0],
	}
	resp, err := cmdutil.Post[api.JobPauseResponse](ctx, &c.ClientFlags, api.JobPausePath, req)
	if err != nil {
		return fmt.Errorf("could not pause job %q: %w", args[0], err)
	}
	fmt.Fprintf(cli.Stdout(ctx), "%s\n", resp.FinalState)
	return nil
}
