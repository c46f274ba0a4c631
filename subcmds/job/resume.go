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

type Resume struct {
	cmdutil.ClientFlags
}

func (c *Resume) Purpose() string {
	return "Resumes a paused trade job"
}

func (c *Resume) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("resume", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "resume", fset, cli.CmdFunc(c.run)
}

func (c *Resume) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (job-name) argument: %w", os.ErrInvalid)
	}

	req := &api.JobResumeRequest{
		Name: args[0],
	}
	resp, err := cmdutil.Post[api.JobResumeResponse](ctx, &c.ClientFlags, api.JobResumePath, req)
	if err != nil {
		return fmt.Errorf("could not resume job %q: %w", args[0], err)
	}
	fmt.Fprintf(cli.Stdout(ctx), "%s\n", resp.FinalState)
	return nil
}
