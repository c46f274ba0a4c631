// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bvk/skinbot/api"
	"github.com/bvk/skinbot/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Status struct {
	cmdutil.ClientFlags
}

func (c *Status) Purpose() string {
	return "Prints the skinbot daemon status"
}

func (c *Status) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("status", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "status", fset, cli.CmdFunc(c.run)
}

func (c *Status) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments: %w", os.ErrInvalid)
	}

	resp, err := cmdutil.Post[api.StatusResponse](ctx, &c.ClientFlags, api.StatusPath, &api.StatusRequest{})
	if err != nil {
		return fmt.Errorf("could not fetch daemon status: %w", err)
	}

	stdout := cli.Stdout(ctx)
	fmt.Fprintf(stdout, "Pid: %d\n", resp.Pid)
	fmt.Fprintf(stdout, "Uptime: %s\n", resp.Uptime.Truncate(time.Second))
	if resp.CPUPercent > 0 {
		fmt.Fprintf(stdout, "CPU: %.1f%%\n", resp.CPUPercent)
	}
	if resp.MemoryRSS > 0 {
		fmt.Fprintf(stdout, "Memory: %d MiB\n", resp.MemoryRSS/1024/1024)
	}
	if len(resp.Username) > 0 {
		fmt.Fprintf(stdout, "Account: %s (%s)\n", resp.Username, resp.UserID)
	}
	fmt.Fprintf(stdout, "Balance: %s USD\n", resp.Balance.StringFixed(2))
	if len(resp.GameIDs) > 0 {
		fmt.Fprintf(stdout, "Games: %v\n", resp.GameIDs)
	}
	fmt.Fprintf(stdout, "Items: %d bought, %d unsold\n", resp.NumItems, resp.NumUnsold)

	if len(resp.Jobs) > 0 {
		fmt.Fprintln(stdout)
		tw := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintf(tw, "Job\tState\t\n")
		for _, j := range resp.Jobs {
			state := j.State
			if j.Manual {
				state = state + " (manual)"
			}
			fmt.Fprintf(tw, "%s\t%s\t\n", j.Name, state)
		}
		tw.Flush()
	}
	return nil
}
