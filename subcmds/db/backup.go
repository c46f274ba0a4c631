// Copyright (c) 2023 BVK Chaitanya

// Package db implements subcommands for raw access to the daemon
// database. Commands operate on the badger directory directly, on an
// in-memory copy of a backup file or on the running daemon's kv api
// endpoint.
package db

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bvk/skinbot/kvutil"
	"github.com/bvk/skinbot/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Backup struct {
	cmdutil.DBFlags
}

func (c *Backup) Purpose() string {
	return "Takes a backup of the database into a file"
}

func (c *Backup) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("backup", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return "backup", fset, cli.CmdFunc(c.run)
}

func (c *Backup) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (output backup file) argument: %w", os.ErrInvalid)
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return fmt.Errorf("could not get database instance: %w", err)
	}
	defer closer()

	if err := kvutil.BackupDB(ctx, db, args[0]); err != nil {
		return fmt.Errorf("could not backup database to %q: %w", args[0], err)
	}
	return nil
}
