// Copyright (c) 2023 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"

	"github.com/bvk/skinbot/envfile"
	"github.com/bvk/skinbot/subcmds"
	"github.com/bvk/skinbot/subcmds/db"
	"github.com/bvk/skinbot/subcmds/job"
	"github.com/bvk/skinbot/subcmds/ledger"
	"github.com/bvk/skinbot/subcmds/setup"
	"github.com/visvasity/cli"
)

func main() {
	// Pick up SKINBOT_* variables from a skinbot.env file, so that flag
	// defaults like the server port can be customized per deployment.
	if err := envfile.UpdateEnv("skinbot.env", envfile.VariableNamePrefix("SKINBOT_"), envfile.SearchCurrentDir(true)); err != nil {
		log.Printf("could not load environment file (ignored): %v", err)
	}

	jobCmds := []cli.Command{
		new(job.List),
		new(job.Pause),
		new(job.Resume),
		new(job.Cancel),
	}

	ledgerCmds := []cli.Command{
		new(ledger.List),
		new(ledger.Profit),
	}

	dbCmds := []cli.Command{
		new(db.Get),
		new(db.Set),
		new(db.Delete),
		new(db.List),
		new(db.Backup),
		new(db.Restore),
	}

	setupCmds := []cli.Command{
		new(setup.Dmarket),
		new(setup.Telegram),
		new(setup.PushOver),
	}

	cmds := []cli.Command{
		new(subcmds.Run),
		new(subcmds.Status),
		cli.NewGroup("job", "Control trade jobs", jobCmds...),
		cli.NewGroup("ledger", "Inspect items bought and sold", ledgerCmds...),
		cli.NewGroup("db", "View/update database directly", dbCmds...),
		cli.NewGroup("setup", "Configure api keys and notifications", setupCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
