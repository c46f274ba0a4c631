// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"fmt"

	"github.com/bvk/skinbot/api"
	"github.com/bvk/skinbot/telegram"
	"github.com/visvasity/cli"
)

// AddTelegramCommand registers a command with the telegram bot. It is a
// no-op when telegram is not configured.
func (s *Server) AddTelegramCommand(ctx context.Context, name, purpose string, handler telegram.CmdFunc) error {
	if s.telegramClient != nil {
		return s.telegramClient.AddCommand(ctx, name, purpose, handler)
	}
	return nil // Ignored
}

func (s *Server) addTelegramCommands(ctx context.Context) error {
	cmds := []struct {
		name    string
		purpose string
		handler telegram.CmdFunc
	}{
		{"status", "Prints a brief summary of the skinbot server", s.statusTelegramCmd},
		{"balance", "Prints the usable marketplace balance", s.balanceTelegramCmd},
		{"profit", "Prints realized profit over well-known time periods", s.profitTelegramCmd},
		{"pause", "Pauses the named trade job", s.pauseTelegramCmd},
		{"resume", "Resumes the named trade job", s.resumeTelegramCmd},
	}
	for _, cmd := range cmds {
		if err := s.AddTelegramCommand(ctx, cmd.name, cmd.purpose, cmd.handler); err != nil {
			return fmt.Errorf("could not add telegram command %q: %w", cmd.name, err)
		}
	}
	return nil
}

func (s *Server) statusTelegramCmd(ctx context.Context, args []string) error {
	resp, err := s.doStatus(ctx, &api.StatusRequest{})
	if err != nil {
		return err
	}

	stdout := cli.Stdout(ctx)
	fmt.Fprintf(stdout, "Balance: %s USD\n", resp.Balance.StringFixed(2))
	fmt.Fprintf(stdout, "Items: %d (%d unsold)\n", resp.NumItems, resp.NumUnsold)
	for _, j := range resp.Jobs {
		if j.Manual {
			fmt.Fprintf(stdout, "Job %s: %s (manual)\n", j.Name, j.State)
			continue
		}
		fmt.Fprintf(stdout, "Job %s: %s\n", j.Name, j.State)
	}
	return nil
}

func (s *Server) balanceTelegramCmd(ctx context.Context, args []string) error {
	balance := s.marketplace.CachedBalance().Div(centsPerDollar)
	fmt.Fprintf(cli.Stdout(ctx), "%s USD", balance.StringFixed(2))
	return nil
}

func (s *Server) profitTelegramCmd(ctx context.Context, args []string) error {
	req := new(api.LedgerProfitRequest)
	if len(args) != 0 {
		req.Period = args[0]
	}
	resp, err := s.doLedgerProfit(ctx, req)
	if err != nil {
		return err
	}

	stdout := cli.Stdout(ctx)
	for _, summary := range resp.Summaries {
		fmt.Fprintf(stdout, "%s: %s\n", summary.Period, summary.Profit.StringFixed(3))
	}
	return nil
}

func (s *Server) pauseTelegramCmd(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("pause command takes one job name argument")
	}
	resp, err := s.doJobPause(ctx, &api.JobPauseRequest{Name: args[0]})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.Stdout(ctx), "%s", resp.FinalState)
	return nil
}

func (s *Server) resumeTelegramCmd(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("resume command takes one job name argument")
	}
	resp, err := s.doJobResume(ctx, &api.JobResumeRequest{Name: args[0]})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.Stdout(ctx), "%s", resp.FinalState)
	return nil
}
