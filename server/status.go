// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/bvk/skinbot/api"
	"github.com/bvk/skinbot/ledger"
	"github.com/shirou/gopsutil/v4/process"
)

func (s *Server) doStatus(ctx context.Context, req *api.StatusRequest) (*api.StatusResponse, error) {
	resp := &api.StatusResponse{
		Pid:     os.Getpid(),
		Uptime:  time.Since(s.startTime),
		Balance: s.marketplace.CachedBalance().Div(centsPerDollar),
		GameIDs: slices.Clone(s.opts.Analyzer.GameIDs),
	}

	if p, err := process.NewProcess(int32(resp.Pid)); err == nil {
		if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
			resp.CPUPercent = cpu
		}
		if mem, err := p.MemoryInfoWithContext(ctx); err == nil {
			resp.MemoryRSS = mem.RSS
		}
	}

	if account, err := s.marketplace.GetAccount(ctx); err != nil {
		slog.WarnContext(ctx, "could not fetch user account (ignored)", "error", err)
	} else {
		resp.UserID = account.ID
		resp.Username = account.Username
	}

	entries, err := ledger.ListAllDB(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("could not list ledger entries: %w", err)
	}
	resp.NumItems = len(entries)
	for _, entry := range entries {
		if !entry.IsSold() {
			resp.NumUnsold++
		}
	}

	jobs, err := s.doJobList(ctx, &api.JobListRequest{})
	if err != nil {
		return nil, fmt.Errorf("could not list jobs: %w", err)
	}
	for _, j := range jobs.Jobs {
		resp.Jobs = append(resp.Jobs, &api.StatusJob{
			Name:   j.Name,
			State:  j.State,
			Manual: j.Manual,
		})
	}
	return resp, nil
}
