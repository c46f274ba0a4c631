// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"os"
	"slices"
	"sort"

	"github.com/bvk/skinbot/api"
	"github.com/bvk/skinbot/job"
	"github.com/bvkgo/kv"
)

const (
	// ManualFlag marks jobs paused through the control api. Jobs with this
	// flag are not resumed automatically on a server restart.
	ManualFlag uint64 = 0x1 << 0
)

func (s *Server) jobNames() []string {
	return slices.Sorted(maps.Keys(s.jobFuncMap))
}

// initJobs creates the job records for jobs that don't exist yet. Records
// in a final state are replaced with fresh paused jobs cause completed job
// records can never run again.
func (s *Server) initJobs(ctx context.Context, rw kv.ReadWriter) error {
	for _, name := range s.jobNames() {
		jd, err := s.runner.Get(ctx, rw, name)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("could not load job %q: %w", name, err)
			}
			if err := s.runner.Add(ctx, rw, name, name); err != nil {
				return fmt.Errorf("could not add job %q: %w", name, err)
			}
			continue
		}
		if job.IsDone(jd.State) {
			log.Printf("job %q was %s earlier; recreating it in the paused state", name, jd.State)
			if err := s.runner.Remove(ctx, rw, name); err != nil {
				return fmt.Errorf("could not remove %s job %q: %w", jd.State, name, err)
			}
			if err := s.runner.Add(ctx, rw, name, name); err != nil {
				return fmt.Errorf("could not recreate job %q: %w", name, err)
			}
		}
	}
	return nil
}

// resumeJobs resumes jobs that were running when the server was last shut
// down. Jobs paused manually or canceled are skipped.
func (s *Server) resumeJobs(ctx context.Context, rw kv.ReadWriter) error {
	for _, name := range s.jobNames() {
		jd, err := s.runner.Get(ctx, rw, name)
		if err != nil {
			return fmt.Errorf("could not load job %q: %w", name, err)
		}
		if job.IsDone(jd.State) {
			continue
		}
		if jd.Flags&ManualFlag != 0 {
			log.Printf("job %q is paused manually; skipping automatic resume", name)
			continue
		}
		if jd.State != job.RUNNING {
			continue
		}
		if _, err := s.runner.Resume(ctx, rw, name, s.jobFuncMap[name], s.cg.Context()); err != nil {
			return fmt.Errorf("could not resume job %q: %w", name, err)
		}
		log.Printf("job %q is resumed automatically", name)
	}
	return nil
}

// doJobPause pauses a running job. The job is also marked as manually
// paused so that server restarts won't resume it automatically.
func (s *Server) doJobPause(ctx context.Context, req *api.JobPauseRequest) (*api.JobPauseResponse, error) {
	if err := req.Check(); err != nil {
		return nil, fmt.Errorf("invalid pause request: %w", err)
	}
	if _, ok := s.jobFuncMap[req.Name]; !ok {
		return nil, fmt.Errorf("job %q is not recognized: %w", req.Name, os.ErrNotExist)
	}

	var state job.State
	pause := func(ctx context.Context, rw kv.ReadWriter) error {
		nstate, err := s.runner.Pause(ctx, rw, req.Name)
		if err != nil {
			return err
		}
		state = nstate

		jd, err := s.runner.Get(ctx, rw, req.Name)
		if err != nil {
			return fmt.Errorf("could not load job %q data: %w", req.Name, err)
		}
		if err := s.runner.UpdateFlags(ctx, rw, req.Name, jd.Flags|ManualFlag); err != nil {
			log.Printf("job is paused, but could not mark job %q as manual (ignored): %v", req.Name, err)
		}
		return nil
	}
	if err := kv.WithReadWriter(ctx, s.db, pause); err != nil {
		return nil, fmt.Errorf("could not pause job %q: %w", req.Name, err)
	}

	resp := &api.JobPauseResponse{
		FinalState: string(state),
	}
	return resp, nil
}

// doJobResume resumes a non-final job.
func (s *Server) doJobResume(ctx context.Context, req *api.JobResumeRequest) (*api.JobResumeResponse, error) {
	if err := req.Check(); err != nil {
		return nil, fmt.Errorf("invalid resume request: %w", err)
	}
	fn, ok := s.jobFuncMap[req.Name]
	if !ok {
		return nil, fmt.Errorf("job %q is not recognized: %w", req.Name, os.ErrNotExist)
	}

	var state job.State
	resume := func(ctx context.Context, rw kv.ReadWriter) error {
		jd, err := s.runner.Get(ctx, rw, req.Name)
		if err != nil {
			return err
		}
		if job.IsDone(jd.State) {
			return fmt.Errorf("job %q is already completed", req.Name)
		}

		nstate, err := s.runner.Resume(ctx, rw, req.Name, fn, s.cg.Context())
		if err != nil {
			return err
		}
		state = nstate

		// Clear the manual flag if any.
		jd, err = s.runner.Get(ctx, rw, req.Name)
		if err != nil {
			log.Printf("could not load the job %q data to clear the manual flag (ignored): %v", req.Name, err)
			return nil
		}
		if jd.Flags&ManualFlag != 0 {
			if err := s.runner.UpdateFlags(ctx, rw, req.Name, jd.Flags&^ManualFlag); err != nil {
				log.Printf("could not clear the manual flag on job %q (ignored): %v", req.Name, err)
			}
		}
		return nil
	}
	if err := kv.WithReadWriter(ctx, s.db, resume); err != nil {
		return nil, err
	}

	resp := &api.JobResumeResponse{
		FinalState: string(state),
	}
	return resp, nil
}

// doJobCancel cancels a non-final job. If the job is running, it is stopped
// first. Canceled jobs cannot be resumed; they are recreated as fresh
// paused jobs on the next daemon restart.
func (s *Server) doJobCancel(ctx context.Context, req *api.JobCancelRequest) (*api.JobCancelResponse, error) {
	if err := req.Check(); err != nil {
		return nil, fmt.Errorf("invalid cancel request: %w", err)
	}
	if _, ok := s.jobFuncMap[req.Name]; !ok {
		return nil, fmt.Errorf("job %q is not recognized: %w", req.Name, os.ErrNotExist)
	}

	state, err := job.CancelDB(ctx, s.runner, s.db, req.Name)
	if err != nil {
		return nil, err
	}
	resp := &api.JobCancelResponse{
		FinalState: string(state),
	}
	return resp, nil
}

func (s *Server) doJobList(ctx context.Context, req *api.JobListRequest) (*api.JobListResponse, error) {
	resp := new(api.JobListResponse)
	collect := func(ctx context.Context, r kv.Reader, jd *job.JobData) error {
		item := &api.JobListResponseItem{
			Name:   jd.UID,
			Type:   jd.Typename,
			State:  string(jd.State),
			Manual: jd.Flags&ManualFlag != 0,
		}
		resp.Jobs = append(resp.Jobs, item)
		return nil
	}
	if err := job.ScanDB(ctx, s.runner, s.db, collect); err != nil {
		return nil, fmt.Errorf("could not scan all jobs: %w", err)
	}
	sort.Slice(resp.Jobs, func(i, j int) bool {
		return resp.Jobs[i].Name < resp.Jobs[j].Name
	})
	return resp, nil
}
