// Copyright (c) 2025 BVK Chaitanya

package job

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
)

func blockingJobFunc(ch chan error) Func {
	return func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case err := <-ch:
			return err
		}
	}
}

func getJobData(ctx context.Context, t *testing.T, r *Runner, db kv.Database, uid string) *JobData {
	t.Helper()
	jd, err := GetDB(ctx, r, db, uid)
	if err != nil {
		t.Fatal(err)
	}
	return jd
}

func TestRunnerCancelRunning(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	runner := NewRunner()
	defer StopAllDB(ctx, runner, db)

	if err := AddDB(ctx, runner, db, "1", "JobOne"); err != nil {
		t.Fatal(err)
	}
	if err := AddDB(ctx, runner, db, "1", "OtherJob"); err == nil || !errors.Is(err, os.ErrExist) {
		t.Fatalf("wanted ErrExist, got %v", err)
	}

	if jd := getJobData(ctx, t, runner, db, "1"); jd.State != PAUSED {
		t.Fatalf("wanted PAUSED, got %v", jd.State)
	}

	ch := make(chan error)
	jobFunc := blockingJobFunc(ch)

	if state, err := ResumeDB(ctx, runner, db, "1", jobFunc, ctx); err != nil {
		t.Fatal(err)
	} else if state != RUNNING {
		t.Fatalf("wanted RUNNING, got %v", state)
	}

	if jd := getJobData(ctx, t, runner, db, "1"); jd.State != RUNNING {
		t.Fatalf("wanted RUNNING, got %v", jd.State)
	}

	if _, err := PauseDB(ctx, runner, db, "1"); err != nil {
		t.Fatal(err)
	}
	if jd := getJobData(ctx, t, runner, db, "1"); jd.State != PAUSED {
		t.Fatalf("wanted PAUSED, got %v", jd.State)
	}

	if _, err := ResumeDB(ctx, runner, db, "1", jobFunc, ctx); err != nil {
		t.Fatal(err)
	}

	// Cancel a running job.
	if _, err := CancelDB(ctx, runner, db, "1"); err != nil {
		t.Fatal(err)
	}
	if jd := getJobData(ctx, t, runner, db, "1"); jd.State != CANCELED {
		t.Fatalf("wanted CANCELED, got %v", jd.State)
	}

	if _, err := ResumeDB(ctx, runner, db, "1", jobFunc, ctx); err == nil {
		t.Fatalf("wanted non-nil error, got %v", err)
	}
}

func TestRunnerCancelPaused(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	runner := NewRunner()
	defer StopAllDB(ctx, runner, db)

	if err := AddDB(ctx, runner, db, "1", "JobOne"); err != nil {
		t.Fatal(err)
	}

	ch := make(chan error)
	jobFunc := blockingJobFunc(ch)

	if _, err := ResumeDB(ctx, runner, db, "1", jobFunc, ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := PauseDB(ctx, runner, db, "1"); err != nil {
		t.Fatal(err)
	}
	if jd := getJobData(ctx, t, runner, db, "1"); jd.State != PAUSED {
		t.Fatalf("wanted PAUSED, got %v", jd.State)
	}

	// Cancel a PAUSED job.
	if _, err := CancelDB(ctx, runner, db, "1"); err != nil {
		t.Fatal(err)
	}
	if jd := getJobData(ctx, t, runner, db, "1"); jd.State != CANCELED {
		t.Fatalf("wanted CANCELED, got %v", jd.State)
	}

	if _, err := ResumeDB(ctx, runner, db, "1", jobFunc, ctx); err == nil {
		t.Fatalf("wanted non-nil error, got %v", err)
	}
}

func TestRunnerTransaction(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	runner := NewRunner()
	defer StopAllDB(ctx, runner, db)

	tx, err := db.NewTransaction(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback(ctx)

	if err := runner.Add(ctx, tx, "1", "JobOne"); err != nil {
		t.Fatal(err)
	}
	if err := runner.Add(ctx, tx, "1", "OtherJob"); err == nil || !errors.Is(err, os.ErrExist) {
		t.Fatalf("wanted ErrExist, got %v", err)
	}
	if jd, err := runner.Get(ctx, tx, "1"); err != nil {
		t.Fatal(err)
	} else if jd.State != PAUSED {
		t.Fatalf("wanted PAUSED, got %v", jd.State)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	if jd := getJobData(ctx, t, runner, db, "1"); jd.State != PAUSED {
		t.Fatalf("wanted PAUSED, got %v", jd.State)
	}
}

func TestRunnerStopAll(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	runner := NewRunner()

	ch := make(chan error)
	jobFunc := blockingJobFunc(ch)

	for _, uid := range []string{"1", "2"} {
		if err := AddDB(ctx, runner, db, uid, "JobOne"); err != nil {
			t.Fatal(err)
		}
		if _, err := ResumeDB(ctx, runner, db, uid, jobFunc, ctx); err != nil {
			t.Fatal(err)
		}
	}

	if err := StopAllDB(ctx, runner, db); err != nil {
		t.Fatal(err)
	}

	// Stopped jobs keep their RUNNING state in the db, so that a server
	// restart resumes them automatically.
	for _, uid := range []string{"1", "2"} {
		if jd := getJobData(ctx, t, runner, db, uid); jd.State != RUNNING {
			t.Fatalf("wanted RUNNING, got %v", jd.State)
		}
		if _, err := ResumeDB(ctx, runner, db, uid, jobFunc, ctx); err != nil {
			t.Fatal(err)
		}
	}
	if err := StopAllDB(ctx, runner, db); err != nil {
		t.Fatal(err)
	}
}
