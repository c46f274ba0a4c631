// Copyright (c) 2023 BVK Chaitanya

package job

import (
	"context"

	"github.com/bvkgo/kv"
)

func AddDB(ctx context.Context, r *Runner, db kv.Database, uid, typename string) error {
	return kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return r.Add(ctx, rw, uid, typename)
	})
}

func GetDB(ctx context.Context, r *Runner, db kv.Database, uid string) (*JobData, error) {
	var jd *JobData
	err := kv.WithReader(ctx, db, func(ctx context.Context, reader kv.Reader) error {
		v, err := r.Get(ctx, reader, uid)
		if err != nil {
			return err
		}
		jd = v
		return nil
	})
	return jd, err
}

func ResumeDB(ctx context.Context, r *Runner, db kv.Database, uid string, fn Func, fctx context.Context) (State, error) {
	var state State
	err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		s, err := r.Resume(ctx, rw, uid, fn, fctx)
		if err != nil {
			return err
		}
		state = s
		return nil
	})
	return state, err
}

func PauseDB(ctx context.Context, r *Runner, db kv.Database, uid string) (State, error) {
	var state State
	err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		s, err := r.Pause(ctx, rw, uid)
		if err != nil {
			return err
		}
		state = s
		return nil
	})
	return state, err
}

func CancelDB(ctx context.Context, r *Runner, db kv.Database, uid string) (State, error) {
	var state State
	err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		s, err := r.Cancel(ctx, rw, uid)
		if err != nil {
			return err
		}
		state = s
		return nil
	})
	return state, err
}

func ScanDB(ctx context.Context, r *Runner, db kv.Database, fn func(context.Context, kv.Reader, *JobData) error) error {
	return kv.WithReader(ctx, db, func(ctx context.Context, reader kv.Reader) error {
		return r.Scan(ctx, reader, fn)
	})
}

func StopAllDB(ctx context.Context, r *Runner, db kv.Database) error {
	return kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return r.StopAll(ctx, rw)
	})
}
