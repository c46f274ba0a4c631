// Copyright (c) 2025 BVK Chaitanya

// Package server implements the skinbot daemon. It creates the marketplace
// client, the analyzer, seller and bidder jobs and exposes the control api
// over http. Job states are persisted in the datastore, so jobs that were
// running during a shutdown are resumed automatically on a restart.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/bvk/skinbot/analytics"
	"github.com/bvk/skinbot/api"
	"github.com/bvk/skinbot/bidder"
	"github.com/bvk/skinbot/ctxutil"
	"github.com/bvk/skinbot/dmarket"
	"github.com/bvk/skinbot/gobs"
	"github.com/bvk/skinbot/job"
	"github.com/bvk/skinbot/kvutil"
	"github.com/bvk/skinbot/pushover"
	"github.com/bvk/skinbot/seller"
	"github.com/bvk/skinbot/telegram"
	"github.com/bvkgo/kv"
	"github.com/shopspring/decimal"
)

// ServerStateKey holds the datastore key with optional server-wide
// configuration overrides.
const ServerStateKey = "/server/state"

// Jobs are singletons with well-known names.
const (
	AnalyzerJobName = "analyzer"
	SellerJobName   = "seller"
	BidderJobName   = "bidder"
)

var centsPerDollar = decimal.NewFromInt(100)

type Server struct {
	cg ctxutil.CloseGroup

	opts Options

	db kv.Database

	marketplace *dmarket.Client

	analyzer *analytics.Analyzer
	seller   *seller.Seller
	bidder   *bidder.Bidder

	runner *job.Runner

	telegramClient *telegram.Client
	pushoverClient *pushover.Client

	startTime time.Time

	jobFuncMap map[string]job.Func

	// alertFrozen is true after a low-balance alert is sent. It is accessed
	// only from the low balance watcher goroutine.
	alertFrozen bool
}

// New creates the marketplace client and the trade jobs, but doesn't start
// any of them. Telegram and pushover messaging is enabled when their secrets
// are present.
func New(secrets *Secrets, db kv.Database, opts *Options) (_ *Server, status error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if secrets == nil || secrets.DMarket == nil {
		return nil, fmt.Errorf("dmarket credentials are required: %w", os.ErrInvalid)
	}
	if err := secrets.Check(); err != nil {
		return nil, err
	}

	s := &Server{
		opts:      *opts,
		db:        db,
		runner:    job.NewRunner(),
		startTime: time.Now(),
	}
	defer func() {
		if status != nil {
			s.Close()
		}
	}()

	ctx := s.cg.Context()

	state, err := kvutil.GetDB[gobs.ServerState](ctx, db, ServerStateKey)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not load server state: %w", err)
	}
	if state != nil && len(state.GameIDs) != 0 {
		s.opts.Analyzer.GameIDs = slices.Clone(state.GameIDs)
		s.opts.Seller.GameIDs = slices.Clone(state.GameIDs)
		s.opts.Bidder.GameIDs = slices.Clone(state.GameIDs)
	}

	mkt, err := dmarket.New(ctx, secrets.DMarket, s.opts.DMarket)
	if err != nil {
		return nil, fmt.Errorf("could not create dmarket client: %w", err)
	}
	s.marketplace = mkt

	analyzer, err := analytics.New(db, mkt, &s.opts.Analyzer)
	if err != nil {
		return nil, fmt.Errorf("could not create analyzer: %w", err)
	}
	s.analyzer = analyzer

	s.opts.Seller.Messenger = s
	vendor, err := seller.New(db, mkt, &s.opts.Seller)
	if err != nil {
		return nil, fmt.Errorf("could not create seller: %w", err)
	}
	s.seller = vendor

	buyer, err := bidder.New(mkt, analyzer, &s.opts.Bidder)
	if err != nil {
		return nil, fmt.Errorf("could not create bidder: %w", err)
	}
	s.bidder = buyer

	if secrets.Telegram != nil {
		tc, err := telegram.New(ctx, db, secrets.Telegram)
		if err != nil {
			return nil, fmt.Errorf("could not create telegram client: %w", err)
		}
		s.telegramClient = tc
	}
	if secrets.Pushover != nil {
		pc, err := pushover.New(secrets.Pushover)
		if err != nil {
			return nil, fmt.Errorf("could not create pushover client: %w", err)
		}
		s.pushoverClient = pc
	}

	s.jobFuncMap = map[string]job.Func{
		AnalyzerJobName: analyzer.Run,
		SellerJobName:   vendor.Run,
		BidderJobName:   buyer.Run,
	}
	return s, nil
}

func (s *Server) Close() error {
	s.cg.Close()
	if s.telegramClient != nil {
		s.telegramClient.Close()
	}
	if s.marketplace != nil {
		s.marketplace.Close()
	}
	return nil
}

// Start creates missing job records and resumes jobs that were running when
// the server was last shut down. Jobs paused through the control api stay
// paused.
func (s *Server) Start(ctx context.Context) error {
	if err := kv.WithReadWriter(ctx, s.db, s.initJobs); err != nil {
		return fmt.Errorf("could not initialize jobs: %w", err)
	}
	if !s.opts.NoResume {
		if err := kv.WithReadWriter(ctx, s.db, s.resumeJobs); err != nil {
			return fmt.Errorf("could not resume jobs: %w", err)
		}
	}

	s.cg.Go(func(ctx context.Context) {
		if err := s.watchForLowBalance(ctx); err != nil && ctx.Err() == nil {
			slog.ErrorContext(ctx, "low balance watcher has failed", "error", err)
		}
	})

	if err := s.addTelegramCommands(ctx); err != nil {
		return fmt.Errorf("could not add telegram commands: %w", err)
	}

	s.SendMessage(ctx, time.Now(), "Skinbot server has started.")
	return nil
}

// Stop stops all running jobs. Their job states in the datastore are left
// unchanged, so that the next Start call can resume them.
func (s *Server) Stop(ctx context.Context) error {
	s.SendMessage(ctx, time.Now(), "Skinbot server is shutting down.")
	if err := job.StopAllDB(ctx, s.runner, s.db); err != nil {
		return fmt.Errorf("could not stop all jobs: %w", err)
	}
	return nil
}

// SendMessage sends a notice to the configured telegram account. It is a
// no-op when telegram is not configured.
func (s *Server) SendMessage(ctx context.Context, at time.Time, format string, args ...interface{}) {
	if s.telegramClient == nil {
		return
	}
	if err := s.telegramClient.SendMessage(ctx, at, fmt.Sprintf(format, args...)); err != nil {
		slog.WarnContext(ctx, "could not send telegram message (ignored)", "error", err)
	}
}

// SendAlert sends a notice over telegram and also over pushover when it is
// configured. Alerts are reserved for conditions that need the operator.
func (s *Server) SendAlert(ctx context.Context, at time.Time, format string, args ...interface{}) {
	s.SendMessage(ctx, at, format, args...)
	if s.pushoverClient == nil {
		return
	}
	if err := s.pushoverClient.SendMessage(ctx, at, fmt.Sprintf(format, args...)); err != nil {
		slog.WarnContext(ctx, "could not send pushover message (ignored)", "error", err)
	}
}

// HandlerMap returns the control api handlers with their url paths.
func (s *Server) HandlerMap() map[string]http.Handler {
	return map[string]http.Handler{
		api.StatusPath:       httpPostJSONHandler(s.doStatus),
		api.JobListPath:      httpPostJSONHandler(s.doJobList),
		api.JobPausePath:     httpPostJSONHandler(s.doJobPause),
		api.JobResumePath:    httpPostJSONHandler(s.doJobResume),
		api.JobCancelPath:    httpPostJSONHandler(s.doJobCancel),
		api.LedgerListPath:   httpPostJSONHandler(s.doLedgerList),
		api.LedgerProfitPath: httpPostJSONHandler(s.doLedgerProfit),
	}
}

func httpPostJSONHandler[T1, T2 any](fun func(context.Context, *T1) (*T2, error)) http.Handler {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "invalid http method type", http.StatusMethodNotAllowed)
			return
		}
		if v := r.Header.Get("content-type"); !strings.EqualFold(v, "application/json") {
			http.Error(w, "unsupported content type", http.StatusBadRequest)
			return
		}
		req := new(T1)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := fun(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("content-type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("could not json-encode response (ignored)", "error", err)
		}
	}
	return http.HandlerFunc(handler)
}
