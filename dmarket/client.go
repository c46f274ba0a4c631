// Copyright (c) 2025 BVK Chaitanya

// Package dmarket implements a signed http client for the DMarket
// marketplace apis. Every request is authenticated with a detached ed25519
// signature and the client enforces the marketplace rate-limit protocol on
// every response.
package dmarket

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bvk/skinbot/ctxutil"
	"github.com/shopspring/decimal"
	"github.com/visvasity/topic"
	"golang.org/x/time/rate"
)

const signaturePrefix = "dmar ed25519 "

type Client struct {
	cg ctxutil.CloseGroup

	opts Options

	publicKey  string
	signingKey ed25519.PrivateKey

	client *http.Client

	limiter *rate.Limiter

	// timeNow returns the clock used for signature timestamps.
	timeNow func() time.Time

	// balance caches the last fetched account balance in USD cents. The
	// background refresher is the only writer.
	balance      atomic.Pointer[decimal.Decimal]
	balanceTopic *topic.Topic[decimal.Decimal]
}

// New creates a client for the DMarket marketplace. The account balance is
// fetched once before New returns, so invalid api keys are reported here and
// not from the background tasks.
func New(ctx context.Context, creds *Credentials, opts *Options) (_ *Client, status error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()

	if err := creds.Check(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}
	key, err := creds.signingKey()
	if err != nil {
		return nil, err
	}

	c := &Client{
		opts:       *opts,
		publicKey:  creds.PublicKey,
		signingKey: key,
		client: &http.Client{
			Timeout: opts.HttpClientTimeout,
		},
		limiter:      rate.NewLimiter(rate.Limit(opts.RateLimitPerSecond), 1),
		timeNow:      time.Now,
		balanceTopic: topic.New[decimal.Decimal](),
	}
	defer func() {
		if status != nil {
			c.Close()
		}
	}()

	balance, err := c.GetBalance(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "could not fetch initial account balance", "error", err)
		return nil, err
	}
	c.balance.Store(&balance)
	c.balanceTopic.Send(balance)

	c.cg.Go(c.goWatchBalance)
	return c, nil
}

// Close shuts down the client and its background tasks.
func (c *Client) Close() error {
	c.cg.Close()
	c.balanceTopic.Close()
	return nil
}

// CachedBalance returns the most recently fetched account balance in USD
// cents.
func (c *Client) CachedBalance() decimal.Decimal {
	if p := c.balance.Load(); p != nil {
		return *p
	}
	return decimal.Zero
}

// BalanceUpdates subscribes to the account balance refresh events. Values are
// USD cents.
func (c *Client) BalanceUpdates() (*topic.Receiver[decimal.Decimal], error) {
	return topic.Subscribe(c.balanceTopic, 1, true /* includeRecent */)
}

func (c *Client) goWatchBalance(ctx context.Context) {
	for ctx.Err() == nil {
		ctxutil.Sleep(ctx, c.opts.BalanceRefreshInterval)
		if ctx.Err() != nil {
			return
		}
		balance, err := c.GetBalance(ctx)
		if err != nil {
			if !errors.Is(err, context.Cause(ctx)) {
				slog.WarnContext(ctx, "could not refresh account balance (will retry)", "error", err)
			}
			continue
		}
		c.balance.Store(&balance)
		c.balanceTopic.Send(balance)
	}
}

// sign returns the request signature header value and the signing timestamp
// for the given request pieces. Body must be the exact bytes sent on the
// wire.
func (c *Client) sign(method, upath string, query url.Values, body []byte, at time.Time) (signature, date string) {
	date = strconv.FormatInt(at.Unix(), 10)

	var sb strings.Builder
	sb.WriteString(method)
	sb.WriteString(upath)
	if len(query) > 0 {
		sb.WriteString("?")
		sb.WriteString(query.Encode())
	}
	sb.Write(body)
	sb.WriteString(date)

	sum := ed25519.Sign(c.signingKey, []byte(sb.String()))
	return signaturePrefix + hex.EncodeToString(sum[:ed25519.SignatureSize]), date
}

// pauseForRateLimit applies the marketplace rate-limit protocol after a
// response. A response without rate-limit headers forces a fixed pause; a
// response that reports one or zero remaining requests forces a pause for
// the advertised reset interval.
func (c *Client) pauseForRateLimit(ctx context.Context, headers http.Header) error {
	remaining := headers.Get("RateLimit-Remaining")
	if remaining == "" {
		return ctxutil.Sleep(ctx, c.opts.MissingRateLimitPause)
	}
	n, err := strconv.Atoi(remaining)
	if err != nil {
		return ctxutil.Sleep(ctx, c.opts.MissingRateLimitPause)
	}
	if n > 1 {
		return nil
	}
	pause := c.opts.MissingRateLimitPause
	if secs, err := strconv.Atoi(headers.Get("RateLimit-Reset")); err == nil && secs > 0 {
		pause = time.Duration(secs) * time.Second
	}
	return ctxutil.Sleep(ctx, pause)
}

func (c *Client) do(ctx context.Context, method, upath string, query url.Values, request, result any) error {
	var body []byte
	if request != nil {
		data, err := json.Marshal(request)
		if err != nil {
			slog.Error("could not marshal request body to json", "path", upath, "error", err)
			return err
		}
		body = data
	}

	u := &url.URL{
		Scheme:   "https",
		Host:     c.opts.RestHostname,
		Path:     upath,
		RawQuery: query.Encode(),
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		slog.Error("could not create http request with context", "url", u, "error", err)
		return err
	}

	signature, date := c.sign(method, upath, query, body, c.timeNow())
	req.Header.Set("X-Api-Key", c.publicKey)
	req.Header.Set("X-Request-Sign", signature)
	req.Header.Set("X-Sign-Date", date)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not perform http request", "method", method, "path", upath, "error", err)
		}
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("could not read response body", "path", upath, "error", err)
		return err
	}

	if err := c.pauseForRateLimit(ctx, resp.Header); err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		err := statusError(resp.StatusCode, data)
		if !IsRetryable(err) {
			slog.Error("marketplace request has failed", "method", method, "path", upath, "status", resp.StatusCode)
		}
		return err
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("%w: could not unmarshal body: %v", ErrUnrecognizedResponse, err)
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, upath string, query url.Values, result any) error {
	return c.do(ctx, http.MethodGet, upath, query, nil, result)
}

func (c *Client) postJSON(ctx context.Context, upath string, request, result any) error {
	return c.do(ctx, http.MethodPost, upath, nil, request, result)
}

func (c *Client) deleteJSON(ctx context.Context, upath string, request, result any) error {
	return c.do(ctx, http.MethodDelete, upath, nil, request, result)
}
