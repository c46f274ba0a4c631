// Copyright (c) 2025 BVK Chaitanya

package dmarket

import (
	"errors"
	"fmt"
)

// Marketplace response errors are classified into the kinds below so that
// callers can pick the recovery with errors.Is.
var (
	// ErrBadRequest covers 400 responses. The request was understood and
	// rejected; retrying the same request cannot succeed.
	ErrBadRequest = errors.New("marketplace rejected the request")

	// ErrAuthFailure covers 401 responses. The api keys are invalid or
	// revoked; trading must stop until an operator fixes them.
	ErrAuthFailure = errors.New("marketplace rejected the api keys")

	// ErrRateLimited covers 429 responses.
	ErrRateLimited = errors.New("marketplace rate limit exceeded")

	// ErrBadGateway covers 500 and 502 responses.
	ErrBadGateway = errors.New("marketplace is temporarily unavailable")

	// ErrUnrecognizedResponse covers every other unexpected status or a
	// response body that is not valid json.
	ErrUnrecognizedResponse = errors.New("unrecognized marketplace response")
)

// IsRetryable returns true for errors that may succeed on a later attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrBadGateway)
}

func statusError(status int, body []byte) error {
	kind := ErrUnrecognizedResponse
	switch status {
	case 400:
		kind = ErrBadRequest
	case 401:
		kind = ErrAuthFailure
	case 429:
		kind = ErrRateLimited
	case 500, 502:
		kind = ErrBadGateway
	}
	if len(body) > 256 {
		body = body[:256]
	}
	return fmt.Errorf("%w: status %d: %s", kind, status, body)
}
