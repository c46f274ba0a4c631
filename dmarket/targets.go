// Copyright (c) 2025 BVK Chaitanya

package dmarket

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// deleteTargetsBatchSize is the marketplace limit on the number of targets
// per delete call.
const deleteTargetsBatchSize = 150

// GetUserTargets fetches all buy targets with the given status for one game,
// following pagination cursors until the listing is exhausted.
func (c *Client) GetUserTargets(ctx context.Context, gameID, status string) ([]*Target, error) {
	var targets []*Target
	cursor := ""
	for {
		values := make(url.Values)
		values.Set("GameId", gameID)
		values.Set("BasicFilters.Status", status)
		values.Set("BasicFilters.Currency", "USD")
		values.Set("Limit", "100")
		if len(cursor) != 0 {
			values.Set("Cursor", cursor)
		}

		var resp struct {
			Items  []*Target `json:"Items"`
			Cursor string    `json:"Cursor"`
		}
		if err := c.getJSON(ctx, "/marketplace-api/v1/user-targets", values, &resp); err != nil {
			return nil, fmt.Errorf("could not fetch user targets: %w", err)
		}
		targets = append(targets, resp.Items...)
		if len(resp.Cursor) == 0 || len(resp.Items) == 0 {
			return targets, nil
		}
		cursor = resp.Cursor
	}
}

// GetClosedTargets fetches recently completed buy targets, newest first.
func (c *Client) GetClosedTargets(ctx context.Context, limit int) ([]*ClosedTarget, error) {
	if limit == 0 {
		limit = 100
	}
	values := make(url.Values)
	values.Set("Limit", strconv.Itoa(limit))
	values.Set("OrderDir", "desc")

	var resp struct {
		Trades []*ClosedTarget `json:"Trades"`
	}
	if err := c.getJSON(ctx, "/marketplace-api/v1/user-targets/closed", values, &resp); err != nil {
		return nil, fmt.Errorf("could not fetch closed targets: %w", err)
	}
	return resp.Trades, nil
}

// CreateTarget describes one buy target to create. Price is in whole USD.
type CreateTarget struct {
	Amount     string             `json:"Amount"`
	Price      *Money             `json:"Price"`
	Attributes []*TargetAttribute `json:"Attributes"`
}

type CreateTargetResult struct {
	TargetID     string        `json:"TargetID"`
	CreateTarget *CreateTarget `json:"CreateTarget"`
	Successful   bool          `json:"Successful"`
	Error        *ResultError  `json:"Error"`
}

type ResultError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

// CreateTargets creates the given buy targets.
func (c *Client) CreateTargets(ctx context.Context, targets []*CreateTarget) ([]*CreateTargetResult, error) {
	request := struct {
		Targets []*CreateTarget `json:"Targets"`
	}{
		Targets: targets,
	}
	var resp struct {
		Result []*CreateTargetResult `json:"Result"`
	}
	if err := c.postJSON(ctx, "/marketplace-api/v1/user-targets/create", &request, &resp); err != nil {
		return nil, fmt.Errorf("could not create targets: %w", err)
	}
	return resp.Result, nil
}

// DeleteTarget identifies one buy target to delete.
type DeleteTarget struct {
	TargetID string `json:"TargetID"`
}

type DeleteTargetResult struct {
	DeleteTarget DeleteTarget `json:"DeleteTarget"`
	Error        *ResultError `json:"Error"`
}

// DeleteTargets deletes the given buy targets. The marketplace caps each
// call at 150 targets, so larger inputs are deleted in multiple calls in the
// input order.
func (c *Client) DeleteTargets(ctx context.Context, targetIDs []string) ([]*DeleteTargetResult, error) {
	var results []*DeleteTargetResult
	for begin := 0; begin < len(targetIDs); begin += deleteTargetsBatchSize {
		end := min(begin+deleteTargetsBatchSize, len(targetIDs))

		request := struct {
			Targets []*DeleteTarget `json:"Targets"`
		}{}
		for _, id := range targetIDs[begin:end] {
			request.Targets = append(request.Targets, &DeleteTarget{TargetID: id})
		}

		var resp struct {
			Result []*DeleteTargetResult `json:"Result"`
		}
		if err := c.postJSON(ctx, "/marketplace-api/v1/user-targets/delete", &request, &resp); err != nil {
			return nil, fmt.Errorf("could not delete targets: %w", err)
		}
		results = append(results, resp.Result...)
	}
	return results, nil
}
