// Copyright (c) 2025 BVK Chaitanya

package dmarket

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// GetAccount fetches the marketplace user account. It is also the cheapest
// way to verify the api keys.
func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	account := new(Account)
	if err := c.getJSON(ctx, "/account/v1/user", nil, account); err != nil {
		return nil, fmt.Errorf("could not fetch user account: %w", err)
	}
	return account, nil
}

// GetBalance fetches the account balance in USD cents.
func (c *Client) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	var resp struct {
		USD decimal.Decimal `json:"usd"`
	}
	if err := c.getJSON(ctx, "/account/v1/balance", nil, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("could not fetch account balance: %w", err)
	}
	return resp.USD, nil
}
