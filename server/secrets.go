// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bvk/skinbot/dmarket"
	"github.com/bvk/skinbot/pushover"
	"github.com/bvk/skinbot/telegram"
)

type Secrets struct {
	DMarket  *dmarket.Credentials `json:"dmarket"`
	Pushover *pushover.Keys       `json:"pushover"`
	Telegram *telegram.Secrets    `json:"telegram"`
}

func SecretsFromFile(fpath string) (*Secrets, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}
	s := new(Secrets)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (v *Secrets) Check() error {
	if v.DMarket != nil {
		if err := v.DMarket.Check(); err != nil {
			return fmt.Errorf("invalid dmarket credentials: %w", err)
		}
	}
	if v.Pushover != nil {
		if err := v.Pushover.Check(); err != nil {
			return fmt.Errorf("invalid pushover keys: %w", err)
		}
	}
	if v.Telegram != nil {
		if err := v.Telegram.Check(); err != nil {
			return fmt.Errorf("invalid telegram secrets: %w", err)
		}
	}
	return nil
}
