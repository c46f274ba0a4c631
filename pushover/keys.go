// Copyright (c) 2025 BVK Chaitanya

package pushover

import (
	"fmt"
	"os"
)

// Keys holds the pushover api credentials for an application and the
// user receiving it's messages.
type Keys struct {
	ApplicationKey string `json:"application_key"`
	UserKey        string `json:"user_key"`
}

func (k *Keys) Check() error {
	if len(k.ApplicationKey) == 0 {
		return fmt.Errorf("application key cannot be empty: %w", os.ErrInvalid)
	}
	if len(k.UserKey) == 0 {
		return fmt.Errorf("user key cannot be empty: %w", os.ErrInvalid)
	}
	return nil
}

func (k *Keys) Clone() *Keys {
	c := new(Keys)
	*c = *k
	return c
}
