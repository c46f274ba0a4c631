// Copyright (c) 2023 BVK Chaitanya

package gobs

import (
	"fmt"
)

func NewByTypename(typename string) (any, error) {
	var v any
	switch typename {
	case "JobData":
		v = new(JobData)
	case "KeyValue":
		v = new(KeyValue)
	case "LedgerEntry":
		v = new(LedgerEntry)
	case "ItemStats":
		v = new(ItemStats)
	case "ServerState":
		v = new(ServerState)
	case "TelegramState":
		v = new(TelegramState)
	default:
		return nil, fmt.Errorf("unsupported type name %q", typename)
	}
	return v, nil
}
