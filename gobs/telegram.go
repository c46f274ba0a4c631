// Copyright (c) 2025 BVK Chaitanya

package gobs

type TelegramState struct {
	// UserChatIDMap holds the most recent chat id observed for each
	// authorized bot user.
	UserChatIDMap map[string]int64
}
