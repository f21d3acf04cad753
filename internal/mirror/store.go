// Package mirror is the durable local mirror of diary conversations. It is
// a best-effort synchronization cache: the server stays authoritative, the
// mirror only makes a reload restore the last observed state. Reads and
// writes are total: missing or corrupt data reads as absent, and write
// failures are logged and swallowed, never surfaced to the caller.
package mirror

import (
	"context"

	"happymoney/internal/core"
)

const keyPrefix = "diary-chat:"

// State is the mirrored snapshot for one conversation.
type State struct {
	Messages   []core.ChatMessage `json:"messages"`
	DiaryTitle string             `json:"diary_title"`
	DiaryBody  string             `json:"diary_body"`
}

// Store is a key-value mirror. Implementations must make both operations
// total: TryRead reports absence instead of failing, Write never returns.
type Store interface {
	// TryRead returns the mirrored state for the key and whether one exists.
	TryRead(ctx context.Context, key string) (State, bool)

	// Write persists the state for the key, fire-and-forget.
	Write(ctx context.Context, key string, state State)

	Close() error
}

// Key derives the mirror key for a transaction id.
func Key(txID string) string {
	return keyPrefix + txID
}
