package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"happymoney/internal/api"
	"happymoney/internal/core"
)

// ErrOverwriteDeclined is returned when a diary already exists for the
// transaction and the caller declined to replace it. The draft is untouched.
var ErrOverwriteDeclined = errors.New("diary overwrite declined")

// DiaryStore is the slice of the remote API the diary service needs.
type DiaryStore interface {
	ListDiaries(ctx context.Context, filter api.DiaryFilter) ([]core.DiaryEntry, error)
	SaveDiary(ctx context.Context, txID, title, body string) (core.DiaryEntry, error)
}

// ConfirmFunc asks the user whether an existing diary may be replaced.
type ConfirmFunc func(existing core.DiaryEntry) bool

// DiaryService gates diary persistence: it validates the draft, checks for
// an existing entry, and only then writes. A failed write never discards
// the draft, so the caller can retry as-is.
type DiaryService struct {
	store DiaryStore
}

func NewDiaryService(store DiaryStore) *DiaryService {
	return &DiaryService{store: store}
}

// Save persists a diary draft for the transaction. Title and body are
// trimmed and must both be non-empty; validation failures are reported
// before any network call is made. When an entry already exists for the
// transaction, confirm decides whether it gets overwritten (a nil confirm
// overwrites silently, matching the server's last-write-wins behavior).
func (s *DiaryService) Save(ctx context.Context, txID, title, body string, confirm ConfirmFunc) (core.DiaryEntry, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)

	if title == "" {
		return core.DiaryEntry{}, core.ErrEmptyDiaryTitle
	}
	if body == "" {
		return core.DiaryEntry{}, core.ErrEmptyDiaryBody
	}

	existing, err := s.store.ListDiaries(ctx, api.DiaryFilter{TxID: txID})
	if err != nil {
		return core.DiaryEntry{}, fmt.Errorf("check existing diary: %w", err)
	}
	if len(existing) > 0 && confirm != nil && !confirm(existing[0]) {
		slog.InfoContext(ctx, "Diary save declined by user", "tx_id", txID)
		return core.DiaryEntry{}, ErrOverwriteDeclined
	}

	entry, err := s.store.SaveDiary(ctx, txID, title, body)
	if err != nil {
		return core.DiaryEntry{}, fmt.Errorf("save diary: %w", err)
	}

	slog.InfoContext(ctx, "Diary saved", "tx_id", txID, "diary_id", entry.ID)
	return entry, nil
}
