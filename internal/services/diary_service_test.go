package services

import (
	"context"
	"errors"
	"testing"

	"happymoney/internal/api"
	"happymoney/internal/core"
)

type fakeDiaryStore struct {
	existing  []core.DiaryEntry
	listErr   error
	saveErr   error
	listCalls int
	saveCalls int
	lastTitle string
	lastBody  string
}

func (f *fakeDiaryStore) ListDiaries(ctx context.Context, filter api.DiaryFilter) ([]core.DiaryEntry, error) {
	f.listCalls++
	return f.existing, f.listErr
}

func (f *fakeDiaryStore) SaveDiary(ctx context.Context, txID, title, body string) (core.DiaryEntry, error) {
	f.saveCalls++
	f.lastTitle, f.lastBody = title, body
	if f.saveErr != nil {
		return core.DiaryEntry{}, f.saveErr
	}
	return core.DiaryEntry{ID: "d-1", TxID: txID, DiaryTitle: title, DiaryBody: body}, nil
}

func TestSave_ValidationBeforeNetwork(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		body    string
		wantErr error
	}{
		{"empty title", "", "body", core.ErrEmptyDiaryTitle},
		{"blank title", "   ", "body", core.ErrEmptyDiaryTitle},
		{"empty body", "title", "", core.ErrEmptyDiaryBody},
		{"blank body", "title", " \n ", core.ErrEmptyDiaryBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeDiaryStore{}
			svc := NewDiaryService(store)

			_, err := svc.Save(context.Background(), "tx-1", tt.title, tt.body, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if store.listCalls != 0 || store.saveCalls != 0 {
				t.Error("validation failure must not reach the network")
			}
		})
	}
}

func TestSave_TrimsAndPersists(t *testing.T) {
	store := &fakeDiaryStore{}
	svc := NewDiaryService(store)

	entry, err := svc.Save(context.Background(), "tx-1", "  A day  ", " body \n", nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if store.lastTitle != "A day" || store.lastBody != "body" {
		t.Errorf("persisted %q/%q, want trimmed values", store.lastTitle, store.lastBody)
	}
	if entry.ID != "d-1" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestSave_ConfirmGatesOverwrite(t *testing.T) {
	store := &fakeDiaryStore{existing: []core.DiaryEntry{{ID: "d-old", TxID: "tx-1"}}}
	svc := NewDiaryService(store)

	_, err := svc.Save(context.Background(), "tx-1", "t", "b", func(core.DiaryEntry) bool { return false })
	if !errors.Is(err, ErrOverwriteDeclined) {
		t.Fatalf("err = %v, want ErrOverwriteDeclined", err)
	}
	if store.saveCalls != 0 {
		t.Error("declined confirmation must not write")
	}

	// Accepting replaces the existing entry.
	if _, err := svc.Save(context.Background(), "tx-1", "t", "b", func(core.DiaryEntry) bool { return true }); err != nil {
		t.Fatalf("Save after accept: %v", err)
	}
	if store.saveCalls != 1 {
		t.Errorf("saveCalls = %d, want 1", store.saveCalls)
	}
}

func TestSave_NilConfirmOverwritesSilently(t *testing.T) {
	store := &fakeDiaryStore{existing: []core.DiaryEntry{{ID: "d-old"}}}
	svc := NewDiaryService(store)

	if _, err := svc.Save(context.Background(), "tx-1", "t", "b", nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if store.saveCalls != 1 {
		t.Errorf("saveCalls = %d, want 1", store.saveCalls)
	}
}

func TestSave_SurfacesStoreErrors(t *testing.T) {
	store := &fakeDiaryStore{listErr: errors.New("offline")}
	svc := NewDiaryService(store)

	if _, err := svc.Save(context.Background(), "tx-1", "t", "b", nil); err == nil {
		t.Error("list failure must surface")
	}

	store = &fakeDiaryStore{saveErr: errors.New("write failed")}
	svc = NewDiaryService(store)
	if _, err := svc.Save(context.Background(), "tx-1", "t", "b", nil); err == nil {
		t.Error("save failure must surface")
	}
}
