package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	session := NewSession("sess-1", "+15551234567", time.Now())
	if err := session.MarkUnknown(false); err != nil {
		t.Fatalf("MarkUnknown() error = %v", err)
	}
	session.AppendTurn(SpeakerCaller, "hello", time.Now())

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.ID != session.ID || loaded.Phone != session.Phone {
		t.Fatalf("Load() = %+v, want identity of saved session", loaded)
	}
	if len(loaded.Transcript) != 1 || loaded.Transcript[0].Text != "hello" {
		t.Fatalf("Load() transcript = %+v", loaded.Transcript)
	}
	if loaded.Classification != ClassificationUnknownIncomplete {
		t.Fatalf("Load() classification = %q", loaded.Classification)
	}
}

func TestMemoryStoreLoadReturnsIsolatedCopy(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	session := NewSession("sess-2", "+15551234567", time.Now())
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	first, err := store.Load(ctx, "sess-2")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	first.AppendTurn(SpeakerCaller, "mutated without saving", time.Now())

	second, err := store.Load(ctx, "sess-2")
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if len(second.Transcript) != 0 {
		t.Fatalf("unsaved mutation leaked into store: %+v", second.Transcript)
	}
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if _, err := store.Load(context.Background(), "absent"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Load() error = %v, want ErrSessionNotFound", err)
	}
}

func TestMemoryStoreSaveValidatesInput(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, nil); !errors.Is(err, ErrNilSession) {
		t.Fatalf("Save(nil) error = %v, want ErrNilSession", err)
	}
	if err := store.Save(ctx, &Session{}); err == nil {
		t.Fatal("Save() accepted session without id")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	session := NewSession("sess-3", "+15551234567", time.Now())
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}

	if err := store.Delete(ctx, "sess-3"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "sess-3"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Load() after delete error = %v, want ErrSessionNotFound", err)
	}

	// Deleting an absent session is not an error.
	if err := store.Delete(ctx, "sess-3"); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
}
