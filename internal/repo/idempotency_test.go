package repo

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestIdempotency_CreateGetDuplicate(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	bob := mustUser(t, db, "Bob", false)
	const scope = "POST /v1/quotes"

	rec, err := CreateIdempotency(ctx, db, bob.ID, scope, "k1", 42, http.StatusCreated, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == "" || !rec.ExpiresAt.After(rec.CreatedAt) {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, bob.ID, scope, "k1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.ResourceID != 42 || got.Status != http.StatusCreated {
		t.Fatalf("unexpected record: %+v", got)
	}

	if _, err := CreateIdempotency(ctx, db, bob.ID, scope, "k1", 43, http.StatusCreated, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Same key under another scope or user is independent.
	if _, err := GetIdempotency(ctx, db, bob.ID, "POST /v1/other", "k1", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other scope, got %v", err)
	}
	if _, err := GetIdempotency(ctx, db, bob.ID+1, scope, "k1", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestIdempotency_ExpiryAndPurge(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	bob := mustUser(t, db, "Bob", false)

	if _, err := CreateIdempotency(ctx, db, bob.ID, "s", "old", 1, 201, time.Minute); err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, bob.ID, "s", "fresh", 2, 201, time.Hour); err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}

	later := time.Now().UTC().Add(10 * time.Minute)
	if _, err := GetIdempotency(ctx, db, bob.ID, "s", "old", later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired record to be invisible, got %v", err)
	}
	n, err := PurgeExpiredIdempotency(ctx, db, later)
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpiredIdempotency: n=%d err=%v", n, err)
	}
	if _, err := GetIdempotency(ctx, db, bob.ID, "s", "fresh", later); err != nil {
		t.Fatalf("fresh record should survive purge: %v", err)
	}
}

func TestGetIdempotency_BlankInputs(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	now := time.Now()
	for _, tc := range []struct {
		user       uint
		scope, key string
	}{
		{0, "s", "k"},
		{1, " ", "k"},
		{1, "s", ""},
	} {
		if _, err := GetIdempotency(ctx, db, tc.user, tc.scope, tc.key, now); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetIdempotency(%d,%q,%q): expected ErrNotFound, got %v", tc.user, tc.scope, tc.key, err)
		}
	}
}
