package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-quotes-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	if _, err := FirstAdmin(ctx, db); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no admins, got %v", err)
	}

	bob := mustUser(t, db, "Bob", false)
	root := mustUser(t, db, "Root", true)
	mustUser(t, db, "Root2", true)

	if err := CreateUser(ctx, db, &domain.User{IdentityID: bob.IdentityID, Name: "Clone"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on identity reuse, got %v", err)
	}

	got, err := GetUserByIdentity(ctx, db, "sub-Bob")
	if err != nil || got.ID != bob.ID {
		t.Fatalf("GetUserByIdentity: %+v %v", got, err)
	}
	if _, err := GetUser(ctx, db, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := UpdateUserFields(ctx, db, bob.ID, map[string]any{"name": "Robert"}); err != nil {
		t.Fatalf("UpdateUserFields: %v", err)
	}
	if got, _ := GetUser(ctx, db, bob.ID); got.Name != "Robert" {
		t.Fatalf("name not updated: %+v", got)
	}
	if err := UpdateUserFields(ctx, db, 999, map[string]any{"name": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	admin, err := FirstAdmin(ctx, db)
	if err != nil || admin.ID != root.ID {
		t.Fatalf("FirstAdmin: %+v %v", admin, err)
	}
}
