package session

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryCredentialStoreLifecycle(t *testing.T) {
	store := NewMemoryCredentialStore()

	if _, err := store.Load(context.Background()); !errors.Is(err, ErrCredentialsNotFound) {
		t.Fatalf("expected ErrCredentialsNotFound on empty store, got %v", err)
	}

	saved := Credentials{AccessToken: "access", RefreshToken: "refresh"}
	if err := store.Save(context.Background(), saved); err != nil {
		t.Fatalf("save error: %v", err)
	}
	loaded, loadErr := store.Load(context.Background())
	if loadErr != nil {
		t.Fatalf("load error: %v", loadErr)
	}
	if loaded != saved {
		t.Fatalf("expected %+v, got %+v", saved, loaded)
	}

	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("clear error: %v", err)
	}
	if _, err := store.Load(context.Background()); !errors.Is(err, ErrCredentialsNotFound) {
		t.Fatalf("expected ErrCredentialsNotFound after clear, got %v", err)
	}
}
