package session

import (
	"context"
	"sync"
)

// MemoryCredentialStore is an in-memory store intended for tests and dev.
type MemoryCredentialStore struct {
	mutex       sync.Mutex
	credentials Credentials
	populated   bool
}

// NewMemoryCredentialStore creates an empty in-memory credential store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

// Load returns the stored token pair or ErrCredentialsNotFound.
func (store *MemoryCredentialStore) Load(ctx context.Context) (Credentials, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	if !store.populated {
		return Credentials{}, ErrCredentialsNotFound
	}
	return store.credentials, nil
}

// Save overwrites both tokens together.
func (store *MemoryCredentialStore) Save(ctx context.Context, credentials Credentials) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.credentials = credentials
	store.populated = true
	return nil
}

// Clear removes the stored pair.
func (store *MemoryCredentialStore) Clear(ctx context.Context) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.credentials = Credentials{}
	store.populated = false
	return nil
}
