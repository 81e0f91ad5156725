package session

import (
	"context"
	"errors"
)

var (
	// ErrCredentialsNotFound indicates no persisted credentials exist.
	ErrCredentialsNotFound = errors.New("credential_store.not_found")
	// ErrUnsupportedDialect indicates that no GORM dialector is available for the scheme.
	ErrUnsupportedDialect = errors.New("credential_store.unsupported_dialect")

	errEmptyDatabaseURL    = errors.New("credential_store.empty_database_url")
	errSQLiteEmptyPath     = errors.New("credential_store.sqlite.empty_path")
	errSQLiteInvalidURL    = errors.New("credential_store.sqlite.invalid_url")
	errUnsupportedNoScheme = errors.New("credential_store.unsupported_no_scheme")
)

// CredentialStore persists the token pair across process runs. Save overwrites
// both tokens together; a reader never observes a partial write.
type CredentialStore interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, credentials Credentials) error
	Clear(ctx context.Context) error
}
