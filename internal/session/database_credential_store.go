package session

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	sqliteDialector "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	credentialKeyAccessToken  = "access_token"
	credentialKeyRefreshToken = "refresh_token"
)

// DatabaseCredentialStore persists the token pair using GORM. The default
// deployment is a sqlite file under the user config directory; shared
// front-desk installations may point it at postgres instead.
type DatabaseCredentialStore struct {
	db          *gorm.DB
	driverLabel string
}

type credentialRecord struct {
	Key   string `gorm:"column:key;primaryKey"`
	Value string `gorm:"column:value;not null"`
}

func (credentialRecord) TableName() string {
	return "credentials"
}

// Driver exposes the selected database driver label.
func (store *DatabaseCredentialStore) Driver() string {
	return store.driverLabel
}

// NewDatabaseCredentialStore constructs a GORM-backed store from a database URL.
func NewDatabaseCredentialStore(ctx context.Context, databaseURL string) (*DatabaseCredentialStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("credential_store.open: %w", errEmptyDatabaseURL)
	}
	dialector, driverLabel, err := resolveDialector(databaseURL)
	if err != nil {
		return nil, err
	}
	gormDB, openErr := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if openErr != nil {
		return nil, fmt.Errorf("credential_store.open.%s: %w", driverLabel, openErr)
	}
	if migrateErr := gormDB.WithContext(ctx).AutoMigrate(&credentialRecord{}); migrateErr != nil {
		return nil, fmt.Errorf("credential_store.migrate.%s: %w", driverLabel, migrateErr)
	}
	return &DatabaseCredentialStore{
		db:          gormDB,
		driverLabel: driverLabel,
	}, nil
}

// Load reads both token keys. Absence of either key reports ErrCredentialsNotFound.
func (store *DatabaseCredentialStore) Load(ctx context.Context) (Credentials, error) {
	var records []credentialRecord
	err := store.db.WithContext(ctx).
		Where("key IN ?", []string{credentialKeyAccessToken, credentialKeyRefreshToken}).
		Find(&records).Error
	if err != nil {
		return Credentials{}, fmt.Errorf("credential_store.load.%s: %w", store.driverLabel, err)
	}
	if len(records) == 0 {
		return Credentials{}, fmt.Errorf("credential_store.load.%s: %w", store.driverLabel, ErrCredentialsNotFound)
	}
	credentials := Credentials{}
	for _, record := range records {
		switch record.Key {
		case credentialKeyAccessToken:
			credentials.AccessToken = record.Value
		case credentialKeyRefreshToken:
			credentials.RefreshToken = record.Value
		}
	}
	if credentials.Empty() {
		return Credentials{}, fmt.Errorf("credential_store.load.%s: %w", store.driverLabel, ErrCredentialsNotFound)
	}
	return credentials, nil
}

// Save upserts both token keys in a single transaction so a concurrent reader
// never sees one token from the old pair and one from the new.
func (store *DatabaseCredentialStore) Save(ctx context.Context, credentials Credentials) error {
	records := []credentialRecord{
		{Key: credentialKeyAccessToken, Value: credentials.AccessToken},
		{Key: credentialKeyRefreshToken, Value: credentials.RefreshToken},
	}
	err := store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return transaction.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("credential_store.save.%s: %w", store.driverLabel, err)
	}
	return nil
}

// Clear removes both token keys wholesale.
func (store *DatabaseCredentialStore) Clear(ctx context.Context) error {
	err := store.db.WithContext(ctx).
		Where("key IN ?", []string{credentialKeyAccessToken, credentialKeyRefreshToken}).
		Delete(&credentialRecord{}).Error
	if err != nil {
		return fmt.Errorf("credential_store.clear.%s: %w", store.driverLabel, err)
	}
	return nil
}

func resolveDialector(databaseURL string) (gorm.Dialector, string, error) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return nil, "", fmt.Errorf("credential_store.parse_url: %w", err)
	}
	if parsed.Scheme == "" {
		return nil, "", fmt.Errorf("credential_store.dialect: %w", errUnsupportedNoScheme)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "postgres", "postgresql":
		return postgres.Open(databaseURL), "postgres", nil
	case "sqlite", "sqlite3":
		dsn, dsnErr := buildSQLiteDSN(parsed)
		if dsnErr != nil {
			return nil, "", fmt.Errorf("credential_store.sqlite: %w", dsnErr)
		}
		return sqliteDialector.Open(dsn), "sqlite", nil
	default:
		return nil, "", fmt.Errorf("credential_store.dialect.%s: %w", strings.ToLower(parsed.Scheme), ErrUnsupportedDialect)
	}
}

func buildSQLiteDSN(parsed *url.URL) (string, error) {
	if parsed == nil {
		return "", errSQLiteInvalidURL
	}
	var builder strings.Builder
	switch {
	case parsed.Opaque != "":
		builder.WriteString(parsed.Opaque)
	case parsed.Host != "":
		builder.WriteString(parsed.Host)
		if parsed.Path != "" {
			if !strings.HasPrefix(parsed.Path, "/") {
				builder.WriteString("/")
			}
			builder.WriteString(parsed.Path)
		}
	default:
		builder.WriteString(parsed.Path)
	}
	if builder.Len() == 0 {
		return "", errSQLiteEmptyPath
	}
	if parsed.RawQuery != "" {
		builder.WriteString("?")
		builder.WriteString(parsed.RawQuery)
	}
	return builder.String(), nil
}
