package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Storage keys of the two halves of the credential pair.
const (
	AccessTokenKey  = "lux_access_token"
	RefreshTokenKey = "lux_refresh_token"
)

// Store drivers selectable through StoreConfig.Driver.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
	DriverNone   = "none"
)

// ErrUnknownDriver is returned when StoreConfig.Driver names no known backend.
var ErrUnknownDriver = errors.New("unknown credential store driver")

// Store defines durable storage for the access/refresh token pair.
// A value that is not stored is reported as ("", false, nil), never as an error.
type Store interface {
	// GetAccess returns the stored access token.
	GetAccess(ctx context.Context) (string, bool, error)

	// GetRefresh returns the stored refresh token.
	GetRefresh(ctx context.Context) (string, bool, error)

	// SetPair replaces both tokens. Readers never observe one token of the old pair
	// together with one token of the new pair.
	SetPair(ctx context.Context, access, refresh string) error

	// Clear removes both tokens. Clearing an empty store is not an error.
	Clear(ctx context.Context) error

	// HasPair reports whether both tokens are present and non-empty.
	HasPair(ctx context.Context) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}

// StoreFactory is a function that creates a new Store instance.
type StoreFactory func(ctx context.Context) (Store, error)

// StoreConfig selects and configures the credential store backend.
type StoreConfig struct {
	// Driver is one of "sqlite", "redis", "memory" or "none"
	Driver string `env:"DRIVER" default:"sqlite"`

	// Profile namespaces the stored pair so several accounts or backends can share
	// one database
	Profile string `env:"PROFILE" default:"default"`

	SQLite SQLiteStoreConfig `envPrefix:"SQLITE_"`
	Redis  RedisStoreConfig  `envPrefix:"REDIS_"`
}

// NewStoreFactory returns the factory of the backend selected by cfg.Driver.
func NewStoreFactory(cfg StoreConfig) (StoreFactory, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite:
		return func(ctx context.Context) (Store, error) {
			return NewSQLiteStore(ctx, cfg.SQLite, cfg.Profile)
		}, nil
	case DriverRedis:
		return func(ctx context.Context) (Store, error) {
			return NewRedisStore(ctx, cfg.Redis, cfg.Profile)
		}, nil
	case DriverMemory:
		return func(context.Context) (Store, error) {
			return NewMemoryStore(), nil
		}, nil
	case DriverNone:
		return func(context.Context) (Store, error) {
			return NopStore{}, nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// hasPair reports whether both halves of a pair are present.
func hasPair(access, refresh string) bool {
	return access != "" && refresh != ""
}
