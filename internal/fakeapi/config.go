package fakeapi

// Config holds configuration for the fake backend.
type Config struct {
	// SigningKey is the HMAC key access tokens are signed with
	SigningKey string `env:"SIGNING_KEY" default:"luxmock-development-signing-key"`

	// AccessTTL is the lifetime of access tokens in seconds
	AccessTTL int64 `env:"ACCESS_TTL" default:"900"` // 15m

	// Seed account created at startup; an empty SeedEmail disables seeding
	SeedEmail    string `env:"SEED_EMAIL" default:"demo@lux.local"`
	SeedPassword string `env:"SEED_PASSWORD" default:"demo-password"`
	SeedName     string `env:"SEED_NAME" default:"Demo User"`
}
