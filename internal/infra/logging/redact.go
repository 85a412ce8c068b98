package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces the value of credential-bearing attributes.
const RedactedValue = "[REDACTED]"

//nolint:gochecknoglobals
var redactedKeys = map[string]struct{}{
	"authorization": {},
	"accesstoken":   {},
	"refreshtoken":  {},
	"password":      {},
	"newpassword":   {},
	"token":         {},
}

// IsRedactedKey reports whether values logged under key must never reach the output.
// Matching ignores case, "_" and "-", so access_token, accessToken and Access-Token match.
func IsRedactedKey(key string) bool {
	key = strings.ToLower(key)
	key = strings.NewReplacer("_", "", "-", "").Replace(key)

	_, ok := redactedKeys[key]

	return ok
}

// RedactAttr is a slog ReplaceAttr function masking credential-bearing attributes.
func RedactAttr(_ []string, attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindGroup && IsRedactedKey(attr.Key) {
		return slog.String(attr.Key, RedactedValue)
	}

	return attr
}
