// Package secrets fetches the latest version of named credentials.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrSecretNotFound is returned when the named secret does not exist or is empty.
var ErrSecretNotFound = errors.New("secrets: secret not found")

// Store returns the current value of a secret.
type Store interface {
	Latest(ctx context.Context, name string) ([]byte, error)
}

// StaticStore serves secrets from memory. Used in development and tests.
type StaticStore map[string][]byte

func (s StaticStore) Latest(ctx context.Context, name string) ([]byte, error) {
	v, ok := s[name]
	if !ok || len(v) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return append([]byte(nil), v...), nil
}

// EnvStore reads a secret from the environment variable derived from its
// name: "mail/credential" becomes MAIL_CREDENTIAL.
type EnvStore struct{}

func (EnvStore) Latest(ctx context.Context, name string) ([]byte, error) {
	key := EnvKey(name)
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil, fmt.Errorf("%w: %s (env %s)", ErrSecretNotFound, name, key)
	}
	return []byte(v), nil
}

// EnvKey maps a secret name onto an environment variable name.
func EnvKey(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, name)
}
