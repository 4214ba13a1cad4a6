package db

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"
)

// DSN errors.
var (
	ErrInvalidDSN          = errors.New("invalid postgres connection string")
	ErrEmbeddedCredentials = errors.New("postgres connection string must not embed a password; store it in the keyring")
)

// ValidateDSN checks that a postgres connection string (URI or key=value)
// parses and carries no password. Config files hold DSNs without secrets;
// a password-bearing DSN belongs in the keyring.
func ValidateDSN(dsn string) error {
	if strings.TrimSpace(dsn) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidDSN)
	}

	if _, err := pq.NewConnector(dsn); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDSN, err)
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDSN, err)
		}
		if _, set := u.User.Password(); set {
			return ErrEmbeddedCredentials
		}
		return nil
	}

	for _, pair := range strings.Fields(dsn) {
		k, _, ok := strings.Cut(pair, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), "password") {
			return ErrEmbeddedCredentials
		}
	}
	return nil
}
