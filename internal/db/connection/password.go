package connection

import (
	"errors"
	"fmt"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/zalando/go-keyring"
)

const serviceName = "lazydash"

// ErrPasswordNotFound is returned when no password is stored for a connection
var ErrPasswordNotFound = errors.New("password not found in keyring")

// PasswordStore keeps connection passwords in the OS keyring
type PasswordStore struct {
	service string

	// PgPassFile is consulted by Resolve when the keyring has no entry; empty disables it
	PgPassFile string
}

// NewPasswordStore creates a password store for the lazydash keyring service
func NewPasswordStore() *PasswordStore {
	path, _ := DefaultPgPassPath()
	return &PasswordStore{service: serviceName, PgPassFile: path}
}

// Save stores a password; empty passwords are not saved
func (ps *PasswordStore) Save(host string, port int, database, user, password string) error {
	if password == "" {
		return nil
	}
	if err := keyring.Set(ps.service, makeKey(host, port, database, user), password); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// Get retrieves a password from the keyring
func (ps *PasswordStore) Get(host string, port int, database, user string) (string, error) {
	password, err := keyring.Get(ps.service, makeKey(host, port, database, user))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrPasswordNotFound
		}
		return "", fmt.Errorf("failed to read password from keyring: %w", err)
	}
	return password, nil
}

// Delete removes a password from the keyring
func (ps *PasswordStore) Delete(host string, port int, database, user string) error {
	err := keyring.Delete(ps.service, makeKey(host, port, database, user))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}

// Resolve fills an empty config.Password from the keyring, then from the
// pgpass file. When neither has an entry the config is returned unchanged.
func (ps *PasswordStore) Resolve(config models.ConnectionConfig) (models.ConnectionConfig, error) {
	if config.Password != "" {
		return config, nil
	}

	password, keyringErr := ps.Get(config.Host, config.Port, config.Database, config.User)
	if keyringErr == nil {
		config.Password = password
		return config, nil
	}

	if ps.PgPassFile != "" {
		entries, err := LoadPgPass(ps.PgPassFile)
		if err != nil {
			return config, fmt.Errorf("failed to read pgpass file: %w", err)
		}
		if password, ok := LookupPgPass(entries, config); ok {
			config.Password = password
			return config, nil
		}
	}

	if errors.Is(keyringErr, ErrPasswordNotFound) {
		return config, nil
	}
	return config, keyringErr
}

// makeKey creates a unique key for password storage
func makeKey(host string, port int, database, user string) string {
	return fmt.Sprintf("%s:%d:%s:%s", host, port, database, user)
}
