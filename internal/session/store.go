// Package session persists the access token between client invocations.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/solidgen/solidgen-go/internal/errs"
	"github.com/solidgen/solidgen-go/internal/model"
)

// Store holds at most one token per client. A token is considered valid
// until the backend rejects it; no expiry is enforced locally.
type Store interface {
	// Set replaces the stored token.
	Set(token string) error
	// Get returns the stored token or errs.ErrNoSession.
	Get() (string, error)
	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear() error
}

// FileStore keeps the token as a JSON file under the user config dir,
// readable only by the owner.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore constructs a FileStore rooted at dir. An empty dir selects
// $XDG_CONFIG_HOME/solidgen, falling back to ~/.config/solidgen.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = defaultDir()
	}
	return &FileStore{dir: dir}
}

func defaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "solidgen")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "solidgen")
}

func (s *FileStore) path() string { return filepath.Join(s.dir, "token.json") }

// Set persists the token. The JWT exp claim, when present, is stored
// alongside for diagnostics only.
func (s *FileStore) Set(token string) error {
	if token == "" {
		return errors.New("validation: empty token")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	info := model.TokenInfo{AccessToken: token, ExpiresAt: tokenExpiry(token)}
	b, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), b, 0o600)
}

// Get returns the persisted token. Absence maps to errs.ErrNoSession.
func (s *FileStore) Get() (string, error) {
	b, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errs.ErrNoSession
		}
		return "", err
	}
	var info model.TokenInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return "", err
	}
	if info.AccessToken == "" {
		return "", errs.ErrNoSession
	}
	return info.AccessToken, nil
}

// Clear removes the stored token.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// tokenExpiry extracts the exp claim without validating the signature.
// Opaque non-JWT tokens yield a zero time.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Time{}
}
