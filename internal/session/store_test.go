package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/solidgen/solidgen-go/internal/errs"
	"github.com/solidgen/solidgen-go/internal/model"
)

func TestFileStore_SetGetClear(t *testing.T) {
	t.Parallel()
	s := NewFileStore(t.TempDir())

	if _, err := s.Get(); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("want ErrNoSession before Set, got %v", err)
	}

	if err := s.Set("tok1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	tok, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tok != "tok1" {
		t.Fatalf("want tok1, got %q", tok)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := s.Get(); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("want ErrNoSession after Clear, got %v", err)
	}

	// clearing an empty store is not an error
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear twice: %v", err)
	}
}

func TestFileStore_RejectsEmptyToken(t *testing.T) {
	t.Parallel()
	s := NewFileStore(t.TempDir())
	if err := s.Set(""); err == nil {
		t.Fatalf("want validation error on empty token")
	}
}

func TestFileStore_SetReplacesToken(t *testing.T) {
	t.Parallel()
	s := NewFileStore(t.TempDir())

	if err := s.Set("old"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("new"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	tok, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tok != "new" {
		t.Fatalf("want new, got %q", tok)
	}
}

func TestFileStore_StoresJWTExpiry(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := NewFileStore(dir)

	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if err := s.Set(signed); err != nil {
		t.Fatalf("Set: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "token.json"))
	if err != nil {
		t.Fatalf("read token file: %v", err)
	}
	var info model.TokenInfo
	if err := json.Unmarshal(b, &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if info.AccessToken != signed {
		t.Fatalf("token not persisted")
	}
	if !info.ExpiresAt.Equal(exp) {
		t.Fatalf("want exp %v, got %v", exp, info.ExpiresAt)
	}
}

func TestFileStore_OpaqueTokenStillValid(t *testing.T) {
	t.Parallel()
	s := NewFileStore(t.TempDir())

	// Not a JWT; expiry stays zero and the token is still retrievable.
	// Validity is decided by the backend, never locally.
	if err := s.Set("opaque-token"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	tok, err := s.Get()
	if err != nil || tok != "opaque-token" {
		t.Fatalf("Get: %q %v", tok, err)
	}
}

func TestFileStore_TokenFilePermissions(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := NewFileStore(dir)

	if err := s.Set("tok1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	fi, err := os.Stat(filepath.Join(dir, "token.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Fatalf("want 0600 perms, got %o", perm)
	}
}
