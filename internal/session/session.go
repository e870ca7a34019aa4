package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "modernc.org/sqlite"

	"pitchline/internal/domain"
)

const dbName = "session.db"

// ErrNoSession is returned when no usable token is stored (none saved, or
// the saved one has expired).
var ErrNoSession = errors.New("no active session; run pl login")

type Config struct {
	Workspace string
}

// Store persists the authenticated session across CLI invocations: the
// bearer token with its account id, and a shadow of the resolved profile so
// the resolver can skip the network on a warm start.
type Store struct {
	DB  *sql.DB
	Now func() time.Time
}

func workspaceDir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, ".pitchline")
}

// EnsureWorkspace creates the workspace dot-directory if missing.
func EnsureWorkspace(workspace string) (string, error) {
	path := workspaceDir(workspace)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// Open opens the session database, creating the schema if needed.
func Open(cfg Config) (*Store, error) {
	if _, err := EnsureWorkspace(cfg.Workspace); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?cache=shared", filepath.Join(workspaceDir(cfg.Workspace), dbName))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, err
	}
	return &Store{DB: conn}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS session(
  id INTEGER PRIMARY KEY CHECK (id = 1),
  token TEXT NOT NULL,
  account_id TEXT NOT NULL,
  saved_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS profile_shadow(
  id INTEGER PRIMARY KEY CHECK (id = 1),
  profile_json TEXT NOT NULL,
  saved_at TEXT NOT NULL
);`

func (s *Store) Close() error { return s.DB.Close() }

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SaveToken stores the bearer token after extracting its account id. The
// signature is the server's to verify; the client only reads the claims to
// learn the subject and refuse an already-expired token.
func (s *Store) SaveToken(ctx context.Context, token string) (string, error) {
	accountID, expiry, err := inspectToken(token)
	if err != nil {
		return "", err
	}
	if !expiry.IsZero() && expiry.Before(s.now()) {
		return "", errors.New("token is already expired")
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO session(id, token, account_id, saved_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET token=excluded.token, account_id=excluded.account_id, saved_at=excluded.saved_at`,
		token, accountID, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return accountID, nil
}

// Token returns the stored bearer token and its account id. An expired
// token is dropped and reported as ErrNoSession.
func (s *Store) Token(ctx context.Context) (token, accountID string, err error) {
	row := s.DB.QueryRowContext(ctx, `SELECT token, account_id FROM session WHERE id = 1`)
	if err := row.Scan(&token, &accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrNoSession
		}
		return "", "", err
	}
	_, expiry, err := inspectToken(token)
	if err != nil {
		return "", "", err
	}
	if !expiry.IsZero() && expiry.Before(s.now()) {
		_ = s.Reset(ctx)
		return "", "", ErrNoSession
	}
	return token, accountID, nil
}

// SaveProfile caches the resolved profile for the session.
func (s *Store) SaveProfile(ctx context.Context, p domain.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO profile_shadow(id, profile_json, saved_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET profile_json=excluded.profile_json, saved_at=excluded.saved_at`,
		string(data), s.now().UTC().Format(time.RFC3339))
	return err
}

// Profile returns the cached profile shadow, or false when none is stored.
func (s *Store) Profile(ctx context.Context) (domain.Profile, bool, error) {
	var data string
	row := s.DB.QueryRowContext(ctx, `SELECT profile_json FROM profile_shadow WHERE id = 1`)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Profile{}, false, nil
		}
		return domain.Profile{}, false, err
	}
	var p domain.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return domain.Profile{}, false, err
	}
	return p, true, nil
}

// ClearProfile drops the cached profile shadow.
func (s *Store) ClearProfile(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM profile_shadow WHERE id = 1`)
	return err
}

// Reset wipes the whole session.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return err
	}
	return s.ClearProfile(ctx)
}

// inspectToken reads the subject and expiry claims without verifying the
// signature.
func inspectToken(token string) (accountID string, expiry time.Time, err error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", time.Time{}, fmt.Errorf("malformed token: %w", err)
	}
	if claims.Subject == "" {
		return "", time.Time{}, errors.New("token has no subject claim")
	}
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	return claims.Subject, expiry, nil
}
