package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pitchline/internal/domain"
)

func mintToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: subject}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTokenRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, _, err := store.Token(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("empty store err = %v, want ErrNoSession", err)
	}

	token := mintToken(t, "alice", time.Now().Add(time.Hour))
	accountID, err := store.SaveToken(ctx, token)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if accountID != "alice" {
		t.Fatalf("account = %q, want alice", accountID)
	}

	got, account, err := store.Token(ctx)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if got != token || account != "alice" {
		t.Fatalf("round trip mismatch: %q %q", got, account)
	}
}

func TestSaveRejectsExpiredToken(t *testing.T) {
	store := openStore(t)
	token := mintToken(t, "alice", time.Now().Add(-time.Hour))
	if _, err := store.SaveToken(context.Background(), token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestExpiredTokenDropsSession(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	store.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token := mintToken(t, "alice", time.Now().Add(-time.Hour))
	if _, err := store.SaveToken(ctx, token); err != nil {
		t.Fatalf("save in the past: %v", err)
	}
	store.Now = time.Now
	if _, _, err := store.Token(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expired token err = %v, want ErrNoSession", err)
	}
	// The dead session was wiped, not just skipped.
	if _, _, err := store.Token(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("second read err = %v, want ErrNoSession", err)
	}
}

func TestSaveRejectsTokenWithoutSubject(t *testing.T) {
	store := openStore(t)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := store.SaveToken(context.Background(), token); err == nil {
		t.Fatal("expected error for token without subject")
	}
}

func TestProfileShadowRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, ok, err := store.Profile(ctx); err != nil || ok {
		t.Fatalf("empty shadow = ok=%v err=%v", ok, err)
	}
	p := domain.Profile{ID: 9, AccountID: "alice", Name: "Alice", Region: "seoul"}
	if err := store.SaveProfile(ctx, p); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	got, ok, err := store.Profile(ctx)
	if err != nil || !ok {
		t.Fatalf("profile = ok=%v err=%v", ok, err)
	}
	if got.ID != 9 || got.Name != "Alice" {
		t.Fatalf("profile = %+v", got)
	}
	if err := store.ClearProfile(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.Profile(ctx); ok {
		t.Fatal("shadow survived clear")
	}
}

func TestResetWipesEverything(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if _, err := store.SaveToken(ctx, mintToken(t, "alice", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if err := store.SaveProfile(ctx, domain.Profile{ID: 1, AccountID: "alice", Name: "Alice"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, _, err := store.Token(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("token after reset err = %v, want ErrNoSession", err)
	}
	if _, ok, _ := store.Profile(ctx); ok {
		t.Fatal("profile survived reset")
	}
}
