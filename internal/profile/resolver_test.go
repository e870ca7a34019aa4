package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pitchline/internal/api"
	"pitchline/internal/domain"
	"pitchline/internal/session"
)

func testToken(t *testing.T, accountID string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func openSession(t *testing.T, accountID string) *session.Store {
	t.Helper()
	store, err := session.Open(session.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if _, err := store.SaveToken(context.Background(), testToken(t, accountID)); err != nil {
		t.Fatalf("save token: %v", err)
	}
	return store
}

func TestResolveCachesProfile(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profiles/by-account/alice" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hits++
		json.NewEncoder(w).Encode(domain.Profile{ID: 42, AccountID: "alice", Name: "Alice"})
	}))
	defer srv.Close()

	store := openSession(t, "alice")
	r := New(api.New(srv.URL), store)

	ctx := context.Background()
	p, err := r.Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.ID != 42 || p.Name != "Alice" {
		t.Fatalf("profile = %+v", p)
	}
	if _, err := r.Resolve(ctx); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if hits != 1 {
		t.Fatalf("store hits = %d, want 1", hits)
	}

	// A fresh resolver warm-starts from the session shadow, no network.
	r2 := New(api.New(srv.URL), store)
	if _, err := r2.Resolve(ctx); err != nil {
		t.Fatalf("shadow resolve: %v", err)
	}
	if hits != 1 {
		t.Fatalf("store hits after shadow resolve = %d, want 1", hits)
	}
}

func TestResolveMissingProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "profile_not_found", "message": "no profile"},
		})
	}))
	defer srv.Close()

	r := New(api.New(srv.URL), openSession(t, "alice"))
	_, err := r.Resolve(context.Background())
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("resolve err = %v, want ErrProfileNotFound", err)
	}
}

func TestResolveBare404IsMissingProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := New(api.New(srv.URL), openSession(t, "alice"))
	_, err := r.Resolve(context.Background())
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("resolve err = %v, want ErrProfileNotFound", err)
	}
}

func TestResolveWithoutSession(t *testing.T) {
	store, err := session.Open(session.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	defer store.Close()

	r := New(api.New("http://127.0.0.1:1"), store)
	_, err = r.Resolve(context.Background())
	if !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("resolve err = %v, want ErrNoSession", err)
	}
}

func TestProvisionFillsAccountID(t *testing.T) {
	var seen api.CreateProfileRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/profiles" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&seen); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(domain.Profile{ID: 7, AccountID: seen.AccountID, Name: seen.Name})
	}))
	defer srv.Close()

	store := openSession(t, "bob")
	r := New(api.New(srv.URL), store)
	p, err := r.Provision(context.Background(), api.CreateProfileRequest{Name: "Bob"})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if seen.AccountID != "bob" {
		t.Fatalf("request account_id = %q, want bob", seen.AccountID)
	}
	if p.ID != 7 {
		t.Fatalf("profile id = %d", p.ID)
	}

	// Provision caches, so resolve needs no further requests.
	if _, err := r.Resolve(context.Background()); err != nil {
		t.Fatalf("resolve after provision: %v", err)
	}
}
