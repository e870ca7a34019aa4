package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"

	"pitchline/internal/domain"
)

type principalKey struct{}

// principal is the authenticated account, as carried by the bearer token.
type principal struct {
	AccountID string
}

func withPrincipal(ctx context.Context, p principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFromContext(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	return p, ok
}

func authenticate(token, secret string) (principal, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return principal{}, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return principal{}, errors.New("invalid token")
	}
	return principal{AccountID: claims.Subject}, nil
}

func mintToken(accountID, secret string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func newAuthMiddleware(basePath, secret string) func(http.Handler) http.Handler {
	healthPath := path.Join(basePath, "health")
	devLoginPath := path.Join(basePath, "auth/dev/login")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !strings.HasPrefix(req.URL.Path, basePath) {
				next.ServeHTTP(w, req)
				return
			}
			if req.URL.Path == healthPath || req.URL.Path == devLoginPath {
				next.ServeHTTP(w, req)
				return
			}
			authz := strings.TrimSpace(req.Header.Get("Authorization"))
			if authz == "" {
				respondStatusError(w, newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required"))
				return
			}
			token, ok := bearerToken(authz)
			if !ok {
				respondStatusError(w, newAPIError(http.StatusUnauthorized, "invalid_credentials", "invalid credentials"))
				return
			}
			p, err := authenticate(token, secret)
			if err != nil {
				respondStatusError(w, newAPIError(http.StatusUnauthorized, "invalid_credentials", "invalid credentials"))
				return
			}
			next.ServeHTTP(w, req.WithContext(withPrincipal(req.Context(), p)))
		})
	}
}

func respondStatusError(w http.ResponseWriter, err huma.StatusError) {
	status := http.StatusInternalServerError
	if e, ok := err.(interface{ GetStatus() int }); ok {
		status = e.GetStatus()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(err)
}

// actorProfile resolves the authenticated account to its profile. Every
// mutating operation runs as a profile, so no profile means 404 with the
// profile_not_found code the client maps onto its own taxonomy.
func actorProfile(ctx context.Context, st *store) (domain.Profile, huma.StatusError) {
	p, ok := principalFromContext(ctx)
	if !ok {
		return domain.Profile{}, newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	prof, err := st.profileByAccount(p.AccountID)
	if err != nil {
		return domain.Profile{}, handleError(err)
	}
	return prof, nil
}

// requireActor resolves the acting profile and, when the request body names
// an actor explicitly, insists the two agree.
func requireActor(ctx context.Context, st *store, claimed int64) (int64, huma.StatusError) {
	prof, serr := actorProfile(ctx, st)
	if serr != nil {
		return 0, serr
	}
	if claimed != 0 && claimed != prof.ID {
		return 0, newAPIError(http.StatusForbidden, "forbidden", "acting profile does not match the authenticated account")
	}
	return prof.ID, nil
}

func registerDevAuth(api huma.API, st *store, secret string) {
	type devLoginRequest struct {
		AccountID string `json:"account_id" minLength:"1"`
		Name      string `json:"name,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "dev-login",
		Method:      http.MethodPost,
		Path:        "/auth/dev/login",
		Summary:     "Mint a development bearer token",
	}, func(ctx context.Context, input *struct {
		Body devLoginRequest `json:"body"`
	}) (*struct {
		Body struct {
			Token string `json:"token"`
		} `json:"body"`
	}, error) {
		if strings.TrimSpace(input.Body.AccountID) == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "account_id is required")
		}
		token, err := mintToken(input.Body.AccountID, secret, time.Now())
		if err != nil {
			return nil, newAPIError(http.StatusInternalServerError, "internal_error", "could not mint token")
		}
		// Provisioning on login is a sandbox convenience: a name creates the
		// profile when the account has none yet.
		if input.Body.Name != "" {
			if _, err := st.profileByAccount(input.Body.AccountID); err != nil {
				if _, cerr := st.createProfile(input.Body.AccountID, input.Body.Name, "", "", "", ""); cerr != nil {
					return nil, handleError(cerr)
				}
			}
		}
		out := &struct {
			Body struct {
				Token string `json:"token"`
			} `json:"body"`
		}{}
		out.Body.Token = token
		return out, nil
	})
}
