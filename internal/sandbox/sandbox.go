// Package sandbox hosts an in-memory stand-in for the backing store's HTTP
// API. It exists for local development and for exercising the client end to
// end; it enforces the same lifecycle rules the production store does, so
// anything that passes against the sandbox speaks the real contract.
package sandbox

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Config for the sandbox handler.
type Config struct {
	// Secret signs and verifies bearer tokens. Empty falls back to a fixed
	// dev secret; the sandbox is never a production surface.
	Secret   string
	BasePath string
	Log      *zap.Logger
}

type apiErrorBody struct {
	Code    string `json:"code" example:"already_applied"`
	Message string `json:"message" example:"an application for this post is already pending"`
}

// apiError models the error envelope every non-2xx response carries.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the sandbox API.
func New(cfg Config) http.Handler {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	secret := cfg.Secret
	if secret == "" {
		secret = "pitchline-sandbox-dev"
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		return newAPIError(status, "", msg)
	}

	st := newStore()

	router := chi.NewRouter()
	router.Use(requestLogger(log))
	router.Use(newAuthMiddleware(basePath, secret))
	hcfg := huma.DefaultConfig("Pitchline Sandbox API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerDevAuth(group, st, secret)
	registerProfiles(group, st)
	registerRecruitPosts(group, st)
	registerApplications(group, st)
	registerNotifications(group, st)

	return router
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}

func newAPIError(status int, code, message string) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body:   apiErrorBody{Code: code, Message: message},
	}
}

// handleError maps a store failure onto the envelope. Unknown errors become
// opaque 500s rather than leaking internals.
func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var se *storeError
	if !asStoreError(err, &se) {
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error")
	}
	return newAPIError(statusForCode(se.code), se.code, se.message)
}

func asStoreError(err error, target **storeError) bool {
	se, ok := err.(*storeError)
	if ok {
		*target = se
	}
	return ok
}

func statusForCode(code string) int {
	switch code {
	case "not_found", "profile_not_found":
		return http.StatusNotFound
	case "forbidden":
		return http.StatusForbidden
	case "already_applied", "post_not_recruiting", "invalid_transition", "conflict":
		return http.StatusConflict
	case "bad_request":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}
