package profile

import (
	"context"
	"errors"

	"pitchline/internal/api"
	"pitchline/internal/domain"
	"pitchline/internal/session"
)

// Resolver maps the authenticated account to its domain profile. A profile
// must exist before any post or application can be attributed to a person;
// resolution is lazy and cached on the session so repeated calls are free.
type Resolver struct {
	API     *api.Client
	Session *session.Store

	cached *domain.Profile
}

func New(client *api.Client, store *session.Store) *Resolver {
	return &Resolver{API: client, Session: store}
}

// Resolve returns the profile for the session's account. When no profile
// exists it reports domain.ErrProfileNotFound; callers that need a profile
// to proceed must treat that as a hard precondition failure, never as a
// cue to fall back to a placeholder identity.
func (r *Resolver) Resolve(ctx context.Context) (domain.Profile, error) {
	if r.cached != nil {
		return *r.cached, nil
	}
	if r.Session != nil {
		if p, ok, err := r.Session.Profile(ctx); err == nil && ok {
			r.cached = &p
			return p, nil
		}
	}
	accountID, err := r.accountID(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	p, err := r.API.GetProfileByAccount(ctx, accountID)
	if err != nil {
		if isProfileMissing(err) {
			return domain.Profile{}, domain.ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	r.remember(ctx, p)
	return p, nil
}

// Provision creates the profile through the explicit creation flow and
// caches the result. The account id is filled in from the session.
func (r *Resolver) Provision(ctx context.Context, req api.CreateProfileRequest) (domain.Profile, error) {
	accountID, err := r.accountID(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	req.AccountID = accountID
	p, err := r.API.CreateProfile(ctx, req)
	if err != nil {
		return domain.Profile{}, err
	}
	r.remember(ctx, p)
	return p, nil
}

// Update edits the owning account's profile and refreshes the cache.
func (r *Resolver) Update(ctx context.Context, req api.UpdateProfileRequest) (domain.Profile, error) {
	current, err := r.Resolve(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	p, err := r.API.UpdateProfile(ctx, current.ID, req)
	if err != nil {
		return domain.Profile{}, err
	}
	r.remember(ctx, p)
	return p, nil
}

// Invalidate drops the cached mapping, forcing the next Resolve to hit the
// store.
func (r *Resolver) Invalidate(ctx context.Context) {
	r.cached = nil
	if r.Session != nil {
		_ = r.Session.ClearProfile(ctx)
	}
}

func (r *Resolver) remember(ctx context.Context, p domain.Profile) {
	r.cached = &p
	if r.Session != nil {
		_ = r.Session.SaveProfile(ctx, p)
	}
}

func (r *Resolver) accountID(ctx context.Context) (string, error) {
	if r.Session == nil {
		return "", session.ErrNoSession
	}
	_, accountID, err := r.Session.Token(ctx)
	if err != nil {
		return "", err
	}
	return accountID, nil
}

// isProfileMissing treats both the dedicated envelope code and a plain 404
// as "no profile yet"; servers other than the sandbox may return either.
func isProfileMissing(err error) bool {
	if errors.Is(err, domain.ErrProfileNotFound) || errors.Is(err, domain.ErrNotFound) {
		return true
	}
	var apiErr *api.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
