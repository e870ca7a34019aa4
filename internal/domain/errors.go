package domain

import "errors"

// Lifecycle failure taxonomy. The API client maps server error codes onto
// these sentinels so callers can branch with errors.Is while the
// server-supplied message stays available for display.
var (
	ErrProfileNotFound   = errors.New("no profile exists for this account")
	ErrPostNotRecruiting = errors.New("post is no longer recruiting")
	ErrAlreadyApplied    = errors.New("an application for this post is already pending")
	ErrInvalidTransition = errors.New("application is not in a state that allows this transition")
	ErrForbidden         = errors.New("acting profile is not permitted to perform this operation")
	ErrNotFound          = errors.New("not found")
)
