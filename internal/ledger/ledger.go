package ledger

import (
	"context"
	"fmt"

	"pitchline/internal/api"
	"pitchline/internal/domain"
)

// Ledger tracks the session profile's applications, sent and received, and
// drives their lifecycle: submit, accept, reject, cancel. Every check here
// is advisory from the store's point of view; the store applies the same
// rules atomically and is the authority across sessions. The client-side
// guard exists to stop a single user double-submitting, not to win races
// against other users.
type Ledger struct {
	API  *api.Client
	Sink Sink

	sent     []domain.Application
	received []domain.Application
}

func New(client *api.Client, sink Sink) *Ledger {
	return &Ledger{API: client, Sink: sink}
}

// Submit creates an application by applicant against a post. The post must
// still be RECRUITING, and the duplicate guard must find no PENDING
// application by this applicant on this post. Both checks run against
// freshly loaded state, not the session cache, to keep the race window as
// small as a client can make it.
//
// The guard deliberately keys on PENDING alone: a CANCELLED application
// frees the applicant to reapply, and an ACCEPTED one does not block a new
// submission. On success an APPLICATION_RECEIVED event is emitted for the
// post's owner.
func (l *Ledger) Submit(ctx context.Context, postID string, applicantProfileID int64, message string) (domain.Application, error) {
	post, err := l.API.GetRecruitPost(ctx, postID)
	if err != nil {
		return domain.Application{}, err
	}
	if post.Status != domain.PostRecruiting {
		return domain.Application{}, fmt.Errorf("post %s: %w", postID, domain.ErrPostNotRecruiting)
	}
	if err := l.refreshSent(ctx, applicantProfileID); err != nil {
		return domain.Application{}, err
	}
	if hasActive(l.sent, postID) {
		return domain.Application{}, fmt.Errorf("post %s: %w", postID, domain.ErrAlreadyApplied)
	}
	app, err := l.API.CreateApplication(ctx, postID, api.CreateApplicationRequest{
		ApplicantProfileID: applicantProfileID,
		Message:            message,
	})
	if err != nil {
		return domain.Application{}, err
	}
	l.sent = append(l.sent, app)
	l.emit(ctx, Event{
		Type:              domain.NotificationApplicationReceived,
		ReceiverProfileID: post.OwnerProfileID,
		PostID:            post.ID,
		PostTitle:         post.Title,
		ApplicationID:     app.ID,
	})
	return app, nil
}

// Accept moves a PENDING application to ACCEPTED. Only the post's owner may
// accept. The store increments the post's accepted count and closes the
// post when the count reaches required personnel; callers reload the post
// or directory afterwards to observe that. An APPLICATION_ACCEPTED event is
// emitted for the applicant.
func (l *Ledger) Accept(ctx context.Context, applicationID, postID string, actorProfileID int64) error {
	post, app, err := l.ownedPending(ctx, applicationID, postID, actorProfileID)
	if err != nil {
		return err
	}
	updated, err := l.API.UpdateApplicationStatus(ctx, postID, applicationID, api.UpdateApplicationStatusRequest{
		Status:         domain.ApplicationAccepted,
		ActorProfileID: actorProfileID,
	})
	if err != nil {
		return err
	}
	l.patchReceived(updated)
	l.emit(ctx, Event{
		Type:              domain.NotificationApplicationAccepted,
		ReceiverProfileID: app.ApplicantProfileID,
		PostID:            post.ID,
		PostTitle:         post.Title,
		ApplicationID:     app.ID,
	})
	return nil
}

// Reject moves a PENDING application to REJECTED. It never touches the
// post's accepted count or status. An APPLICATION_REJECTED event is emitted
// for the applicant.
func (l *Ledger) Reject(ctx context.Context, applicationID, postID string, actorProfileID int64) error {
	post, app, err := l.ownedPending(ctx, applicationID, postID, actorProfileID)
	if err != nil {
		return err
	}
	updated, err := l.API.UpdateApplicationStatus(ctx, postID, applicationID, api.UpdateApplicationStatusRequest{
		Status:         domain.ApplicationRejected,
		ActorProfileID: actorProfileID,
	})
	if err != nil {
		return err
	}
	l.patchReceived(updated)
	l.emit(ctx, Event{
		Type:              domain.NotificationApplicationRejected,
		ReceiverProfileID: app.ApplicantProfileID,
		PostID:            post.ID,
		PostTitle:         post.Title,
		ApplicationID:     app.ID,
	})
	return nil
}

// Cancel withdraws a PENDING application. Only the applicant may cancel,
// and cancellation emits no event.
func (l *Ledger) Cancel(ctx context.Context, applicationID, postID string, actorProfileID int64) error {
	if err := l.refreshSent(ctx, actorProfileID); err != nil {
		return err
	}
	app, ok := findApplication(l.sent, applicationID, postID)
	if !ok {
		return fmt.Errorf("application %s: %w", applicationID, domain.ErrNotFound)
	}
	if app.ApplicantProfileID != actorProfileID {
		return fmt.Errorf("application %s: %w", applicationID, domain.ErrForbidden)
	}
	if app.Status != domain.ApplicationPending {
		return fmt.Errorf("application %s is %s: %w", applicationID, app.Status, domain.ErrInvalidTransition)
	}
	updated, err := l.API.UpdateApplicationStatus(ctx, postID, applicationID, api.UpdateApplicationStatusRequest{
		Status:         domain.ApplicationCancelled,
		ActorProfileID: actorProfileID,
	})
	if err != nil {
		return err
	}
	l.patchSent(updated)
	return nil
}

// ListMine returns the applications the profile has sent, freshly loaded.
func (l *Ledger) ListMine(ctx context.Context, profileID int64) ([]domain.Application, error) {
	if err := l.refreshSent(ctx, profileID); err != nil {
		return nil, err
	}
	out := make([]domain.Application, len(l.sent))
	copy(out, l.sent)
	return out, nil
}

// ListReceived returns the applications against the profile's posts,
// freshly loaded.
func (l *Ledger) ListReceived(ctx context.Context, profileID int64) ([]domain.Application, error) {
	if err := l.refreshReceived(ctx, profileID); err != nil {
		return nil, err
	}
	out := make([]domain.Application, len(l.received))
	copy(out, l.received)
	return out, nil
}

// HasActiveApplication reports whether the profile holds a PENDING
// application on the post, checked against a fresh listing.
func (l *Ledger) HasActiveApplication(ctx context.Context, profileID int64, postID string) (bool, error) {
	if err := l.refreshSent(ctx, profileID); err != nil {
		return false, err
	}
	return hasActive(l.sent, postID), nil
}

// ownedPending loads the post and the application fresh, then verifies the
// owner-driven transition preconditions shared by Accept and Reject.
func (l *Ledger) ownedPending(ctx context.Context, applicationID, postID string, actorProfileID int64) (domain.RecruitPost, domain.Application, error) {
	post, err := l.API.GetRecruitPost(ctx, postID)
	if err != nil {
		return domain.RecruitPost{}, domain.Application{}, err
	}
	if post.OwnerProfileID != actorProfileID {
		return domain.RecruitPost{}, domain.Application{}, fmt.Errorf("post %s: %w", postID, domain.ErrForbidden)
	}
	if err := l.refreshReceived(ctx, actorProfileID); err != nil {
		return domain.RecruitPost{}, domain.Application{}, err
	}
	app, ok := findApplication(l.received, applicationID, postID)
	if !ok {
		return domain.RecruitPost{}, domain.Application{}, fmt.Errorf("application %s: %w", applicationID, domain.ErrNotFound)
	}
	if app.Status != domain.ApplicationPending {
		return domain.RecruitPost{}, domain.Application{}, fmt.Errorf("application %s is %s: %w", applicationID, app.Status, domain.ErrInvalidTransition)
	}
	return post, app, nil
}

func (l *Ledger) refreshSent(ctx context.Context, profileID int64) error {
	items, err := l.API.ListApplications(ctx, profileID, api.RoleSent)
	if err != nil {
		return err
	}
	l.sent = items
	return nil
}

func (l *Ledger) refreshReceived(ctx context.Context, profileID int64) error {
	items, err := l.API.ListApplications(ctx, profileID, api.RoleReceived)
	if err != nil {
		return err
	}
	l.received = items
	return nil
}

func (l *Ledger) patchSent(app domain.Application) {
	for i := range l.sent {
		if l.sent[i].ID == app.ID {
			l.sent[i] = app
			return
		}
	}
}

func (l *Ledger) patchReceived(app domain.Application) {
	for i := range l.received {
		if l.received[i].ID == app.ID {
			l.received[i] = app
			return
		}
	}
}

func hasActive(apps []domain.Application, postID string) bool {
	for _, a := range apps {
		if a.PostID == postID && a.Status == domain.ApplicationPending {
			return true
		}
	}
	return false
}

func findApplication(apps []domain.Application, applicationID, postID string) (domain.Application, bool) {
	for _, a := range apps {
		if a.ID == applicationID && a.PostID == postID {
			return a, true
		}
	}
	return domain.Application{}, false
}
