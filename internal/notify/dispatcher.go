package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pitchline/internal/api"
	"pitchline/internal/domain"
	"pitchline/internal/ledger"
)

// Dispatcher turns ledger events into notifications on the backing store.
// Delivery is best-effort and at most once: a failed create is logged and
// dropped, never surfaced to the operation that emitted the event. A user's
// apply or accept must not look failed because a side channel hiccuped.
type Dispatcher struct {
	API *api.Client
	Log *zap.Logger
}

func NewDispatcher(client *api.Client, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{API: client, Log: log}
}

var _ ledger.Sink = (*Dispatcher)(nil)

// Publish implements ledger.Sink.
func (d *Dispatcher) Publish(ctx context.Context, ev Event) {
	req := api.CreateNotificationRequest{
		ReceiverProfileID: ev.ReceiverProfileID,
		Type:              ev.Type,
		Message:           messageFor(ev),
		RelatedPostID:     ev.PostID,
	}
	if _, err := d.API.CreateNotification(ctx, req); err != nil {
		d.Log.Warn("notification delivery failed",
			zap.String("type", string(ev.Type)),
			zap.Int64("receiver_profile_id", ev.ReceiverProfileID),
			zap.String("post_id", ev.PostID),
			zap.Error(err))
	}
}

// Event aliases the ledger's event type so callers wire the dispatcher
// without importing the ledger package themselves.
type Event = ledger.Event

func messageFor(ev Event) string {
	switch ev.Type {
	case domain.NotificationApplicationReceived:
		return fmt.Sprintf("New application for %q", ev.PostTitle)
	case domain.NotificationApplicationAccepted:
		return fmt.Sprintf("Your application for %q was accepted", ev.PostTitle)
	case domain.NotificationApplicationRejected:
		return fmt.Sprintf("Your application for %q was not accepted", ev.PostTitle)
	}
	return fmt.Sprintf("Update on %q", ev.PostTitle)
}

// Mailbox reads for the receiving profile.

// List returns the profile's notifications.
func (d *Dispatcher) List(ctx context.Context, profileID int64) ([]domain.Notification, error) {
	return d.API.ListNotifications(ctx, profileID)
}

// MarkRead flags a notification read; only the receiver may do this, which
// the store enforces.
func (d *Dispatcher) MarkRead(ctx context.Context, id string) (domain.Notification, error) {
	return d.API.MarkNotificationRead(ctx, id)
}

// Delete removes a notification.
func (d *Dispatcher) Delete(ctx context.Context, id string) error {
	return d.API.DeleteNotification(ctx, id)
}
