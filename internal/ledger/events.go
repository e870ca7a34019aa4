package ledger

import (
	"context"

	"pitchline/internal/domain"
)

// Event describes an application state change worth telling someone about.
// The ledger emits these as a side channel of a committed transition; the
// transition itself is the source of truth and an event is only an
// advisory echo of it.
type Event struct {
	Type              domain.NotificationType
	ReceiverProfileID int64
	PostID            string
	PostTitle         string
	ApplicationID     string
}

// Sink consumes lifecycle events. Implementations own their delivery
// guarantees; the ledger never observes or depends on the outcome, so a
// sink failure can never unwind the transition that produced the event.
type Sink interface {
	Publish(ctx context.Context, ev Event)
}

func (l *Ledger) emit(ctx context.Context, ev Event) {
	if l.Sink == nil {
		return
	}
	l.Sink.Publish(ctx, ev)
}
