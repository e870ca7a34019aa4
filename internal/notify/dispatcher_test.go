package notify

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"pitchline/internal/api"
	"pitchline/internal/domain"
	"pitchline/internal/ledger"
	"pitchline/internal/sandbox"
)

func newStoreServer(t *testing.T) string {
	t.Helper()
	handler := sandbox.New(sandbox.Config{})
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		ln.Close()
	})
	return "http://" + ln.Addr().String() + "/v0"
}

func login(t *testing.T, baseURL, account, name string) (*api.Client, domain.Profile) {
	t.Helper()
	ctx := context.Background()
	client := api.New(baseURL)
	token, err := client.DevLogin(ctx, account, name)
	if err != nil {
		t.Fatalf("dev login %s: %v", account, err)
	}
	client.BearerToken = token
	prof, err := client.GetProfileByAccount(ctx, account)
	if err != nil {
		t.Fatalf("resolve profile %s: %v", account, err)
	}
	return client, prof
}

func TestPublishDeliversToMailbox(t *testing.T) {
	base := newStoreServer(t)
	ownerClient, owner := login(t, base, "owner", "Owner")
	applicantClient, _ := login(t, base, "applicant", "Applicant")

	ctx := context.Background()
	d := NewDispatcher(applicantClient, nil)
	d.Publish(ctx, Event{
		Type:              domain.NotificationApplicationReceived,
		ReceiverProfileID: owner.ID,
		PostID:            "p-1",
		PostTitle:         "Sunday five-a-side",
	})

	mailbox := NewDispatcher(ownerClient, nil)
	ns, err := mailbox.List(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ns) != 1 {
		t.Fatalf("notifications = %d, want 1", len(ns))
	}
	n := ns[0]
	if n.Type != domain.NotificationApplicationReceived || n.Read {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if n.Message != `New application for "Sunday five-a-side"` {
		t.Fatalf("message = %q", n.Message)
	}

	read, err := mailbox.MarkRead(ctx, n.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !read.Read {
		t.Fatal("notification not marked read")
	}
	if err := mailbox.Delete(ctx, n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ns, err = mailbox.List(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(ns) != 0 {
		t.Fatalf("notifications after delete = %d, want 0", len(ns))
	}
}

// Publish must swallow delivery failures entirely; an unreachable store may
// not surface to the operation that emitted the event.
func TestPublishFailureIsSwallowed(t *testing.T) {
	dead := api.New("http://127.0.0.1:1/v0")
	dead.Timeout = 100 * time.Millisecond
	d := NewDispatcher(dead, nil)
	d.Publish(context.Background(), Event{
		Type:              domain.NotificationApplicationAccepted,
		ReceiverProfileID: 1,
		PostID:            "p-1",
		PostTitle:         "gone",
	})
}

// A dispatcher whose store is unreachable must not fail the lifecycle
// operation that emitted the event.
func TestSubmitSucceedsWhenDeliveryFails(t *testing.T) {
	base := newStoreServer(t)
	ownerClient, owner := login(t, base, "owner", "Owner")
	applicantClient, applicant := login(t, base, "applicant", "Applicant")

	ctx := context.Background()
	post, err := ownerClient.CreateRecruitPost(ctx, api.CreateRecruitPostRequest{
		OwnerProfileID: owner.ID,
		Category:       domain.CategoryMercenary,
		TargetType:     domain.TargetIndividual,
		Title:          "Need one more",
		Content:        "tonight",
		Region:         "seoul",
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	dead := api.New("http://127.0.0.1:1/v0")
	dead.Timeout = 100 * time.Millisecond
	l := ledger.New(applicantClient, NewDispatcher(dead, nil))
	app, err := l.Submit(ctx, post.ID, applicant.ID, "")
	if err != nil {
		t.Fatalf("submit with dead dispatcher: %v", err)
	}
	if app.Status != domain.ApplicationPending {
		t.Fatalf("status = %s, want PENDING", app.Status)
	}
}

func TestMessageFor(t *testing.T) {
	cases := []struct {
		typ  domain.NotificationType
		want string
	}{
		{domain.NotificationApplicationReceived, `New application for "Derby"`},
		{domain.NotificationApplicationAccepted, `Your application for "Derby" was accepted`},
		{domain.NotificationApplicationRejected, `Your application for "Derby" was not accepted`},
	}
	for _, tc := range cases {
		got := messageFor(Event{Type: tc.typ, PostTitle: "Derby"})
		if got != tc.want {
			t.Fatalf("messageFor(%s) = %q, want %q", tc.typ, got, tc.want)
		}
	}
}
