package sandbox

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pitchline/internal/domain"
)

// store is the sandbox's in-memory state. One mutex guards everything, so
// the duplicate check on application create and the count-and-close step on
// accept are atomic, the way the production store is expected to behave.
type store struct {
	mu sync.Mutex

	nextProfileID int64
	profiles      map[int64]domain.Profile
	byAccount     map[string]int64
	posts         map[string]domain.RecruitPost
	postOrder     []string
	applications  map[string]domain.Application
	appOrder      []string
	notifications map[string]domain.Notification
	notifOrder    []string

	now func() time.Time
}

func newStore() *store {
	return &store{
		profiles:      make(map[int64]domain.Profile),
		byAccount:     make(map[string]int64),
		posts:         make(map[string]domain.RecruitPost),
		applications:  make(map[string]domain.Application),
		notifications: make(map[string]domain.Notification),
		now:           time.Now,
	}
}

// storeError distinguishes lifecycle failures so the HTTP layer can map
// them onto envelope codes.
type storeError struct {
	code    string
	message string
}

func (e *storeError) Error() string { return e.message }

func errNotFound(what, id string) *storeError {
	return &storeError{code: "not_found", message: fmt.Sprintf("%s %s not found", what, id)}
}

func errForbidden(msg string) *storeError {
	return &storeError{code: "forbidden", message: msg}
}

func (s *store) createProfile(accountID, name, region, subRegion, position, contact string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byAccount[accountID]; exists {
		return domain.Profile{}, &storeError{code: "conflict", message: "a profile already exists for this account"}
	}
	s.nextProfileID++
	p := domain.Profile{
		ID:        s.nextProfileID,
		AccountID: accountID,
		Name:      name,
		Region:    region,
		SubRegion: subRegion,
		Position:  position,
		Contact:   contact,
		CreatedAt: s.now().UTC(),
	}
	s.profiles[p.ID] = p
	s.byAccount[accountID] = p.ID
	return p, nil
}

func (s *store) profileByAccount(accountID string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byAccount[accountID]
	if !ok {
		return domain.Profile{}, &storeError{code: "profile_not_found", message: "no profile for account " + accountID}
	}
	return s.profiles[id], nil
}

func (s *store) profileByID(id int64) (domain.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	return p, ok
}

func (s *store) updateProfile(id int64, actor int64, apply func(*domain.Profile)) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return domain.Profile{}, errNotFound("profile", fmt.Sprint(id))
	}
	if actor != id {
		return domain.Profile{}, errForbidden("only the owning account may update a profile")
	}
	apply(&p)
	s.profiles[id] = p
	return p, nil
}

func (s *store) createPost(p domain.RecruitPost) domain.RecruitPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	p.Status = domain.PostRecruiting
	p.AcceptedCount = 0
	p.CreatedAt = s.now().UTC()
	s.posts[p.ID] = p
	s.postOrder = append(s.postOrder, p.ID)
	return p
}

func (s *store) listPosts(category domain.Category, page, size int) []domain.RecruitPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []domain.RecruitPost
	for _, id := range s.postOrder {
		p := s.posts[id]
		if category == "" || p.Category == category {
			all = append(all, p)
		}
	}
	if size <= 0 {
		return all
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(all) {
		return nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func (s *store) getPost(id string) (domain.RecruitPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return domain.RecruitPost{}, errNotFound("post", id)
	}
	return p, nil
}

func (s *store) updatePost(id string, actor int64, status *domain.PostStatus, apply func(*domain.RecruitPost)) (domain.RecruitPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return domain.RecruitPost{}, errNotFound("post", id)
	}
	if p.OwnerProfileID != actor {
		return domain.RecruitPost{}, errForbidden("only the post owner may edit it")
	}
	if status != nil && *status != p.Status {
		if !p.Status.CanTransition(*status) {
			return domain.RecruitPost{}, &storeError{
				code:    "invalid_transition",
				message: fmt.Sprintf("post cannot move from %s to %s", p.Status, *status),
			}
		}
		p.Status = *status
	}
	if apply != nil {
		apply(&p)
	}
	s.posts[id] = p
	return p, nil
}

func (s *store) deletePost(id string, actor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return errNotFound("post", id)
	}
	if p.OwnerProfileID != actor {
		return errForbidden("only the post owner may delete it")
	}
	delete(s.posts, id)
	for i, pid := range s.postOrder {
		if pid == id {
			s.postOrder = append(s.postOrder[:i], s.postOrder[i+1:]...)
			break
		}
	}
	return nil
}

// createApplication runs the duplicate guard and the recruiting check under
// the store lock, so two submissions cannot both pass.
func (s *store) createApplication(postID string, applicant int64, message string) (domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return domain.Application{}, errNotFound("post", postID)
	}
	if post.Status != domain.PostRecruiting {
		return domain.Application{}, &storeError{code: "post_not_recruiting", message: "post is no longer recruiting"}
	}
	if _, ok := s.profiles[applicant]; !ok {
		return domain.Application{}, errNotFound("profile", fmt.Sprint(applicant))
	}
	for _, id := range s.appOrder {
		a := s.applications[id]
		if a.PostID == postID && a.ApplicantProfileID == applicant && a.Status == domain.ApplicationPending {
			return domain.Application{}, &storeError{code: "already_applied", message: "an application for this post is already pending"}
		}
	}
	app := domain.Application{
		ID:                 uuid.NewString(),
		PostID:             postID,
		ApplicantProfileID: applicant,
		Message:            message,
		Status:             domain.ApplicationPending,
		CreatedAt:          s.now().UTC(),
	}
	s.applications[app.ID] = app
	s.appOrder = append(s.appOrder, app.ID)
	return app, nil
}

// updateApplicationStatus applies one lifecycle transition. Accept and
// reject are owner-driven, cancel is applicant-driven, and terminal states
// absorb. Accepting bumps the post's accepted count and closes the post
// when it reaches required personnel, all under the same lock.
func (s *store) updateApplicationStatus(postID, applicationID string, next domain.ApplicationStatus, actor int64) (domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[applicationID]
	if !ok || app.PostID != postID {
		return domain.Application{}, errNotFound("application", applicationID)
	}
	post, ok := s.posts[postID]
	if !ok {
		return domain.Application{}, errNotFound("post", postID)
	}
	switch next {
	case domain.ApplicationAccepted, domain.ApplicationRejected:
		if post.OwnerProfileID != actor {
			return domain.Application{}, errForbidden("only the post owner may accept or reject")
		}
	case domain.ApplicationCancelled:
		if app.ApplicantProfileID != actor {
			return domain.Application{}, errForbidden("only the applicant may cancel")
		}
	default:
		return domain.Application{}, &storeError{code: "bad_request", message: fmt.Sprintf("unsupported status %s", next)}
	}
	if app.Status != domain.ApplicationPending {
		return domain.Application{}, &storeError{
			code:    "invalid_transition",
			message: fmt.Sprintf("application is %s and cannot move to %s", app.Status, next),
		}
	}
	app.Status = next
	s.applications[app.ID] = app
	if next == domain.ApplicationAccepted {
		post.AcceptedCount++
		if post.Full() {
			post.Status = domain.PostCompleted
		}
		s.posts[post.ID] = post
	}
	return app, nil
}

func (s *store) listApplications(profileID int64, received bool) []domain.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Application
	for _, id := range s.appOrder {
		a := s.applications[id]
		if received {
			if p, ok := s.posts[a.PostID]; ok && p.OwnerProfileID == profileID {
				out = append(out, a)
			}
		} else if a.ApplicantProfileID == profileID {
			out = append(out, a)
		}
	}
	return out
}

func (s *store) createNotification(n domain.Notification) (domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[n.ReceiverProfileID]; !ok {
		return domain.Notification{}, errNotFound("profile", fmt.Sprint(n.ReceiverProfileID))
	}
	n.ID = uuid.NewString()
	n.Read = false
	n.CreatedAt = s.now().UTC()
	s.notifications[n.ID] = n
	s.notifOrder = append(s.notifOrder, n.ID)
	return n, nil
}

func (s *store) listNotifications(profileID int64) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for i := len(s.notifOrder) - 1; i >= 0; i-- {
		n := s.notifications[s.notifOrder[i]]
		if n.ReceiverProfileID == profileID {
			out = append(out, n)
		}
	}
	return out
}

func (s *store) markNotificationRead(id string, actor int64) (domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return domain.Notification{}, errNotFound("notification", id)
	}
	if n.ReceiverProfileID != actor {
		return domain.Notification{}, errForbidden("only the receiver may mark a notification read")
	}
	n.Read = true
	s.notifications[id] = n
	return n, nil
}

func (s *store) deleteNotification(id string, actor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return errNotFound("notification", id)
	}
	if n.ReceiverProfileID != actor {
		return errForbidden("only the receiver may delete a notification")
	}
	delete(s.notifications, id)
	for i, nid := range s.notifOrder {
		if nid == id {
			s.notifOrder = append(s.notifOrder[:i], s.notifOrder[i+1:]...)
			break
		}
	}
	return nil
}
