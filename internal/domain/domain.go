package domain

import "time"

// Category classifies what a recruit post is looking for.
type Category string

const (
	CategoryMercenary Category = "mercenary"
	CategoryTeam      Category = "team"
	CategoryMatch     Category = "match"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryMercenary, CategoryTeam, CategoryMatch:
		return true
	}
	return false
}

// TargetType says whether a post recruits individuals or a whole team.
type TargetType string

const (
	TargetIndividual TargetType = "individual"
	TargetTeam       TargetType = "team"
)

type PostStatus string

const (
	PostRecruiting PostStatus = "RECRUITING"
	PostCompleted  PostStatus = "COMPLETED"
	PostCancelled  PostStatus = "CANCELLED"
)

// CanTransition reports whether a post may move from s to next.
// COMPLETED and CANCELLED are terminal; transitions are never reversed.
func (s PostStatus) CanTransition(next PostStatus) bool {
	if s != PostRecruiting {
		return false
	}
	return next == PostCompleted || next == PostCancelled
}

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "PENDING"
	ApplicationAccepted  ApplicationStatus = "ACCEPTED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
	ApplicationCancelled ApplicationStatus = "CANCELLED"
)

// Terminal reports whether no further transition is permitted out of s.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected || s == ApplicationCancelled
}

type NotificationType string

const (
	NotificationApplicationReceived NotificationType = "APPLICATION_RECEIVED"
	NotificationApplicationAccepted NotificationType = "APPLICATION_ACCEPTED"
	NotificationApplicationRejected NotificationType = "APPLICATION_REJECTED"
)

// Profile is a person's domain identity, distinct from the account they
// log in with. Exactly one profile exists per account.
type Profile struct {
	ID        int64     `json:"id"`
	AccountID string    `json:"account_id"`
	Name      string    `json:"name"`
	Region    string    `json:"region,omitempty"`
	SubRegion string    `json:"sub_region,omitempty"`
	Position  string    `json:"position,omitempty"`
	Contact   string    `json:"contact,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RecruitPost is a published request to fill or join a roster.
type RecruitPost struct {
	ID                string     `json:"id"`
	Category          Category   `json:"category"`
	TargetType        TargetType `json:"target_type"`
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	Region            string     `json:"region"`
	SubRegion         string     `json:"sub_region,omitempty"`
	MatchAt           *time.Time `json:"match_at,omitempty"`
	RequiredPersonnel int        `json:"required_personnel,omitempty"`
	Status            PostStatus `json:"status"`
	OwnerProfileID    int64      `json:"owner_profile_id"`
	AcceptedCount     int        `json:"accepted_count"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Full reports whether the post has a personnel cap and has reached it.
func (p RecruitPost) Full() bool {
	return p.RequiredPersonnel > 0 && p.AcceptedCount >= p.RequiredPersonnel
}

// Application is a profile's request to join a specific recruit post.
type Application struct {
	ID                 string            `json:"id"`
	PostID             string            `json:"post_id"`
	ApplicantProfileID int64             `json:"applicant_profile_id"`
	Message            string            `json:"message,omitempty"`
	Status             ApplicationStatus `json:"status"`
	CreatedAt          time.Time         `json:"created_at"`
}

// Notification is a one-way message to a receiving profile about an
// application state change. Only the receiver may mark it read or delete it.
type Notification struct {
	ID                string           `json:"id"`
	ReceiverProfileID int64            `json:"receiver_profile_id"`
	Type              NotificationType `json:"type"`
	Message           string           `json:"message"`
	RelatedPostID     string           `json:"related_post_id,omitempty"`
	Read              bool             `json:"read"`
	CreatedAt         time.Time        `json:"created_at"`
}
