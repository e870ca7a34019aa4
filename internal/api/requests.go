package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"pitchline/internal/domain"
)

// Request payloads. Each struct is the explicit wire shape for one store
// operation; required-field presence is enforced here, before any network
// round trip, so a guaranteed-failing request never leaves the client.

var validate = validator.New()

type CreateRecruitPostRequest struct {
	OwnerProfileID    int64             `json:"owner_profile_id" validate:"required,gt=0"`
	Category          domain.Category   `json:"category" validate:"required,oneof=mercenary team match"`
	TargetType        domain.TargetType `json:"target_type" validate:"required,oneof=individual team"`
	Title             string            `json:"title" validate:"required,max=100"`
	Content           string            `json:"content" validate:"required,max=2000"`
	Region            string            `json:"region" validate:"required"`
	SubRegion         string            `json:"sub_region,omitempty"`
	MatchAt           *time.Time        `json:"match_at,omitempty"`
	RequiredPersonnel int               `json:"required_personnel,omitempty" validate:"gte=0"`
}

func (r CreateRecruitPostRequest) Validate() error { return check(r) }

// UpdateRecruitPostRequest carries only the fields being changed; nil
// pointers are omitted from the wire body entirely.
type UpdateRecruitPostRequest struct {
	Title             *string            `json:"title,omitempty" validate:"omitempty,max=100"`
	Content           *string            `json:"content,omitempty" validate:"omitempty,max=2000"`
	Region            *string            `json:"region,omitempty"`
	SubRegion         *string            `json:"sub_region,omitempty"`
	MatchAt           *time.Time         `json:"match_at,omitempty"`
	RequiredPersonnel *int               `json:"required_personnel,omitempty" validate:"omitempty,gte=0"`
	Status            *domain.PostStatus `json:"status,omitempty" validate:"omitempty,oneof=RECRUITING COMPLETED CANCELLED"`
}

func (r UpdateRecruitPostRequest) Validate() error { return check(r) }

type CreateApplicationRequest struct {
	ApplicantProfileID int64  `json:"applicant_profile_id" validate:"required,gt=0"`
	Message            string `json:"message,omitempty" validate:"max=500"`
}

func (r CreateApplicationRequest) Validate() error { return check(r) }

type UpdateApplicationStatusRequest struct {
	Status         domain.ApplicationStatus `json:"status" validate:"required,oneof=ACCEPTED REJECTED CANCELLED"`
	ActorProfileID int64                    `json:"actor_profile_id" validate:"required,gt=0"`
}

func (r UpdateApplicationStatusRequest) Validate() error { return check(r) }

type CreateProfileRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	Name      string `json:"name" validate:"required,min=2,max=50"`
	Region    string `json:"region,omitempty"`
	SubRegion string `json:"sub_region,omitempty"`
	Position  string `json:"position,omitempty"`
	Contact   string `json:"contact,omitempty"`
}

func (r CreateProfileRequest) Validate() error { return check(r) }

type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Region    *string `json:"region,omitempty"`
	SubRegion *string `json:"sub_region,omitempty"`
	Position  *string `json:"position,omitempty"`
	Contact   *string `json:"contact,omitempty"`
}

func (r UpdateProfileRequest) Validate() error { return check(r) }

type CreateNotificationRequest struct {
	ReceiverProfileID int64                   `json:"receiver_profile_id" validate:"required,gt=0"`
	Type              domain.NotificationType `json:"type" validate:"required"`
	Message           string                  `json:"message" validate:"required"`
	RelatedPostID     string                  `json:"related_post_id,omitempty"`
}

func (r CreateNotificationRequest) Validate() error { return check(r) }

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", snake(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("invalid request: %s", strings.Join(fields, ", "))
}

func snake(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
