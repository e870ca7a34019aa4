package sandbox

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"pitchline/internal/domain"
)

type itemsBody[T any] struct {
	Items []T `json:"items"`
}

func items[T any](xs []T) itemsBody[T] {
	if xs == nil {
		xs = []T{}
	}
	return itemsBody[T]{Items: xs}
}

func registerProfiles(api huma.API, st *store) {
	type createProfileRequest struct {
		AccountID string `json:"account_id,omitempty"`
		Name      string `json:"name" minLength:"2" maxLength:"50"`
		Region    string `json:"region,omitempty"`
		SubRegion string `json:"sub_region,omitempty"`
		Position  string `json:"position,omitempty"`
		Contact   string `json:"contact,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID:   "create-profile",
		Method:        http.MethodPost,
		Path:          "/profiles",
		Summary:       "Create profile",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		Body createProfileRequest `json:"body"`
	}) (*struct {
		Body domain.Profile `json:"body"`
	}, error) {
		p, ok := principalFromContext(ctx)
		if !ok {
			return nil, newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required")
		}
		if input.Body.AccountID != "" && input.Body.AccountID != p.AccountID {
			return nil, newAPIError(http.StatusForbidden, "forbidden", "account_id does not match the authenticated account")
		}
		prof, err := st.createProfile(p.AccountID, input.Body.Name, input.Body.Region, input.Body.SubRegion, input.Body.Position, input.Body.Contact)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Profile `json:"body"`
		}{Body: prof}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile-by-account",
		Method:      http.MethodGet,
		Path:        "/profiles/by-account/{account_id}",
		Summary:     "Resolve an account to its profile",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		AccountID string `path:"account_id"`
	}) (*struct {
		Body domain.Profile `json:"body"`
	}, error) {
		prof, err := st.profileByAccount(input.AccountID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Profile `json:"body"`
		}{Body: prof}, nil
	})

	type updateProfileRequest struct {
		Name      *string `json:"name,omitempty"`
		Region    *string `json:"region,omitempty"`
		SubRegion *string `json:"sub_region,omitempty"`
		Position  *string `json:"position,omitempty"`
		Contact   *string `json:"contact,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPatch,
		Path:        "/profiles/{id}",
		Summary:     "Update profile",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   int64                `path:"id"`
		Body updateProfileRequest `json:"body"`
	}) (*struct {
		Body domain.Profile `json:"body"`
	}, error) {
		actor, serr := requireActor(ctx, st, 0)
		if serr != nil {
			return nil, serr
		}
		prof, err := st.updateProfile(input.ID, actor, func(p *domain.Profile) {
			if input.Body.Name != nil {
				p.Name = *input.Body.Name
			}
			if input.Body.Region != nil {
				p.Region = *input.Body.Region
			}
			if input.Body.SubRegion != nil {
				p.SubRegion = *input.Body.SubRegion
			}
			if input.Body.Position != nil {
				p.Position = *input.Body.Position
			}
			if input.Body.Contact != nil {
				p.Contact = *input.Body.Contact
			}
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Profile `json:"body"`
		}{Body: prof}, nil
	})
}

func registerRecruitPosts(api huma.API, st *store) {
	type createPostRequest struct {
		OwnerProfileID    int64             `json:"owner_profile_id"`
		Category          domain.Category   `json:"category" enum:"mercenary,team,match"`
		TargetType        domain.TargetType `json:"target_type" enum:"individual,team"`
		Title             string            `json:"title" minLength:"1" maxLength:"100"`
		Content           string            `json:"content" minLength:"1" maxLength:"2000"`
		Region            string            `json:"region" minLength:"1"`
		SubRegion         string            `json:"sub_region,omitempty"`
		MatchAt           *time.Time        `json:"match_at,omitempty"`
		RequiredPersonnel int               `json:"required_personnel,omitempty" minimum:"0"`
	}
	huma.Register(api, huma.Operation{
		OperationID:   "create-recruit-post",
		Method:        http.MethodPost,
		Path:          "/recruit-posts",
		Summary:       "Create recruit post",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body createPostRequest `json:"body"`
	}) (*struct {
		Body domain.RecruitPost `json:"body"`
	}, error) {
		actor, serr := requireActor(ctx, st, input.Body.OwnerProfileID)
		if serr != nil {
			return nil, serr
		}
		post := st.createPost(domain.RecruitPost{
			Category:          input.Body.Category,
			TargetType:        input.Body.TargetType,
			Title:             input.Body.Title,
			Content:           input.Body.Content,
			Region:            input.Body.Region,
			SubRegion:         input.Body.SubRegion,
			MatchAt:           input.Body.MatchAt,
			RequiredPersonnel: input.Body.RequiredPersonnel,
			OwnerProfileID:    actor,
		})
		return &struct {
			Body domain.RecruitPost `json:"body"`
		}{Body: post}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-recruit-posts",
		Method:      http.MethodGet,
		Path:        "/recruit-posts",
		Summary:     "List recruit posts",
	}, func(ctx context.Context, input *struct {
		Category domain.Category `query:"category"`
		Page     int             `query:"page" default:"1"`
		Size     int             `query:"size" default:"20"`
	}) (*struct {
		Body itemsBody[domain.RecruitPost] `json:"body"`
	}, error) {
		if input.Category != "" && !input.Category.Valid() {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "unknown category")
		}
		posts := st.listPosts(input.Category, input.Page, input.Size)
		return &struct {
			Body itemsBody[domain.RecruitPost] `json:"body"`
		}{Body: items(posts)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-recruit-post",
		Method:      http.MethodGet,
		Path:        "/recruit-posts/{id}",
		Summary:     "Get recruit post",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.RecruitPost `json:"body"`
	}, error) {
		post, err := st.getPost(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.RecruitPost `json:"body"`
		}{Body: post}, nil
	})

	type updatePostRequest struct {
		Title             *string            `json:"title,omitempty"`
		Content           *string            `json:"content,omitempty"`
		Region            *string            `json:"region,omitempty"`
		SubRegion         *string            `json:"sub_region,omitempty"`
		MatchAt           *time.Time         `json:"match_at,omitempty"`
		RequiredPersonnel *int               `json:"required_personnel,omitempty"`
		Status            *domain.PostStatus `json:"status,omitempty" enum:"RECRUITING,COMPLETED,CANCELLED"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "update-recruit-post",
		Method:      http.MethodPatch,
		Path:        "/recruit-posts/{id}",
		Summary:     "Update recruit post",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string            `path:"id"`
		Body updatePostRequest `json:"body"`
	}) (*struct {
		Body domain.RecruitPost `json:"body"`
	}, error) {
		actor, serr := requireActor(ctx, st, 0)
		if serr != nil {
			return nil, serr
		}
		post, err := st.updatePost(input.ID, actor, input.Body.Status, func(p *domain.RecruitPost) {
			if input.Body.Title != nil {
				p.Title = *input.Body.Title
			}
			if input.Body.Content != nil {
				p.Content = *input.Body.Content
			}
			if input.Body.Region != nil {
				p.Region = *input.Body.Region
			}
			if input.Body.SubRegion != nil {
				p.SubRegion = *input.Body.SubRegion
			}
			if input.Body.MatchAt != nil {
				p.MatchAt = input.Body.MatchAt
			}
			if input.Body.RequiredPersonnel != nil {
				p.RequiredPersonnel = *input.Body.RequiredPersonnel
			}
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.RecruitPost `json:"body"`
		}{Body: post}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-recruit-post",
		Method:      http.MethodDelete,
		Path:        "/recruit-posts/{id}",
		Summary:     "Delete recruit post",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		actor, serr := requireActor(ctx, st, 0)
		if serr != nil {
			return nil, serr
		}
		if err := st.deletePost(input.ID, actor); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerApplications(api huma.API, st *store) {
	type createApplicationRequest struct {
		ApplicantProfileID int64  `json:"applicant_profile_id"`
		Message            string `json:"message,omitempty" maxLength:"500"`
	}
	huma.Register(api, huma.Operation{
		OperationID:   "create-application",
		Method:        http.MethodPost,
		Path:          "/recruit-posts/{post_id}/applications",
		Summary:       "Apply to a recruit post",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusForbidden, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		PostID string                   `path:"post_id"`
		Body   createApplicationRequest `json:"body"`
	}) (*struct {
		Body domain.Application `json:"body"`
	}, error) {
		actor, serr := requireActor(ctx, st, input.Body.ApplicantProfileID)
		if serr != nil {
			return nil, serr
		}
		app, err := st.createApplication(input.PostID, actor, input.Body.Message)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Application `json:"body"`
		}{Body: app}, nil
	})

	type updateApplicationRequest struct {
		Status         domain.ApplicationStatus `json:"status" enum:"ACCEPTED,REJECTED,CANCELLED"`
		ActorProfileID int64                    `json:"actor_profile_id,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "update-application-status",
		Method:      http.MethodPatch,
		Path:        "/recruit-posts/{post_id}/applications/{id}",
		Summary:     "Move an application through its lifecycle",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		PostID string                   `path:"post_id"`
		ID     string                   `path:"id"`
		Body   updateApplicationRequest `json:"body"`
	}) (*struct {
		Body domain.Application `json:"body"`
	}, error) {
		actor, serr := requireActor(ctx, st, input.Body.ActorProfileID)
		if serr != nil {
			return nil, serr
		}
		app, err := st.updateApplicationStatus(input.PostID, input.ID, input.Body.Status, actor)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Application `json:"body"`
		}{Body: app}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-applications",
		Method:      http.MethodGet,
		Path:        "/profiles/{id}/applications",
		Summary:     "List a profile's applications",
		Errors:      []int{http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		ID   int64  `path:"id"`
		Role string `query:"role" enum:"sent,received" default:"sent"`
	}) (*struct {
		Body itemsBody[domain.Application] `json:"body"`
	}, error) {
		actor, serr := requireActor(ctx, st, 0)
		if serr != nil {
			return nil, serr
		}
		if actor != input.ID {
			return nil, newAPIError(http.StatusForbidden, "forbidden", "applications are visible to their own profile only")
		}
		apps := st.listApplications(input.ID, input.Role == "received")
		return &struct {
			Body itemsBody[domain.Application] `json:"body"`
		}{Body: items(apps)}, nil
	})
}

func registerNotifications(api huma.API, st *store) {
	type createNotificationRequest struct {
		ReceiverProfileID int64                   `json:"receiver_profile_id"`
		Type              domain.NotificationType `json:"type"`
		Message           string                  `json:"message" minLength:"1"`
		RelatedPostID     string                  `json:"related_post_id,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID:   "create-notification",
		Method:        http.MethodPost,
		Path:          "/notifications",
		Summary:       "Deliver a notification",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body createNotificationRequest `json:"body"`
	}) (*struct {
		Body domain.Notification `json:"body"`
	}, error) {
		if _, ok := principalFromContext(ctx); !ok {
			return nil, newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required")
		}
		n, err := st.createNotification(domain.Notification{
			ReceiverProfileID: input.Body.ReceiverProfileID,
			Type:              input.Body.Type,
			Message:           input.Body.Message,
			RelatedPostID:     input.Body.RelatedPostID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Notification `json:"body"`
		}{Body: n}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-notifications",
		Method:      http.MethodGet,
		Path:        "/profiles/{id}/notifications",
		Summary:     "List a profile's notifications",
		Errors:      []int{http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body itemsBody[domain.Notification] `json:"body"`
	}, error) {
		actor, serr := requireActor(ctx, st, 0)
		if serr != nil {
			return nil, serr
		}
		if actor != input.ID {
			return nil, newAPIError(http.StatusForbidden, "forbidden", "notifications are visible to their receiver only")
		}
		ns := st.listNotifications(input.ID)
		return &struct {
			Body itemsBody[domain.Notification] `json:"body"`
		}{Body: items(ns)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "read-notification",
		Method:      http.MethodPost,
		Path:        "/notifications/{id}/read",
		Summary:     "Mark a notification read",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Notification `json:"body"`
	}, error) {
		actor, serr := requireActor(ctx, st, 0)
		if serr != nil {
			return nil, serr
		}
		n, err := st.markNotificationRead(input.ID, actor)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Notification `json:"body"`
		}{Body: n}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-notification",
		Method:      http.MethodDelete,
		Path:        "/notifications/{id}",
		Summary:     "Delete a notification",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		actor, serr := requireActor(ctx, st, 0)
		if serr != nil {
			return nil, serr
		}
		if err := st.deleteNotification(input.ID, actor); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
