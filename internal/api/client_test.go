package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pitchline/internal/domain"
)

func TestCreateRecruitPostValidation(t *testing.T) {
	cases := []struct {
		name string
		req  CreateRecruitPostRequest
		want string
	}{
		{
			name: "missing owner",
			req:  CreateRecruitPostRequest{Category: domain.CategoryMercenary, TargetType: domain.TargetIndividual, Title: "t", Content: "c", Region: "seoul"},
			want: "owner_profile_id",
		},
		{
			name: "bad category",
			req:  CreateRecruitPostRequest{OwnerProfileID: 1, Category: "futsal", TargetType: domain.TargetIndividual, Title: "t", Content: "c", Region: "seoul"},
			want: "category",
		},
		{
			name: "title too long",
			req:  CreateRecruitPostRequest{OwnerProfileID: 1, Category: domain.CategoryMercenary, TargetType: domain.TargetIndividual, Title: strings.Repeat("x", 101), Content: "c", Region: "seoul"},
			want: "title",
		},
		{
			name: "missing region",
			req:  CreateRecruitPostRequest{OwnerProfileID: 1, Category: domain.CategoryMercenary, TargetType: domain.TargetIndividual, Title: "t", Content: "c"},
			want: "region",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %s", err, tc.want)
			}
		})
	}

	valid := CreateRecruitPostRequest{
		OwnerProfileID: 1,
		Category:       domain.CategoryMercenary,
		TargetType:     domain.TargetIndividual,
		Title:          "t",
		Content:        "c",
		Region:         "seoul",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestUpdateApplicationStatusValidation(t *testing.T) {
	req := UpdateApplicationStatusRequest{Status: domain.ApplicationPending, ActorProfileID: 1}
	if err := req.Validate(); err == nil {
		t.Fatal("PENDING is not a requestable status")
	}
	req = UpdateApplicationStatusRequest{Status: domain.ApplicationAccepted}
	if err := req.Validate(); err == nil {
		t.Fatal("actor is required")
	}
	req = UpdateApplicationStatusRequest{Status: domain.ApplicationAccepted, ActorProfileID: 1}
	if err := req.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestValidationFailsBeforeNetwork(t *testing.T) {
	// An unreachable server proves requests are rejected client-side.
	c := New("http://127.0.0.1:1")
	_, err := c.CreateRecruitPost(context.Background(), CreateRecruitPostRequest{})
	if err == nil || !strings.Contains(err.Error(), "invalid request") {
		t.Fatalf("err = %v, want invalid request", err)
	}
	_, err = c.CreateApplication(context.Background(), "p-1", CreateApplicationRequest{})
	if err == nil || !strings.Contains(err.Error(), "invalid request") {
		t.Fatalf("err = %v, want invalid request", err)
	}
}

func TestAPIErrorUnwrapsToSentinels(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"profile_not_found", domain.ErrProfileNotFound},
		{"post_not_recruiting", domain.ErrPostNotRecruiting},
		{"already_applied", domain.ErrAlreadyApplied},
		{"invalid_transition", domain.ErrInvalidTransition},
		{"forbidden", domain.ErrForbidden},
		{"not_found", domain.ErrNotFound},
	}
	for _, tc := range cases {
		err := &APIError{StatusCode: 409, Code: tc.code, Message: "m"}
		if !errors.Is(err, tc.want) {
			t.Fatalf("code %s does not unwrap to %v", tc.code, tc.want)
		}
	}
	unknown := &APIError{StatusCode: 500, Code: "internal_error"}
	if errors.Is(unknown, domain.ErrNotFound) {
		t.Fatal("unknown code must not match a sentinel")
	}
}

func TestDoDecodesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "already_applied", "message": "pending application exists"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetRecruitPost(context.Background(), "p-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.Code != "already_applied" || apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("apiErr = %+v", apiErr)
	}
	if !errors.Is(err, domain.ErrAlreadyApplied) {
		t.Fatal("envelope code did not unwrap")
	}
}

func TestDoBare404BecomesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetRecruitPost(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDoSendsBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.BearerToken = "tok-123"
	if _, err := c.ListRecruitPosts(context.Background(), domain.CategoryMercenary, 1, 10); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got != "Bearer tok-123" {
		t.Fatalf("authorization = %q", got)
	}
}
