package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pitchline/internal/domain"
)

// Client talks to the backing store's HTTP/JSON API. The store is the
// authority for every lifecycle rule; this client only shapes requests and
// maps error envelopes back onto the domain taxonomy.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// APIError wraps non-2xx responses, carrying the server's error envelope
// when one was present.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status=%d code=%s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d", e.StatusCode)
}

// Unwrap maps well-known envelope codes onto the domain sentinels so callers
// can use errors.Is without losing the server-supplied message.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "profile_not_found":
		return domain.ErrProfileNotFound
	case "post_not_recruiting":
		return domain.ErrPostNotRecruiting
	case "already_applied":
		return domain.ErrAlreadyApplied
	case "invalid_transition":
		return domain.ErrInvalidTransition
	case "forbidden":
		return domain.ErrForbidden
	case "not_found":
		return domain.ErrNotFound
	}
	return nil
}

// ListRecruitPosts returns one page of posts for a category, in store order.
func (c *Client) ListRecruitPosts(ctx context.Context, category domain.Category, page, size int) ([]domain.RecruitPost, error) {
	q := url.Values{}
	q.Set("category", string(category))
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if size > 0 {
		q.Set("size", fmt.Sprint(size))
	}
	var resp struct {
		Items []domain.RecruitPost `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "recruit-posts?"+q.Encode(), nil, &resp)
	return resp.Items, err
}

// GetRecruitPost fetches a single post by id.
func (c *Client) GetRecruitPost(ctx context.Context, id string) (domain.RecruitPost, error) {
	var resp domain.RecruitPost
	err := c.do(ctx, http.MethodGet, "recruit-posts/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// CreateRecruitPost publishes a new post.
func (c *Client) CreateRecruitPost(ctx context.Context, req CreateRecruitPostRequest) (domain.RecruitPost, error) {
	if err := req.Validate(); err != nil {
		return domain.RecruitPost{}, err
	}
	var resp domain.RecruitPost
	err := c.do(ctx, http.MethodPost, "recruit-posts", req, &resp)
	return resp, err
}

// UpdateRecruitPost edits an existing post.
func (c *Client) UpdateRecruitPost(ctx context.Context, id string, req UpdateRecruitPostRequest) (domain.RecruitPost, error) {
	var resp domain.RecruitPost
	err := c.do(ctx, http.MethodPatch, "recruit-posts/"+url.PathEscape(id), req, &resp)
	return resp, err
}

// DeleteRecruitPost removes a post.
func (c *Client) DeleteRecruitPost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "recruit-posts/"+url.PathEscape(id), nil, nil)
}

// CreateApplication submits an application to a post.
func (c *Client) CreateApplication(ctx context.Context, postID string, req CreateApplicationRequest) (domain.Application, error) {
	if err := req.Validate(); err != nil {
		return domain.Application{}, err
	}
	var resp domain.Application
	endpoint := fmt.Sprintf("recruit-posts/%s/applications", url.PathEscape(postID))
	err := c.do(ctx, http.MethodPost, endpoint, req, &resp)
	return resp, err
}

// UpdateApplicationStatus moves an application through its lifecycle.
// Accept, reject, and cancel are all modeled as status mutations.
func (c *Client) UpdateApplicationStatus(ctx context.Context, postID, applicationID string, req UpdateApplicationStatusRequest) (domain.Application, error) {
	if err := req.Validate(); err != nil {
		return domain.Application{}, err
	}
	var resp domain.Application
	endpoint := fmt.Sprintf("recruit-posts/%s/applications/%s", url.PathEscape(postID), url.PathEscape(applicationID))
	err := c.do(ctx, http.MethodPatch, endpoint, req, &resp)
	return resp, err
}

// ApplicationRole scopes an application listing to one side of the exchange.
type ApplicationRole string

const (
	RoleSent     ApplicationRole = "sent"
	RoleReceived ApplicationRole = "received"
)

// ListApplications returns applications sent by a profile, or received
// against its posts.
func (c *Client) ListApplications(ctx context.Context, profileID int64, role ApplicationRole) ([]domain.Application, error) {
	var resp struct {
		Items []domain.Application `json:"items"`
	}
	endpoint := fmt.Sprintf("profiles/%d/applications?role=%s", profileID, role)
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Items, err
}

// GetProfileByAccount resolves an account identity to its profile. A 404
// unwraps to domain.ErrProfileNotFound.
func (c *Client) GetProfileByAccount(ctx context.Context, accountID string) (domain.Profile, error) {
	var resp domain.Profile
	err := c.do(ctx, http.MethodGet, "profiles/by-account/"+url.PathEscape(accountID), nil, &resp)
	return resp, err
}

// CreateProfile provisions a profile for the authenticated account.
func (c *Client) CreateProfile(ctx context.Context, req CreateProfileRequest) (domain.Profile, error) {
	if err := req.Validate(); err != nil {
		return domain.Profile{}, err
	}
	var resp domain.Profile
	err := c.do(ctx, http.MethodPost, "profiles", req, &resp)
	return resp, err
}

// UpdateProfile edits the owning account's profile.
func (c *Client) UpdateProfile(ctx context.Context, profileID int64, req UpdateProfileRequest) (domain.Profile, error) {
	var resp domain.Profile
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("profiles/%d", profileID), req, &resp)
	return resp, err
}

// CreateNotification delivers a notification to a profile. Callers treat
// this as best-effort; the ledger never fails an operation over it.
func (c *Client) CreateNotification(ctx context.Context, req CreateNotificationRequest) (domain.Notification, error) {
	if err := req.Validate(); err != nil {
		return domain.Notification{}, err
	}
	var resp domain.Notification
	err := c.do(ctx, http.MethodPost, "notifications", req, &resp)
	return resp, err
}

// ListNotifications returns a profile's notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context, profileID int64) ([]domain.Notification, error) {
	var resp struct {
		Items []domain.Notification `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("profiles/%d/notifications", profileID), nil, &resp)
	return resp.Items, err
}

// MarkNotificationRead flags a notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) (domain.Notification, error) {
	var resp domain.Notification
	endpoint := fmt.Sprintf("notifications/%s/read", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// DeleteNotification removes a notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "notifications/"+url.PathEscape(id), nil, nil)
}

// DevLogin mints a bearer token from the sandbox's dev auth endpoint.
func (c *Client) DevLogin(ctx context.Context, accountID, name string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"account_id": accountID, "name": name}
	err := c.do(ctx, http.MethodPost, "auth/dev/login", body, &resp)
	return resp.Token, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return decodeAPIError(resp.StatusCode, b)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// decodeAPIError extracts the server's {error:{code,message}} envelope; a
// body that isn't the envelope becomes the raw message.
func decodeAPIError(status int, body []byte) *APIError {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		return &APIError{StatusCode: status, Code: envelope.Error.Code, Message: envelope.Error.Message}
	}
	apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	if status == http.StatusNotFound {
		apiErr.Code = "not_found"
	}
	return apiErr
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
