package directory

import (
	"context"
	"fmt"
	"strings"

	"pitchline/internal/api"
	"pitchline/internal/domain"
)

// Directory holds the session's working set of recruit posts, one set per
// category. Loads always replace the whole set: staleness is bounded by
// explicit reload points after each mutating call, not by incremental
// patching.
type Directory struct {
	API   *api.Client
	posts map[domain.Category][]domain.RecruitPost
}

func New(client *api.Client) *Directory {
	return &Directory{
		API:   client,
		posts: make(map[domain.Category][]domain.RecruitPost),
	}
}

// Load refreshes the working set for a category from the store, replacing
// any previous set, and returns the new one in store order.
func (d *Directory) Load(ctx context.Context, category domain.Category, page, size int) ([]domain.RecruitPost, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	items, err := d.API.ListRecruitPosts(ctx, category, page, size)
	if err != nil {
		return nil, err
	}
	d.posts[category] = items
	return d.Posts(category), nil
}

// Posts returns a copy of the current working set, in store order.
func (d *Directory) Posts(category domain.Category) []domain.RecruitPost {
	src := d.posts[category]
	out := make([]domain.RecruitPost, len(src))
	copy(out, src)
	return out
}

// Focused returns the working set with the focused post resorted to the
// front for display. The underlying set keeps store order, so subsequent
// loads and reads are unaffected.
func (d *Directory) Focused(category domain.Category, postID string) []domain.RecruitPost {
	out := d.Posts(category)
	for i, p := range out {
		if p.ID == postID {
			focused := out[i]
			copy(out[1:i+1], out[:i])
			out[0] = focused
			break
		}
	}
	return out
}

// Get fetches one post fresh from the store, for deep links into posts that
// may not be in the loaded page.
func (d *Directory) Get(ctx context.Context, postID string) (domain.RecruitPost, error) {
	return d.API.GetRecruitPost(ctx, postID)
}

// Create publishes a new post after client-side validation.
func (d *Directory) Create(ctx context.Context, req api.CreateRecruitPostRequest) (domain.RecruitPost, error) {
	return d.API.CreateRecruitPost(ctx, req)
}

// Update edits a post. Ownership is checked here before any network call;
// the store re-validates on its side.
func (d *Directory) Update(ctx context.Context, post domain.RecruitPost, actorProfileID int64, req api.UpdateRecruitPostRequest) (domain.RecruitPost, error) {
	if post.OwnerProfileID != actorProfileID {
		return domain.RecruitPost{}, domain.ErrForbidden
	}
	return d.API.UpdateRecruitPost(ctx, post.ID, req)
}

// Remove deletes a post, refusing up front when the acting profile does not
// own it.
func (d *Directory) Remove(ctx context.Context, post domain.RecruitPost, actorProfileID int64) error {
	if post.OwnerProfileID != actorProfileID {
		return domain.ErrForbidden
	}
	return d.API.DeleteRecruitPost(ctx, post.ID)
}

// Predicate narrows a post listing. Filters are pure and client-local.
type Predicate func(domain.RecruitPost) bool

// Filter returns the posts matching every predicate, preserving order.
func Filter(posts []domain.RecruitPost, preds ...Predicate) []domain.RecruitPost {
	out := make([]domain.RecruitPost, 0, len(posts))
next:
	for _, p := range posts {
		for _, pred := range preds {
			if !pred(p) {
				continue next
			}
		}
		out = append(out, p)
	}
	return out
}

// ByRegion matches posts in a region; empty region matches everything.
func ByRegion(region string) Predicate {
	return func(p domain.RecruitPost) bool {
		return region == "" || p.Region == region
	}
}

// BySubRegion matches posts in a sub-region; empty matches everything.
func BySubRegion(subRegion string) Predicate {
	return func(p domain.RecruitPost) bool {
		return subRegion == "" || p.SubRegion == subRegion
	}
}

// ByKeyword matches the keyword case-insensitively against title and
// content; empty matches everything.
func ByKeyword(keyword string) Predicate {
	keyword = strings.ToLower(keyword)
	return func(p domain.RecruitPost) bool {
		if keyword == "" {
			return true
		}
		return strings.Contains(strings.ToLower(p.Title), keyword) ||
			strings.Contains(strings.ToLower(p.Content), keyword)
	}
}

// ByStatus matches posts in a given status; empty matches everything.
func ByStatus(status domain.PostStatus) Predicate {
	return func(p domain.RecruitPost) bool {
		return status == "" || p.Status == status
	}
}
