package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pitchline/internal/api"
	"pitchline/internal/domain"
)

func stubListServer(t *testing.T, posts []domain.RecruitPost) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recruit-posts" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"items": posts})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func seedPosts() []domain.RecruitPost {
	return []domain.RecruitPost{
		{ID: "p-1", Category: domain.CategoryMercenary, Title: "Need a striker", Content: "weekend league", Region: "seoul", SubRegion: "mapo", Status: domain.PostRecruiting},
		{ID: "p-2", Category: domain.CategoryMercenary, Title: "Keeper wanted", Content: "friendly", Region: "seoul", SubRegion: "gangnam", Status: domain.PostRecruiting},
		{ID: "p-3", Category: domain.CategoryMercenary, Title: "Full squad", Content: "done", Region: "busan", Status: domain.PostCompleted},
	}
}

func loadedDirectory(t *testing.T) *Directory {
	t.Helper()
	srv := stubListServer(t, seedPosts())
	d := New(api.New(srv.URL))
	if _, err := d.Load(context.Background(), domain.CategoryMercenary, 1, 20); err != nil {
		t.Fatalf("load: %v", err)
	}
	return d
}

func TestLoadReplacesWorkingSet(t *testing.T) {
	d := loadedDirectory(t)
	got := d.Posts(domain.CategoryMercenary)
	if len(got) != 3 || got[0].ID != "p-1" {
		t.Fatalf("posts = %+v", got)
	}

	// A reload against a smaller listing replaces, never merges.
	srv := stubListServer(t, seedPosts()[:1])
	d.API = api.New(srv.URL)
	if _, err := d.Load(context.Background(), domain.CategoryMercenary, 1, 20); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got = d.Posts(domain.CategoryMercenary)
	if len(got) != 1 {
		t.Fatalf("posts after reload = %d, want 1", len(got))
	}
}

func TestLoadRejectsUnknownCategory(t *testing.T) {
	d := New(api.New("http://127.0.0.1:1"))
	if _, err := d.Load(context.Background(), "futsal", 1, 20); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestFocusedResortsWithoutMutating(t *testing.T) {
	d := loadedDirectory(t)
	focused := d.Focused(domain.CategoryMercenary, "p-3")
	if focused[0].ID != "p-3" {
		t.Fatalf("focused[0] = %s, want p-3", focused[0].ID)
	}
	if focused[1].ID != "p-1" || focused[2].ID != "p-2" {
		t.Fatalf("relative order broken: %+v", focused)
	}
	// The working set keeps store order.
	got := d.Posts(domain.CategoryMercenary)
	if got[0].ID != "p-1" || got[2].ID != "p-3" {
		t.Fatalf("working set mutated: %+v", got)
	}
}

func TestFocusedUnknownIDKeepsOrder(t *testing.T) {
	d := loadedDirectory(t)
	focused := d.Focused(domain.CategoryMercenary, "missing")
	if focused[0].ID != "p-1" {
		t.Fatalf("order changed for unknown focus: %+v", focused)
	}
}

func TestFilterPredicates(t *testing.T) {
	posts := seedPosts()
	got := Filter(posts, ByRegion("seoul"))
	if len(got) != 2 {
		t.Fatalf("region filter = %d, want 2", len(got))
	}
	got = Filter(posts, ByRegion("seoul"), BySubRegion("gangnam"))
	if len(got) != 1 || got[0].ID != "p-2" {
		t.Fatalf("sub-region filter = %+v", got)
	}
	got = Filter(posts, ByKeyword("STRIKER"))
	if len(got) != 1 || got[0].ID != "p-1" {
		t.Fatalf("keyword filter = %+v", got)
	}
	got = Filter(posts, ByStatus(domain.PostCompleted))
	if len(got) != 1 || got[0].ID != "p-3" {
		t.Fatalf("status filter = %+v", got)
	}
	// Empty predicates match everything.
	got = Filter(posts, ByRegion(""), BySubRegion(""), ByKeyword(""), ByStatus(""))
	if len(got) != 3 {
		t.Fatalf("empty filters = %d, want 3", len(got))
	}
}

func TestUpdateRefusesNonOwnerBeforeNetwork(t *testing.T) {
	// An unreachable server proves the ownership check fires first.
	d := New(api.New("http://127.0.0.1:1"))
	post := domain.RecruitPost{ID: "p-1", OwnerProfileID: 7}
	_, err := d.Update(context.Background(), post, 8, api.UpdateRecruitPostRequest{})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("update err = %v, want ErrForbidden", err)
	}
	if err := d.Remove(context.Background(), post, 8); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("remove err = %v, want ErrForbidden", err)
	}
}
