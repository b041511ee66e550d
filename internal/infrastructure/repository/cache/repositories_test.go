package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/code-challenge/internal/domain/user"
	usermock "github.com/riskibarqy/code-challenge/internal/mocks/domain/user"
	basecache "github.com/riskibarqy/code-challenge/internal/platform/cache"
)

func TestUserDirectory_GetDisplayNames_LoadsOnlyMisses(t *testing.T) {
	next := usermock.NewDirectory(t)
	next.On("GetDisplayNames", mock.Anything, []string{"u1", "u2"}).
		Return(map[string]string{"u1": "Ada"}, nil).Once()
	next.On("GetDisplayNames", mock.Anything, []string{"u3"}).
		Return(map[string]string{"u3": "Ken"}, nil).Once()

	dir := NewUserDirectory(next, basecache.NewStore(time.Minute))

	got, err := dir.GetDisplayNames(t.Context(), []string{"u1", "u2", "u1"})
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	if len(got) != 1 || got["u1"] != "Ada" {
		t.Fatalf("unexpected first lookup: %v", got)
	}

	// u1 and the unknown u2 are served from cache; only u3 reaches next.
	got, err = dir.GetDisplayNames(t.Context(), []string{"u2", "u3", " u1 "})
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if len(got) != 2 || got["u1"] != "Ada" || got["u3"] != "Ken" {
		t.Fatalf("unexpected second lookup: %v", got)
	}
}

func TestUserDirectory_GetDisplayNames_DoesNotCacheFailures(t *testing.T) {
	boom := errors.New("directory down")
	next := usermock.NewDirectory(t)
	next.On("GetDisplayNames", mock.Anything, []string{"u1"}).Return(nil, boom).Once()
	next.On("GetDisplayNames", mock.Anything, []string{"u1"}).
		Return(map[string]string{"u1": "Ada"}, nil).Once()

	dir := NewUserDirectory(next, basecache.NewStore(time.Minute))

	if _, err := dir.GetDisplayNames(t.Context(), []string{"u1"}); !errors.Is(err, boom) {
		t.Fatalf("expected directory error, got %v", err)
	}
	got, err := dir.GetDisplayNames(t.Context(), []string{"u1"})
	if err != nil || got["u1"] != "Ada" {
		t.Fatalf("expected retry to succeed, got %v err=%v", got, err)
	}
}

func TestUserDirectory_Search_CachesAndInvalidates(t *testing.T) {
	next := usermock.NewDirectory(t)
	profiles := []user.Profile{{ID: "u1", DisplayName: "Ada"}}
	next.On("Search", mock.Anything, "ada", 5).Return(profiles, nil).Twice()

	dir := NewUserDirectory(next, basecache.NewStore(time.Minute))
	ctx := context.Background()

	for range 3 {
		got, err := dir.Search(ctx, " Ada ", 5)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(got) != 1 || got[0].ID != "u1" {
			t.Fatalf("unexpected search result: %+v", got)
		}
	}

	dir.Invalidate(ctx, "u1")
	if _, err := dir.Search(ctx, "ada", 5); err != nil {
		t.Fatalf("search after invalidate: %v", err)
	}
}
