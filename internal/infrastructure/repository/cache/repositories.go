package cache

import (
	"context"
	"strconv"
	"strings"

	"github.com/riskibarqy/code-challenge/internal/domain/user"
	basecache "github.com/riskibarqy/code-challenge/internal/platform/cache"
)

const (
	displayNameKeyPrefix = "user:name:"
	searchKeyPrefix      = "user:search:"
)

// UserDirectory caches directory lookups. Challenge data never goes through
// here; leaderboards are rebuilt from storage on every read.
type UserDirectory struct {
	next  user.Directory
	cache *basecache.Store
}

func NewUserDirectory(next user.Directory, cache *basecache.Store) *UserDirectory {
	return &UserDirectory{next: next, cache: cache}
}

type cachedDisplayName struct {
	name   string
	exists bool
}

// GetDisplayNames serves known ids from the cache and resolves the rest with a
// single call to the wrapped directory. Unknown ids are cached as misses.
func (d *UserDirectory) GetDisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(userIDs))
	missing := make([]string, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		v, ok := d.cache.Get(ctx, displayNameKeyPrefix+id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		cached, _ := v.(cachedDisplayName)
		if cached.exists {
			out[id] = cached.name
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	loaded, err := d.next.GetDisplayNames(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		name, exists := loaded[id]
		d.cache.Set(ctx, displayNameKeyPrefix+id, cachedDisplayName{name: name, exists: exists})
		if exists {
			out[id] = name
		}
	}

	return out, nil
}

func (d *UserDirectory) Search(ctx context.Context, query string, limit int) ([]user.Profile, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	key := searchKeyPrefix + strconv.Itoa(limit) + ":" + query
	v, err := d.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := d.next.Search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return append([]user.Profile(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]user.Profile)
	return append([]user.Profile(nil), items...), nil
}

// Invalidate drops cached data for one user, including every search result
// since any of them may list the user.
func (d *UserDirectory) Invalidate(ctx context.Context, userID string) {
	d.cache.Delete(ctx, displayNameKeyPrefix+strings.TrimSpace(userID))
	d.cache.DeletePrefix(ctx, searchKeyPrefix)
}
