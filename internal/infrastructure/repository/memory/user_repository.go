package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/riskibarqy/code-challenge/internal/domain/user"
)

type UserRepository struct {
	mu     sync.RWMutex
	items  map[string]user.Profile
	orders []string
}

func NewUserRepository(profiles []user.Profile) *UserRepository {
	items := make(map[string]user.Profile, len(profiles))
	orders := make([]string, 0, len(profiles))

	for _, p := range profiles {
		if _, exists := items[p.ID]; !exists {
			orders = append(orders, p.ID)
		}
		items[p.ID] = p
	}

	return &UserRepository{
		items:  items,
		orders: orders,
	}
}

func (r *UserRepository) GetDisplayNames(_ context.Context, userIDs []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.items[id]; ok {
			out[id] = p.DisplayName
		}
	}
	return out, nil
}

// Search matches query case-insensitively against id and display name.
func (r *UserRepository) Search(_ context.Context, query string, limit int) ([]user.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]user.Profile, 0)
	for _, id := range r.orders {
		if limit > 0 && len(out) >= limit {
			break
		}
		p := r.items[id]
		if query != "" &&
			!strings.Contains(strings.ToLower(p.ID), query) &&
			!strings.Contains(strings.ToLower(p.DisplayName), query) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Upsert registers or renames a profile.
func (r *UserRepository) Upsert(_ context.Context, profile user.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[profile.ID]; !exists {
		r.orders = append(r.orders, profile.ID)
	}
	r.items[profile.ID] = profile
	return nil
}
