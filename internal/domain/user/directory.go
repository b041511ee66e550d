package user

import "context"

// Directory resolves user ids to display names and searches invite candidates.
type Directory interface {
	GetDisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
	Search(ctx context.Context, query string, limit int) ([]Profile, error)
}
