package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

// Merge combines remote and local cases into one list with a single entry per id. Remote
// cases take precedence and the first occurrence of an id within a source wins. The result
// keeps remote order followed by local order and every entry is stamped with its origin. A
// local case whose SyncedAs id is already listed remotely is dropped.
func Merge(remote, local []models.Case) []models.Case {
	seen := make(map[string]struct{}, len(remote)+len(local))
	out := make([]models.Case, 0, len(remote)+len(local))

	for _, c := range remote {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		c.Source = models.OriginRemote
		out = append(out, c)
	}
	for _, c := range local {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		if _, ok := seen[c.SyncedAs]; ok && c.SyncedAs != "" {
			continue
		}
		seen[c.ID] = struct{}{}
		c.Source = models.OriginLocalPending
		out = append(out, c)
	}
	return out
}

// SortKey selects a case ordering
type SortKey string

// Supported orderings
const (
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortPriority SortKey = "priority"
	SortRegion   SortKey = "region"
)

// ParseSortKey accepts a sort key, treating the empty string as newest first
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortNewest, "createdat", "-createdat":
		return SortNewest, nil
	case SortOldest, "+createdat":
		return SortOldest, nil
	case SortPriority:
		return SortPriority, nil
	case SortRegion:
		return SortRegion, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Sort orders cases in place and returns them. Ties fall back to newest first, then id, so
// the order is deterministic.
func Sort(cases []models.Case, by SortKey) []models.Case {
	newest := func(a, b models.Case) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	}

	var less func(a, b models.Case) bool
	switch by {
	case SortOldest:
		less = func(a, b models.Case) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		}
	case SortPriority:
		less = func(a, b models.Case) bool {
			if a.Priority.Rank() != b.Priority.Rank() {
				return a.Priority.Rank() > b.Priority.Rank()
			}
			return newest(a, b)
		}
	case SortRegion:
		less = func(a, b models.Case) bool {
			if a.Region != b.Region {
				return a.Region < b.Region
			}
			return newest(a, b)
		}
	default:
		less = newest
	}

	sort.SliceStable(cases, func(i, j int) bool { return less(cases[i], cases[j]) })
	return cases
}
