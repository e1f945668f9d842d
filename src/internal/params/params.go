// Package params cleans raw query-string values into safe typed values.
// Malformed input degrades to a safe default; nothing here returns an error.
package params

import (
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the fallback page size when the caller supplies none.
	DefaultLimit = 20
	// MaxLimit caps any client-supplied page size.
	MaxLimit = 100
)

// ParseIDList parses a comma-separated list of positive integer IDs.
// Non-numeric and non-positive tokens are dropped; duplicates are removed
// keeping the first occurrence. The result is unbounded; bounding happens
// at the consuming query's limit.
func ParseIDList(raw string) []int64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	seen := make(map[int64]bool)
	var ids []int64
	for _, token := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// NormalizeIDs applies the same validity and dedup rules to an already
// typed list, for callers that receive IDs from a JSON body.
func NormalizeIDs(raw []int64) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, id := range raw {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// ParseLimit parses a page size, falling back on invalid input and clamping
// to [1, MaxLimit].
func ParseLimit(raw string, fallback int) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit <= 0 {
		limit = fallback
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit
}

// ParseBool parses a boolean query parameter. "true"/"1" and "false"/"0"
// (case-insensitive) map to the obvious values; anything else returns nil,
// which callers must treat as "filter not applied" rather than false.
func ParseBool(raw string) *bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	default:
		return nil
	}
}
