package domain

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// SortMode selects one of the exclusive orderings of the projected list.
type SortMode string

const (
	SortDateAdded    SortMode = "dateAdded"    // newest first
	SortAlphabetical SortMode = "alphabetical" // name, case-insensitive
	SortRecentlyUsed SortMode = "recentlyUsed" // most recently used first
)

// ParseSort maps a query value to a SortMode. Empty means SortDateAdded.
func ParseSort(s string) (SortMode, error) {
	switch SortMode(s) {
	case "":
		return SortDateAdded, nil
	case SortDateAdded, SortAlphabetical, SortRecentlyUsed:
		return SortMode(s), nil
	default:
		return "", &ValidationError{Field: "sort", Reason: fmt.Sprintf("unknown sort mode %q", s)}
	}
}

// View holds the user's display choices.
type View struct {
	Category string // empty keeps all categories
	Query    string // empty keeps every tool, see MatchScore
	Sort     SortMode
}

// Project derives the display list. The input slice and its tools are
// never modified; the result is a new slice sharing the tool pointers.
func Project(tools []*Tool, v View) []*Tool {
	out := make([]*Tool, 0, len(tools))
	for _, t := range tools {
		if v.Category != "" && t.Category != v.Category {
			continue
		}
		if v.Query != "" && MatchScore(v.Query, t) == 0 {
			continue
		}
		out = append(out, t)
	}

	switch v.Sort {
	case SortAlphabetical:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case SortRecentlyUsed:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LastUsed.After(out[j].LastUsed)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DateAdded.After(out[j].DateAdded)
		})
	}
	return out
}

// Categories returns the distinct categories across the unfiltered catalog.
// Order carries no meaning; it is sorted only to keep output stable.
func Categories(tools []*Tool) []string {
	seen := make(map[string]struct{}, len(tools))
	out := make([]string, 0, len(tools))
	for _, t := range tools {
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	slices.Sort(out)
	return out
}
