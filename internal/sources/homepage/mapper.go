package homepage

import (
	"errors"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/toolshelf/internal/domain"
)

// ErrNoBookmarks is returned when a config yields nothing importable.
var ErrNoBookmarks = errors.New("no valid bookmarks found in config")

// Mapper turns Homepage bookmarks into tool drafts.
// Groups become categories; the bookmark name becomes the tool name.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

// MapDrafts converts the config in file order. Bookmarks without href and
// repeated hrefs are skipped. Drafts are not validated here.
func (m *Mapper) MapDrafts(config BookmarksConfig) ([]domain.Draft, error) {
	var drafts []domain.Draft
	seen := make(map[string]struct{})

	for _, group := range config {
		for _, groupName := range sortedKeys(group) {
			for _, bookmarkMap := range group[groupName] {
				for _, name := range sortedKeys(bookmarkMap) {
					entries := bookmarkMap[name]
					if len(entries) == 0 {
						continue
					}
					entry := entries[0]

					href := strings.TrimSpace(entry.Href)
					if href == "" {
						continue
					}
					if _, dup := seen[href]; dup {
						continue
					}
					seen[href] = struct{}{}

					drafts = append(drafts, domain.Draft{
						Name:        name,
						URL:         href,
						Description: describe(entry),
						Category:    strings.TrimSpace(groupName),
					})
				}
			}
		}
	}

	if len(drafts) == 0 {
		return nil, ErrNoBookmarks
	}
	return drafts, nil
}

// describe prefers the description and falls back to the abbreviation,
// cut to the description limit.
func describe(e BookmarkEntry) string {
	d := strings.TrimSpace(e.Description)
	if d == "" {
		d = strings.TrimSpace(e.Abbr)
	}
	if r := []rune(d); len(r) > domain.MaxDescriptionLen {
		d = string(r[:domain.MaxDescriptionLen])
	}
	return d
}

// sortedKeys gives a stable order to YAML mappings, which Go maps lack.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
