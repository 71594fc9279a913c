package homepage

// BookmarkEntry is the property block of one bookmark.
type BookmarkEntry struct {
	Icon        string `yaml:"icon,omitempty"`
	Abbr        string `yaml:"abbr,omitempty"`
	Href        string `yaml:"href"`
	Description string `yaml:"description,omitempty"`
}

// BookmarkGroup maps a group name to its bookmarks.
// The YAML structure is: - GroupName: [ - BookmarkName: [{ abbr, href, ... }] ]
// Each bookmark name maps to a list holding a single entry.
type BookmarkGroup map[string][]map[string][]BookmarkEntry

// BookmarksConfig is the root structure of bookmarks.yaml
type BookmarksConfig []BookmarkGroup
