package domain

import (
	"net/url"
	"time"
)

// Tool represents a single listing in the catalog.
//
// It is NOT tied to Redis or any HTTP representation. Store adapters and
// handlers convert to and from this structure.
type Tool struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is either a temporary client token (see IsTempID) or the ID
	// assigned by the remote store. IDs are never reused.
	ID string `json:"id"`

	// ─────────────────────────────
	// Listing (editable)
	// ─────────────────────────────

	// Name is the display name, never empty.
	Name string `json:"name"`

	// URL is the normalized absolute URL.
	// Example: https://example.com
	URL string `json:"url"`

	// Description is optional, at most MaxDescriptionLen runes.
	Description string `json:"description"`

	// Category is either one of the known categories or free-form text.
	Category string `json:"category"`

	// Favicon is derived from URL, see FaviconURL.
	Favicon string `json:"favicon"`

	// ─────────────────────────────
	// Timestamps
	// ─────────────────────────────

	// DateAdded is set once at creation and never changes.
	DateAdded time.Time `json:"dateAdded"`

	// LastUsed is updated only by an explicit "use" action.
	LastUsed time.Time `json:"lastUsed"`
}

// Record is the document body persisted by the remote store.
// It carries every Tool field except the ID, which the store assigns.
type Record struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Favicon     string    `json:"favicon"`
	DateAdded   time.Time `json:"dateAdded"`
	LastUsed    time.Time `json:"lastUsed"`
}

// DefaultCategories are offered on the add form before any tool exists.
var DefaultCategories = []string{
	"Code Generation",
	"Code Analysis",
	"Testing",
	"DevOps",
	"Documentation",
}

const faviconService = "https://www.google.com/s2/favicons"

// NewTool builds a tool from a draft. Both timestamps are set to now.
func NewTool(d Draft, id string, now time.Time) (*Tool, error) {
	f, err := d.Validate()
	if err != nil {
		return nil, err
	}
	t := &Tool{ID: id, DateAdded: now, LastUsed: now}
	t.Apply(f)
	return t, nil
}

// Apply replaces the editable fields. ID, DateAdded and LastUsed are kept.
func (t *Tool) Apply(f Fields) {
	t.Name = f.Name
	t.URL = f.URL
	t.Description = f.Description
	t.Category = f.Category
	t.Favicon = FaviconURL(f.URL)
}

// Clone returns a copy that shares nothing with t.
func (t *Tool) Clone() *Tool {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Record strips the identity from t.
func (t *Tool) Record() Record {
	return Record{
		Name:        t.Name,
		URL:         t.URL,
		Description: t.Description,
		Category:    t.Category,
		Favicon:     t.Favicon,
		DateAdded:   t.DateAdded,
		LastUsed:    t.LastUsed,
	}
}

// SameContent reports whether a and b differ only by ID.
func SameContent(a, b *Tool) bool {
	return a.Name == b.Name &&
		a.URL == b.URL &&
		a.Description == b.Description &&
		a.Category == b.Category &&
		a.Favicon == b.Favicon &&
		a.DateAdded.Equal(b.DateAdded) &&
		a.LastUsed.Equal(b.LastUsed)
}

// FromRecord attaches an ID to a stored document.
func FromRecord(id string, r Record) *Tool {
	return &Tool{
		ID:          id,
		Name:        r.Name,
		URL:         r.URL,
		Description: r.Description,
		Category:    r.Category,
		Favicon:     r.Favicon,
		DateAdded:   r.DateAdded,
		LastUsed:    r.LastUsed,
	}
}

// FaviconURL returns the favicon lookup URL for a normalized tool URL.
// The result is not validated; failing to load it is a presentation concern.
func FaviconURL(normalized string) string {
	q := url.Values{}
	q.Set("domain", normalized)
	q.Set("sz", "128")
	return faviconService + "?" + q.Encode()
}
