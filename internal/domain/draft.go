package domain

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxDescriptionLen caps the description, counted in runes.
	MaxDescriptionLen = 100
	// CustomCategory is the sentinel selection that switches to free-form text.
	CustomCategory = "custom"

	tempIDPrefix = "tmp-"
)

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// Draft is raw user input for add and edit.
type Draft struct {
	Name           string `json:"name"`
	URL            string `json:"url"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	CustomCategory string `json:"customCategory,omitempty"`
}

// Fields are the validated, normalized editable fields of a tool.
type Fields struct {
	Name        string
	URL         string
	Description string
	Category    string
}

// Validate normalizes the draft and checks every rule.
// The first failing rule is reported as a *ValidationError.
func (d Draft) Validate() (Fields, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Fields{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	u, err := NormalizeURL(d.URL)
	if err != nil {
		return Fields{}, err
	}

	desc := strings.TrimSpace(d.Description)
	if utf8.RuneCountInString(desc) > MaxDescriptionLen {
		return Fields{}, &ValidationError{Field: "description", Reason: "must be at most 100 characters"}
	}

	category := ResolveCategory(d.Category, d.CustomCategory)
	if category == "" {
		return Fields{}, &ValidationError{Field: "category", Reason: "must not be empty"}
	}

	return Fields{Name: name, URL: u, Description: desc, Category: category}, nil
}

// ResolveCategory picks the custom text when the "custom" option is selected.
func ResolveCategory(selected, custom string) string {
	if selected == CustomCategory {
		return strings.TrimSpace(custom)
	}
	return strings.TrimSpace(selected)
}

// NormalizeURL prepends https:// when no http(s) scheme is present and
// requires the result to parse as an absolute URL with a host.
// Example: "example.com" -> "https://example.com"
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &ValidationError{Field: "url", Reason: "must not be empty"}
	}
	if !schemeRe.MatchString(s) {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", &ValidationError{Field: "url", Reason: "not a valid URL"}
	}
	if u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return "", &ValidationError{Field: "url", Reason: "missing host"}
	}
	return s, nil
}

// NewTempID returns a client-side token used until the store confirms.
func NewTempID() string {
	return tempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was produced by NewTempID.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// Patch carries a partial edit. Nil fields keep the current value.
type Patch struct {
	Name           *string `json:"name,omitempty"`
	URL            *string `json:"url,omitempty"`
	Description    *string `json:"description,omitempty"`
	Category       *string `json:"category,omitempty"`
	CustomCategory string  `json:"customCategory,omitempty"`
}

// Merge fills the fields missing from p with the values of base.
func (p Patch) Merge(base *Tool) Draft {
	d := Draft{
		Name:           base.Name,
		URL:            base.URL,
		Description:    base.Description,
		Category:       base.Category,
		CustomCategory: p.CustomCategory,
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.URL != nil {
		d.URL = *p.URL
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	return d
}
