package homepage

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxFileSize bounds what an import reads into memory.
const maxFileSize = 4 << 20

var templateVarRe = regexp.MustCompile(`\{\{\s*([^}\s]+)\s*\}\}`)

// LookupFunc resolves a template variable, like os.LookupEnv.
type LookupFunc func(name string) (string, bool)

// Loader reads a Homepage bookmarks.yaml file. Template variables such as
// {{HOMEPAGE_VAR_GITEA_URL}} are resolved from the environment, the way
// Homepage itself does, and blanked when unset.
type Loader struct {
	filePath string
	lookup   LookupFunc
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath, lookup: os.LookupEnv}
}

// WithLookup replaces the environment as the source of template variables.
func (l *Loader) WithLookup(fn LookupFunc) *Loader {
	l.lookup = fn
	return l
}

// Load reads and parses the bookmarks file.
func (l *Loader) Load() (BookmarksConfig, error) {
	info, err := os.Stat(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("bookmarks file %s is %d bytes, limit is %d", l.filePath, info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks file: %w", err)
	}
	return parse(data, l.lookup)
}

// Parse decodes bookmarks.yaml content with every template variable blanked.
func Parse(data []byte) (BookmarksConfig, error) {
	return parse(data, nil)
}

func parse(data []byte, lookup LookupFunc) (BookmarksConfig, error) {
	data = expandTemplateVariables(data, lookup)

	var config BookmarksConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks yaml: %w", err)
	}
	return config, nil
}

// expandTemplateVariables substitutes each {{NAME}} with its quoted value,
// or with "" when lookup is nil or does not know NAME.
// Example: {{HOMEPAGE_VAR_GITEA_URL}} -> "https://git.home.lan"
func expandTemplateVariables(data []byte, lookup LookupFunc) []byte {
	return templateVarRe.ReplaceAllFunc(data, func(m []byte) []byte {
		if lookup == nil {
			return []byte(`""`)
		}
		name := string(templateVarRe.FindSubmatch(m)[1])
		v, ok := lookup(name)
		if !ok {
			return []byte(`""`)
		}
		return []byte(strconv.Quote(strings.TrimSpace(v)))
	})
}
