package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(tools []*Tool) []string {
	out := make([]string, 0, len(tools))
	for _, t := range tools {
		out = append(out, t.Name)
	}
	return out
}

func fixtureTools() []*Tool {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return []*Tool{
		{ID: "1", Name: "banana", Category: "Testing", DateAdded: base, LastUsed: base.Add(3 * time.Hour)},
		{ID: "2", Name: "Apple", Category: "DevOps", DateAdded: base.Add(time.Hour), LastUsed: base.Add(time.Hour)},
		{ID: "3", Name: "cherry", Category: "Testing", DateAdded: base.Add(2 * time.Hour), LastUsed: base.Add(2 * time.Hour)},
	}
}

func TestProjectSortModes(t *testing.T) {
	tests := []struct {
		name string
		sort SortMode
		want []string
	}{
		{name: "date added newest first", sort: SortDateAdded, want: []string{"cherry", "Apple", "banana"}},
		{name: "alphabetical case-insensitive", sort: SortAlphabetical, want: []string{"Apple", "banana", "cherry"}},
		{name: "recently used first", sort: SortRecentlyUsed, want: []string{"banana", "cherry", "Apple"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(fixtureTools(), View{Sort: tt.sort})
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestProjectFilter(t *testing.T) {
	tools := fixtureTools()

	got := Project(tools, View{Category: "Testing", Sort: SortAlphabetical})
	assert.Equal(t, []string{"banana", "cherry"}, names(got))

	empty := Project(tools, View{Category: "Documentation"})
	require.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestProjectQuery(t *testing.T) {
	tools := fixtureTools()

	got := Project(tools, View{Query: "cherry"})
	assert.Equal(t, []string{"cherry"}, names(got))

	none := Project(tools, View{Query: "nothing-like-this"})
	assert.Empty(t, none)
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	tools := fixtureTools()
	before := names(tools)

	_ = Project(tools, View{Sort: SortAlphabetical})
	_ = Project(tools, View{Sort: SortRecentlyUsed})

	assert.Equal(t, before, names(tools))
}

func TestProjectIdempotent(t *testing.T) {
	tools := fixtureTools()
	v := View{Category: "Testing", Sort: SortRecentlyUsed}
	assert.Equal(t, names(Project(tools, v)), names(Project(tools, v)))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"DevOps", "Testing"}, Categories(fixtureTools()))
	assert.Empty(t, Categories(nil))
}

func TestParseSort(t *testing.T) {
	mode, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortDateAdded, mode)

	mode, err = ParseSort("alphabetical")
	require.NoError(t, err)
	assert.Equal(t, SortAlphabetical, mode)

	_, err = ParseSort("popularity")
	assert.ErrorIs(t, err, ErrValidation)
}
