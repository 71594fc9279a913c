package domain

import "testing"

func TestMatchScore(t *testing.T) {
	tool := &Tool{
		Name:        "Regex101",
		URL:         "https://www.regex101.com/",
		Description: "Build and debug regular expressions",
	}

	tests := []struct {
		query string
		want  float64
	}{
		{"regex101", ScoreExactMatch},
		{"REGEX", ScorePrefixMatch},
		{"", 0},
		{"zzzz", 0},
	}
	for _, tt := range tests {
		if got := MatchScore(tt.query, tool); got != tt.want {
			t.Errorf("MatchScore(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestMatchScoreOrdering(t *testing.T) {
	tool := &Tool{Name: "JSON Formatter", URL: "https://jsonformatter.org", Description: "pretty print payloads"}

	prefix := MatchScore("json", tool)
	inner := MatchScore("formatter", tool)
	desc := MatchScore("payloads", tool)

	if !(prefix > inner && inner > desc && desc > 0) {
		t.Errorf("unexpected ordering: prefix=%v inner=%v desc=%v", prefix, inner, desc)
	}
}

func TestMatchScoreHost(t *testing.T) {
	tool := &Tool{Name: "Docs", URL: "https://pkg.go.dev/std"}
	if got := MatchScore("pkg.go", tool); got <= 0 {
		t.Errorf("host match scored %v", got)
	}
}

func TestMatchScoreNil(t *testing.T) {
	if got := MatchScore("x", nil); got != 0 {
		t.Errorf("nil tool scored %v", got)
	}
}
