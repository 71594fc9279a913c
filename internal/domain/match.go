package domain

import (
	"net/url"
	"strings"
)

const (
	// Match weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Earlier substring hits score higher
	ScorePositionBonus = 10.0
)

// MatchScore rates how well query matches a tool. The name weighs most,
// then the URL host, then the description. Zero means no match.
func MatchScore(query string, t *Tool) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if t == nil || q == "" {
		return 0.0
	}

	best := scoreText(q, strings.ToLower(t.Name))
	if s := scoreText(q, hostOf(t.URL)) * 0.8; s > best {
		best = s
	}
	if strings.Contains(strings.ToLower(t.Description), q) && best < ScoreSubstringMatch*0.5 {
		best = ScoreSubstringMatch * 0.5
	}
	return best
}

func scoreText(q, text string) float64 {
	if text == "" {
		return 0.0
	}

	if q == text {
		return ScoreExactMatch
	}
	if strings.HasPrefix(text, q) {
		return ScorePrefixMatch
	}
	if i := strings.Index(text, q); i >= 0 {
		return ScoreSubstringMatch + ScorePositionBonus*(1.0-float64(i)/float64(len(text)))
	}

	// every word somewhere in the text
	if words := strings.Fields(q); len(words) > 1 {
		all := true
		for _, w := range words {
			if !strings.Contains(text, w) {
				all = false
				break
			}
		}
		if all {
			return ScoreFuzzyMatch
		}
	}

	if sim := similarity(q, text); sim > 0.75 && len(q) >= 3 {
		return ScoreFuzzyMatch * sim
	}
	return 0.0
}

// similarity is the share of runes of s1 that also appear in s2.
func similarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}

	total, matches := 0, 0
	for _, c := range s1 {
		total++
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}
	return float64(matches) / float64(total)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
