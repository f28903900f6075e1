package filter

import (
	"regexp"
	"strings"
	"time"

	"mediawatch/internal/domain"
	"mediawatch/internal/normalize"
)

var keywordSeparator = regexp.MustCompile(`[,\s;]+`)

// Spec describes one interaction's filter state. Empty slices and zero times
// mean "no constraint". The date clause applies only when both bounds are
// set; a single bound is ignored, mirroring the dashboard's truncation
// policy for half-filled range pickers.
type Spec struct {
	Territories []string
	Themes      []string
	Medias      []string
	Tonalities  []string
	Start       time.Time
	End         time.Time
	Keywords    string
}

// IsEmpty reports whether the spec constrains nothing.
func (s Spec) IsEmpty() bool {
	return len(s.Territories) == 0 &&
		len(s.Themes) == 0 &&
		len(s.Medias) == 0 &&
		len(s.Tonalities) == 0 &&
		(s.Start.IsZero() || s.End.IsZero()) &&
		len(tokenize(s.Keywords)) == 0
}

// Apply returns the records passing every present clause, preserving input
// order. The input is never mutated; an unconstrained spec returns the
// collection as-is.
func (s Spec) Apply(records domain.Collection) domain.Collection {
	if s.IsEmpty() {
		return records
	}

	territories := toSet(s.Territories)
	themes := toSet(s.Themes)
	medias := toSet(s.Medias)
	tonalities := toSet(s.Tonalities)
	tokens := tokenize(s.Keywords)
	dateBounded := !s.Start.IsZero() && !s.End.IsZero()

	out := make(domain.Collection, 0, len(records))
	for i := range records {
		a := &records[i]

		if !member(territories, a.Territory) ||
			!member(themes, a.Theme) ||
			!member(medias, a.Media) ||
			!member(tonalities, a.Tonality) {
			continue
		}

		if dateBounded {
			day := domain.Day(a.Date)
			if day.Before(domain.Day(s.Start)) || day.After(domain.Day(s.End)) {
				continue
			}
		}

		if len(tokens) > 0 && !containsAll(a, tokens) {
			continue
		}

		out = append(out, *a)
	}
	return out
}

// tokenize splits the raw keyword string on runs of comma, whitespace, or
// semicolon and normalizes each token (diacritics stripped, punctuation
// kept). A blank string yields no tokens.
func tokenize(keywords string) []string {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		return nil
	}

	var tokens []string
	for _, part := range keywordSeparator.Split(keywords, -1) {
		if part == "" {
			continue
		}
		tokens = append(tokens, normalize.Text(part))
	}
	return tokens
}

// containsAll requires every token as a substring of the normalized
// subject+text concatenation.
func containsAll(a *domain.Article, tokens []string) bool {
	combined := normalize.Text(a.Subject + " " + a.Text)
	for _, token := range tokens {
		if !strings.Contains(combined, token) {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// member treats a nil set as "no constraint".
func member(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	_, ok := set[value]
	return ok
}
