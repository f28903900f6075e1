package domain

import (
	"strings"
	"time"

	"mediawatch/internal/normalize"
)

// Article is one curated press-review record as written by the upstream
// labeling pipeline. Categorical fields are free text at ingestion time and
// canonical after standardization.
type Article struct {
	Date      time.Time
	Territory string
	Theme     string
	Media     string
	Tonality  string
	Subject   string
	Text      string
}

// Collection is an ordered sequence of articles. It is not required to be
// sorted; consumers order by date themselves.
type Collection []Article

// Field enumerates the categorical columns subject to standardization,
// filtering, and summaries.
type Field int

const (
	FieldTerritory Field = iota
	FieldTheme
	FieldMedia
	FieldTonality
)

// CategoricalFields lists every standardized column in display order.
func CategoricalFields() []Field {
	return []Field{FieldTerritory, FieldTheme, FieldMedia, FieldTonality}
}

// Label returns the column header shown to the analyst.
func (f Field) Label() string {
	switch f {
	case FieldTerritory:
		return "Territoire"
	case FieldTheme:
		return "Thème"
	case FieldMedia:
		return "Média"
	case FieldTonality:
		return "Qualité du retour"
	default:
		return ""
	}
}

// Value reads the field from an article.
func (f Field) Value(a *Article) string {
	switch f {
	case FieldTerritory:
		return a.Territory
	case FieldTheme:
		return a.Theme
	case FieldMedia:
		return a.Media
	case FieldTonality:
		return a.Tonality
	default:
		return ""
	}
}

// Set rewrites the field on an article.
func (f Field) Set(a *Article, value string) {
	switch f {
	case FieldTerritory:
		a.Territory = value
	case FieldTheme:
		a.Theme = value
	case FieldMedia:
		a.Media = value
	case FieldTonality:
		a.Tonality = value
	}
}

// Coarse tonality groups used by trend and geographic aggregations.
const (
	GroupPositive = "Positif"
	GroupNeutral  = "Neutre"
	GroupNegative = "Négatif"
)

// ToneGroup folds a five-level feedback-quality label into one of the three
// coarse groups. "Factuel positif" counts as positive, "Factuel négatif" as
// negative, everything else as neutral.
func ToneGroup(tonality string) string {
	folded := normalize.Text(tonality)
	switch {
	case strings.Contains(folded, "positif"):
		return GroupPositive
	case strings.Contains(folded, "negatif"):
		return GroupNegative
	default:
		return GroupNeutral
	}
}

// Day truncates a timestamp to its calendar day in UTC. All bucketing and
// date-range comparisons operate on day granularity.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
