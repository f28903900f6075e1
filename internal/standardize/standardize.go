package standardize

import (
	"mediawatch/internal/domain"
	"mediawatch/internal/normalize"
)

// Columns rewrites every value of the listed categorical fields to the
// canonical spelling of its normalized group: the raw spelling that occurs
// most often among records sharing the same alphanumeric-normalized form.
// Ties break to the spelling first encountered in input order.
//
// The input slice is never mutated; a rewritten copy is returned. Running the
// pass twice is a no-op because canonical spellings map to themselves.
func Columns(records domain.Collection, fields []domain.Field) domain.Collection {
	out := make(domain.Collection, len(records))
	copy(out, records)

	for _, field := range fields {
		canon := canonicalSpellings(out, field)
		for i := range out {
			raw := field.Value(&out[i])
			if raw == "" {
				continue
			}
			if spelling, ok := canon[normalize.Alnum(raw)]; ok {
				field.Set(&out[i], spelling)
			}
		}
	}
	return out
}

type spellingStat struct {
	count int
	first int
}

// canonicalSpellings maps each normalized form of a field to its modal raw
// spelling. Empty values never participate; absence propagates untouched.
func canonicalSpellings(records domain.Collection, field domain.Field) map[string]string {
	groups := map[string]map[string]spellingStat{}
	for i := range records {
		raw := field.Value(&records[i])
		if raw == "" {
			continue
		}

		key := normalize.Alnum(raw)
		spellings := groups[key]
		if spellings == nil {
			spellings = map[string]spellingStat{}
			groups[key] = spellings
		}

		stat, seen := spellings[raw]
		if !seen {
			stat.first = i
		}
		stat.count++
		spellings[raw] = stat
	}

	canon := make(map[string]string, len(groups))
	for key, spellings := range groups {
		var best string
		var bestStat spellingStat
		found := false
		for raw, stat := range spellings {
			if !found ||
				stat.count > bestStat.count ||
				(stat.count == bestStat.count && stat.first < bestStat.first) {
				best, bestStat, found = raw, stat, true
			}
		}
		canon[key] = best
	}
	return canon
}
