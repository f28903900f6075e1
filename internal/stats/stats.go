package stats

import (
	"sort"
	"strings"
	"unicode"

	"mediawatch/internal/domain"
	"mediawatch/internal/normalize"
)

// FoldedLabel collects the small slices of a répartition pie.
const FoldedLabel = "Autres"

// UnknownGroup marks territories without any record in the filtered subset.
const UnknownGroup = "Inconnu"

// Share is one slice of a distribution chart.
type Share struct {
	Value string
	Count int
	Ratio float64
}

// CategoryShares counts the values of one categorical field over the subset
// and folds every value whose share does not exceed foldBelow into
// FoldedLabel. Shares come back sorted by descending count then value, with
// the folded slice last.
func CategoryShares(records domain.Collection, field domain.Field, foldBelow float64) []Share {
	if len(records) == 0 {
		return nil
	}

	counts := map[string]int{}
	for i := range records {
		counts[field.Value(&records[i])]++
	}

	total := float64(len(records))
	kept := map[string]int{}
	folded := 0
	for value, count := range counts {
		if float64(count)/total > foldBelow {
			kept[value] = count
		} else {
			folded += count
		}
	}

	shares := make([]Share, 0, len(kept)+1)
	for value, count := range kept {
		shares = append(shares, Share{Value: value, Count: count, Ratio: float64(count) / total})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Value < shares[j].Value
	})

	if folded > 0 {
		shares = append(shares, Share{Value: FoldedLabel, Count: folded, Ratio: float64(folded) / total})
	}
	return shares
}

// TerritoryTones maps each territory present in the subset to the coarse
// group of its modal tonality. Ties break to the tonality first encountered
// in input order; the choropleth renderer paints territories missing from
// the map as UnknownGroup.
func TerritoryTones(records domain.Collection) map[string]string {
	type stat struct {
		count int
		first int
	}
	perTerritory := map[string]map[string]stat{}
	for i := range records {
		territory := records[i].Territory
		if territory == "" {
			continue
		}
		tones := perTerritory[territory]
		if tones == nil {
			tones = map[string]stat{}
			perTerritory[territory] = tones
		}
		s, seen := tones[records[i].Tonality]
		if !seen {
			s.first = i
		}
		s.count++
		tones[records[i].Tonality] = s
	}

	out := make(map[string]string, len(perTerritory))
	for territory, tones := range perTerritory {
		var modal string
		var best stat
		found := false
		for tonality, s := range tones {
			if !found || s.count > best.count || (s.count == best.count && s.first < best.first) {
				modal, best, found = tonality, s, true
			}
		}
		out[territory] = domain.ToneGroup(modal)
	}
	return out
}

// WordCount is one entry of the word-cloud feed.
type WordCount struct {
	Word  string
	Count int
}

// WordFrequencies tokenizes the normalized subject and article text of every
// record, drops stopwords and single-rune tokens, and returns up to maxWords
// entries sorted by descending count then word.
func WordFrequencies(records domain.Collection, stopwords []string, maxWords int) []WordCount {
	stop := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stop[normalize.Text(w)] = struct{}{}
	}

	counts := map[string]int{}
	for i := range records {
		text := normalize.Text(records[i].Subject + " " + records[i].Text)
		for _, token := range strings.FieldsFunc(text, notWordRune) {
			if len([]rune(token)) < 2 {
				continue
			}
			if _, skip := stop[token]; skip {
				continue
			}
			counts[token]++
		}
	}

	words := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		words = append(words, WordCount{Word: word, Count: count})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})

	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return words
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
}

// Page slices the subset for the data table. Pages are zero-based; anything
// out of range yields an empty page.
func Page(records domain.Collection, page, size int) domain.Collection {
	if size <= 0 || page < 0 {
		return nil
	}
	start := page * size
	if start >= len(records) {
		return nil
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// PageCount returns how many pages the subset fills at the given size.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
