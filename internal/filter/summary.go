package filter

import (
	"fmt"
	"strings"
)

const summaryMaxValues = 3

// Summary renders the accordion header describing one column's active filter.
// With no selection it reads "Filtrer par {label}"; otherwise up to three
// selected values are listed, with an ellipsis when more are active.
func Summary(label string, selected []string) string {
	if len(selected) == 0 {
		return fmt.Sprintf("Filtrer par %s", label)
	}
	if len(selected) <= summaryMaxValues {
		return fmt.Sprintf("Filtrer par %s: %s", label, strings.Join(selected, ", "))
	}
	return fmt.Sprintf("Filtrer par %s: %s...", label, strings.Join(selected[:summaryMaxValues], ", "))
}
