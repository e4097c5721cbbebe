package bibtex

import (
	"regexp"
	"strings"
)

var (
	// Author names are separated by a standalone "and" token. Splitting on
	// the bounded word keeps names like "Anderson" intact.
	authorSep = regexp.MustCompile(`\s+and\s+`)

	interiorSpace = regexp.MustCompile(`\s+`)
)

// Authors normalizes a raw BibTeX author field into an ordered list of
// display names. Names written as "Last, First" are inverted to
// "First Last"; repeated interior whitespace is collapsed. Order is
// preserved from the bibliography.
func Authors(raw string) []string {
	raw = strings.Trim(raw, " {}")
	if raw == "" {
		return nil
	}

	var names []string
	for _, name := range authorSep.Split(raw, -1) {
		if strings.Contains(name, ",") {
			// Mattern, Jann Paul -> Jann Paul Mattern
			segments := strings.Split(name, ",")
			for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
				segments[i], segments[j] = segments[j], segments[i]
			}
			name = strings.Join(segments, " ")
		}
		name = strings.TrimSpace(interiorSpace.ReplaceAllString(name, " "))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
