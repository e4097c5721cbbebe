// Package render provides the output renderers: per-publication front
// matter, per-publication citation snippets, and the aggregate grouped
// document. All three are independent strategies over the same record
// sequence.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jpmattern/pubgen/internal/publication"
)

// FrontMatter renders a record as a key = value front-matter block wrapped
// by the configured header and footer. Strings are quoted, lists are
// quoted-comma-joined, booleans are literal true/false.
func FrontMatter(rec publication.Record, header, footer string) string {
	var b strings.Builder
	b.WriteString(header)

	fmt.Fprintf(&b, "title = \"%s\"\n", rec.Title)
	fmt.Fprintf(&b, "date = \"%s\"\n", rec.Date)
	fmt.Fprintf(&b, "authors = [\"%s\"]\n", strings.Join(rec.Authors, `", "`))
	fmt.Fprintf(&b, "publication_types = [\"%s\"]\n", joinInts(rec.PublicationTypes, `", "`))
	fmt.Fprintf(&b, "publication = \"%s\"\n", rec.Publication)
	if rec.PublicationShort != "" {
		fmt.Fprintf(&b, "publication_short = \"%s\"\n", rec.PublicationShort)
	}
	fmt.Fprintf(&b, "abstract = \"%s\"\n", rec.Abstract)
	if rec.AbstractShort != "" {
		fmt.Fprintf(&b, "abstract_short = \"%s\"\n", rec.AbstractShort)
	}
	fmt.Fprintf(&b, "selected = %s\n", strconv.FormatBool(rec.Selected))
	fmt.Fprintf(&b, "projects = [%s]\n", quoteJoin(rec.Projects))
	fmt.Fprintf(&b, "tags = [%s]\n", quoteJoin(rec.Tags))
	for _, name := range rec.SortedURLNames() {
		fmt.Fprintf(&b, "%s = \"%s\"\n", name, rec.URLs[name])
	}
	fmt.Fprintf(&b, "doi = \"%s\"\n", rec.DOI)
	fmt.Fprintf(&b, "math = %s\n", strconv.FormatBool(rec.Math))

	b.WriteString(footer)
	return b.String()
}

// quoteJoin renders a list as quoted, comma-separated items. An empty list
// renders as nothing between the brackets.
func quoteJoin(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return `"` + strings.Join(items, `", "`) + `"`
}

func joinInts(ns []int, sep string) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, sep)
}
