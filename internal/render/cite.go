package render

import (
	"fmt"
	"strings"

	"github.com/jpmattern/pubgen/internal/bibtex"
)

// CiteSnippet renders a minimal bibtex-like stub containing only the
// whitelisted fields present in the entry, in whitelist order. It feeds
// the site's "copy citation" button.
func CiteSnippet(entry bibtex.Entry, whitelist []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s\n", entry.Type, entry.Key)

	first := true
	for _, field := range whitelist {
		value, ok := entry.Fields[field]
		if !ok {
			continue
		}
		if !first {
			b.WriteString(",\n")
		}
		first = false
		fmt.Fprintf(&b, "    %s = {%s}", field, value)
	}

	b.WriteString("\n}\n")
	return b.String()
}
