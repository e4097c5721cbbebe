// Package bibtex extracts entries from a loosely-structured BibTeX file.
//
// This is intentionally not a general BibTeX parser: values may contain at
// most one level of nested braces, comments are not recognized, and entries
// do not cross-reference each other. The extractor locates a single entry by
// citation key and decomposes it into a flat field map.
package bibtex

import (
	"fmt"
	"regexp"
	"strings"
)

// Entry is a single bibliographic record extracted from a bibliography.
// Fields holds the raw field values with one layer of surrounding braces
// removed. An Entry is immutable once returned by Extract.
type Entry struct {
	Type   string            // lowercased entry type, e.g. "article"
	Key    string            // citation key the entry was matched by
	Fields map[string]string // raw field values
}

// NotFoundError indicates that no entry with the requested key exists.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot find bibtex entry with key %q", e.Key)
}

// MalformedError indicates that only the abstract field was recovered from
// an entry. That pattern means the brace matcher ran past the intended
// entry boundary, usually because the abstract contains an unbalanced
// closing brace.
type MalformedError struct {
	Key string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("only the abstract was obtained for key %q; "+
		"ensure the abstract contains no closing braces without opening ones", e.Key)
}

// entryPattern matches "@type { key" at the start of a line followed by one
// or more ", field = {value}" groups. Values tolerate exactly one level of
// nested braces so that formatting commands inside titles and abstracts
// survive extraction.
const entryPattern = `(?m)^@([a-z]+) *\{ *%s((?: *,\s*\w+ *= *\{(?:\{[^}]+\}|[^{}]+)+\})+)`

// Extract locates the entry with the given citation key in a bibliography
// text blob. The match is line-anchored and case-sensitive.
func Extract(bibliography, key string) (Entry, error) {
	re := regexp.MustCompile(fmt.Sprintf(entryPattern, regexp.QuoteMeta(key)))
	m := re.FindStringSubmatch(bibliography)
	if m == nil {
		return Entry{}, &NotFoundError{Key: key}
	}

	fields := parseOptions(m[2])
	if len(fields) == 1 {
		if _, ok := fields["abstract"]; ok {
			return Entry{}, &MalformedError{Key: key}
		}
	}

	return Entry{
		Type:   strings.ToLower(m[1]),
		Key:    key,
		Fields: fields,
	}, nil
}

// parseOptions splits the raw options block into field name/value pairs.
//
// Fields are separated only at commas outside any brace pair, so commas
// embedded in abstracts and titles never split a value. Fragments without
// an "=" carry no data and are skipped.
func parseOptions(options string) map[string]string {
	fields := make(map[string]string)
	for _, fragment := range splitTopLevel(options) {
		name, value, ok := strings.Cut(fragment, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(name)] = unbrace(strings.TrimSpace(value))
	}
	return fields
}

// splitTopLevel splits on commas at brace depth zero.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// unbrace removes one layer of surrounding braces from a field value.
func unbrace(v string) string {
	if len(v) >= 2 && v[0] == '{' && v[len(v)-1] == '}' {
		return v[1 : len(v)-1]
	}
	return v
}
