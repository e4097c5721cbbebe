// Package publication assembles finalized publication records from
// extracted bibliography entries and per-publication overrides.
package publication

import "fmt"

// Record is the merged, finalized set of fields for one publication. It is
// constructed per publication, serialized, and discarded; records carry no
// relation to each other.
type Record struct {
	Key       string `yaml:"key"`
	BibtexKey string `yaml:"bibtexkey"`
	// EntryType is the lowercased bibtex entry type, kept for the citation
	// snippet header.
	EntryType string `yaml:"-"`

	Title            string            `yaml:"title"`
	Date             string            `yaml:"date"`
	Authors          []string          `yaml:"authors"`
	PublicationTypes []int             `yaml:"publication_types"`
	Publication      string            `yaml:"publication"`
	PublicationShort string            `yaml:"publication_short,omitempty"`
	Abstract         string            `yaml:"abstract"`
	AbstractShort    string            `yaml:"abstract_short,omitempty"`
	Selected         bool              `yaml:"selected"`
	Projects         []string          `yaml:"projects"`
	Tags             []string          `yaml:"tags"`
	DOI              string            `yaml:"doi"`
	URLs             map[string]string `yaml:"urls,omitempty"`
	Math             bool              `yaml:"math"`
}

// UncategorizedType is the sentinel publication type code assigned when the
// bibtex entry type has no mapping.
const UncategorizedType = 0

// MissingFieldError indicates a required field is absent from both the
// override and the bibliography entry.
type MissingFieldError struct {
	Field     string
	Key       string // publication key
	BibtexKey string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("cannot find %q information for %q (%s)", e.Field, e.Key, e.BibtexKey)
}
