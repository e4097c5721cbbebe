package render

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jpmattern/pubgen/internal/publication"
)

// Group is one publication-type section of the aggregate document.
type Group struct {
	PublicationType int                  `yaml:"publication_type"`
	Publications    []publication.Record `yaml:"publications"`
}

// Aggregate renders all records as a single YAML document grouped by the
// first publication-type code, groups ordered by code, records in input
// order within each group.
func Aggregate(recs []publication.Record) ([]byte, error) {
	byType := make(map[int][]publication.Record)
	for _, rec := range recs {
		code := publication.UncategorizedType
		if len(rec.PublicationTypes) > 0 {
			code = rec.PublicationTypes[0]
		}
		byType[code] = append(byType[code], rec)
	}

	codes := make([]int, 0, len(byType))
	for code := range byType {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	groups := make([]Group, 0, len(codes))
	for _, code := range codes {
		groups = append(groups, Group{PublicationType: code, Publications: byType[code]})
	}
	return yaml.Marshal(groups)
}
