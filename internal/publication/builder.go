package publication

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/jpmattern/pubgen/internal/bibtex"
	"github.com/jpmattern/pubgen/internal/config"
)

// dateLayout is ISO-8601 at seconds precision.
const dateLayout = "2006-01-02T15:04:05"

// Options control optional builder behavior.
type Options struct {
	// URLPDFUseDOI synthesizes url_pdf from the DOI when no explicit
	// url_pdf override exists.
	URLPDFUseDOI bool

	// SniffDOI, when set, is consulted as a last resort for publications
	// whose override names a PDF but neither source carries a DOI.
	SniffDOI func(pdfPath string) (string, error)

	// Now is the clock used for the year fallback. Defaults to time.Now.
	Now func() time.Time
}

// Build merges a bibliography entry with its override configuration into a
// finalized Record. Override values always win; required fields missing
// from both sources fail with MissingFieldError.
func Build(key string, entry bibtex.Entry, ov config.Override, defaults config.Defaults, typeMapping map[string]int, opts Options) (Record, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	rec := Record{
		Key:       key,
		BibtexKey: entry.Key,
		EntryType: entry.Type,
	}

	missing := func(field string) error {
		return &MissingFieldError{Field: field, Key: key, BibtexKey: entry.Key}
	}

	// title
	switch {
	case ov.Title != "":
		rec.Title = ov.Title
	case entry.Fields["title"] != "":
		rec.Title = strings.Trim(entry.Fields["title"], " {}")
	default:
		return Record{}, missing("title")
	}

	// date
	date, err := resolveDate(entry, ov, opts.Now)
	if err != nil {
		return Record{}, fmt.Errorf("resolving date for %q: %w", key, err)
	}
	rec.Date = date

	// authors
	switch {
	case len(ov.Authors) > 0:
		rec.Authors = ov.Authors
	case entry.Fields["author"] != "":
		rec.Authors = bibtex.Authors(entry.Fields["author"])
	}
	if len(rec.Authors) == 0 {
		return Record{}, missing("authors")
	}

	// publication type codes
	switch {
	case len(ov.PublicationTypes) > 0:
		rec.PublicationTypes = ov.PublicationTypes
	default:
		if code, ok := typeMapping[entry.Type]; ok {
			rec.PublicationTypes = []int{code}
		} else {
			rec.PublicationTypes = []int{UncategorizedType}
		}
	}

	// venue
	switch {
	case ov.Publication != "":
		rec.Publication = ov.Publication
	case entry.Fields["journal"] != "":
		rec.Publication = fmt.Sprintf("in *%s*", entry.Fields["journal"])
	default:
		return Record{}, missing("publication")
	}
	rec.PublicationShort = ov.PublicationShort

	// abstract
	switch {
	case ov.Abstract != "":
		rec.Abstract = ov.Abstract
	case entry.Fields["abstract"] != "":
		rec.Abstract = strings.ReplaceAll(entry.Fields["abstract"], `"`, `\"`)
	default:
		return Record{}, missing("abstract")
	}
	// Bibtex escapes literal percent signs.
	rec.Abstract = strings.ReplaceAll(rec.Abstract, `{\%}`, "%")
	rec.AbstractShort = ov.AbstractShort

	// flags with configured defaults
	rec.Selected = defaults.Selected
	if ov.Selected != nil {
		rec.Selected = *ov.Selected
	}
	rec.Math = defaults.Math
	if ov.Math != nil {
		rec.Math = *ov.Math
	}

	// optional collections
	rec.Projects = ov.Projects
	if rec.Projects == nil {
		rec.Projects = []string{}
	}
	rec.Tags = ov.Tags
	if rec.Tags == nil {
		rec.Tags = []string{}
	}

	// doi
	doi, err := resolveDOI(entry, ov, opts.SniffDOI)
	if err != nil {
		return Record{}, err
	}
	if doi == "" {
		return Record{}, missing("doi")
	}
	rec.DOI = doi

	// urls
	rec.URLs = make(map[string]string, len(ov.URLs)+1)
	for name, url := range ov.URLs {
		rec.URLs[name] = url
	}
	if _, ok := rec.URLs["url_pdf"]; !ok && opts.URLPDFUseDOI {
		rec.URLs["url_pdf"] = "https://doi.org/" + rec.DOI
	}

	return rec, nil
}

// resolveDate returns the override date verbatim, or constructs an ISO-8601
// date from the entry's year/month/day fields. Month and day default to 1
// and the year to the current calendar year. A month given as text (or any
// other non-numeric component) goes through a free-text date parse before
// failing.
func resolveDate(entry bibtex.Entry, ov config.Override, now func() time.Time) (string, error) {
	if ov.Date != "" {
		return ov.Date, nil
	}

	yearStr := strconv.Itoa(now().Year())
	monthStr := "1"
	dayStr := "1"
	if v, ok := entry.Fields["year"]; ok {
		yearStr = strings.TrimSpace(v)
	}
	if v, ok := entry.Fields["month"]; ok {
		monthStr = strings.TrimSpace(v)
	}
	if v, ok := entry.Fields["day"]; ok {
		dayStr = strings.TrimSpace(v)
	}

	year, errY := strconv.Atoi(yearStr)
	month, errM := strconv.Atoi(monthStr)
	day, errD := strconv.Atoi(dayStr)
	if errY == nil && errM == nil && errD == nil &&
		month >= 1 && month <= 12 && day >= 1 && day <= 31 {
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(dateLayout), nil
	}

	t, err := dateparse.ParseAny(fmt.Sprintf("%s %s, %s", capitalize(monthStr), dayStr, yearStr))
	if err != nil {
		return "", fmt.Errorf("unparseable date %q/%q/%q: %w", yearStr, monthStr, dayStr, err)
	}
	return t.Format(dateLayout), nil
}

// capitalize uppercases the first byte so that bibtex month abbreviations
// like "mar" read as month names to the date parser.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// resolveDOI picks the DOI from the override, then the entry, then (when a
// sniffer is configured and the override attaches a PDF) from the PDF text.
func resolveDOI(entry bibtex.Entry, ov config.Override, sniff func(string) (string, error)) (string, error) {
	if ov.DOI != "" {
		return ov.DOI, nil
	}
	if doi := entry.Fields["doi"]; doi != "" {
		return doi, nil
	}
	if sniff != nil && ov.PDF != "" {
		doi, err := sniff(ov.PDF)
		if err != nil {
			return "", fmt.Errorf("extracting DOI from %q: %w", ov.PDF, err)
		}
		return doi, nil
	}
	return "", nil
}

// SortedURLNames returns the record's url_* names in lexical order so that
// rendering is deterministic across runs.
func (r Record) SortedURLNames() []string {
	names := make([]string, 0, len(r.URLs))
	for name := range r.URLs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
