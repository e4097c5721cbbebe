// Package config handles build configuration.
//
// A configuration file is loaded once at startup and treated as read-only
// for the rest of the run. The format is chosen by file extension: .toml,
// .json, or .yaml/.yml.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Output modes.
const (
	ModePages     = "pages"     // one directory per publication
	ModeAggregate = "aggregate" // a single grouped document
)

// DefaultAggregateFile is the aggregate-mode output file name.
const DefaultAggregateFile = "publications.yaml"

// KeyError indicates a required configuration key is absent.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("cannot find required entry %q in configuration file", e.Key)
}

// Config is the validated, immutable build configuration.
type Config struct {
	BibtexFile    string
	BuildDir      string
	Defaults      Defaults
	URLPDFUseDOI  bool
	Publications  map[string]Override
	CiteFields    []string       // field whitelist for citation snippets
	TypeMapping   map[string]int // bibtex type -> publication type code
	Header        string
	Footer        string
	Mode          string
	AggregateFile string
}

// Defaults holds per-field fallback values applied when neither the
// override nor the bibliography provides one.
type Defaults struct {
	Selected bool
	Math     bool
}

// Override is the per-publication configuration. Every field takes
// precedence over the corresponding bibliography value when present.
type Override struct {
	BibtexKey        string
	Title            string
	Date             string
	Authors          []string
	PublicationTypes []int
	Publication      string
	PublicationShort string
	Abstract         string
	AbstractShort    string
	Selected         *bool
	Math             *bool
	Projects         []string
	Tags             []string
	DOI              string
	Image            string
	PDF              string
	URLs             map[string]string // keyed by the full "url_*" name
}

// rawConfig mirrors the on-disk layout for all three supported formats.
// Pointer and nil-able fields distinguish "absent" from zero values so that
// missing required keys surface as KeyError.
type rawConfig struct {
	BibtexFile    string                    `json:"bibtexfile" toml:"bibtexfile" yaml:"bibtexfile"`
	BuildDir      string                    `json:"builddir" toml:"builddir" yaml:"builddir"`
	Defaults      map[string]any            `json:"defaults" toml:"defaults" yaml:"defaults"`
	URLPDFUseDOI  *bool                     `json:"url_pdf_usedoi" toml:"url_pdf_usedoi" yaml:"url_pdf_usedoi"`
	Publications  map[string]map[string]any `json:"publications" toml:"publications" yaml:"publications"`
	CiteFields    []string                  `json:"citebibtexentries" toml:"citebibtexentries" yaml:"citebibtexentries"`
	TypeMapping   map[string]int            `json:"publicationtype_mapping" toml:"publicationtype_mapping" yaml:"publicationtype_mapping"`
	Partials      *rawPartials              `json:"partials" toml:"partials" yaml:"partials"`
	Mode          string                    `json:"mode" toml:"mode" yaml:"mode"`
	AggregateFile string                    `json:"aggregatefile" toml:"aggregatefile" yaml:"aggregatefile"`
}

type rawPartials struct {
	Header *string `json:"header" toml:"header" yaml:"header"`
	Footer *string `json:"footer" toml:"footer" yaml:"footer"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var raw rawConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = toml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing configuration %q: %w", path, err)
	}

	return raw.validate()
}

func (r *rawConfig) validate() (*Config, error) {
	switch {
	case r.BibtexFile == "":
		return nil, &KeyError{Key: "bibtexfile"}
	case r.BuildDir == "":
		return nil, &KeyError{Key: "builddir"}
	case r.Defaults == nil:
		return nil, &KeyError{Key: "defaults"}
	case r.URLPDFUseDOI == nil:
		return nil, &KeyError{Key: "url_pdf_usedoi"}
	case r.Publications == nil:
		return nil, &KeyError{Key: "publications"}
	case r.CiteFields == nil:
		return nil, &KeyError{Key: "citebibtexentries"}
	case r.TypeMapping == nil:
		return nil, &KeyError{Key: "publicationtype_mapping"}
	case r.Partials == nil || r.Partials.Header == nil:
		return nil, &KeyError{Key: "partials.header"}
	case r.Partials.Footer == nil:
		return nil, &KeyError{Key: "partials.footer"}
	}

	defaults, err := parseDefaults(r.Defaults)
	if err != nil {
		return nil, err
	}

	mode := r.Mode
	if mode == "" {
		mode = ModePages
	}
	if mode != ModePages && mode != ModeAggregate {
		return nil, fmt.Errorf("unknown mode %q (want %q or %q)", mode, ModePages, ModeAggregate)
	}

	aggregateFile := r.AggregateFile
	if aggregateFile == "" {
		aggregateFile = DefaultAggregateFile
	}

	publications := make(map[string]Override, len(r.Publications))
	for key, fields := range r.Publications {
		ov, err := overrideFromMap(fields)
		if err != nil {
			return nil, fmt.Errorf("publication %q: %w", key, err)
		}
		publications[key] = ov
	}

	return &Config{
		BibtexFile:    r.BibtexFile,
		BuildDir:      r.BuildDir,
		Defaults:      defaults,
		URLPDFUseDOI:  *r.URLPDFUseDOI,
		Publications:  publications,
		CiteFields:    r.CiteFields,
		TypeMapping:   r.TypeMapping,
		Header:        *r.Partials.Header,
		Footer:        *r.Partials.Footer,
		Mode:          mode,
		AggregateFile: aggregateFile,
	}, nil
}

func parseDefaults(m map[string]any) (Defaults, error) {
	selected, ok := m["selected"].(bool)
	if !ok {
		return Defaults{}, &KeyError{Key: "defaults.selected"}
	}
	math, ok := m["math"].(bool)
	if !ok {
		return Defaults{}, &KeyError{Key: "defaults.math"}
	}
	return Defaults{Selected: selected, Math: math}, nil
}

// overrideFromMap converts a free-form publication table into a typed
// Override. Unknown keys other than "url_*" are ignored.
func overrideFromMap(fields map[string]any) (Override, error) {
	var ov Override
	for name, value := range fields {
		var err error
		switch name {
		case "bibtexkey":
			ov.BibtexKey, err = asString(value)
		case "title":
			ov.Title, err = asString(value)
		case "date":
			ov.Date, err = asDateString(value)
		case "authors":
			ov.Authors, err = asStringList(value)
		case "publication_types":
			ov.PublicationTypes, err = asIntList(value)
		case "publication":
			ov.Publication, err = asString(value)
		case "publication_short":
			ov.PublicationShort, err = asString(value)
		case "abstract":
			ov.Abstract, err = asString(value)
		case "abstract_short":
			ov.AbstractShort, err = asString(value)
		case "selected":
			ov.Selected, err = asBoolPtr(value)
		case "math":
			ov.Math, err = asBoolPtr(value)
		case "projects":
			ov.Projects, err = asStringList(value)
		case "tags":
			ov.Tags, err = asStringList(value)
		case "doi":
			ov.DOI, err = asString(value)
		case "image":
			ov.Image, err = asString(value)
		case "pdf":
			ov.PDF, err = asString(value)
		default:
			if strings.HasPrefix(name, "url_") {
				var url string
				if url, err = asString(value); err == nil {
					if ov.URLs == nil {
						ov.URLs = make(map[string]string)
					}
					ov.URLs[name] = url
				}
			}
		}
		if err != nil {
			return Override{}, fmt.Errorf("field %q: %w", name, err)
		}
	}
	return ov, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

// asDateString accepts either a string or a native datetime value (TOML and
// YAML decode unquoted dates as time.Time).
func asDateString(v any) (string, error) {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02T15:04:05"), nil
	}
	return asString(v)
}

func asBoolPtr(v any) (*bool, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("expected bool, got %T", v)
	}
	return &b, nil
}

func asStringList(v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list of strings, got %T", v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := asString(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// asIntList accepts a single integer or a list of integers. JSON decodes
// numbers as float64, TOML as int64, YAML as int.
func asIntList(v any) ([]int, error) {
	if n, ok := asInt(v); ok {
		return []int{n}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected integer or list of integers, got %T", v)
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := asInt(item)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %T", item)
		}
		out = append(out, n)
	}
	return out, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
