package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const tomlConfig = `bibtexfile = "library.bib"
builddir = "content/publication"
url_pdf_usedoi = true
citebibtexentries = ["author", "title", "journal", "year", "doi"]

[defaults]
selected = false
math = true

[publicationtype_mapping]
article = 2
inproceedings = 1

[partials]
header = "+++\n"
footer = "+++\n"

[publications.mattern17]
bibtexkey = "Mattern2017"
publication_types = 2
url_code = "https://github.com/example/code"
url_dataset = "https://example.org/data"

[publications.smith20]
title = "Override Title"
selected = true
tags = ["ocean", "model"]
`

const jsonConfig = `{
  "bibtexfile": "library.bib",
  "builddir": "content/publication",
  "url_pdf_usedoi": false,
  "citebibtexentries": ["title"],
  "defaults": {"selected": true, "math": false},
  "publicationtype_mapping": {"article": 2},
  "partials": {"header": "", "footer": ""},
  "publications": {
    "key1": {"publication_types": [2, 3], "doi": "10.1/x"}
  }
}`

const yamlConfig = `bibtexfile: library.bib
builddir: content/publication
url_pdf_usedoi: true
citebibtexentries: [title, year]
defaults:
  selected: false
  math: false
publicationtype_mapping:
  article: 2
partials:
  header: "+++\n"
  footer: "+++\n"
publications:
  key1:
    date: "2021-05-01T00:00:00"
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_TOML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "buildconfig.toml", tomlConfig))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.BibtexFile != "library.bib" {
		t.Errorf("BibtexFile = %q", cfg.BibtexFile)
	}
	if !cfg.URLPDFUseDOI {
		t.Error("URLPDFUseDOI = false, want true")
	}
	if cfg.Defaults.Selected || !cfg.Defaults.Math {
		t.Errorf("Defaults = %+v", cfg.Defaults)
	}
	if cfg.TypeMapping["article"] != 2 {
		t.Errorf("TypeMapping[article] = %d, want 2", cfg.TypeMapping["article"])
	}
	if cfg.Mode != ModePages {
		t.Errorf("Mode = %q, want default %q", cfg.Mode, ModePages)
	}
	if cfg.AggregateFile != DefaultAggregateFile {
		t.Errorf("AggregateFile = %q", cfg.AggregateFile)
	}

	mattern := cfg.Publications["mattern17"]
	if mattern.BibtexKey != "Mattern2017" {
		t.Errorf("BibtexKey = %q", mattern.BibtexKey)
	}
	// A single integer is accepted for publication_types.
	if len(mattern.PublicationTypes) != 1 || mattern.PublicationTypes[0] != 2 {
		t.Errorf("PublicationTypes = %v, want [2]", mattern.PublicationTypes)
	}
	if mattern.URLs["url_code"] != "https://github.com/example/code" {
		t.Errorf("URLs = %v", mattern.URLs)
	}
	if mattern.URLs["url_dataset"] != "https://example.org/data" {
		t.Errorf("URLs = %v", mattern.URLs)
	}

	smith := cfg.Publications["smith20"]
	if smith.Title != "Override Title" {
		t.Errorf("Title = %q", smith.Title)
	}
	if smith.Selected == nil || !*smith.Selected {
		t.Errorf("Selected = %v, want true", smith.Selected)
	}
	if len(smith.Tags) != 2 {
		t.Errorf("Tags = %v", smith.Tags)
	}
}

func TestLoad_JSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, "buildconfig.json", jsonConfig))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.URLPDFUseDOI {
		t.Error("URLPDFUseDOI = true, want false")
	}
	ov := cfg.Publications["key1"]
	if len(ov.PublicationTypes) != 2 || ov.PublicationTypes[0] != 2 || ov.PublicationTypes[1] != 3 {
		t.Errorf("PublicationTypes = %v, want [2 3]", ov.PublicationTypes)
	}
	if ov.DOI != "10.1/x" {
		t.Errorf("DOI = %q", ov.DOI)
	}
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "buildconfig.yaml", yamlConfig))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Publications["key1"].Date != "2021-05-01T00:00:00" {
		t.Errorf("Date = %q", cfg.Publications["key1"].Date)
	}
}

func TestLoad_MissingRequiredKeys(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantKey string
	}{
		{
			name:    "no bibtexfile",
			content: `builddir = "out"`,
			wantKey: "bibtexfile",
		},
		{
			name: "no partials footer",
			content: `bibtexfile = "a.bib"
builddir = "out"
url_pdf_usedoi = false
citebibtexentries = []
[defaults]
selected = false
math = false
[publicationtype_mapping]
[publications]
[partials]
header = ""
`,
			wantKey: "partials.footer",
		},
		{
			name: "defaults without selected",
			content: `bibtexfile = "a.bib"
builddir = "out"
url_pdf_usedoi = false
citebibtexentries = []
[defaults]
math = false
[publicationtype_mapping]
[publications]
[partials]
header = ""
footer = ""
`,
			wantKey: "defaults.selected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "buildconfig.toml", tt.content))
			var keyErr *KeyError
			if !errors.As(err, &keyErr) {
				t.Fatalf("Load() error = %v, want KeyError", err)
			}
			if keyErr.Key != tt.wantKey {
				t.Errorf("KeyError.Key = %q, want %q", keyErr.Key, tt.wantKey)
			}
		})
	}
}

func TestLoad_BadMode(t *testing.T) {
	content := `bibtexfile = "a.bib"
builddir = "out"
url_pdf_usedoi = false
citebibtexentries = []
mode = "sideways"
[defaults]
selected = false
math = false
[publicationtype_mapping]
[publications]
[partials]
header = ""
footer = ""
`
	if _, err := Load(writeConfig(t, "buildconfig.toml", content)); err == nil {
		t.Fatal("Load() should reject unknown mode")
	}
}
