package publication

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jpmattern/pubgen/internal/bibtex"
	"github.com/jpmattern/pubgen/internal/config"
)

func testEntry(fields map[string]string) bibtex.Entry {
	return bibtex.Entry{Type: "article", Key: "Mattern2017", Fields: fields}
}

func fullEntry() bibtex.Entry {
	return testEntry(map[string]string{
		"author":   "Mattern, Jann Paul and Edwards, Christopher A.",
		"title":    "{A simple scheme}",
		"journal":  "Journal of Testing",
		"year":     "2017",
		"doi":      "10.1002/2016MS000874",
		"abstract": "An abstract.",
	})
}

var testDefaults = config.Defaults{Selected: false, Math: true}

var testMapping = map[string]int{"article": 2, "inproceedings": 1}

func fixedNow() time.Time {
	return time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
}

func build(t *testing.T, entry bibtex.Entry, ov config.Override, opts Options) Record {
	t.Helper()
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	rec, err := Build("pubkey", entry, ov, testDefaults, testMapping, opts)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return rec
}

func TestBuild_FromEntry(t *testing.T) {
	rec := build(t, fullEntry(), config.Override{}, Options{})

	if rec.Title != "A simple scheme" {
		t.Errorf("Title = %q (braces should be stripped)", rec.Title)
	}
	wantAuthors := []string{"Jann Paul Mattern", "Christopher A. Edwards"}
	if !reflect.DeepEqual(rec.Authors, wantAuthors) {
		t.Errorf("Authors = %v, want %v", rec.Authors, wantAuthors)
	}
	if rec.Publication != "in *Journal of Testing*" {
		t.Errorf("Publication = %q", rec.Publication)
	}
	if !reflect.DeepEqual(rec.PublicationTypes, []int{2}) {
		t.Errorf("PublicationTypes = %v, want [2]", rec.PublicationTypes)
	}
	if rec.DOI != "10.1002/2016MS000874" {
		t.Errorf("DOI = %q", rec.DOI)
	}
	if rec.Selected || !rec.Math {
		t.Errorf("flags not taken from defaults: selected=%v math=%v", rec.Selected, rec.Math)
	}
	if len(rec.Projects) != 0 || len(rec.Tags) != 0 {
		t.Errorf("Projects/Tags should default to empty, got %v / %v", rec.Projects, rec.Tags)
	}
}

func TestBuild_DateDefaultsMonthAndDay(t *testing.T) {
	entry := fullEntry()
	entry.Fields["year"] = "2021"
	rec := build(t, entry, config.Override{}, Options{})
	if rec.Date != "2021-01-01T00:00:00" {
		t.Errorf("Date = %q, want 2021-01-01T00:00:00", rec.Date)
	}
}

func TestBuild_DateYearDefaultsToCurrentYear(t *testing.T) {
	entry := fullEntry()
	delete(entry.Fields, "year")
	rec := build(t, entry, config.Override{}, Options{})
	if rec.Date != "2026-01-01T00:00:00" {
		t.Errorf("Date = %q, want 2026-01-01T00:00:00", rec.Date)
	}
}

func TestBuild_DateNumericMonthAndDay(t *testing.T) {
	entry := fullEntry()
	entry.Fields["month"] = "3"
	entry.Fields["day"] = "14"
	rec := build(t, entry, config.Override{}, Options{})
	if rec.Date != "2017-03-14T00:00:00" {
		t.Errorf("Date = %q, want 2017-03-14T00:00:00", rec.Date)
	}
}

func TestBuild_DateTextualMonthFallsBack(t *testing.T) {
	entry := fullEntry()
	entry.Fields["month"] = "mar"
	rec := build(t, entry, config.Override{}, Options{})
	if rec.Date != "2017-03-01T00:00:00" {
		t.Errorf("Date = %q, want 2017-03-01T00:00:00", rec.Date)
	}
}

func TestBuild_DateOverrideWinsVerbatim(t *testing.T) {
	rec := build(t, fullEntry(), config.Override{Date: "2020-12-24T00:00:00"}, Options{})
	if rec.Date != "2020-12-24T00:00:00" {
		t.Errorf("Date = %q", rec.Date)
	}
}

func TestBuild_OverridesShadowEntry(t *testing.T) {
	yes := true
	ov := config.Override{
		Title:            "Override Title",
		Authors:          []string{"Solo Author"},
		Publication:      "Override Venue",
		Abstract:         "Override abstract.",
		DOI:              "10.9/override",
		PublicationTypes: []int{7},
		Selected:         &yes,
		Math:             new(bool),
		Projects:         []string{"proj"},
		Tags:             []string{"tag"},
	}
	rec := build(t, fullEntry(), ov, Options{})

	if rec.Title != "Override Title" {
		t.Errorf("Title = %q", rec.Title)
	}
	if !reflect.DeepEqual(rec.Authors, []string{"Solo Author"}) {
		t.Errorf("Authors = %v", rec.Authors)
	}
	if rec.Publication != "Override Venue" {
		t.Errorf("Publication = %q", rec.Publication)
	}
	if rec.Abstract != "Override abstract." {
		t.Errorf("Abstract = %q", rec.Abstract)
	}
	if rec.DOI != "10.9/override" {
		t.Errorf("DOI = %q", rec.DOI)
	}
	if !reflect.DeepEqual(rec.PublicationTypes, []int{7}) {
		t.Errorf("PublicationTypes = %v", rec.PublicationTypes)
	}
	if !rec.Selected || rec.Math {
		t.Errorf("flags not overridden: selected=%v math=%v", rec.Selected, rec.Math)
	}
}

func TestBuild_UnmappedTypeIsUncategorized(t *testing.T) {
	entry := fullEntry()
	entry.Type = "misc"
	rec := build(t, entry, config.Override{}, Options{})
	if !reflect.DeepEqual(rec.PublicationTypes, []int{UncategorizedType}) {
		t.Errorf("PublicationTypes = %v, want [0]", rec.PublicationTypes)
	}
}

func TestBuild_RequiredFields(t *testing.T) {
	for _, field := range []string{"title", "author", "journal", "abstract", "doi"} {
		t.Run(field, func(t *testing.T) {
			entry := fullEntry()
			delete(entry.Fields, field)
			_, err := Build("pubkey", entry, config.Override{}, testDefaults, testMapping, Options{Now: fixedNow})
			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("Build() error = %v, want MissingFieldError", err)
			}
		})
	}
}

func TestBuild_MissingDOIFromBothSources(t *testing.T) {
	entry := fullEntry()
	delete(entry.Fields, "doi")
	_, err := Build("pubkey", entry, config.Override{}, testDefaults, testMapping, Options{Now: fixedNow})
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("Build() error = %v, want MissingFieldError", err)
	}
	if missing.Field != "doi" {
		t.Errorf("Field = %q, want doi", missing.Field)
	}
}

func TestBuild_DOISniffedFromPDF(t *testing.T) {
	entry := fullEntry()
	delete(entry.Fields, "doi")
	ov := config.Override{PDF: "paper.pdf"}
	opts := Options{
		Now: fixedNow,
		SniffDOI: func(path string) (string, error) {
			if path != "paper.pdf" {
				t.Errorf("sniffer got path %q", path)
			}
			return "10.7/sniffed", nil
		},
	}
	rec, err := Build("pubkey", entry, ov, testDefaults, testMapping, opts)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if rec.DOI != "10.7/sniffed" {
		t.Errorf("DOI = %q, want the sniffed value", rec.DOI)
	}
}

func TestBuild_URLPDFFromDOI(t *testing.T) {
	entry := fullEntry()
	entry.Fields["doi"] = "10.1/x"

	rec := build(t, entry, config.Override{}, Options{URLPDFUseDOI: true})
	if rec.URLs["url_pdf"] != "https://doi.org/10.1/x" {
		t.Errorf("url_pdf = %q, want https://doi.org/10.1/x", rec.URLs["url_pdf"])
	}

	rec = build(t, entry, config.Override{}, Options{URLPDFUseDOI: false})
	if _, ok := rec.URLs["url_pdf"]; ok {
		t.Error("url_pdf should be omitted when synthesis is disabled")
	}

	ov := config.Override{URLs: map[string]string{"url_pdf": "https://example.org/p.pdf"}}
	rec = build(t, entry, ov, Options{URLPDFUseDOI: true})
	if rec.URLs["url_pdf"] != "https://example.org/p.pdf" {
		t.Errorf("explicit url_pdf override lost: %q", rec.URLs["url_pdf"])
	}
}

func TestBuild_AbstractSanitization(t *testing.T) {
	entry := fullEntry()
	entry.Fields["abstract"] = `Accuracy above 99{\%} was "remarkable".`
	rec := build(t, entry, config.Override{}, Options{})
	want := `Accuracy above 99% was \"remarkable\".`
	if rec.Abstract != want {
		t.Errorf("Abstract = %q, want %q", rec.Abstract, want)
	}
}

func TestBuild_OverrideAbstractQuotesNotEscaped(t *testing.T) {
	ov := config.Override{Abstract: `Already "escaped" upstream with 99{\%}.`}
	rec := build(t, fullEntry(), ov, Options{})
	want := `Already "escaped" upstream with 99%.`
	if rec.Abstract != want {
		t.Errorf("Abstract = %q, want %q", rec.Abstract, want)
	}
}

func TestRecord_SortedURLNames(t *testing.T) {
	rec := Record{URLs: map[string]string{"url_pdf": "a", "url_code": "b", "url_dataset": "c"}}
	want := []string{"url_code", "url_dataset", "url_pdf"}
	if got := rec.SortedURLNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("SortedURLNames() = %v, want %v", got, want)
	}
}
