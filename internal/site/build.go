// Package site orchestrates the per-publication build: extract the
// bibliography entry, merge it with override configuration, and write the
// selected output format.
package site

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jpmattern/pubgen/internal/bibtex"
	"github.com/jpmattern/pubgen/internal/config"
	"github.com/jpmattern/pubgen/internal/index"
	"github.com/jpmattern/pubgen/internal/pdfmeta"
	"github.com/jpmattern/pubgen/internal/publication"
	"github.com/jpmattern/pubgen/internal/render"
)

// Output file names inside a publication bundle.
const (
	FrontMatterFile = "index.md"
	CiteFile        = "cite.bib"
	ImageBasename   = "featured"
	PDFFile         = "paper.pdf"
)

// imageExtensions lists the extensions the site theme is known to render.
var imageExtensions = map[string]bool{".png": true, ".jpg": true}

// Builder runs the build for one configuration. Publications are processed
// sequentially and independently; the first error aborts the run.
type Builder struct {
	cfg          *config.Config
	logf         func(format string, args ...any)
	sniffDOI     func(string) (string, error)
	now          func() time.Time
	bibliography string
	loaded       bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogf sets the progress logger.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(b *Builder) {
		b.logf = logf
	}
}

// WithDOISniffer replaces the PDF DOI extractor (for testing). Passing nil
// disables PDF sniffing.
func WithDOISniffer(sniff func(string) (string, error)) Option {
	return func(b *Builder) {
		b.sniffDOI = sniff
	}
}

// WithClock replaces the clock used for date fallbacks (for testing).
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// New creates a Builder for the given configuration.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		logf:     func(string, ...any) {},
		sniffDOI: pdfmeta.ExtractDOI,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Keys returns the configured publication keys in build order.
func (b *Builder) Keys() []string {
	keys := make([]string, 0, len(b.cfg.Publications))
	for key := range b.cfg.Publications {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Resolve extracts and merges a single publication without writing output.
func (b *Builder) Resolve(key string) (publication.Record, bibtex.Entry, error) {
	if err := b.load(); err != nil {
		return publication.Record{}, bibtex.Entry{}, err
	}

	ov := b.cfg.Publications[key]
	bibKey := ov.BibtexKey
	if bibKey == "" {
		// If no bibtexkey is specified, the publication key is assumed to
		// be the bibtex key.
		bibKey = key
	}

	entry, err := bibtex.Extract(b.bibliography, bibKey)
	if err != nil {
		return publication.Record{}, bibtex.Entry{}, err
	}

	rec, err := publication.Build(key, entry, ov, b.cfg.Defaults, b.cfg.TypeMapping, publication.Options{
		URLPDFUseDOI: b.cfg.URLPDFUseDOI,
		SniffDOI:     b.sniffDOI,
		Now:          b.now,
	})
	if err != nil {
		return publication.Record{}, bibtex.Entry{}, err
	}
	return rec, entry, nil
}

// Run builds every configured publication and writes output according to
// the configured mode. Returns the resolved records in build order.
func (b *Builder) Run() ([]publication.Record, error) {
	var recs []publication.Record
	for _, key := range b.Keys() {
		ov := b.cfg.Publications[key]

		rec, entry, err := b.Resolve(key)
		if err != nil {
			return nil, err
		}
		b.logf("building entries for publication %q (bibtex key: %q)", key, rec.BibtexKey)
		recs = append(recs, rec)

		if b.cfg.Mode == config.ModePages {
			if err := b.writeBundle(rec, entry, ov); err != nil {
				return nil, err
			}
		}
	}

	if b.cfg.Mode == config.ModeAggregate {
		if err := b.writeAggregate(recs); err != nil {
			return nil, err
		}
		return recs, nil
	}

	if err := b.rebuildIndex(recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// load reads the bibliography file once.
func (b *Builder) load() error {
	if b.loaded {
		return nil
	}
	data, err := os.ReadFile(b.cfg.BibtexFile)
	if err != nil {
		return fmt.Errorf("reading bibliography: %w", err)
	}
	b.bibliography = string(data)
	b.loaded = true
	return nil
}

// writeBundle writes one publication directory. The directory is created
// only after the record has fully resolved, so a failed publication never
// leaves a partial bundle behind.
func (b *Builder) writeBundle(rec publication.Record, entry bibtex.Entry, ov config.Override) error {
	dir := filepath.Join(b.cfg.BuildDir, rec.Key)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	front := render.FrontMatter(rec, b.cfg.Header, b.cfg.Footer)
	if err := os.WriteFile(filepath.Join(dir, FrontMatterFile), []byte(front), 0644); err != nil {
		return fmt.Errorf("writing front matter for %s: %w", rec.Key, err)
	}

	cite := render.CiteSnippet(entry, b.cfg.CiteFields)
	if err := os.WriteFile(filepath.Join(dir, CiteFile), []byte(cite), 0644); err != nil {
		return fmt.Errorf("writing citation snippet for %s: %w", rec.Key, err)
	}

	if ov.Image != "" {
		if err := b.copyImage(ov.Image, dir); err != nil {
			return fmt.Errorf("adding image for %s: %w", rec.Key, err)
		}
	}
	if ov.PDF != "" {
		if err := copyFile(ov.PDF, filepath.Join(dir, PDFFile)); err != nil {
			return fmt.Errorf("adding PDF for %s: %w", rec.Key, err)
		}
	}

	return nil
}

// copyImage copies the publication image into the bundle as
// "featured<ext>". An unexpected extension is a warning, not an error.
func (b *Builder) copyImage(src, dir string) error {
	ext := strings.ToLower(filepath.Ext(src))
	b.logf("adding %q as image for this publication", src)
	if !imageExtensions[ext] {
		b.logf("! extension %q may not be supported, image might not show", ext)
	}
	return copyFile(src, filepath.Join(dir, ImageBasename+ext))
}

func (b *Builder) writeAggregate(recs []publication.Record) error {
	doc, err := render.Aggregate(recs)
	if err != nil {
		return fmt.Errorf("rendering aggregate document: %w", err)
	}
	if err := os.MkdirAll(b.cfg.BuildDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", b.cfg.BuildDir, err)
	}
	path := filepath.Join(b.cfg.BuildDir, b.cfg.AggregateFile)
	if err := os.WriteFile(path, doc, 0644); err != nil {
		return fmt.Errorf("writing aggregate document: %w", err)
	}
	b.logf("wrote %d publications to %q", len(recs), path)
	return nil
}

// rebuildIndex repopulates the build index from the resolved records.
func (b *Builder) rebuildIndex(recs []publication.Record) error {
	path := index.Path(b.cfg.BuildDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	db, err := index.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	rows := make([]index.Row, len(recs))
	for i, rec := range recs {
		rows[i] = index.Row{
			Key:     rec.Key,
			Title:   rec.Title,
			Date:    rec.Date,
			DOI:     rec.DOI,
			Venue:   rec.Publication,
			Authors: rec.Authors,
			Types:   rec.PublicationTypes,
		}
	}
	n, err := db.Rebuild(rows)
	if err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	b.logf("indexed %d publications", n)
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
