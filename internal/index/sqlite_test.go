package index

import (
	"path/filepath"
	"reflect"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), File))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRows() []Row {
	return []Row{
		{
			Key:     "mattern17",
			Title:   "A simple scheme",
			Date:    "2017-03-01T00:00:00",
			DOI:     "10.1002/2016MS000874",
			Venue:   "in *Journal of Testing*",
			Authors: []string{"Jann Paul Mattern", "Christopher A. Edwards"},
			Types:   []int{2},
		},
		{
			Key:     "smith20",
			Title:   "Second Entry",
			Date:    "2020-01-01T00:00:00",
			DOI:     "10.5555/12345",
			Authors: []string{"John Smith"},
			Types:   []int{1},
		},
	}
}

func TestPath(t *testing.T) {
	want := filepath.Join("content", Dir, File)
	if got := Path("content"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestRebuildAndList(t *testing.T) {
	db := openTestDB(t)

	rows := sampleRows()
	n, err := db.Rebuild(rows)
	if err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	if n != 2 {
		t.Errorf("Rebuild() = %d, want 2", n)
	}

	got, err := db.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("List() = %+v, want %+v", got, rows)
	}
}

func TestRebuild_ReplacesPreviousContents(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.Rebuild(sampleRows()); err != nil {
		t.Fatal(err)
	}
	replacement := []Row{{Key: "only", Title: "T", Date: "2021-01-01T00:00:00", DOI: "10.1/x", Authors: []string{"A"}, Types: []int{0}}}
	if _, err := db.Rebuild(replacement); err != nil {
		t.Fatal(err)
	}

	count, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Count() = %d after rebuild, want 1", count)
	}

	got, err := db.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Key != "only" {
		t.Errorf("List() = %+v, want just the replacement row", got)
	}
}

func TestCount_Empty(t *testing.T) {
	db := openTestDB(t)
	count, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Count() = %d on a fresh index, want 0", count)
	}
}
