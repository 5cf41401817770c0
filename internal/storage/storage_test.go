package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gravewood/bossdex/internal/wiki"
)

func TestURLListRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraping", "boss_urls.txt")
	refs := []wiki.PageRef{
		"https://dontstarve.fandom.com/wiki/Ancient_Guardian",
		"https://dontstarve.fandom.com/wiki/Deerclops",
	}

	if err := WriteURLList(path, refs); err != nil {
		t.Fatalf("WriteURLList: %v", err)
	}
	got, err := ReadURLList(path)
	if err != nil {
		t.Fatalf("ReadURLList: %v", err)
	}
	if !reflect.DeepEqual(got, refs) {
		t.Errorf("got %v, want %v", got, refs)
	}
}

func TestWriteURLListReplacesContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	if err := WriteURLList(path, []wiki.PageRef{"https://a.example/wiki/One", "https://a.example/wiki/Two"}); err != nil {
		t.Fatal(err)
	}
	if err := WriteURLList(path, []wiki.PageRef{"https://a.example/wiki/Three"}); err != nil {
		t.Fatal(err)
	}
	got, err := ReadURLList(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "https://a.example/wiki/Three" {
		t.Errorf("got %v, want the rewritten single entry", got)
	}
}

func TestReadURLListSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	os.WriteFile(path, []byte("https://a.example/wiki/One\n\n  \nhttps://a.example/wiki/Two\n"), 0o644)

	got, err := ReadURLList(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d refs, want 2", len(got))
	}
}

func TestReadURLListMissing(t *testing.T) {
	_, err := ReadURLList(filepath.Join(t.TempDir(), "nope.txt"))
	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingInputError", err)
	}
	if missing.Hint == "" {
		t.Error("hint should name the step to run first")
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bosses.csv")
	content := "name,hp,notes\nDeerclops,4000,\"winter, giant\"\nBee Queen,22500,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if !reflect.DeepEqual(set.Header, []string{"name", "hp", "notes"}) {
		t.Errorf("header = %v", set.Header)
	}
	if set.Rows[0][2] != "winter, giant" {
		t.Errorf("quoted field = %q", set.Rows[0][2])
	}

	if err := WriteRecords(path, set); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	again, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords after write: %v", err)
	}
	if !reflect.DeepEqual(again, set) {
		t.Errorf("round trip changed records:\n got %v\nwant %v", again, set)
	}
}

func TestReadRecordsPadsShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bosses.csv")
	os.WriteFile(path, []byte("name,hp,notes\nDeerclops\n"), 0o644)

	set, err := ReadRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Rows[0]) != 3 {
		t.Errorf("row length = %d, want padded to 3", len(set.Rows[0]))
	}
}

func TestReadRecordsMissing(t *testing.T) {
	_, err := ReadRecords(filepath.Join(t.TempDir(), "nope.csv"))
	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingInputError", err)
	}
}

func TestEnsureColumn(t *testing.T) {
	set := &RecordSet{
		Header: []string{"name", "hp"},
		Rows:   [][]string{{"Deerclops", "4000"}},
	}

	idx := set.EnsureColumn("url", 1)
	if idx != 1 {
		t.Errorf("idx = %d, want 1", idx)
	}
	if !reflect.DeepEqual(set.Header, []string{"name", "url", "hp"}) {
		t.Errorf("header = %v", set.Header)
	}
	if !reflect.DeepEqual(set.Rows[0], []string{"Deerclops", "", "4000"}) {
		t.Errorf("row = %v", set.Rows[0])
	}

	// Idempotent: existing column is found, not duplicated
	if again := set.EnsureColumn("url", 1); again != 1 {
		t.Errorf("second EnsureColumn = %d, want 1", again)
	}
	if len(set.Header) != 3 {
		t.Errorf("header grew: %v", set.Header)
	}
}
