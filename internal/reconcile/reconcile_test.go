package reconcile

import (
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/gravewood/bossdex/internal/config"
	"github.com/gravewood/bossdex/internal/storage"
	"github.com/gravewood/bossdex/internal/wiki"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var testAliases = []config.AliasRule{
	{Contains: "Reanimated Skeleton", Title: "Reanimated_Skeleton"},
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Deerclops", "Deerclops"},
		{"  Bee Queen  ", "Bee_Queen"},
		{"Moose/Goose", "Moose/Goose"},
		{"Reanimated Skeleton (Ruins)", "Reanimated_Skeleton"},
		{"Reanimated Skeleton (Caves)", "Reanimated_Skeleton"},
		{"Ancient Fuelweaver", "Ancient_Fuelweaver"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.name, testAliases); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTitleIndex(t *testing.T) {
	refs := []wiki.PageRef{
		"https://dontstarve.fandom.com/wiki/Deerclops",
		"https://dontstarve.fandom.com/wiki/Moose/Goose",
	}
	index := TitleIndex("/wiki/", refs)
	if got := index["Deerclops"]; got != refs[0] {
		t.Errorf("index[Deerclops] = %q", got)
	}
	if got := index["Moose/Goose"]; got != refs[1] {
		t.Errorf("index[Moose/Goose] = %q", got)
	}
}

func testReconciler() *Reconciler {
	cfg := config.DefaultConfig()
	return New(cfg, testLogger)
}

func TestApplyInsertsURLColumn(t *testing.T) {
	set := &storage.RecordSet{
		Header: []string{"name", "hp", "notes"},
		Rows: [][]string{
			{"Deerclops", "4000", "winter"},
			{"Reanimated Skeleton (Ruins)", "4000", "ruins variant"},
			{"Unknown Boss", "1", "not on the wiki"},
		},
	}
	refs := []wiki.PageRef{
		"https://dontstarve.fandom.com/wiki/Deerclops",
		"https://dontstarve.fandom.com/wiki/Reanimated_Skeleton",
	}

	matched, err := testReconciler().Apply(set, refs)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if matched != 2 {
		t.Errorf("matched = %d, want 2", matched)
	}

	wantHeader := []string{"name", "url", "hp", "notes"}
	if !reflect.DeepEqual(set.Header, wantHeader) {
		t.Errorf("header = %v, want %v", set.Header, wantHeader)
	}

	wantRows := [][]string{
		{"Deerclops", "https://dontstarve.fandom.com/wiki/Deerclops", "4000", "winter"},
		{"Reanimated Skeleton (Ruins)", "https://dontstarve.fandom.com/wiki/Reanimated_Skeleton", "4000", "ruins variant"},
		{"Unknown Boss", "", "1", "not on the wiki"},
	}
	if !reflect.DeepEqual(set.Rows, wantRows) {
		t.Errorf("rows = %v, want %v", set.Rows, wantRows)
	}
}

func TestApplyOverwritesExistingURLColumn(t *testing.T) {
	set := &storage.RecordSet{
		Header: []string{"name", "hp", "url"},
		Rows: [][]string{
			{"Deerclops", "4000", "https://stale.example/old"},
			{"Gone Boss", "2", "https://stale.example/gone"},
		},
	}
	refs := []wiki.PageRef{"https://dontstarve.fandom.com/wiki/Deerclops"}

	matched, err := testReconciler().Apply(set, refs)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if matched != 1 {
		t.Errorf("matched = %d, want 1", matched)
	}

	// Existing column keeps its position
	wantHeader := []string{"name", "hp", "url"}
	if !reflect.DeepEqual(set.Header, wantHeader) {
		t.Errorf("header = %v, want %v", set.Header, wantHeader)
	}
	if set.Rows[0][2] != "https://dontstarve.fandom.com/wiki/Deerclops" {
		t.Errorf("url = %q", set.Rows[0][2])
	}
	// A miss clears the stale value to empty string, never panics
	if set.Rows[1][2] != "" {
		t.Errorf("unmatched url = %q, want empty", set.Rows[1][2])
	}
}

func TestApplyMissingNameColumn(t *testing.T) {
	set := &storage.RecordSet{Header: []string{"title"}, Rows: [][]string{{"x"}}}
	if _, err := testReconciler().Apply(set, nil); err == nil {
		t.Fatal("expected error for missing name column")
	}
}

func TestApplySlashTitles(t *testing.T) {
	set := &storage.RecordSet{
		Header: []string{"name"},
		Rows:   [][]string{{"Moose/Goose"}},
	}
	refs := []wiki.PageRef{"https://dontstarve.fandom.com/wiki/Moose/Goose"}

	matched, err := testReconciler().Apply(set, refs)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if matched != 1 {
		t.Errorf("matched = %d, want 1 (slashes must be preserved)", matched)
	}
}
