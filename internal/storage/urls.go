package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gravewood/bossdex/internal/wiki"
)

// MissingInputError reports an absent required input file along with the
// step that produces it. main maps it to a distinct exit status.
type MissingInputError struct {
	Path string
	Hint string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing %s: %s", e.Path, e.Hint)
}

// WriteURLList writes the page references one per line, fully replacing any
// prior contents.
func WriteURLList(path string, refs []wiki.PageRef) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	var b strings.Builder
	for _, ref := range refs {
		b.WriteString(string(ref))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write url list: %w", err)
	}
	return nil
}

// ReadURLList reads a line-delimited URL list, skipping blank lines.
// A missing file is a MissingInputError.
func ReadURLList(path string) ([]wiki.PageRef, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingInputError{Path: path, Hint: "run 'bossdex crawl' first"}
		}
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer f.Close()

	var refs []wiki.PageRef
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		refs = append(refs, wiki.PageRef(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return refs, nil
}
