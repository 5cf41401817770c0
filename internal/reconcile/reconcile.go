package reconcile

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gravewood/bossdex/internal/config"
	"github.com/gravewood/bossdex/internal/storage"
	"github.com/gravewood/bossdex/internal/wiki"
)

// NormalizeName maps a free-text display name to wiki page-title form:
// trimmed, spaces replaced with underscores, literal slashes preserved
// (some titles are legitimately slash-delimited, e.g. Moose/Goose).
// Alias rules win over the mechanical rewrite: any name containing a rule's
// phrase collapses to that rule's canonical title regardless of suffix.
func NormalizeName(name string, aliases []config.AliasRule) string {
	trimmed := strings.TrimSpace(name)
	for _, rule := range aliases {
		if strings.Contains(trimmed, rule.Contains) {
			return rule.Title
		}
	}
	return strings.ReplaceAll(trimmed, " ", "_")
}

// TitleIndex builds a decoded page-title → canonical URL mapping from the
// crawler's output. Later duplicates of a title overwrite earlier ones.
func TitleIndex(articlePrefix string, refs []wiki.PageRef) map[string]wiki.PageRef {
	index := make(map[string]wiki.PageRef, len(refs))
	for _, ref := range refs {
		if title := ref.Title(articlePrefix); title != "" {
			index[title] = ref
		}
	}
	return index
}

// Reconciler joins a name-keyed record set against discovered page URLs.
type Reconciler struct {
	cfg           config.ReconcileConfig
	articlePrefix string
	logger        *slog.Logger
}

// New creates a Reconciler.
func New(cfg *config.Config, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		cfg:           cfg.Reconcile,
		articlePrefix: cfg.Site.ArticlePrefix,
		logger:        logger.With("component", "reconciler"),
	}
}

// Apply populates the URL column of the record set from the page references,
// in place. A name with no matching title gets an empty URL cell; a miss is
// an unresolved record, not an error. All other columns and the row order
// are untouched; the URL column is inserted as the second column if absent.
// Returns the number of matched records.
func (r *Reconciler) Apply(set *storage.RecordSet, refs []wiki.PageRef) (int, error) {
	if set.ColumnIndex(r.cfg.NameColumn) < 0 {
		return 0, fmt.Errorf("records have no %q column", r.cfg.NameColumn)
	}
	urlIdx := set.EnsureColumn(r.cfg.URLColumn, 1)
	// Re-resolve after the insert may have shifted columns
	nameIdx := set.ColumnIndex(r.cfg.NameColumn)

	index := TitleIndex(r.articlePrefix, refs)

	matched := 0
	for _, row := range set.Rows {
		name := strings.Trim(strings.TrimSpace(row[nameIdx]), `"`)
		title := NormalizeName(name, r.cfg.Aliases)
		if ref, ok := index[title]; ok {
			row[urlIdx] = string(ref)
			matched++
		} else {
			row[urlIdx] = ""
			r.logger.Debug("unresolved record", "name", name, "title", title)
		}
	}
	return matched, nil
}
