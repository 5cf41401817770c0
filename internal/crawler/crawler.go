package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gravewood/bossdex/internal/config"
	"github.com/gravewood/bossdex/internal/fetcher"
	"github.com/gravewood/bossdex/internal/wiki"
)

// Crawler walks a paginated category listing and collects the deduplicated
// set of member article URLs.
type Crawler struct {
	site   config.SiteConfig
	cfg    config.CrawlerConfig
	client *fetcher.Client
	logger *slog.Logger
}

// New creates a category crawler.
func New(cfg *config.Config, client *fetcher.Client, logger *slog.Logger) *Crawler {
	return &Crawler{
		site:   cfg.Site,
		cfg:    cfg.Crawler,
		client: client,
		logger: logger.With("component", "crawler"),
	}
}

// Run crawls the configured category listing, following pagination, and
// returns the union of member page references sorted lexicographically.
//
// A failure on the first page is fatal; failures on later pages end the
// pagination walk with whatever was collected so far. The context is checked
// between page iterations so a crawl can be cancelled cleanly.
func (c *Crawler) Run(ctx context.Context) ([]wiki.PageRef, error) {
	seen := make(map[wiki.PageRef]struct{})
	visited := make(map[string]struct{})

	pageURL := c.site.CategoryURL
	first := true

	for pageURL != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := c.client.Get(ctx, pageURL)
		if err != nil {
			if first {
				return nil, fmt.Errorf("fetch category page: %w", err)
			}
			c.logger.Warn("category page fetch failed, stopping pagination", "url", pageURL, "error", err)
			break
		}
		visited[pageURL] = struct{}{}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
		if err != nil {
			if first {
				return nil, fmt.Errorf("parse category page: %w", err)
			}
			c.logger.Warn("category page parse failed, stopping pagination", "url", pageURL, "error", err)
			break
		}

		members := c.extractMembers(doc, pageURL)
		for _, ref := range members {
			seen[ref] = struct{}{}
		}
		c.logger.Debug("category page processed", "url", pageURL, "members", len(members), "total", len(seen))

		next := c.nextPageURL(doc, pageURL)
		if next == "" {
			break
		}
		if _, ok := visited[next]; ok {
			// cycle guard
			break
		}
		pageURL = next
		first = false

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.PolitenessDelay):
		}
	}

	refs := make([]wiki.PageRef, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs, nil
}

// extractMembers collects canonical article links from one listing page.
// When the primary member selector yields fewer links than the configured
// threshold, the page is re-scanned with the broad fallback selector; this
// guards against markup drift without over-collecting on healthy pages.
func (c *Crawler) extractMembers(doc *goquery.Document, pageURL string) []wiki.PageRef {
	seen := make(map[wiki.PageRef]struct{})

	collect := func(selector string) {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				return
			}
			if ref, ok := wiki.Canonicalize(c.site, pageURL, href); ok {
				seen[ref] = struct{}{}
			}
		})
	}

	collect(c.cfg.MemberSelector)
	if len(seen) < c.cfg.MinPrimaryLinks {
		collect(c.cfg.FallbackSelector)
	}

	refs := make([]wiki.PageRef, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	return refs
}

// nextPageURL returns the absolute URL of the next listing page, or "".
func (c *Crawler) nextPageURL(doc *goquery.Document, pageURL string) string {
	href, ok := doc.Find(c.cfg.NextPageSelector).First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	rel, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(rel).String()
}
