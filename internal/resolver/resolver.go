package resolver

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/gravewood/bossdex/internal/config"
	"github.com/gravewood/bossdex/internal/fetcher"
	"github.com/gravewood/bossdex/internal/wiki"
)

// ErrNoImage is returned when every tier comes up empty for a page.
var ErrNoImage = errors.New("no image found")

// infoboxSelectors are tried in order by the HTML fallback tier.
var infoboxSelectors = []string{
	".portable-infobox .pi-image-thumbnail",
	"figure.pi-item.pi-image img",
	"a.image img",
}

// jpegExtRe matches a .jpg/.jpeg extension at the end of the path portion of
// a URL (before an optional query string).
var jpegExtRe = regexp.MustCompile(`(?i)\.jpe?g($|\?)`)

// tier is one strategy in the ordered fallback chain. A (nil, nil) return
// means "no candidate here, try the next tier".
type tier struct {
	name string
	fn   func(ctx context.Context, ref wiki.PageRef) (*wiki.ImageCandidate, error)
}

// Resolver turns a page reference into its best-quality image candidate by
// trying a structured-data API lookup first and scraping HTML only as a last
// resort. Tiers are strictly ordered; the first hit wins and no tier is
// retried.
type Resolver struct {
	site   config.SiteConfig
	api    *apiClient
	client *fetcher.Client
	tiers  []tier
	logger *slog.Logger
}

// New creates a Resolver using the given fetch client for both API queries
// and HTML fallback fetches.
func New(cfg *config.Config, client *fetcher.Client, logger *slog.Logger) *Resolver {
	r := &Resolver{
		site:   cfg.Site,
		api:    &apiClient{endpoint: cfg.Site.APIEndpoint, client: client},
		client: client,
		logger: logger.With("component", "resolver"),
	}
	r.tiers = []tier{
		{"api-original", r.apiOriginal},
		{"api-imageinfo", r.apiImageList},
		{"html-scrape", r.htmlScrape},
	}
	return r
}

// Resolve finds the canonical image for a page. Tier errors are logged and
// treated as misses; ErrNoImage is returned only when the whole chain is
// exhausted.
func (r *Resolver) Resolve(ctx context.Context, ref wiki.PageRef) (*wiki.ResolvedImage, error) {
	var cand *wiki.ImageCandidate
	for _, t := range r.tiers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := t.fn(ctx, ref)
		if err != nil {
			r.logger.Debug("tier miss", "tier", t.name, "page", string(ref), "error", err)
			continue
		}
		if c != nil {
			cand = c
			break
		}
	}
	if cand == nil {
		return nil, ErrNoImage
	}

	cand.URL = wiki.NormalizeImageURL(r.site.ImageCDNHost, cand.URL)

	fallback := string(ref)
	if u, err := url.Parse(string(ref)); err == nil {
		fallback = path.Base(u.Path)
	}

	return &wiki.ResolvedImage{
		Page:      ref,
		Candidate: *cand,
		Filename:  wiki.FilenameFromImageURL(cand.URL, fallback),
	}, nil
}

// apiOriginal asks the API for the page's designated original image.
func (r *Resolver) apiOriginal(ctx context.Context, ref wiki.PageRef) (*wiki.ImageCandidate, error) {
	src, err := r.api.originalImage(ctx, ref.Title(r.site.ArticlePrefix))
	if err != nil {
		return nil, err
	}
	if src == "" {
		return nil, nil
	}
	return &wiki.ImageCandidate{URL: src, Source: wiki.SourceAPIOriginal}, nil
}

// apiImageList lists the page's images and picks the likeliest main one,
// then resolves its direct URL via a follow-up imageinfo query.
func (r *Resolver) apiImageList(ctx context.Context, ref wiki.PageRef) (*wiki.ImageCandidate, error) {
	title := ref.Title(r.site.ArticlePrefix)
	files, err := r.api.pageImages(ctx, title)
	if err != nil {
		return nil, err
	}

	var raster []string
	for _, f := range files {
		if wiki.HasRasterExt(f) {
			raster = append(raster, f)
		}
	}
	preferred := pickPreferredImage(title, raster)
	if preferred == "" {
		return nil, nil
	}

	direct, err := r.api.imageURL(ctx, preferred)
	if err != nil {
		return nil, err
	}
	if direct == "" {
		return nil, nil
	}
	return &wiki.ImageCandidate{URL: direct, Source: wiki.SourceAPIImageInfo}, nil
}

// pickPreferredImage chooses among the page's file titles:
// a PNG whose base filename starts with the page's base title, else the
// first PNG, else the first file.
func pickPreferredImage(pageTitle string, files []string) string {
	if len(files) == 0 {
		return ""
	}

	base := pageTitle
	if i := strings.LastIndex(base, ":"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.ToLower(base)

	firstPNG := ""
	for _, f := range files {
		name := strings.ToLower(strings.TrimPrefix(f, "File:"))
		if !strings.HasSuffix(name, ".png") {
			continue
		}
		if strings.HasPrefix(name, base) {
			return f
		}
		if firstPNG == "" {
			firstPNG = f
		}
	}
	if firstPNG != "" {
		return firstPNG
	}
	return files[0]
}

// htmlScrape fetches the page HTML and applies, in order: the Open-Graph
// image meta tag, then the prioritized infobox selectors.
func (r *Resolver) htmlScrape(ctx context.Context, ref wiki.PageRef) (*wiki.ImageCandidate, error) {
	resp, err := r.client.Get(ctx, string(ref))
	if err != nil {
		return nil, err
	}

	if cand := r.openGraphImage(resp.Body); cand != nil {
		return cand, nil
	}
	return r.infoboxImage(resp.Body)
}

// openGraphImage extracts the og:image meta content. A non-PNG extension is
// rewritten to .png and re-normalized. This is a heuristic that assumes the
// origin serves an identically-named PNG variant, which is not guaranteed;
// a broken rewrite falls through to the raw-byte save path downstream.
func (r *Resolver) openGraphImage(body []byte) *wiki.ImageCandidate {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	content := metaContent(doc, `//meta[@property="og:image"]`)
	if content == "" {
		return nil
	}

	cand := wiki.NormalizeImageURL(r.site.ImageCDNHost, content)
	if !strings.HasSuffix(strings.ToLower(cand), ".png") {
		rewritten := jpegExtRe.ReplaceAllString(cand, ".png$1")
		cand = wiki.NormalizeImageURL(r.site.ImageCDNHost, rewritten)
	}
	return &wiki.ImageCandidate{URL: cand, Source: wiki.SourceHTMLOpenGraph}
}

// metaContent returns the content attribute of the first node matching the
// XPath expression, or "".
func metaContent(doc *html.Node, expr string) string {
	node := htmlquery.FindOne(doc, expr)
	if node == nil {
		return ""
	}
	return htmlquery.SelectAttr(node, "content")
}

// infoboxImage tries the infobox selectors in priority order, preferring the
// lazy-load data-src attribute over the eager src when both exist.
func (r *Resolver) infoboxImage(body []byte) (*wiki.ImageCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	for _, selector := range infoboxSelectors {
		img := doc.Find(selector).First()
		if img.Length() == 0 {
			continue
		}
		src, ok := img.Attr("data-src")
		if !ok || src == "" {
			src, _ = img.Attr("src")
		}
		if src == "" {
			continue
		}
		return &wiki.ImageCandidate{
			URL:    wiki.NormalizeImageURL(r.site.ImageCDNHost, src),
			Source: wiki.SourceHTMLInfobox,
		}, nil
	}
	return nil, nil
}
