package wiki

import (
	"net/url"
	"strings"

	"github.com/gravewood/bossdex/internal/config"
)

// PageRef is a canonical, percent-decoded absolute URL to an article page.
// It carries no fragment and no query string, so string equality is a safe
// deduplication key. Immutable once constructed via Canonicalize.
type PageRef string

// Title returns the decoded, slash-preserving page title after the article
// prefix, or "" if the reference does not contain the prefix.
func (r PageRef) Title(articlePrefix string) string {
	u, err := url.Parse(string(r))
	if err != nil {
		return ""
	}
	i := strings.Index(u.Path, articlePrefix)
	if i < 0 {
		return ""
	}
	return u.Path[i+len(articlePrefix):]
}

// Canonicalize resolves href against base and reduces it to canonical page
// form. It returns false for anything that is not an article page on the
// configured site: non-HTTP(S) schemes, foreign hosts, paths outside the
// article prefix, and namespaced titles (Category:, File:, Template:, ...).
//
// The result is percent-decoded so two hrefs differing only in escaping
// collapse to one entry. Pure and deterministic.
func Canonicalize(site config.SiteConfig, baseURL, href string) (PageRef, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	rel, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := base.ResolveReference(rel)

	// Drop fragment (e.g. #section) and query params
	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = ""

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !strings.Contains(u.Host, site.Domain) {
		return "", false
	}
	if !strings.HasPrefix(u.Path, site.ArticlePrefix) {
		return "", false
	}

	// Exclude non-article namespaces such as Category:, File:, Template:, User:
	title := u.Path[len(site.ArticlePrefix):]
	if title == "" || strings.Contains(title, ":") {
		return "", false
	}

	// u.Path is already percent-decoded by url.Parse
	return PageRef(u.Scheme + "://" + u.Host + u.Path), true
}
