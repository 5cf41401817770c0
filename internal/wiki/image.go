package wiki

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// CandidateSource tags where an image candidate was discovered.
type CandidateSource string

const (
	SourceAPIOriginal   CandidateSource = "api-original"
	SourceAPIImageInfo  CandidateSource = "api-imageinfo"
	SourceHTMLOpenGraph CandidateSource = "html-og"
	SourceHTMLInfobox   CandidateSource = "html-infobox"
)

// ImageCandidate is a URL to a raster image plus its discovery source.
type ImageCandidate struct {
	URL    string
	Source CandidateSource
}

// ResolvedImage is a chosen candidate plus the derived local filename.
type ResolvedImage struct {
	Page      PageRef
	Candidate ImageCandidate
	Filename  string
}

var scaleSegmentRe = regexp.MustCompile(`/scale-to-width-down/\d+`)

var rasterExts = []string{".png", ".jpg", ".jpeg"}

// HasRasterExt reports whether the path or file title ends in a recognized
// raster image extension (case-insensitive).
func HasRasterExt(p string) bool {
	lower := strings.ToLower(p)
	for _, ext := range rasterExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// NormalizeImageURL rewrites a CDN image URL to its canonical full-resolution
// form: fragment stripped, any /scale-to-width-down/<n> segment removed, and
// /revision/latest appended when the path has no /revision/ segment and ends
// in a raster extension. Query params (cache-busting cb) are preserved.
//
// URLs on other hosts pass through with only the fragment stripped; their
// structure is unknown and must not be mangled. Idempotent.
func NormalizeImageURL(cdnHost, raw string) string {
	if raw == "" {
		return raw
	}
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if !strings.Contains(u.Host, cdnHost) {
		return raw
	}

	p := scaleSegmentRe.ReplaceAllString(u.Path, "")
	if !strings.Contains(p, "/revision/") && HasRasterExt(p) {
		p += "/revision/latest"
	}
	u.Path = p
	u.RawPath = ""
	u.Fragment = ""
	return u.String()
}

// FilenameFromImageURL derives the local filename for an image URL: the last
// path segment, or the parent-of-parent segment when the URL ends in the
// /revision/latest canonical form. The extension is stripped and .png forced.
func FilenameFromImageURL(rawURL, fallback string) string {
	p := fallback
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}

	name := path.Base(p)
	if name == "latest" {
		// path like .../Ancient_Guardian.png/revision/latest
		name = path.Base(path.Dir(path.Dir(p)))
	}
	if name == "" || name == "." || name == "/" {
		name = path.Base(fallback)
	}

	base := strings.TrimSuffix(name, path.Ext(name))
	return base + ".png"
}
