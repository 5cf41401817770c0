package wiki

import "testing"

const testCDN = "static.wikia.nocookie.net"

func TestNormalizeImageURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"scale segment removed, revision appended",
			"https://static.wikia.nocookie.net/dontstarve/images/scale-to-width-down/200/Ancient_Guardian.png",
			"https://static.wikia.nocookie.net/dontstarve/images/Ancient_Guardian.png/revision/latest",
		},
		{
			"revision appended to bare png",
			"https://static.wikia.nocookie.net/dontstarve/images/Deerclops.png",
			"https://static.wikia.nocookie.net/dontstarve/images/Deerclops.png/revision/latest",
		},
		{
			"existing revision untouched",
			"https://static.wikia.nocookie.net/dontstarve/images/Deerclops.png/revision/latest",
			"https://static.wikia.nocookie.net/dontstarve/images/Deerclops.png/revision/latest",
		},
		{
			"cache-busting query preserved",
			"https://static.wikia.nocookie.net/dontstarve/images/Deerclops.png?cb=20200401",
			"https://static.wikia.nocookie.net/dontstarve/images/Deerclops.png/revision/latest?cb=20200401",
		},
		{
			"fragment stripped",
			"https://static.wikia.nocookie.net/dontstarve/images/Deerclops.png#frag",
			"https://static.wikia.nocookie.net/dontstarve/images/Deerclops.png/revision/latest",
		},
		{
			"non-raster path untouched",
			"https://static.wikia.nocookie.net/dontstarve/images/manifest.json",
			"https://static.wikia.nocookie.net/dontstarve/images/manifest.json",
		},
		{
			"non-CDN host passes through",
			"https://example.com/images/scale-to-width-down/200/Foo.png",
			"https://example.com/images/scale-to-width-down/200/Foo.png",
		},
		{
			"empty input",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeImageURL(testCDN, tt.raw)
			if got != tt.want {
				t.Errorf("NormalizeImageURL(%q)\n got %q\nwant %q", tt.raw, got, tt.want)
			}
			// Required property: applying twice equals applying once
			if again := NormalizeImageURL(testCDN, got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestFilenameFromImageURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		fallback string
		want     string
	}{
		{
			"revision latest uses parent-of-parent",
			"https://static.wikia.nocookie.net/ds/images/Ancient_Guardian.png/revision/latest",
			"Page",
			"Ancient_Guardian.png",
		},
		{
			"plain basename",
			"https://static.wikia.nocookie.net/ds/images/Deerclops.png",
			"Page",
			"Deerclops.png",
		},
		{
			"jpg forced to png",
			"https://example.com/images/Bee_Queen.jpg",
			"Page",
			"Bee_Queen.png",
		},
		{
			"fallback when no path",
			"not a url at %%% all",
			"Dragonfly",
			"Dragonfly.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilenameFromImageURL(tt.url, tt.fallback); got != tt.want {
				t.Errorf("FilenameFromImageURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestHasRasterExt(t *testing.T) {
	for p, want := range map[string]bool{
		"File:Foo.png":  true,
		"File:Foo.JPG":  true,
		"File:Foo.jpeg": true,
		"File:Foo.gif":  false,
		"File:Foo.webm": false,
	} {
		if got := HasRasterExt(p); got != want {
			t.Errorf("HasRasterExt(%q) = %v, want %v", p, got, want)
		}
	}
}
