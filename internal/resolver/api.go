package resolver

import (
	"context"
	"net/url"

	"github.com/gravewood/bossdex/internal/fetcher"
)

// apiClient speaks the MediaWiki action API (api.php, JSON format).
type apiClient struct {
	endpoint string
	client   *fetcher.Client
}

type apiQueryResponse struct {
	Query struct {
		Pages map[string]apiPage `json:"pages"`
	} `json:"query"`
}

type apiPage struct {
	Original *struct {
		Source string `json:"source"`
	} `json:"original"`
	Images []struct {
		Title string `json:"title"`
	} `json:"images"`
	ImageInfo []struct {
		URL string `json:"url"`
	} `json:"imageinfo"`
}

func (a *apiClient) query(ctx context.Context, params url.Values) (*apiQueryResponse, error) {
	params.Set("action", "query")
	params.Set("format", "json")

	var resp apiQueryResponse
	if err := a.client.GetJSON(ctx, a.endpoint, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// originalImage returns the page's original-image URL, or "" when the API
// reports none.
func (a *apiClient) originalImage(ctx context.Context, title string) (string, error) {
	resp, err := a.query(ctx, url.Values{
		"titles": {title},
		"prop":   {"pageimages"},
		"piprop": {"original"},
	})
	if err != nil {
		return "", err
	}
	for _, page := range resp.Query.Pages {
		if page.Original != nil && page.Original.Source != "" {
			return page.Original.Source, nil
		}
	}
	return "", nil
}

// pageImages returns the file titles of all images associated with the page.
func (a *apiClient) pageImages(ctx context.Context, title string) ([]string, error) {
	resp, err := a.query(ctx, url.Values{
		"titles":  {title},
		"prop":    {"images"},
		"imlimit": {"max"},
	})
	if err != nil {
		return nil, err
	}
	var titles []string
	for _, page := range resp.Query.Pages {
		for _, im := range page.Images {
			if im.Title != "" {
				titles = append(titles, im.Title)
			}
		}
	}
	return titles, nil
}

// imageURL resolves a File: title to its direct URL, or "" when unknown.
func (a *apiClient) imageURL(ctx context.Context, fileTitle string) (string, error) {
	resp, err := a.query(ctx, url.Values{
		"titles": {fileTitle},
		"prop":   {"imageinfo"},
		"iiprop": {"url"},
	})
	if err != nil {
		return "", err
	}
	for _, page := range resp.Query.Pages {
		if len(page.ImageInfo) > 0 {
			return page.ImageInfo[0].URL, nil
		}
	}
	return "", nil
}
