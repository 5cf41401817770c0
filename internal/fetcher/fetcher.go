package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/andybalholm/brotli"
)

// Response is a fetched HTTP response body with its declared metadata.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	FinalURL    string
}

// Client is a sequential HTTP fetcher with a fixed per-request timeout.
// Every error it returns is a *FetchError; callers treat them as
// recoverable per-item failures.
type Client struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// New creates a Client with the given User-Agent and timeout.
func New(userAgent string, timeout time.Duration, maxBodySize int64, logger *slog.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // We handle decompression ourselves (including brotli)
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
		logger:      logger.With("component", "fetcher"),
	}
}

// Get fetches rawURL and returns the decompressed body.
// Non-2xx statuses are errors.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(httpResp.Body, 512))
		return nil, &FetchError{
			URL:        rawURL,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d", httpResp.StatusCode),
		}
	}

	var reader io.Reader = httpResp.Body
	if c.maxBodySize > 0 {
		reader = io.LimitReader(reader, c.maxBodySize)
	}
	reader, err = decompressReader(httpResp, reader)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	finalURL := rawURL
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		finalURL = httpResp.Request.URL.String()
	}

	c.logger.Debug("fetch complete",
		"url", rawURL,
		"status", httpResp.StatusCode,
		"size", len(body),
		"duration", time.Since(start),
	)

	return &Response{
		StatusCode:  httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
		Body:        body,
		FinalURL:    finalURL,
	}, nil
}

// GetJSON fetches endpoint with the given query parameters and decodes the
// JSON response into v.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, v any) error {
	full := endpoint
	if len(params) > 0 {
		full = endpoint + "?" + params.Encode()
	}
	resp, err := c.Get(ctx, full)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &FetchError{URL: full, Err: fmt.Errorf("decode JSON: %w", err)}
	}
	return nil
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}
