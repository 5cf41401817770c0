package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/webp"

	"github.com/gravewood/bossdex/internal/fetcher"
	"github.com/gravewood/bossdex/internal/wiki"
)

// Saver downloads resolved images and persists them as PNG files under a
// fixed output directory.
type Saver struct {
	outputDir string
	client    *fetcher.Client
	logger    *slog.Logger
}

// NewSaver creates a Saver, creating the output directory if needed.
func NewSaver(outputDir string, client *fetcher.Client, logger *slog.Logger) (*Saver, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Saver{
		outputDir: outputDir,
		client:    client,
		logger:    logger.With("component", "saver"),
	}, nil
}

// Save downloads the image's candidate URL and writes it under the derived
// filename. PNG responses are written verbatim; anything else is decoded and
// re-encoded as PNG. When decoding fails the raw bytes are written anyway;
// a possibly-mislabeled file beats losing the asset.
func (s *Saver) Save(ctx context.Context, img *wiki.ResolvedImage) (string, error) {
	resp, err := s.client.Get(ctx, img.Candidate.URL)
	if err != nil {
		return "", err
	}

	outPath := filepath.Join(s.outputDir, img.Filename)

	if strings.Contains(strings.ToLower(resp.ContentType), "image/png") {
		if err := os.WriteFile(outPath, resp.Body, 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", outPath, err)
		}
		return outPath, nil
	}

	decoded, format, err := image.Decode(bytes.NewReader(resp.Body))
	if err != nil {
		s.logger.Warn("image decode failed, writing raw bytes",
			"url", img.Candidate.URL,
			"content_type", resp.ContentType,
			"error", err,
		)
		if err := os.WriteFile(outPath, resp.Body, 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", outPath, err)
		}
		return outPath, nil
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	if err := png.Encode(f, decoded); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("encode PNG: %w", err)
	}

	s.logger.Debug("image converted", "url", img.Candidate.URL, "from", format, "path", outPath)
	return outPath, nil
}
