package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Site.Domain == "" {
		return fmt.Errorf("site.domain must not be empty")
	}
	if err := validateHTTPURL(cfg.Site.CategoryURL); err != nil {
		return fmt.Errorf("site.category_url: %w", err)
	}
	if err := validateHTTPURL(cfg.Site.APIEndpoint); err != nil {
		return fmt.Errorf("site.api_endpoint: %w", err)
	}
	if !strings.HasPrefix(cfg.Site.ArticlePrefix, "/") {
		return fmt.Errorf("site.article_prefix must start with '/', got %q", cfg.Site.ArticlePrefix)
	}
	if cfg.Site.ImageCDNHost == "" {
		return fmt.Errorf("site.image_cdn_host must not be empty")
	}

	if cfg.Crawler.MemberSelector == "" {
		return fmt.Errorf("crawler.member_selector must not be empty")
	}
	if cfg.Crawler.MinPrimaryLinks < 0 {
		return fmt.Errorf("crawler.min_primary_links must be >= 0, got %d", cfg.Crawler.MinPrimaryLinks)
	}
	if cfg.Crawler.ExpectedCount < 0 {
		return fmt.Errorf("crawler.expected_count must be >= 0, got %d", cfg.Crawler.ExpectedCount)
	}
	if cfg.Crawler.RequestTimeout <= 0 {
		return fmt.Errorf("crawler.request_timeout must be > 0")
	}
	if cfg.Crawler.PolitenessDelay < 0 {
		return fmt.Errorf("crawler.politeness_delay must be >= 0")
	}

	if cfg.Resolver.RequestTimeout <= 0 {
		return fmt.Errorf("resolver.request_timeout must be > 0")
	}
	if cfg.Resolver.DownloadDelay < 0 {
		return fmt.Errorf("resolver.download_delay must be >= 0")
	}
	if cfg.Resolver.MaxBodySize <= 0 {
		return fmt.Errorf("resolver.max_body_size must be > 0")
	}

	if cfg.Reconcile.NameColumn == "" {
		return fmt.Errorf("reconcile.name_column must not be empty")
	}
	if cfg.Reconcile.URLColumn == "" {
		return fmt.Errorf("reconcile.url_column must not be empty")
	}
	for i, rule := range cfg.Reconcile.Aliases {
		if rule.Contains == "" || rule.Title == "" {
			return fmt.Errorf("reconcile.aliases[%d] must have both contains and title", i)
		}
	}

	if cfg.Output.URLsFile == "" {
		return fmt.Errorf("output.urls_file must not be empty")
	}
	if cfg.Output.ImageDir == "" {
		return fmt.Errorf("output.image_dir must not be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

func validateHTTPURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
