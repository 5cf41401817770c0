package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("BOSSDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("bossdex")
		v.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".bossdex"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("site.domain", cfg.Site.Domain)
	v.SetDefault("site.category_url", cfg.Site.CategoryURL)
	v.SetDefault("site.api_endpoint", cfg.Site.APIEndpoint)
	v.SetDefault("site.article_prefix", cfg.Site.ArticlePrefix)
	v.SetDefault("site.image_cdn_host", cfg.Site.ImageCDNHost)
	v.SetDefault("site.user_agent", cfg.Site.UserAgent)

	v.SetDefault("crawler.member_selector", cfg.Crawler.MemberSelector)
	v.SetDefault("crawler.fallback_selector", cfg.Crawler.FallbackSelector)
	v.SetDefault("crawler.next_page_selector", cfg.Crawler.NextPageSelector)
	v.SetDefault("crawler.min_primary_links", cfg.Crawler.MinPrimaryLinks)
	v.SetDefault("crawler.expected_count", cfg.Crawler.ExpectedCount)
	v.SetDefault("crawler.request_timeout", cfg.Crawler.RequestTimeout)
	v.SetDefault("crawler.politeness_delay", cfg.Crawler.PolitenessDelay)

	v.SetDefault("resolver.request_timeout", cfg.Resolver.RequestTimeout)
	v.SetDefault("resolver.download_delay", cfg.Resolver.DownloadDelay)
	v.SetDefault("resolver.max_body_size", cfg.Resolver.MaxBodySize)

	v.SetDefault("reconcile.name_column", cfg.Reconcile.NameColumn)
	v.SetDefault("reconcile.url_column", cfg.Reconcile.URLColumn)

	v.SetDefault("output.urls_file", cfg.Output.URLsFile)
	v.SetDefault("output.image_dir", cfg.Output.ImageDir)
	v.SetDefault("output.records_file", cfg.Output.RecordsFile)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
