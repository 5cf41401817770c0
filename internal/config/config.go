package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for bossdex.
type Config struct {
	Site      SiteConfig      `mapstructure:"site"      yaml:"site"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"   yaml:"crawler"`
	Resolver  ResolverConfig  `mapstructure:"resolver"  yaml:"resolver"`
	Reconcile ReconcileConfig `mapstructure:"reconcile" yaml:"reconcile"`
	Output    OutputConfig    `mapstructure:"output"    yaml:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// SiteConfig identifies the target wiki and its image CDN.
type SiteConfig struct {
	Domain        string `mapstructure:"domain"         yaml:"domain"`
	CategoryURL   string `mapstructure:"category_url"   yaml:"category_url"`
	APIEndpoint   string `mapstructure:"api_endpoint"   yaml:"api_endpoint"`
	ArticlePrefix string `mapstructure:"article_prefix" yaml:"article_prefix"`
	ImageCDNHost  string `mapstructure:"image_cdn_host" yaml:"image_cdn_host"`
	UserAgent     string `mapstructure:"user_agent"     yaml:"user_agent"`
}

// CrawlerConfig controls the category listing crawler.
type CrawlerConfig struct {
	MemberSelector   string        `mapstructure:"member_selector"    yaml:"member_selector"`
	FallbackSelector string        `mapstructure:"fallback_selector"  yaml:"fallback_selector"`
	NextPageSelector string        `mapstructure:"next_page_selector" yaml:"next_page_selector"`
	MinPrimaryLinks  int           `mapstructure:"min_primary_links"  yaml:"min_primary_links"`
	ExpectedCount    int           `mapstructure:"expected_count"     yaml:"expected_count"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"    yaml:"request_timeout"`
	PolitenessDelay  time.Duration `mapstructure:"politeness_delay"   yaml:"politeness_delay"`
}

// ResolverConfig controls image resolution and download.
type ResolverConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	DownloadDelay  time.Duration `mapstructure:"download_delay"  yaml:"download_delay"`
	MaxBodySize    int64         `mapstructure:"max_body_size"   yaml:"max_body_size"`
}

// AliasRule maps any record name containing a phrase to one canonical title.
type AliasRule struct {
	Contains string `mapstructure:"contains" yaml:"contains"`
	Title    string `mapstructure:"title"    yaml:"title"`
}

// ReconcileConfig controls CSV record reconciliation.
type ReconcileConfig struct {
	NameColumn string      `mapstructure:"name_column" yaml:"name_column"`
	URLColumn  string      `mapstructure:"url_column"  yaml:"url_column"`
	Aliases    []AliasRule `mapstructure:"aliases"     yaml:"aliases"`
}

// OutputConfig controls where run artifacts are written.
type OutputConfig struct {
	URLsFile    string `mapstructure:"urls_file"    yaml:"urls_file"`
	ImageDir    string `mapstructure:"image_dir"    yaml:"image_dir"`
	RecordsFile string `mapstructure:"records_file" yaml:"records_file"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Domain:        "dontstarve.fandom.com",
			CategoryURL:   "https://dontstarve.fandom.com/wiki/Category:Boss_Monsters",
			APIEndpoint:   "https://dontstarve.fandom.com/api.php",
			ArticlePrefix: "/wiki/",
			ImageCDNHost:  "static.wikia.nocookie.net",
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
		},
		Crawler: CrawlerConfig{
			MemberSelector:   "a.category-page__member-link",
			FallbackSelector: "#mw-content-text a, a",
			NextPageSelector: `a[rel="next"], a.category-page__pagination-next`,
			MinPrimaryLinks:  30,
			ExpectedCount:    37,
			RequestTimeout:   20 * time.Second,
			PolitenessDelay:  400 * time.Millisecond,
		},
		Resolver: ResolverConfig{
			RequestTimeout: 25 * time.Second,
			DownloadDelay:  250 * time.Millisecond,
			MaxBodySize:    20 * 1024 * 1024, // 20MB
		},
		Reconcile: ReconcileConfig{
			NameColumn: "name",
			URLColumn:  "url",
			Aliases: []AliasRule{
				{Contains: "Reanimated Skeleton", Title: "Reanimated_Skeleton"},
			},
		},
		Output: OutputConfig{
			URLsFile:    "scraping/boss_urls.txt",
			ImageDir:    "bosses",
			RecordsFile: "bosses.csv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
