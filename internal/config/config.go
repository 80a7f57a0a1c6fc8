// Package config loads harvester settings from defaults, an optional YAML
// file, HARVEST_* environment variables and flags, in that order.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration validation errors.
var (
	ErrMissingBaseURL        = errors.New("site.base_url is required")
	ErrInvalidPageRange      = errors.New("site.start_page must be >= 1 and <= site.end_page")
	ErrInvalidLinkSelector   = errors.New("site.link_selector must be 'heading' or 'path'")
	ErrInvalidIDStrategy     = errors.New("site.id_strategy must be 'archive' or 'segment'")
	ErrInvalidInterval       = errors.New("crawl.interval must be non-negative")
	ErrInvalidTimeout        = errors.New("crawl.timeout must be positive")
	ErrInvalidSizeCap        = errors.New("crawl.page_size_cap and crawl.asset_size_cap must be positive")
	ErrMissingBucket         = errors.New("storage.bucket is required")
	ErrInvalidDocBackend     = errors.New("documents.backend must be 'elasticsearch', 'postgres' or 'none'")
	ErrMissingESAddresses    = errors.New("documents.elasticsearch.addresses is required for the elasticsearch backend")
	ErrInvalidCredentialSrc  = errors.New("credentials.source must be 'file', 'secretmanager' or 'none'")
	ErrMissingCredentialPath = errors.New("credentials.path is required for the file source")
	ErrMissingSecretName     = errors.New("credentials.project and credentials.secret are required for the secretmanager source")
)

// Config is the full harvester configuration.
type Config struct {
	Site        SiteConfig        `mapstructure:"site"`
	Crawl       CrawlConfig       `mapstructure:"crawl"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Documents   DocumentsConfig   `mapstructure:"documents"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Server      ServerConfig      `mapstructure:"server"`
}

// SiteConfig describes the news site and how to read it.
type SiteConfig struct {
	BaseURL             string   `mapstructure:"base_url"`
	StartPage           int      `mapstructure:"start_page"`
	EndPage             int      `mapstructure:"end_page"`
	LinkSelector        string   `mapstructure:"link_selector"`
	HeadingClass        string   `mapstructure:"heading_class"`
	ArticleMarker       string   `mapstructure:"article_marker"`
	CategoryMarker      string   `mapstructure:"category_marker"`
	IDStrategy          string   `mapstructure:"id_strategy"`
	UntitledPlaceholder string   `mapstructure:"untitled_placeholder"`
	ExtraChromePatterns []string `mapstructure:"extra_chrome_patterns"`
}

// ListingURL is the URL of listing page n.
func (s SiteConfig) ListingURL(n int) string {
	return fmt.Sprintf("%s/page/%d", strings.TrimRight(s.BaseURL, "/"), n)
}

// CrawlConfig holds fetch and pacing settings.
type CrawlConfig struct {
	Interval              time.Duration `mapstructure:"interval"`
	Timeout               time.Duration `mapstructure:"timeout"`
	DialTimeout           time.Duration `mapstructure:"dial_timeout"`
	PageSizeCap           int64         `mapstructure:"page_size_cap"`
	AssetSizeCap          int64         `mapstructure:"asset_size_cap"`
	UserAgent             string        `mapstructure:"user_agent"`
	CheckDedupBeforeFetch bool          `mapstructure:"check_dedup_before_fetch"`
}

// StorageConfig points at the S3-compatible bucket. Keys may also come from
// the credential bundle.
type StorageConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	Region        string        `mapstructure:"region"`
	Bucket        string        `mapstructure:"bucket"`
	PublicBaseURL string        `mapstructure:"public_base_url"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	UploadTimeout time.Duration `mapstructure:"upload_timeout"`
}

// DocumentsConfig selects the article metadata backend.
type DocumentsConfig struct {
	Backend       string                 `mapstructure:"backend"`
	Elasticsearch ElasticsearchDocConfig `mapstructure:"elasticsearch"`
	Postgres      PostgresDocConfig      `mapstructure:"postgres"`
}

type ElasticsearchDocConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
}

type PostgresDocConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// CredentialsConfig selects where the credential bundle comes from.
type CredentialsConfig struct {
	Source  string `mapstructure:"source"`
	Path    string `mapstructure:"path"`
	Project string `mapstructure:"project"`
	Secret  string `mapstructure:"secret"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// SetDefaults registers every key so that environment overrides resolve.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://news.seoul.go.kr/env/news-all")
	v.SetDefault("site.start_page", 1)
	v.SetDefault("site.end_page", 1)
	v.SetDefault("site.link_selector", "heading")
	v.SetDefault("site.heading_class", "tit")
	v.SetDefault("site.article_marker", "/env/archives/")
	v.SetDefault("site.category_marker", "/archives/category/")
	v.SetDefault("site.id_strategy", "archive")
	v.SetDefault("site.untitled_placeholder", "제목 없음")
	v.SetDefault("site.extra_chrome_patterns", []string{})

	v.SetDefault("crawl.interval", 500*time.Millisecond)
	v.SetDefault("crawl.timeout", 30*time.Second)
	v.SetDefault("crawl.dial_timeout", 10*time.Second)
	v.SetDefault("crawl.page_size_cap", int64(5<<20))
	v.SetDefault("crawl.asset_size_cap", int64(50<<20))
	v.SetDefault("crawl.user_agent", "")
	v.SetDefault("crawl.check_dedup_before_fetch", false)

	v.SetDefault("storage.endpoint", "storage.googleapis.com")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.bucket", "zeromap-8b449.firebasestorage.app")
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.upload_timeout", 60*time.Second)

	v.SetDefault("documents.backend", "elasticsearch")
	v.SetDefault("documents.elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("documents.elasticsearch.index", "articles")
	v.SetDefault("documents.postgres.dsn", "")
	v.SetDefault("documents.postgres.table", "articles")

	v.SetDefault("credentials.source", "secretmanager")
	v.SetDefault("credentials.path", "firebase_config.json")
	v.SetDefault("credentials.project", "zeromap-8b449")
	v.SetDefault("credentials.secret", "firebase-service-account")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", false)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Minute)
	v.SetDefault("server.idle_timeout", 120*time.Second)
}

// NewViper returns a viper instance wired for HARVEST_* environment overrides
// and an optional config file. An empty path searches ./config.yaml and
// ./config/config.yaml.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("HARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the harvester cannot run with.
func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Site.StartPage < 1 || c.Site.StartPage > c.Site.EndPage {
		return ErrInvalidPageRange
	}
	switch strings.ToLower(c.Site.LinkSelector) {
	case "heading", "path":
	default:
		return ErrInvalidLinkSelector
	}
	switch strings.ToLower(c.Site.IDStrategy) {
	case "archive", "segment":
	default:
		return ErrInvalidIDStrategy
	}
	if c.Crawl.Interval < 0 {
		return ErrInvalidInterval
	}
	if c.Crawl.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Crawl.PageSizeCap <= 0 || c.Crawl.AssetSizeCap <= 0 {
		return ErrInvalidSizeCap
	}
	if c.Storage.Bucket == "" {
		return ErrMissingBucket
	}
	switch strings.ToLower(c.Documents.Backend) {
	case "elasticsearch":
		if len(c.Documents.Elasticsearch.Addresses) == 0 {
			return ErrMissingESAddresses
		}
	case "postgres", "none":
	default:
		return ErrInvalidDocBackend
	}
	switch strings.ToLower(c.Credentials.Source) {
	case "file":
		if c.Credentials.Path == "" {
			return ErrMissingCredentialPath
		}
	case "secretmanager":
		if c.Credentials.Project == "" || c.Credentials.Secret == "" {
			return ErrMissingSecretName
		}
	case "none":
	default:
		return ErrInvalidCredentialSrc
	}
	return nil
}
