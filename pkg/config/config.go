package config

import (
	"time"

	"github.com/Sriram-PR/webdumper/pkg/models"
)

const (
	// DefaultUserAgent mimics a desktop Chrome so servers return the same HTML a browser would get.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	DefaultOutputDir        = "dumps"
	DefaultMaxDepth         = 1
	DefaultRequestTimeout   = 10 * time.Second
	DefaultMaxPageSizeBytes = 50 * 1024 * 1024
	DefaultMappingFilename  = "url_to_file_map.tsv"
	DefaultMetadataFilename = "metadata.yaml"
	DefaultTreeFilename     = "tree.txt"
	DefaultVisitedLogName   = "visited.txt"
)

// AppConfig holds the application configuration loaded from YAML and overridden by CLI flags
type AppConfig struct {
	OutputDir             string            `yaml:"output_dir"`
	MaxDepth              *int              `yaml:"max_depth,omitempty"` // nil = DefaultMaxDepth; 0 = seed page only
	UserAgent             string            `yaml:"user_agent,omitempty"`
	RequestTimeout        time.Duration     `yaml:"request_timeout,omitempty"`         // Per-request deadline for pages and assets
	MaxConcurrentRequests int               `yaml:"max_concurrent_requests,omitempty"` // 0 = unbounded
	MaxPageSizeBytes      int64             `yaml:"max_page_size_bytes,omitempty"`
	MaxAssetSizeBytes     int64             `yaml:"max_asset_size_bytes,omitempty"` // 0 = unlimited
	StateDir              string            `yaml:"state_dir,omitempty"`            // Empty = in-memory visited set
	WriteVisitedLog       bool              `yaml:"write_visited_log,omitempty"`
	AssetTags             []models.AssetTag `yaml:"asset_tags,omitempty"`
	EnableOutputMapping   bool              `yaml:"enable_output_mapping,omitempty"`
	OutputMappingFilename string            `yaml:"output_mapping_filename,omitempty"`
	EnableMetadataYAML    bool              `yaml:"enable_metadata_yaml,omitempty"`
	MetadataYAMLFilename  string            `yaml:"metadata_yaml_filename,omitempty"`
	WriteTreeFile         bool              `yaml:"write_tree_file,omitempty"`
	TreeFilename          string            `yaml:"tree_filename,omitempty"`
	HTTPClientSettings    HTTPClientConfig  `yaml:"http_client_settings,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall client timeout (defaults to request_timeout)
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // nil=default, true=force, false=disable
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
	MaxRedirects          int           `yaml:"max_redirects,omitempty"`
}

// EffectiveMaxDepth returns the configured depth or DefaultMaxDepth when unset.
func (c AppConfig) EffectiveMaxDepth() int {
	if c.MaxDepth == nil {
		return DefaultMaxDepth
	}
	return *c.MaxDepth
}

// EffectiveMappingFilename returns the TSV mapping filename, falling back to the default.
func (c AppConfig) EffectiveMappingFilename() string {
	if c.OutputMappingFilename != "" {
		return c.OutputMappingFilename
	}
	return DefaultMappingFilename
}

// EffectiveMetadataFilename returns the YAML metadata filename, falling back to the default.
func (c AppConfig) EffectiveMetadataFilename() string {
	if c.MetadataYAMLFilename != "" {
		return c.MetadataYAMLFilename
	}
	return DefaultMetadataFilename
}

// EffectiveTreeFilename returns the tree output filename, falling back to the default.
func (c AppConfig) EffectiveTreeFilename() string {
	if c.TreeFilename != "" {
		return c.TreeFilename
	}
	return DefaultTreeFilename
}
