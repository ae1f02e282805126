package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sriram-PR/webdumper/pkg/models"
	"github.com/Sriram-PR/webdumper/pkg/utils"
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// OutputDir
	if strings.TrimSpace(c.OutputDir) == "" {
		warnings = append(warnings, fmt.Sprintf("output_dir is empty, defaulting to '%s'", DefaultOutputDir))
		c.OutputDir = DefaultOutputDir
	}

	// MaxDepth
	if c.MaxDepth == nil {
		d := DefaultMaxDepth
		c.MaxDepth = &d
	} else if *c.MaxDepth < 0 {
		return warnings, fmt.Errorf("%w: max_depth cannot be negative (got %d)", utils.ErrConfigValidation, *c.MaxDepth)
	}

	// UserAgent
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	// RequestTimeout
	if c.RequestTimeout < 0 {
		warnings = append(warnings, fmt.Sprintf("request_timeout cannot be negative, defaulting to %v", DefaultRequestTimeout))
		c.RequestTimeout = DefaultRequestTimeout
	} else if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}

	// MaxConcurrentRequests
	if c.MaxConcurrentRequests < 0 {
		warnings = append(warnings, "max_concurrent_requests cannot be negative, setting to 0 (unbounded)")
		c.MaxConcurrentRequests = 0
	}

	// MaxPageSizeBytes
	if c.MaxPageSizeBytes <= 0 {
		c.MaxPageSizeBytes = DefaultMaxPageSizeBytes
	}

	// MaxAssetSizeBytes
	if c.MaxAssetSizeBytes < 0 {
		warnings = append(warnings, "max_asset_size_bytes cannot be negative, setting to 0 (unlimited)")
		c.MaxAssetSizeBytes = 0
	}

	// AssetTags
	if c.AssetTags == nil {
		c.AssetTags = models.DefaultAssetTags()
	} else if len(c.AssetTags) == 0 {
		return warnings, fmt.Errorf("%w: asset_tags is present but empty", utils.ErrConfigValidation)
	}
	for i, tag := range c.AssetTags {
		if strings.TrimSpace(tag.Tag) == "" || strings.TrimSpace(tag.Attr) == "" {
			return warnings, fmt.Errorf("%w: asset_tags[%d] needs both tag and attr", utils.ErrConfigValidation, i)
		}
	}

	// WriteVisitedLog without a state dir has nothing to read from
	if c.WriteVisitedLog && c.StateDir == "" {
		warnings = append(warnings, "write_visited_log requires state_dir, ignoring")
		c.WriteVisitedLog = false
	}

	// HTTPClientSettings defaults
	c.validateHTTPClientSettings()

	// Output mapping filename
	if c.EnableOutputMapping && c.OutputMappingFilename == "" {
		warnings = append(warnings, fmt.Sprintf(
			"'enable_output_mapping' is true but 'output_mapping_filename' is empty. Defaulting to '%s'",
			DefaultMappingFilename))
		c.OutputMappingFilename = DefaultMappingFilename
	}

	// Metadata YAML filename
	if c.EnableMetadataYAML && c.MetadataYAMLFilename == "" {
		warnings = append(warnings, fmt.Sprintf(
			"'enable_metadata_yaml' is true but 'metadata_yaml_filename' is empty. Defaulting to '%s'",
			DefaultMetadataFilename))
		c.MetadataYAMLFilename = DefaultMetadataFilename
	}

	if c.WriteTreeFile && c.TreeFilename == "" {
		c.TreeFilename = DefaultTreeFilename
	}

	return warnings, nil
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = c.RequestTimeout
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 10
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
	if h.MaxRedirects <= 0 {
		h.MaxRedirects = 10
	}
}
