package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Sriram-PR/webdumper/pkg/models"
	"github.com/Sriram-PR/webdumper/pkg/utils"
)

// CrawlConfig is the immutable description of one crawl run.
// Getters return copies so no caller can mutate shared state.
type CrawlConfig struct {
	seedURL               url.URL
	outputRoot            string
	assetTags             []models.AssetTag
	maxDepth              int
	userAgent             string
	requestTimeout        time.Duration
	maxConcurrentRequests int
	maxPageSizeBytes      int64
	maxAssetSizeBytes     int64
	stateDir              string
}

// NewCrawlConfig builds a CrawlConfig from a seed URL string and a validated AppConfig.
// It fails with utils.ErrConfigValidation when the run cannot start.
func NewCrawlConfig(seed string, app AppConfig) (*CrawlConfig, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, fmt.Errorf("%w: seed URL is empty", utils.ErrConfigValidation)
	}
	u, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: seed URL '%s': %v", utils.ErrConfigValidation, seed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: seed URL '%s' must use http or https", utils.ErrConfigValidation, seed)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: seed URL '%s' has no host", utils.ErrConfigValidation, seed)
	}
	u.Fragment = ""
	u.RawFragment = ""

	if strings.TrimSpace(app.OutputDir) == "" {
		return nil, fmt.Errorf("%w: output directory is empty", utils.ErrConfigValidation)
	}

	maxDepth := app.EffectiveMaxDepth()
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: max depth %d is negative", utils.ErrConfigValidation, maxDepth)
	}

	tags := app.AssetTags
	if tags == nil {
		tags = models.DefaultAssetTags()
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: asset tag list is empty", utils.ErrConfigValidation)
	}
	for i, tag := range tags {
		if strings.TrimSpace(tag.Tag) == "" || strings.TrimSpace(tag.Attr) == "" {
			return nil, fmt.Errorf("%w: asset tag #%d needs both tag and attr", utils.ErrConfigValidation, i)
		}
	}

	cfg := &CrawlConfig{
		seedURL:               *u,
		outputRoot:            app.OutputDir,
		assetTags:             append([]models.AssetTag(nil), tags...),
		maxDepth:              maxDepth,
		userAgent:             app.UserAgent,
		requestTimeout:        app.RequestTimeout,
		maxConcurrentRequests: app.MaxConcurrentRequests,
		maxPageSizeBytes:      app.MaxPageSizeBytes,
		maxAssetSizeBytes:     app.MaxAssetSizeBytes,
		stateDir:              app.StateDir,
	}
	if cfg.userAgent == "" {
		cfg.userAgent = DefaultUserAgent
	}
	if cfg.requestTimeout <= 0 {
		cfg.requestTimeout = DefaultRequestTimeout
	}
	if cfg.maxPageSizeBytes <= 0 {
		cfg.maxPageSizeBytes = DefaultMaxPageSizeBytes
	}
	return cfg, nil
}

// SeedURL returns a copy of the seed URL.
func (c *CrawlConfig) SeedURL() *url.URL {
	u := c.seedURL
	if c.seedURL.User != nil {
		user := *c.seedURL.User
		u.User = &user
	}
	return &u
}

func (c *CrawlConfig) OutputRoot() string { return c.outputRoot }

// AssetTags returns a copy of the ordered asset tag list.
func (c *CrawlConfig) AssetTags() []models.AssetTag {
	return append([]models.AssetTag(nil), c.assetTags...)
}

func (c *CrawlConfig) MaxDepth() int                 { return c.maxDepth }
func (c *CrawlConfig) UserAgent() string             { return c.userAgent }
func (c *CrawlConfig) RequestTimeout() time.Duration { return c.requestTimeout }
func (c *CrawlConfig) MaxConcurrentRequests() int    { return c.maxConcurrentRequests }
func (c *CrawlConfig) MaxPageSizeBytes() int64       { return c.maxPageSizeBytes }
func (c *CrawlConfig) MaxAssetSizeBytes() int64      { return c.maxAssetSizeBytes }
func (c *CrawlConfig) StateDir() string              { return c.stateDir }
func (c *CrawlConfig) AllowedHost() string           { return c.seedURL.Hostname() }
