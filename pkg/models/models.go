package models

import "time"

// AssetTag names an element and the attribute holding the asset reference,
// e.g. {Tag: "img", Attr: "src"}.
type AssetTag struct {
	Tag  string `yaml:"tag"`
	Attr string `yaml:"attr"`
}

// Selector returns the goquery selector matching elements that carry Attr.
func (a AssetTag) Selector() string {
	return a.Tag + "[" + a.Attr + "]"
}

// DefaultAssetTags are the asset references followed when none are configured.
func DefaultAssetTags() []AssetTag {
	return []AssetTag{
		{Tag: "img", Attr: "src"},
		{Tag: "link", Attr: "href"},
		{Tag: "script", Attr: "src"},
	}
}

// PageRecord is a fetched HTML page held in memory while its assets and links are extracted
type PageRecord struct {
	URL     string
	Depth   int
	RawHTML []byte
}

// AssetRecord is a fetched asset before it is written to disk
type AssetRecord struct {
	SourceURL   string // Page the reference was found on
	TagKind     AssetTag
	ResolvedURL string
	Bytes       []byte
}

// PageDBEntry stores the claim state of a page URL in the database
type PageDBEntry struct {
	Status      PageStatus `json:"status"`
	ErrorType   string     `json:"error_type,omitempty"`   // Error category (on failure)
	LastAttempt time.Time  `json:"last_attempt"`           // Timestamp of the last state change
	Depth       int        `json:"depth"`                  // Depth at which this page was claimed
	ContentHash string     `json:"content_hash,omitempty"` // SHA-256 of the saved body (on success)
}

// CrawlMetadata holds all metadata for a single crawl run.
type CrawlMetadata struct {
	RunID            string          `yaml:"run_id"`
	SeedURL          string          `yaml:"seed_url"`
	AllowedHost      string          `yaml:"allowed_host"`
	MaxDepth         int             `yaml:"max_depth"`
	CrawlStartTime   time.Time       `yaml:"crawl_start_time"`
	CrawlEndTime     time.Time       `yaml:"crawl_end_time"`
	TotalPagesSaved  int             `yaml:"total_pages_saved"`
	TotalAssetsSaved int             `yaml:"total_assets_saved"`
	Pages            []PageMetadata  `yaml:"pages"`
	Assets           []AssetMetadata `yaml:"assets,omitempty"`
}

// PageMetadata holds metadata for a single saved page.
type PageMetadata struct {
	OriginalURL   string    `yaml:"original_url"`
	NormalizedURL string    `yaml:"normalized_url"`
	LocalFilePath string    `yaml:"local_file_path"` // Relative to the output root
	Title         string    `yaml:"title,omitempty"`
	Depth         int       `yaml:"depth"`
	ProcessedAt   time.Time `yaml:"processed_at"`
	ContentHash   string    `yaml:"content_hash,omitempty"`
	AssetCount    int       `yaml:"asset_count,omitempty"`
}

// AssetMetadata holds metadata for a single saved asset.
type AssetMetadata struct {
	SourcePage    string    `yaml:"source_page"`
	ResolvedURL   string    `yaml:"resolved_url"`
	Tag           string    `yaml:"tag"`
	LocalFilePath string    `yaml:"local_file_path"` // Relative to the output root
	SizeBytes     int       `yaml:"size_bytes"`
	ContentHash   string    `yaml:"content_hash,omitempty"`
	ProcessedAt   time.Time `yaml:"processed_at"`
}
