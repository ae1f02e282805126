package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/webdumper/pkg/models"
	"github.com/Sriram-PR/webdumper/pkg/parse"
	"github.com/Sriram-PR/webdumper/pkg/utils"
)

// ManagerOptions selects the side outputs written next to the mirror.
// An empty filename disables that output.
type ManagerOptions struct {
	MappingFilename  string // TSV: url<TAB>relative path
	MetadataFilename string // YAML summary of the run
	TreeFilename     string // Text tree of the mirror, written on Close
}

// Manager owns the run's side outputs and the record of everything saved.
// All Record methods are safe for concurrent use.
type Manager struct {
	log  *logrus.Entry
	root string
	opts ManagerOptions

	runID     string
	seedURL   string
	host      string
	maxDepth  int
	startTime time.Time

	mappingFile   *os.File
	mappingFileMu sync.Mutex

	metadataMu sync.Mutex
	pages      []models.PageMetadata
	assets     []models.AssetMetadata
}

// NewManager creates a Manager without opening files.
// Call Open after the output root exists.
func NewManager(root string, opts ManagerOptions, log *logrus.Entry) *Manager {
	return &Manager{
		log:   log,
		root:  root,
		opts:  opts,
		runID: uuid.NewString(),
	}
}

// RunID identifies this crawl run in logs and metadata.
func (m *Manager) RunID() string { return m.runID }

// Open starts the run clock and truncates/creates the mapping file if enabled.
// A mapping file that cannot be opened disables the mapping with an error log.
func (m *Manager) Open(seedURL, host string, maxDepth int) {
	m.seedURL = seedURL
	m.host = host
	m.maxDepth = maxDepth
	m.startTime = time.Now()

	if m.opts.MappingFilename == "" {
		return
	}
	path := filepath.Join(m.root, m.opts.MappingFilename)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		m.log.Errorf("Failed to open TSV mapping file '%s': %v. Mapping output disabled.", path, err)
		return
	}
	m.log.Infof("TSV URL-to-file mapping enabled: %s", path)
	m.mappingFile = f
}

// RecordPage records a saved page.
func (m *Manager) RecordPage(pageURL *url.URL, savedPath, title string, body []byte, depth, assetCount int) {
	rel := m.relative(savedPath)
	m.writeMappingLine(pageURL.String(), rel)

	m.metadataMu.Lock()
	defer m.metadataMu.Unlock()
	m.pages = append(m.pages, models.PageMetadata{
		OriginalURL:   pageURL.String(),
		NormalizedURL: parse.NormalizeURL(pageURL),
		LocalFilePath: rel,
		Title:         strings.TrimSpace(title),
		Depth:         depth,
		ProcessedAt:   time.Now(),
		ContentHash:   utils.CalculateSHA256(body),
		AssetCount:    assetCount,
	})
}

// RecordAsset records a saved asset.
func (m *Manager) RecordAsset(asset models.AssetRecord, savedPath string) {
	rel := m.relative(savedPath)
	m.writeMappingLine(asset.ResolvedURL, rel)

	m.metadataMu.Lock()
	defer m.metadataMu.Unlock()
	m.assets = append(m.assets, models.AssetMetadata{
		SourcePage:    asset.SourceURL,
		ResolvedURL:   asset.ResolvedURL,
		Tag:           asset.TagKind.Selector(),
		LocalFilePath: rel,
		SizeBytes:     len(asset.Bytes),
		ContentHash:   utils.CalculateSHA256(asset.Bytes),
		ProcessedAt:   time.Now(),
	})
}

// PagesSaved returns the number of pages recorded so far.
func (m *Manager) PagesSaved() int {
	m.metadataMu.Lock()
	defer m.metadataMu.Unlock()
	return len(m.pages)
}

// AssetsSaved returns the number of assets recorded so far.
func (m *Manager) AssetsSaved() int {
	m.metadataMu.Lock()
	defer m.metadataMu.Unlock()
	return len(m.assets)
}

// Close closes the mapping file, then writes the metadata YAML and tree file if enabled.
// The first error is returned; later outputs are still attempted.
func (m *Manager) Close() error {
	m.closeMappingFile()

	var firstErr error
	if err := m.writeMetadataYAML(); err != nil {
		firstErr = err
	}
	if m.opts.TreeFilename != "" {
		treePath := filepath.Join(m.root, m.opts.TreeFilename)
		if err := utils.SaveTreeStructure(m.root, treePath, m.log); err != nil {
			m.log.Errorf("Failed to write tree file: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		} else {
			m.log.Infof("Mirror tree written to %s", treePath)
		}
	}
	return firstErr
}

// relative turns an absolute saved path into a slash-separated path under root.
func (m *Manager) relative(savedPath string) string {
	rel, err := filepath.Rel(m.root, savedPath)
	if err != nil {
		return filepath.ToSlash(savedPath)
	}
	return filepath.ToSlash(rel)
}

func (m *Manager) writeMappingLine(target, rel string) {
	m.mappingFileMu.Lock()
	defer m.mappingFileMu.Unlock()
	if m.mappingFile == nil {
		return
	}
	if _, err := fmt.Fprintf(m.mappingFile, "%s\t%s\n", target, rel); err != nil {
		m.log.WithField("tsv_mapping_file", m.mappingFile.Name()).Errorf("Failed to write to TSV mapping file: %v", err)
	}
}

func (m *Manager) closeMappingFile() {
	m.mappingFileMu.Lock()
	defer m.mappingFileMu.Unlock()
	if m.mappingFile == nil {
		return
	}
	if err := m.mappingFile.Sync(); err != nil {
		m.log.Errorf("Error syncing TSV mapping file: %v", err)
	}
	if err := m.mappingFile.Close(); err != nil {
		m.log.Errorf("Error closing TSV mapping file: %v", err)
	}
	m.mappingFile = nil
}

// writeMetadataYAML writes all collected page and asset metadata to a YAML file.
func (m *Manager) writeMetadataYAML() error {
	if m.opts.MetadataFilename == "" {
		return nil
	}
	yamlPath := filepath.Join(m.root, m.opts.MetadataFilename)

	m.metadataMu.Lock()
	pages := append([]models.PageMetadata(nil), m.pages...)
	assets := append([]models.AssetMetadata(nil), m.assets...)
	m.metadataMu.Unlock()

	metadata := models.CrawlMetadata{
		RunID:            m.runID,
		SeedURL:          m.seedURL,
		AllowedHost:      m.host,
		MaxDepth:         m.maxDepth,
		CrawlStartTime:   m.startTime,
		CrawlEndTime:     time.Now(),
		TotalPagesSaved:  len(pages),
		TotalAssetsSaved: len(assets),
		Pages:            pages,
		Assets:           assets,
	}

	data, err := yaml.Marshal(&metadata)
	if err != nil {
		return fmt.Errorf("%w: marshal crawl metadata to YAML: %w", utils.ErrParsing, err)
	}
	if err := os.WriteFile(yamlPath, data, 0644); err != nil {
		return fmt.Errorf("%w: writing metadata YAML '%s': %w", utils.ErrFilesystem, yamlPath, err)
	}
	m.log.Infof("Wrote crawl metadata (%d pages, %d assets) to %s", len(pages), len(assets), yamlPath)
	return nil
}
