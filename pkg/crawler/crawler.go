package crawler

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/webdumper/pkg/config"
	"github.com/Sriram-PR/webdumper/pkg/models"
	"github.com/Sriram-PR/webdumper/pkg/output"
	"github.com/Sriram-PR/webdumper/pkg/parse"
	"github.com/Sriram-PR/webdumper/pkg/process"
	"github.com/Sriram-PR/webdumper/pkg/progress"
	"github.com/Sriram-PR/webdumper/pkg/storage"
	"github.com/Sriram-PR/webdumper/pkg/utils"
)

// Crawler mirrors every page reachable from the seed on the seed's host, up to the max depth.
type Crawler struct {
	log *logrus.Entry // Logger contextualized with run_id
	cfg *config.CrawlConfig

	// Core components
	store   storage.VisitedStore
	pages   *process.PageFetcher
	assets  *process.AssetExtractor
	output  *output.Manager
	counter *progress.Counter

	// Tracking
	pagesProcessed atomic.Int64
	pagesFailed    atomic.Int64
}

// New creates a Crawler. The caller owns store and closes it after Run returns.
func New(
	cfg *config.CrawlConfig,
	store storage.VisitedStore,
	pages *process.PageFetcher,
	assets *process.AssetExtractor,
	out *output.Manager,
	counter *progress.Counter,
	baseLogger *logrus.Entry,
) *Crawler {
	return &Crawler{
		log:     baseLogger.WithField("run_id", out.RunID()),
		cfg:     cfg,
		store:   store,
		pages:   pages,
		assets:  assets,
		output:  out,
		counter: counter,
	}
}

// Run creates the output root, crawls the seed at depth 0 and writes the run summary.
// Only a fatal setup failure is returned; per-page failures are logged and counted.
func (c *Crawler) Run(ctx context.Context) error {
	startTime := time.Now()
	root := c.cfg.OutputRoot()
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("%w: creating output directory '%s': %w", utils.ErrFilesystem, root, err)
	}

	seed := c.cfg.SeedURL()
	c.log.WithFields(logrus.Fields{"seed": seed.String(), "max_depth": c.cfg.MaxDepth()}).
		Infof("Starting download of %s into %s", seed, root)
	c.output.Open(seed.String(), c.cfg.AllowedHost(), c.cfg.MaxDepth())

	c.Crawl(ctx, seed, 0)

	visited, err := c.store.GetVisitedCount()
	if err != nil {
		c.log.Warnf("Could not get visited count: %v", err)
		visited = -1
	}
	current, total := c.counter.Report()

	c.log.Info("Download complete.")
	c.log.Infof("Duration:         %v", time.Since(startTime))
	c.log.Infof("Final Stats: Visited: %d, Pages Processed: %d, Pages Failed: %d, Pages Saved: %d, Assets Saved: %d, Progress: %d/%d",
		visited, c.pagesProcessed.Load(), c.pagesFailed.Load(), c.output.PagesSaved(), c.output.AssetsSaved(), current, total)

	if err := c.output.Close(); err != nil {
		c.log.WithField("category", utils.CategorizeError(err)).Errorf("Failed to finalize outputs: %v", err)
	}
	return nil
}

// Crawl processes u at depth and recursively crawls its same-origin links at depth+1.
// It returns only after every descendant crawl has returned.
func (c *Crawler) Crawl(ctx context.Context, u *url.URL, depth int) {
	if depth > c.cfg.MaxDepth() {
		return
	}

	key := parse.ClaimKey(u)
	taskLog := c.log.WithFields(logrus.Fields{"url": key, "depth": depth})

	claimed, err := c.store.TryClaim(key)
	if err != nil {
		taskLog.WithField("category", utils.CategorizeError(err)).Errorf("Failed to claim URL: %v", err)
		return
	}
	if !claimed {
		taskLog.Debug("Already visited, skipping")
		return
	}

	links := c.processPage(ctx, u, key, depth, taskLog)

	var wg sync.WaitGroup
	for _, link := range links {
		wg.Add(1)
		go func(link *url.URL) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					taskLog.WithFields(logrus.Fields{
						"child_url":   link.String(),
						"panic_info":  fmt.Sprintf("%v", r),
						"stack_trace": string(debug.Stack()),
					}).Error("PANIC recovered in child crawl")
				}
			}()
			c.Crawl(ctx, link, depth+1)
		}(link)
	}
	wg.Wait()
}

// processPage fetches, mirrors and extracts one claimed page, then records its final status.
// It returns the page's same-origin links (nil on failure).
func (c *Crawler) processPage(ctx context.Context, u *url.URL, key string, depth int, taskLog *logrus.Entry) (links []*url.URL) {
	startTime := time.Now()
	var taskErr error
	var pageTitle string
	var contentHash string

	// Panic recovery, final status logging and DB update.
	defer func() {
		if r := recover(); r != nil {
			taskErr = fmt.Errorf("panic: %v", r)
			links = nil
			taskLog.WithFields(logrus.Fields{
				"panic_info":  r,
				"duration":    time.Since(startTime).String(),
				"stack_trace": string(debug.Stack()),
			}).Error("PANIC recovered while processing page")
		}

		entry := &models.PageDBEntry{LastAttempt: time.Now(), Depth: depth}
		logFields := logrus.Fields{"duration": time.Since(startTime).String()}
		if taskErr != nil {
			entry.Status = models.PageStatusFetchFailed
			entry.ErrorType = utils.CategorizeError(taskErr)
			logFields["category"] = entry.ErrorType
			taskLog.WithFields(logFields).Warnf("Page failed: %v", taskErr)
			c.pagesFailed.Add(1)
		} else {
			entry.Status = models.PageStatusFetched
			entry.ErrorType = "None"
			entry.ContentHash = contentHash
			if pageTitle != "" {
				logFields["page_title"] = pageTitle
			}
			logFields["links"] = len(links)
			taskLog.WithFields(logFields).Info("Page processed")
		}
		if err := c.store.UpdatePageStatus(key, entry); err != nil {
			taskLog.Errorf("Failed to update status for '%s' to '%s': %v", key, entry.Status, err)
		}
		c.pagesProcessed.Add(1)
	}()

	result, err := c.pages.FetchPage(ctx, u, depth, taskLog)
	if err != nil {
		taskErr = err
		return nil
	}

	assetCount := c.assets.ExtractAndSaveAssets(ctx, result.Doc, u, result.DestDir, taskLog)

	pageTitle = strings.TrimSpace(result.Doc.Find("title").First().Text())
	contentHash = utils.CalculateSHA256(result.Record.RawHTML)
	if result.SavedPath != "" {
		c.output.RecordPage(u, result.SavedPath, pageTitle, result.Record.RawHTML, depth, assetCount)
	}

	return process.ExtractSameOriginLinks(result.Doc, u, taskLog)
}
