package process

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/webdumper/pkg/fetch"
	"github.com/Sriram-PR/webdumper/pkg/models"
	"github.com/Sriram-PR/webdumper/pkg/output"
	"github.com/Sriram-PR/webdumper/pkg/progress"
	"github.com/Sriram-PR/webdumper/pkg/utils"
)

// PageResult is a fetched page: the parsed document plus where (and whether) it was saved.
type PageResult struct {
	Doc       *goquery.Document
	Record    models.PageRecord
	SavedPath string // Empty when the write failed
	DestDir   string // Host directory; assets of this page go here
}

// PageFetcher downloads a page, mirrors its raw bytes to disk and parses it.
type PageFetcher struct {
	fetcher *fetch.Fetcher
	writer  *output.Writer
	counter *progress.Counter
}

// NewPageFetcher creates a PageFetcher writing under writer's root.
func NewPageFetcher(fetcher *fetch.Fetcher, writer *output.Writer, counter *progress.Counter) *PageFetcher {
	return &PageFetcher{fetcher: fetcher, writer: writer, counter: counter}
}

// FetchPage GETs u, writes the body to its mirror path and returns the parsed document.
// Fetch failures are returned as *utils.FetchError. A failed write is logged and the page
// is still returned so its links and assets can be followed from memory.
func (pf *PageFetcher) FetchPage(ctx context.Context, u *url.URL, depth int, taskLog *logrus.Entry) (*PageResult, error) {
	resp, err := pf.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}

	result := &PageResult{
		Record:  models.PageRecord{URL: u.String(), Depth: depth, RawHTML: resp.Body},
		DestDir: output.HostDir(pf.writer.Root(), u),
	}

	savePath := output.PagePath(pf.writer.Root(), u)
	if err := pf.writer.Write(savePath, resp.Body); err != nil {
		taskLog.WithField("category", utils.CategorizeError(err)).Errorf("Failed to save page: %v", err)
	} else {
		result.SavedPath = savePath
		taskLog.Infof("Website source code saved to %s", savePath)
		reportProgress(pf.counter, progress.PageWeight, taskLog)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML from '%s': %w", utils.ErrParsing, u, err)
	}
	doc.Url = u
	result.Doc = doc
	return result, nil
}
