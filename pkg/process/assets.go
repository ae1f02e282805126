package process

import (
	"context"
	"fmt"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/webdumper/pkg/fetch"
	"github.com/Sriram-PR/webdumper/pkg/models"
	"github.com/Sriram-PR/webdumper/pkg/output"
	"github.com/Sriram-PR/webdumper/pkg/parse"
	"github.com/Sriram-PR/webdumper/pkg/progress"
	"github.com/Sriram-PR/webdumper/pkg/utils"
)

// AssetRecorder receives every asset written to disk.
type AssetRecorder interface {
	RecordAsset(asset models.AssetRecord, savedPath string)
}

// AssetExtractor finds asset references on a page and mirrors each one.
type AssetExtractor struct {
	fetcher  *fetch.Fetcher
	writer   *output.Writer
	tags     []models.AssetTag
	maxBytes int64 // 0 = unlimited
	counter  *progress.Counter
	recorder AssetRecorder // optional
}

// NewAssetExtractor creates an AssetExtractor for the given ordered tag list.
func NewAssetExtractor(fetcher *fetch.Fetcher, writer *output.Writer, tags []models.AssetTag, maxBytes int64, counter *progress.Counter, recorder AssetRecorder) *AssetExtractor {
	return &AssetExtractor{
		fetcher:  fetcher,
		writer:   writer,
		tags:     append([]models.AssetTag(nil), tags...),
		maxBytes: maxBytes,
		counter:  counter,
		recorder: recorder,
	}
}

// ExtractAndSaveAssets downloads every asset referenced by the configured (tag, attr) pairs,
// in tag order then document order, into destDir. Assets may live on any host.
// Per-asset failures are logged and skipped. Returns the number of assets saved.
func (ae *AssetExtractor) ExtractAndSaveAssets(ctx context.Context, doc *goquery.Document, baseURL *url.URL, destDir string, taskLog *logrus.Entry) int {
	saved := 0
	for _, tag := range ae.tags {
		doc.Find(tag.Selector()).Each(func(_ int, el *goquery.Selection) {
			ref, _ := el.Attr(tag.Attr)
			if ae.saveAsset(ctx, tag, ref, baseURL, destDir, taskLog) {
				saved++
			}
		})
	}
	return saved
}

// saveAsset handles one reference. It never panics out to the page loop.
func (ae *AssetExtractor) saveAsset(ctx context.Context, tag models.AssetTag, ref string, baseURL *url.URL, destDir string, taskLog *logrus.Entry) (ok bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(strings.ToLower(ref), "data:") {
		return false
	}

	assetLog := taskLog.WithField("asset_ref", ref)
	defer func() {
		if r := recover(); r != nil {
			assetLog.WithFields(logrus.Fields{
				"panic_info":  fmt.Sprintf("%v", r),
				"stack_trace": string(debug.Stack()),
			}).Error("PANIC Recovered while saving asset")
			ok = false
		}
	}()

	resolved, err := parse.Resolve(baseURL, ref)
	if err != nil {
		assetLog.WithField("category", utils.CategorizeError(err)).Warnf("Skipping asset: %v", err)
		return false
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		assetLog.Debugf("Skipping asset with scheme '%s'", resolved.Scheme)
		return false
	}

	assetURL := resolved.String()
	assetLog = assetLog.WithField("asset_url", assetURL)

	resp, err := ae.fetcher.FetchLimited(ctx, assetURL, ae.maxBytes)
	if err != nil {
		assetLog.WithField("category", utils.CategorizeError(err)).Errorf("Failed to download asset: %v", err)
		return false
	}

	savePath := output.AssetPath(destDir, resolved)
	if err := ae.writer.Write(savePath, resp.Body); err != nil {
		assetLog.WithField("category", utils.CategorizeError(err)).Errorf("Failed to save asset: %v", err)
		return false
	}
	assetLog.Infof("Asset saved to %s", savePath)

	if ae.recorder != nil {
		ae.recorder.RecordAsset(models.AssetRecord{
			SourceURL:   baseURL.String(),
			TagKind:     tag,
			ResolvedURL: assetURL,
			Bytes:       resp.Body,
		}, savePath)
	}
	reportProgress(ae.counter, progress.AssetWeight, assetLog)
	return true
}
