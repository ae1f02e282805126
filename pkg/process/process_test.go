package process

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/webdumper/pkg/config"
	"github.com/Sriram-PR/webdumper/pkg/fetch"
	"github.com/Sriram-PR/webdumper/pkg/models"
	"github.com/Sriram-PR/webdumper/pkg/output"
	"github.com/Sriram-PR/webdumper/pkg/progress"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

// testSite serves fixed bodies per path and counts hits per path.
type testSite struct {
	*httptest.Server
	hits map[string]*atomic.Int32
}

func newTestSite(t *testing.T, pages map[string]string) *testSite {
	t.Helper()
	site := &testSite{hits: make(map[string]*atomic.Int32)}
	for p := range pages {
		site.hits[p] = &atomic.Int32{}
	}
	site.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		site.hits[r.URL.Path].Add(1)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(site.Close)
	return site
}

func (s *testSite) url(t *testing.T, p string) *url.URL {
	t.Helper()
	u, err := url.Parse(s.URL + p)
	require.NoError(t, err)
	return u
}

func newTestFetcher() *fetch.Fetcher {
	client := fetch.NewClient(config.HTTPClientConfig{Timeout: 5 * time.Second, DialerTimeout: 2 * time.Second}, testLogger())
	return fetch.NewFetcher(client, fetch.Options{Timeout: 5 * time.Second, UserAgent: config.DefaultUserAgent}, testLogger())
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// recordingRecorder collects RecordAsset calls.
type recordingRecorder struct {
	assets []models.AssetRecord
	paths  []string
}

func (r *recordingRecorder) RecordAsset(asset models.AssetRecord, savedPath string) {
	r.assets = append(r.assets, asset)
	r.paths = append(r.paths, savedPath)
}

func newCounter() *progress.Counter { return &progress.Counter{} }

func newWriter(t *testing.T) *output.Writer {
	t.Helper()
	return output.NewWriter(t.TempDir())
}
