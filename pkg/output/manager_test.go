package output

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/webdumper/pkg/models"
	"github.com/Sriram-PR/webdumper/pkg/utils"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func TestManager_AllOutputs(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, ManagerOptions{
		MappingFilename:  "map.tsv",
		MetadataFilename: "metadata.yaml",
		TreeFilename:     "tree.txt",
	}, testLogger())
	_, err := uuid.Parse(m.RunID())
	require.NoError(t, err)

	m.Open("http://example.test/", "example.test", 1)

	pageURL := mustParse(t, "http://example.test/")
	pagePath := PagePath(root, pageURL)
	body := []byte("<html><title>Home</title></html>")
	require.NoError(t, NewWriter(root).Write(pagePath, body))

	assetPath := filepath.Join(HostDir(root, pageURL), "a.png")
	asset := models.AssetRecord{
		SourceURL:   "http://example.test/",
		TagKind:     models.AssetTag{Tag: "img", Attr: "src"},
		ResolvedURL: "http://example.test/a.png",
		Bytes:       []byte("png"),
	}
	require.NoError(t, NewWriter(root).Write(assetPath, asset.Bytes))

	m.RecordAsset(asset, assetPath)
	m.RecordPage(pageURL, pagePath, " Home ", body, 0, 1)
	assert.Equal(t, 1, m.PagesSaved())
	assert.Equal(t, 1, m.AssetsSaved())

	require.NoError(t, m.Close())

	mapping, err := os.ReadFile(filepath.Join(root, "map.tsv"))
	require.NoError(t, err)
	assert.Equal(t,
		"http://example.test/a.png\texample_test/a.png\nhttp://example.test/\texample_test/index.html\n",
		string(mapping))

	raw, err := os.ReadFile(filepath.Join(root, "metadata.yaml"))
	require.NoError(t, err)
	var meta models.CrawlMetadata
	require.NoError(t, yaml.Unmarshal(raw, &meta))
	assert.Equal(t, m.RunID(), meta.RunID)
	assert.Equal(t, "example.test", meta.AllowedHost)
	assert.Equal(t, 1, meta.MaxDepth)
	assert.Equal(t, 1, meta.TotalPagesSaved)
	assert.Equal(t, 1, meta.TotalAssetsSaved)
	require.Len(t, meta.Pages, 1)
	assert.Equal(t, "Home", meta.Pages[0].Title)
	assert.Equal(t, "example_test/index.html", meta.Pages[0].LocalFilePath)
	assert.Equal(t, utils.CalculateSHA256(body), meta.Pages[0].ContentHash)
	assert.Equal(t, 1, meta.Pages[0].AssetCount)
	require.Len(t, meta.Assets, 1)
	assert.Equal(t, "img[src]", meta.Assets[0].Tag)
	assert.Equal(t, 3, meta.Assets[0].SizeBytes)
	assert.False(t, meta.CrawlEndTime.Before(meta.CrawlStartTime))

	tree, err := os.ReadFile(filepath.Join(root, "tree.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(tree), "index.html")
	assert.Contains(t, string(tree), "a.png")
}

func TestManager_DisabledOutputs(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, ManagerOptions{}, testLogger())
	m.Open("http://example.test/", "example.test", 0)
	m.RecordPage(mustParse(t, "http://example.test/"), filepath.Join(root, "x.html"), "", nil, 0, 0)
	require.NoError(t, m.Close())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 1, m.PagesSaved())
}

func TestManager_ConcurrentRecords(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, ManagerOptions{MappingFilename: "map.tsv"}, testLogger())
	m.Open("http://example.test/", "example.test", 1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordAsset(models.AssetRecord{ResolvedURL: "http://example.test/a.png"}, filepath.Join(root, "a.png"))
		}()
	}
	wg.Wait()
	require.NoError(t, m.Close())

	assert.Equal(t, 50, m.AssetsSaved())
	mapping, err := os.ReadFile(filepath.Join(root, "map.tsv"))
	require.NoError(t, err)
	assert.Equal(t, 50, strings.Count(string(mapping), "\n"))
}

func TestManager_UnwritableMappingDisablesIt(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	m := NewManager(root, ManagerOptions{MappingFilename: "map.tsv"}, testLogger())
	m.Open("http://example.test/", "example.test", 1)

	assert.NotPanics(t, func() {
		m.RecordAsset(models.AssetRecord{ResolvedURL: "http://example.test/a.png"}, filepath.Join(root, "a.png"))
	})
	assert.NoError(t, m.Close())
}
