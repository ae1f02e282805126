package output

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/Sriram-PR/webdumper/pkg/utils"
)

const (
	indexPage = "index"
	pageExt   = ".html"

	// maxPageStemLength keeps stem + hash suffix + ".html" under utils' segment cap.
	maxPageStemLength = 150
	stemHashLength    = 12
)

// HostDir is the directory that holds every page and asset of u's host:
// {root}/{host with dots replaced by underscores}. The port is not part of the name.
func HostDir(root string, u *url.URL) string {
	host := strings.ReplaceAll(strings.ToLower(u.Hostname()), ".", "_")
	return filepath.Join(root, utils.SanitizePathSegment(host))
}

// PagePath maps a page URL to {HostDir}/{escaped path with slashes replaced by underscores}.html.
// An empty path or "/" becomes index.html. The query is not part of the name.
// Long names are cut and suffixed with a hash of the full name, so distinct pages keep distinct files.
func PagePath(root string, u *url.URL) string {
	p := u.EscapedPath()
	name := indexPage
	if p != "" && p != "/" {
		name = strings.ReplaceAll(p, "/", "_")
	}
	if len(name) > maxPageStemLength {
		sum := utils.CalculateSHA256([]byte(name))[:stemHashLength]
		name = name[:maxPageStemLength-stemHashLength-1] + "_" + sum
	}
	return filepath.Join(HostDir(root, u), utils.SanitizePathSegment(name+pageExt))
}

// AssetPath maps an asset URL to destDir/{last path segment}.
// Assets sharing a last segment overwrite each other.
func AssetPath(destDir string, u *url.URL) string {
	segment := ""
	if p := u.Path; p != "" && !strings.HasSuffix(p, "/") {
		segment = path.Base(p)
	}
	return filepath.Join(destDir, utils.SanitizePathSegment(segment))
}
