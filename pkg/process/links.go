package process

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/webdumper/pkg/parse"
)

// ExtractSameOriginLinks returns the distinct http(s) links of doc that stay on pageURL's host,
// in document order. Fragments are dropped, so "/b#x" and "/b" count once.
func ExtractSameOriginLinks(doc *goquery.Document, pageURL *url.URL, taskLog *logrus.Entry) []*url.URL {
	seen := make(map[string]struct{})
	var links []*url.URL

	doc.Find("a[href]").Each(func(_ int, el *goquery.Selection) {
		href, _ := el.Attr("href")
		if href == "" {
			return
		}
		linkURL, err := parse.Resolve(pageURL, href)
		if err != nil {
			taskLog.Debugf("Skipping invalid link href '%s': %v", href, err)
			return
		}
		if linkURL.Scheme != "http" && linkURL.Scheme != "https" {
			return // mailto:, javascript:, tel: ...
		}
		if !parse.SameOrigin(linkURL, pageURL) {
			return
		}
		key := parse.ClaimKey(linkURL)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		links = append(links, linkURL)
	})

	taskLog.Debugf("Found %d same-origin links", len(links))
	return links
}
