package parse

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/Sriram-PR/webdumper/pkg/utils"
)

// Resolve turns a (possibly relative) reference found on a page into an absolute URL.
// Surrounding whitespace is ignored and the fragment is dropped, since "/b#x" and "/b"
// name the same document. An absolute ref resolves to itself.
func Resolve(base *url.URL, ref string) (*url.URL, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: no base URL to resolve '%s' against", utils.ErrMalformedURL, ref)
	}
	ref = strings.TrimSpace(ref)
	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %v", utils.ErrMalformedURL, ref, err)
	}
	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved, nil
}

// SameOrigin reports whether a and b point at the same host.
// Scheme and port are ignored; hostnames compare case-insensitively.
func SameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(a.Hostname(), b.Hostname())
}

// ClaimKey is the visited-set key for u: its string form without fragment.
func ClaimKey(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}

// NormalizeURL standardizes a URL for reporting in the mapping file and metadata.
// It lowercases the scheme and host, removes default ports (80 for http, 443 for https),
// turns an empty path into "/", trims a trailing slash from longer paths and drops the fragment.
// The query is kept since it selects a distinct document. Does not modify the input.
func NormalizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	normalized := *u

	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)

	if host, port, err := net.SplitHostPort(normalized.Host); err == nil {
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host
		}
	}

	switch {
	case normalized.Path == "":
		normalized.Path = "/"
		normalized.RawPath = ""
	case len(normalized.Path) > 1 && strings.HasSuffix(normalized.Path, "/"):
		normalized.Path = strings.TrimSuffix(normalized.Path, "/")
		normalized.RawPath = strings.TrimSuffix(normalized.RawPath, "/")
	}

	normalized.Fragment = ""
	normalized.RawFragment = ""
	return normalized.String()
}
