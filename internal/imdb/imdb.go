// Package imdb extracts canonical IMDb title identifiers from URLs.
package imdb

import (
	"net/url"
	"regexp"
	"strings"
)

// IMDb title codes: "tt" followed by 6 to 10 digits, e.g. tt0111161.
var titleIDRE = regexp.MustCompile(`(?i)^tt\d{6,10}$`)

// ExtractID extracts the canonical title identifier from an IMDb URL such as
// https://www.imdb.com/title/tt0111161/. It is pure and performs no I/O;
// malformed or unrecognized URLs are a normal outcome and report ok=false
// rather than an error.
func ExtractID(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if u.Host == "" {
		// Tolerate scheme-less input like "imdb.com/title/tt0111161".
		u, err = url.Parse("https://" + rawURL)
		if err != nil {
			return "", false
		}
	}

	host := strings.ToLower(u.Hostname())
	if host != "imdb.com" && !strings.HasSuffix(host, ".imdb.com") {
		return "", false
	}

	for _, seg := range strings.Split(u.Path, "/") {
		if titleIDRE.MatchString(seg) {
			return strings.ToLower(seg), true
		}
	}
	return "", false
}
