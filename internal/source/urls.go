package source

import (
	"strings"

	"mvdan.cc/xurls/v2"
)

//nolint:gochecknoglobals // Compiled once, read-only.
var webURLRe = xurls.Strict()

// FindURLs returns the distinct http(s) URLs in text, in order of appearance.
func FindURLs(text string) []string {
	matches := webURLRe.FindAllString(text, -1)

	urls := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))

	for _, m := range matches {
		m = strings.TrimSpace(m)
		if _, err := validateURL(m); err != nil {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}

		seen[m] = struct{}{}
		urls = append(urls, m)
	}

	return urls
}

// StripURLs removes every URL from text and collapses the remaining spaces.
func StripURLs(text string) string {
	return collapseSpaces(webURLRe.ReplaceAllString(text, " "))
}
