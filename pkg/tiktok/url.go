package tiktok

import (
	"regexp"
	"strings"
)

// urlPatterns are the URL shapes accepted as TikTok content links.
// They are unanchored so that pasted text with tracking params still matches.
var urlPatterns = []*regexp.Regexp{
	// https://www.tiktok.com/@user/video/1234567890123456789
	regexp.MustCompile(`tiktok\.com/@[\w.-]+/video/\d+`),
	regexp.MustCompile(`tiktok\.com/.*/video/\d+`),
	// https://www.tiktok.com/@user/photo/1234567890123456789
	regexp.MustCompile(`tiktok\.com/@[\w.-]+/photo/\d+`),
	regexp.MustCompile(`tiktok\.com/.*/photo/\d+`),
	// short links
	regexp.MustCompile(`vm\.tiktok\.com/[\w-]+`),
	regexp.MustCompile(`vt\.tiktok\.com/[\w-]+`),
	// https://www.tiktok.com/t/ZTabc123/
	regexp.MustCompile(`tiktok\.com/t/[\w-]+`),
}

var contentIDPattern = regexp.MustCompile(`tiktok\.com/.*?(?:video|photo)/(\d+)`)

// IsValidURL reports whether s looks like a TikTok content URL.
// It is a syntactic check only.
func IsValidURL(s string) bool {
	for _, re := range urlPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// NormalizeURL trims whitespace around pasted input.
func NormalizeURL(s string) string {
	return strings.TrimSpace(s)
}

// ExtractContentID returns the numeric post ID of a canonical URL.
// Short links carry no ID and return "".
func ExtractContentID(s string) string {
	matches := contentIDPattern.FindStringSubmatch(s)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}
