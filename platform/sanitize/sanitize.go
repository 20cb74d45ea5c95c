// Package sanitize cleans user-provided text before it is stored.
// This is part of the platform layer and contains no business logic.
package sanitize

import (
	"path"
	"regexp"
	"strings"
	"unicode"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes HTML tags, including tags hidden behind common entities.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
	).Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// FileName reduces a client-supplied file name to a display-safe base name:
// no directories, markup or control characters. Returns "file" when nothing
// usable is left.
func FileName(name string) string {
	base := path.Base(strings.ReplaceAll(StripHTML(name), "\\", "/"))
	base = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, base)
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == ".." || base == "/" {
		return "file"
	}
	return base
}
