package helpers

import (
	"errors"
	"net/url"
	"strings"
)

// GetSplitPart returns the index-th part of target. A negative index counts from the end.
func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index < 0 {
		index += len(parts)
	}
	if index < 0 || index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}

// ItemPath reports whether href points below prefix on host. Relative hrefs are
// always on host; absolute ones must name it.
func ItemPath(href, host, prefix string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	if u.Host != "" && !strings.EqualFold(u.Host, host) {
		return "", false
	}
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	return u.Path, true
}

// SlugFromHref returns the last path segment after prefix, or "" when nothing follows it
func SlugFromHref(href, host, prefix string) string {
	path, ok := ItemPath(href, host, prefix)
	if !ok {
		return ""
	}
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return ""
	}
	slug, _ := GetSplitPart(rest, "/", -1)
	return slug
}
