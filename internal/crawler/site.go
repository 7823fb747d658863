package crawler

import (
	"fmt"
	"net/url"
)

// Site addresses listing and detail pages for one region of the catalog
type Site struct {
	BaseURL string
	Region  string
}

// ListingURL returns the listing page of a category
func (s Site) ListingURL(category string) string {
	return fmt.Sprintf("%s/%s/category/%s", s.BaseURL, s.Region, url.PathEscape(category))
}

// DetailURL returns the detail page of an item
func (s Site) DetailURL(slug string) string {
	return fmt.Sprintf("%s/%s/liquor/%s", s.BaseURL, s.Region, url.PathEscape(slug))
}

// ItemPrefix is the path prefix shared by all item links of the region
func (s Site) ItemPrefix() string {
	return "/" + s.Region + "/liquor/"
}

// Host is the host of BaseURL; item links on any other host are ignored
func (s Site) Host() string {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return ""
	}
	return u.Host
}
