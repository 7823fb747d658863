package locator

import (
	"bytes"

	apperrors "sjsage522/catalogscraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// Parse builds a queryable document from a page body
func Parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewParsing("locator", "failed to parse document", err)
	}
	return doc, nil
}

// Extract resolves every locator in set against root. Missing fields map to "".
// It only fails when there is no root to search.
func Extract(root *goquery.Selection, set Set) (map[string]string, error) {
	if root == nil || root.Length() == 0 {
		return nil, apperrors.NewParsing("locator", "missing document root", nil)
	}

	values := make(map[string]string, len(set))
	for _, l := range set {
		values[l.Field] = l.Value(root)
	}
	return values, nil
}
