package extract

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// HTMLExtractor returns the visible text of a document with script and style
// elements removed.
type HTMLExtractor struct{}

func (HTMLExtractor) Extract(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()
	return doc.Text(), nil
}
