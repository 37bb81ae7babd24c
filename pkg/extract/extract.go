package extract

import (
	"fmt"
	"strings"

	"studychat/internal/types"
)

// DocumentType identifies a supported upload format.
type DocumentType string

const (
	TypePDF  DocumentType = "pdf"
	TypeCSV  DocumentType = "csv"
	TypeHTML DocumentType = "html"
)

// contentTypes maps declared MIME types to document types.
var contentTypes = map[string]DocumentType{
	"application/pdf": TypePDF,
	"text/csv":        TypeCSV,
	"text/html":       TypeHTML,
}

// TypeFromContentType resolves a MIME type to a DocumentType, ignoring any
// media-type parameters such as charset. The second return value is false for
// MIME types with no registered extractor.
func TypeFromContentType(contentType string) (DocumentType, bool) {
	mediaType, _, _ := strings.Cut(contentType, ";")
	t, ok := contentTypes[strings.TrimSpace(mediaType)]
	return t, ok
}

// AllowedContentTypes lists the MIME types accepted by the default registry.
func AllowedContentTypes() []string {
	return []string{"application/pdf", "text/csv", "text/html"}
}

// Registry dispatches extraction over document type. Unregistered types fail
// with ErrUnsupportedType rather than panicking on a missing entry.
type Registry struct {
	extractors map[DocumentType]types.Extractor
}

// NewRegistry returns a registry with the pdf, csv and html extractors
// registered.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[DocumentType]types.Extractor)}
	r.Register(TypePDF, PDFExtractor{})
	r.Register(TypeCSV, CSVExtractor{})
	r.Register(TypeHTML, HTMLExtractor{})
	return r
}

func (r *Registry) Register(t DocumentType, e types.Extractor) {
	r.extractors[t] = e
}

// Extract runs the extractor registered for t. An empty result string means
// the document held no extractable text; that is not an error here.
func (r *Registry) Extract(t DocumentType, content []byte) (string, error) {
	e, ok := r.extractors[t]
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrUnsupportedType, t)
	}
	text, err := e.Extract(content)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrExtraction, t, err)
	}
	return text, nil
}
