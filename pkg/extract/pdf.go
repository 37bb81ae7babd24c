package extract

import (
	"bytes"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts the plain text of every page, concatenated in page
// order.
type PDFExtractor struct{}

func (PDFExtractor) Extract(content []byte) (string, error) {
	// The pdf library works with file paths, so spool to a temp file.
	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	f, reader, err := pdf.Open(tmp.Name())
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, text); err != nil {
		return "", err
	}
	return buf.String(), nil
}
