package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// CSVExtractor flattens each record into a space-joined line so that cell
// values remain adjacent to their row context when chunked.
type CSVExtractor struct{}

func (CSVExtractor) Extract(content []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1

	var sb strings.Builder
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		sb.WriteString(strings.Join(record, " "))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
