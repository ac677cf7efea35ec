// Package pdftext pulls plain text out of uploaded PDF syllabi.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"rsc.io/pdf"
)

// Extract concatenates the text content of every page, space-joined and
// whitespace-normalized. Scanned (image-only) PDFs yield an empty string,
// which the upload handler rejects as too short.
func Extract(data []byte) (text string, err error) {
	// rsc.io/pdf panics on malformed files rather than returning errors.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var parts []string
	for pageNum := 1; pageNum <= doc.NumPage(); pageNum++ {
		page := doc.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		for _, text := range content.Text {
			if strings.TrimSpace(text.S) == "" {
				continue
			}
			parts = append(parts, text.S)
		}
	}
	return strings.Join(parts, " "), nil
}

// WordCount reports how many whitespace-separated words text contains.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
