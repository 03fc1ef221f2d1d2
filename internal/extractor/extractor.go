// Package extractor pulls plain text out of PDF documents.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrInvalidPDF = errors.New("invalid PDF")

// ExtractText returns the text of every page in page order. Pages are
// concatenated without a separator. Any failure discards the whole result.
func ExtractText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: content is empty", ErrInvalidPDF)
	}

	// The PDF reader panics on some malformed inputs instead of returning.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open reader: %w", ErrInvalidPDF, err)
	}

	var b strings.Builder

	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			return "", fmt.Errorf("%w: extract page %d: %w", ErrInvalidPDF, i, pageErr)
		}

		b.WriteString(pageText)
	}

	return b.String(), nil
}

// ExtractFile reads a PDF from disk and extracts its text.
func ExtractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	return ExtractText(data)
}
