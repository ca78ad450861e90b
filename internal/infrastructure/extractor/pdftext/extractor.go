// Package pdftext extracts the embedded text layer of digital PDFs,
// skipping OCR entirely for documents that were never scanned.
package pdftext

import (
	"bytes"
	"context"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/antonvlasov/documind/internal/core/domain"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, img domain.DocumentImage) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(img.Data), int64(len(img.Data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "open pdf", err)
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "read pdf text layer", err)
	}

	raw, err := io.ReadAll(content)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "read pdf text layer", err)
	}
	// A scanned PDF has no text layer; that is empty text, not an
	// engine failure.
	return string(raw), nil
}
