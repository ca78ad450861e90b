// Package extractor routes an uploaded document to the engine that can
// read it: raster images go through OCR, digital PDFs through their
// embedded text layer.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/antonvlasov/documind/internal/core/domain"
	"github.com/antonvlasov/documind/internal/core/ports"
)

type Mux struct {
	image ports.TextExtractor
	pdf   ports.TextExtractor
}

func NewMux(image, pdf ports.TextExtractor) *Mux {
	return &Mux{image: image, pdf: pdf}
}

func (m *Mux) Extract(ctx context.Context, img domain.DocumentImage) (string, error) {
	switch {
	case isImage(img):
		return m.image.Extract(ctx, img)
	case isPDF(img):
		return m.pdf.Extract(ctx, img)
	default:
		return "", domain.WrapError(
			domain.ErrExtraction,
			"route document",
			fmt.Errorf("unsupported format: filename=%q mime=%q", img.Filename, img.MimeType),
		)
	}
}

func isImage(img domain.DocumentImage) bool {
	switch strings.ToLower(img.MimeType) {
	case "image/png", "image/jpeg", "image/tiff":
		return true
	}
	switch ext(img.Filename) {
	case ".png", ".jpg", ".jpeg", ".tiff", ".tif":
		return true
	}
	return false
}

func isPDF(img domain.DocumentImage) bool {
	return strings.ToLower(img.MimeType) == "application/pdf" || ext(img.Filename) == ".pdf"
}

func ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
