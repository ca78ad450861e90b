// Package ocr extracts text from raster document images through the
// Tesseract engine.
package ocr

import (
	"context"
	"errors"

	"github.com/otiai10/gosseract/v2"

	"github.com/antonvlasov/documind/internal/core/domain"
)

type Extractor struct {
	languages []string
}

func NewExtractor(languages ...string) *Extractor {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Extractor{languages: languages}
}

// Extract runs OCR over the image bytes. An unreadable image is an
// ErrExtraction; an image that simply contains no text yields an empty
// string and no error.
func (e *Extractor) Extract(_ context.Context, img domain.DocumentImage) (string, error) {
	if len(img.Data) == 0 {
		return "", domain.WrapError(domain.ErrExtraction, "ocr", errors.New("empty image payload"))
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "ocr set language", err)
	}
	if err := client.SetImageFromBytes(img.Data); err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "ocr load image", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "ocr recognize", err)
	}
	return text, nil
}
