package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/antonvlasov/documind/internal/core/domain"
	"github.com/antonvlasov/documind/internal/core/ports"
)

// AnalyzeDocumentUseCase drives one synchronous pipeline run:
// extract -> vectorize -> classify -> summarize. Stages run strictly in
// order; the classifier never sees empty text and the summarizer never
// runs before classification succeeded.
type AnalyzeDocumentUseCase struct {
	models     ports.ModelProvider
	extractor  ports.TextExtractor
	summarizer ports.Summarizer
}

func NewAnalyzeDocumentUseCase(
	models ports.ModelProvider,
	extractor ports.TextExtractor,
	summarizer ports.Summarizer,
) *AnalyzeDocumentUseCase {
	return &AnalyzeDocumentUseCase{
		models:     models,
		extractor:  extractor,
		summarizer: summarizer,
	}
}

func (uc *AnalyzeDocumentUseCase) Analyze(ctx context.Context, img domain.DocumentImage) (*domain.Analysis, error) {
	// Short-circuit before touching the image: a failed artifact load
	// blocks every run for the process lifetime.
	vectorizer, classifier, err := uc.models.Models()
	if err != nil {
		return nil, domain.WrapError(domain.ErrModelsUnavailable, "load models", err)
	}

	text, err := uc.extract(ctx, img)
	if err != nil {
		return nil, err
	}

	category, err := uc.classify(vectorizer, classifier, text)
	if err != nil {
		return nil, err
	}

	summary, err := uc.summarize(ctx, text)
	if err != nil {
		return nil, err
	}

	return &domain.Analysis{
		Category: category,
		Summary:  summary,
		RawText:  text,
	}, nil
}

func (uc *AnalyzeDocumentUseCase) extract(ctx context.Context, img domain.DocumentImage) (string, error) {
	text, err := uc.extractor.Extract(ctx, img)
	if err != nil {
		if domain.IsKind(err, domain.ErrExtraction) {
			return "", err
		}
		return "", domain.WrapError(domain.ErrExtraction, "extract text", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyText
	}
	return text, nil
}

func (uc *AnalyzeDocumentUseCase) classify(
	vectorizer ports.FeatureVectorizer,
	classifier ports.CategoryClassifier,
	text string,
) (string, error) {
	vector := uc.vectorize(vectorizer, text)
	label, err := classifier.Classify(vector)
	if err != nil {
		return "", fmt.Errorf("classify document: %w", err)
	}
	return label, nil
}

func (uc *AnalyzeDocumentUseCase) vectorize(vectorizer ports.FeatureVectorizer, text string) []float64 {
	return vectorizer.Vectorize(text)
}

func (uc *AnalyzeDocumentUseCase) summarize(ctx context.Context, text string) (string, error) {
	summary, err := uc.summarizer.Summarize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("summarize document: %w", err)
	}
	return summary, nil
}
