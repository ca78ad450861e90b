package ports

import (
	"context"
	"io"

	"github.com/antonvlasov/documind/internal/core/domain"
)

// TextExtractor turns a document image into plain text. An empty string
// is a valid result; engine failures surface as ErrExtraction.
type TextExtractor interface {
	Extract(ctx context.Context, img domain.DocumentImage) (string, error)
}

// FeatureVectorizer maps text onto a fixed-dimension tf-idf vector.
// Deterministic: identical text yields an identical vector.
type FeatureVectorizer interface {
	Vectorize(text string) []float64
	Dimensions() int
}

// CategoryClassifier maps a feature vector to one label from the closed
// label set. A vector of the wrong dimensionality is ErrDimensionMismatch.
type CategoryClassifier interface {
	Classify(vector []float64) (string, error)
	Labels() []string
}

// Summarizer produces an abstractive summary, applying the truncation and
// short-input sentinel policy internally.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ModelProvider hands out the loaded inference artifacts. The error is
// sticky: once loading failed it stays failed for the process lifetime.
type ModelProvider interface {
	Models() (FeatureVectorizer, CategoryClassifier, error)
}

// HistoryRepository persists analysis records, append-only.
type HistoryRepository interface {
	Append(ctx context.Context, rec *domain.AnalysisRecord) error
	ListByUser(ctx context.Context, username string) ([]domain.AnalysisRecord, error)
}

// UserRepository persists account credentials.
type UserRepository interface {
	Create(ctx context.Context, cred domain.UserCredential) error
	GetByUsername(ctx context.Context, username string) (domain.UserCredential, error)
}

// ObjectStorage retains uploaded source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
