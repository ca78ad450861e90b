package ports

import (
	"context"

	"github.com/antonvlasov/documind/internal/core/domain"
)

// DocumentAnalyzer is the inbound contract for one synchronous pipeline run.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, img domain.DocumentImage) (*domain.Analysis, error)
}

// AccountService is the inbound contract for registration and login.
type AccountService interface {
	Register(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) error
}

// HistoryService records and reads per-user analysis history.
type HistoryService interface {
	Record(ctx context.Context, username, filename, category, summary string) (*domain.AnalysisRecord, error)
	History(ctx context.Context, username string) ([]domain.AnalysisRecord, error)
}
