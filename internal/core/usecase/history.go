package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antonvlasov/documind/internal/core/domain"
	"github.com/antonvlasov/documind/internal/core/ports"
)

// HistoryUseCase appends one record per successful pipeline run and reads
// a user's history newest-first. Records are append-only; the store
// assigns the timestamp and the monotone identity.
type HistoryUseCase struct {
	history ports.HistoryRepository
}

func NewHistoryUseCase(history ports.HistoryRepository) *HistoryUseCase {
	return &HistoryUseCase{history: history}
}

func (uc *HistoryUseCase) Record(ctx context.Context, username, filename, category, summary string) (*domain.AnalysisRecord, error) {
	if strings.TrimSpace(username) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "record analysis", errors.New("username is required"))
	}

	rec := &domain.AnalysisRecord{
		Username: username,
		Filename: filename,
		Category: category,
		Summary:  summary,
	}
	if err := uc.history.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("append analysis record: %w", err)
	}
	return rec, nil
}

func (uc *HistoryUseCase) History(ctx context.Context, username string) ([]domain.AnalysisRecord, error) {
	records, err := uc.history.ListByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list analysis history: %w", err)
	}
	return records, nil
}
