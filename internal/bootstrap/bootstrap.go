// Package bootstrap wires the process: storage, repositories, model
// registry, pipeline stages and the HTTP facade.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	httpadapter "github.com/antonvlasov/documind/internal/adapters/http"
	"github.com/antonvlasov/documind/internal/config"
	"github.com/antonvlasov/documind/internal/core/usecase"
	"github.com/antonvlasov/documind/internal/infrastructure/extractor"
	"github.com/antonvlasov/documind/internal/infrastructure/extractor/ocr"
	"github.com/antonvlasov/documind/internal/infrastructure/extractor/pdftext"
	"github.com/antonvlasov/documind/internal/infrastructure/model"
	"github.com/antonvlasov/documind/internal/infrastructure/repository/postgres"
	"github.com/antonvlasov/documind/internal/infrastructure/resilience"
	"github.com/antonvlasov/documind/internal/infrastructure/storage/localfs"
	"github.com/antonvlasov/documind/internal/infrastructure/summarizer/ollama"
	"github.com/antonvlasov/documind/internal/observability/metrics"
)

const defaultSummarizerModel = "llama3.2"

type App struct {
	Handler http.Handler

	db *sql.DB
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	registry := model.NewRegistry(cfg.ArtifactManifestPath)
	if _, _, err := registry.Models(); err != nil {
		// The process still serves auth and history; analyze stays
		// blocked until artifacts are fixed and the process restarts.
		logger.Error("model_artifacts_unavailable", "error", err)
	}

	summarizerModel := defaultSummarizerModel
	if manifest, err := model.LoadManifest(cfg.ArtifactManifestPath); err == nil && manifest.SummarizerModel != "" {
		summarizerModel = manifest.SummarizerModel
	}

	exec := resilience.NewExecutor(resilience.DefaultConfig())
	summarizer := ollama.New(cfg.OllamaURL, summarizerModel, exec)

	extract := extractor.NewMux(
		ocr.NewExtractor(cfg.OCRLanguages...),
		pdftext.NewExtractor(),
	)

	analyzer := usecase.NewAnalyzeDocumentUseCase(registry, extract, summarizer)
	accounts := usecase.NewAccountUseCase(postgres.NewUserRepository(db))
	history := usecase.NewHistoryUseCase(postgres.NewHistoryRepository(db))

	pipelineMetrics := metrics.NewPipelineMetrics("api")

	var limiter *rate.Limiter
	if cfg.AnalyzeRateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.AnalyzeRateLimitRPS), cfg.AnalyzeRateLimitBurst)
	}

	router := httpadapter.NewRouter(accounts, analyzer, history, registry, storage, pipelineMetrics, httpadapter.Options{
		Service:        "api",
		MaxUploadBytes: cfg.MaxUploadBytes,
		AnalyzeLimiter: limiter,
	})

	return &App{
		Handler: router.Handler(),
		db:      db,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}
