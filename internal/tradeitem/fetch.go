package tradeitem

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cinsignal/internal"
	"cinsignal/internal/config"
	"cinsignal/internal/pipeline"
	"cinsignal/internal/storage"
)

// Fetcher retrieves a CIN by GTIN, runs it through the pipeline and stores it.
type Fetcher interface {
	FetchCIN(ctx context.Context, gtin string) (FetchResult, error)
}

type FetchService struct {
	db        *storage.DB
	client    Fetcher
	processor *pipeline.ProcessingService
	cfg       config.Config
	log       *slog.Logger
}

func NewFetchService(db *storage.DB, cfg config.Config, log *slog.Logger) *FetchService {
	return NewFetchServiceWithClient(db, NewClient(cfg), cfg, log)
}

func NewFetchServiceWithClient(db *storage.DB, client Fetcher, cfg config.Config, log *slog.Logger) *FetchService {
	if log == nil {
		log = slog.Default()
	}
	return &FetchService{
		db:        db,
		client:    client,
		processor: pipeline.NewProcessingService(db, cfg, log),
		cfg:       cfg,
		log:       log,
	}
}

// Fetch downloads the CIN for gtin, keeps the raw item and XML under the
// output directory and processes the document.
func (s *FetchService) Fetch(ctx context.Context, gtin string) (pipeline.ProcessResult, error) {
	start := time.Now()
	res, err := s.client.FetchCIN(ctx, gtin)
	if err != nil {
		return pipeline.ProcessResult{}, err
	}
	s.log.Info("cin fetched", "gtin", gtin, "item_id", res.ItemID, "bytes", len(res.CIN), "ms", time.Since(start).Milliseconds())

	dir := filepath.Join(s.cfg.OutputDir, gtin)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return pipeline.ProcessResult{}, err
	}
	if len(res.Item) > 0 {
		if err := os.WriteFile(filepath.Join(dir, "trade_item_raw.json"), res.Item, 0o644); err != nil {
			return pipeline.ProcessResult{}, err
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "cin.xml"), res.CIN, 0o644); err != nil {
		return pipeline.ProcessResult{}, err
	}

	processed, err := s.processor.Process(internal.SourceTradeItem, res.CIN)
	if err != nil {
		return pipeline.ProcessResult{}, err
	}
	if err := pipeline.WriteArtifacts(processed.Artifacts, dir); err != nil {
		return pipeline.ProcessResult{}, err
	}
	_ = s.db.SetMetadata("tradeitem.last_fetch."+gtin, time.Now().UTC().Format(time.RFC3339))
	return processed, nil
}
