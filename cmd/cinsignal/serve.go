package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cinsignal/internal/api"
	"cinsignal/internal/config"
	"cinsignal/internal/pipeline"
	"cinsignal/internal/storage"
	"cinsignal/internal/taxonomy"
	"cinsignal/internal/util"
)

func serve(cfg config.Config, log *slog.Logger) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	var (
		idx      *taxonomy.Index
		searcher *taxonomy.Searcher
	)
	loaded, err := taxonomy.LoadOrStored(cfg.TaxonomyPath, db)
	switch {
	case err == nil:
		idx = loaded
		searcher, err = taxonomy.NewSearcher(idx)
		if err != nil {
			return err
		}
		defer searcher.Close()
		flattenedAt, _ := db.GetMetadata(metaTaxonomyFlattenedAt)
		log.Info("taxonomy loaded",
			slog.Int("entries", idx.Len()),
			slog.Int("duplicates", len(idx.Duplicates())),
			slog.String("flattened_at", util.Deref(flattenedAt)),
		)
	case errors.Is(err, taxonomy.ErrSourceUnreadable):
		log.Warn("taxonomy unavailable, serving without it", slog.String("path", cfg.TaxonomyPath), slog.Any("err", err))
	default:
		return err
	}

	srv := api.NewServer(log, cfg, pipeline.NewProcessingService(db, cfg, log), idx, searcher)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTPTimeout,
		WriteTimeout:      cfg.HTTPTimeout + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", slog.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
