package api

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cinsignal/internal"
	"cinsignal/internal/config"
	"cinsignal/internal/pipeline"
	"cinsignal/internal/signal"
	"cinsignal/internal/snapshot"
	"cinsignal/internal/taxonomy"
	"cinsignal/internal/util"
)

const (
	maxBodyBytes   = 32 << 20
	maxSearchSize  = 100
	defaultPageLen = 10
)

type Server struct {
	log       *slog.Logger
	cfg       config.Config
	processor *pipeline.ProcessingService
	taxonomy  *taxonomy.Index
	searcher  *taxonomy.Searcher
	maxBody   int64
}

// NewServer wires the HTTP handlers. idx and searcher may be nil, in which
// case taxonomy routes answer 503.
func NewServer(log *slog.Logger, cfg config.Config, processor *pipeline.ProcessingService, idx *taxonomy.Index, searcher *taxonomy.Searcher) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, cfg: cfg, processor: processor, taxonomy: idx, searcher: searcher, maxBody: maxBodyBytes}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.cfg.HTTPTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.HTTPTimeout))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/snapshot", s.handleSnapshot)
		r.Post("/snapshot/raw", s.handleRaw)
		r.Post("/signals", s.handleSignals)
		r.Post("/row", s.handleRow)
		r.Post("/documents", s.handleDocument)

		r.Get("/taxonomy/search", s.handleTaxonomySearch)
		r.Get("/taxonomy/{code}", s.handleTaxonomyEntry)
		r.Get("/taxonomy/{code}/levels", s.handleTaxonomyLevels)
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type rowResponse struct {
	Language string            `json:"language"`
	Header   []string          `json:"header"`
	Values   []string          `json:"values"`
	Row      map[string]string `json:"row"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok", "taxonomy": s.taxonomy != nil}
	if s.taxonomy != nil {
		status["taxonomy_entries"] = s.taxonomy.Len()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	art, ok := s.transform(w, r, "")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, art.Snapshot)
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	art, ok := s.transform(w, r, "")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, art.Raw)
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	art, ok := s.transform(w, r, "")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, art.Signals)
}

func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	lang := strings.TrimSpace(r.URL.Query().Get("lang"))
	if lang != "" {
		if err := config.ValidateLanguage(lang); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}
	art, ok := s.transform(w, r, lang)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		cw := csv.NewWriter(w)
		_ = cw.Write(art.Row.Header())
		_ = cw.Write(art.Row.Values())
		cw.Flush()
		return
	}
	writeJSON(w, http.StatusOK, rowResponse{
		Language: art.Row.Language,
		Header:   art.Row.Header(),
		Values:   art.Row.Values(),
		Row:      art.Row.Map(),
	})
}

type documentResponse struct {
	ID        int           `json:"id"`
	GTIN      *string       `json:"gtin"`
	Hash      string        `json:"hash"`
	TraceID   string        `json:"trace_id"`
	UpdatedAt string        `json:"updated_at"`
	Signals   signal.Record `json:"signals"`
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	res, err := s.processor.Process(internal.SourceHTTP, body)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, snapshot.ErrMalformedXML), errors.Is(err, snapshot.ErrEmptyDocument):
			status = http.StatusBadRequest
		case errors.Is(err, pipeline.ErrNoStore):
			status = http.StatusServiceUnavailable
		}
		s.log.Warn("document not stored", slog.String("request_id", middleware.GetReqID(r.Context())), slog.Any("err", err))
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, documentResponse{
		ID:        res.Document.ID,
		GTIN:      res.Document.GTIN,
		Hash:      res.Document.Hash,
		TraceID:   res.TraceID,
		UpdatedAt: res.Document.UpdatedAt,
		Signals:   res.Signals,
	})
}

func (s *Server) transform(w http.ResponseWriter, r *http.Request, lang string) (pipeline.Artifacts, bool) {
	body, ok := s.readBody(w, r)
	if !ok {
		return pipeline.Artifacts{}, false
	}

	art, err := s.processor.Transform(body, lang)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, snapshot.ErrMalformedXML) || errors.Is(err, snapshot.ErrEmptyDocument) {
			status = http.StatusBadRequest
		}
		s.log.Warn("transform failed", slog.String("request_id", middleware.GetReqID(r.Context())), slog.Any("err", err))
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return pipeline.Artifacts{}, false
	}
	return art, true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return nil, false
	}
	return body, true
}

func (s *Server) handleTaxonomyEntry(w http.ResponseWriter, r *http.Request) {
	code, ok := s.taxonomyCode(w, r)
	if !ok {
		return
	}
	entry, found := s.taxonomy.Get(code)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown code " + strconv.Itoa(code)})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleTaxonomyLevels(w http.ResponseWriter, r *http.Request) {
	code, ok := s.taxonomyCode(w, r)
	if !ok {
		return
	}
	levels, found := s.taxonomy.LevelNames(code)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown code " + strconv.Itoa(code)})
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

func (s *Server) handleTaxonomySearch(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "taxonomy not loaded"})
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	size := clampInt(r.URL.Query().Get("size"), defaultPageLen, maxSearchSize)

	hits, err := s.searcher.Search(query, size)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": query, "hits": hits})
}

func (s *Server) taxonomyCode(w http.ResponseWriter, r *http.Request) (int, bool) {
	if s.taxonomy == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "taxonomy not loaded"})
		return 0, false
	}
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "code must be an integer"})
		return 0, false
	}
	return code, true
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	blob, err := util.MarshalJSON(payload, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(blob)
}
