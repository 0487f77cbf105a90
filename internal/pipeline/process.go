package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"cinsignal/internal"
	"cinsignal/internal/config"
	"cinsignal/internal/signal"
	"cinsignal/internal/snapshot"
	"cinsignal/internal/storage"
	"cinsignal/internal/util"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNoStore          = errors.New("processing service has no document store")
)

// Artifacts are the four views derived from one CIN document.
type Artifacts struct {
	Snapshot   *snapshot.Node
	Raw        *snapshot.RawObject
	Signals    signal.Record
	Row        FlatRow
	Collisions []signal.Collision
}

type ProcessingService struct {
	db        *storage.DB
	cfg       config.Config
	log       *slog.Logger
	projector *signal.Projector
}

func NewProcessingService(db *storage.DB, cfg config.Config, log *slog.Logger) *ProcessingService {
	if log == nil {
		log = slog.Default()
	}
	return &ProcessingService{db: db, cfg: cfg, log: log, projector: signal.NewProjector(log)}
}

type ProcessResult struct {
	Document internal.DocumentRow
	TraceID  string
	Artifacts
}

// Transform parses xmlBytes and derives every view without touching storage.
// An empty language falls back to the configured export language.
func (s *ProcessingService) Transform(xmlBytes []byte, language string) (Artifacts, error) {
	art, _, err := s.transform(xmlBytes, language)
	return art, err
}

func (s *ProcessingService) transform(xmlBytes []byte, language string) (Artifacts, map[string]float64, error) {
	if language == "" {
		language = s.cfg.ExportLanguage
	}
	timings := map[string]float64{}
	start := time.Now()

	root, err := snapshot.ParseBytes(xmlBytes)
	if err != nil {
		return Artifacts{}, nil, err
	}
	timings["parseMs"] = msSince(start)

	step := time.Now()
	art := Artifacts{Snapshot: snapshot.Build(root), Raw: snapshot.BuildRaw(root)}
	timings["buildMs"] = msSince(step)

	step = time.Now()
	art.Signals = s.projector.Project(art.Snapshot)
	art.Collisions = signal.Collisions(art.Snapshot)
	timings["projectMs"] = msSince(step)

	art.Row = FlattenRow(art.Signals, language)
	timings["totalMs"] = msSince(start)

	for _, c := range art.Collisions {
		s.log.Warn("suffix matches several tags", "suffix", c.Suffix, "tags", c.Tags)
	}
	return art, timings, nil
}

// Process transforms xmlBytes and stores the document with its snapshot and
// signals. Identical bytes map to the same stored document.
func (s *ProcessingService) Process(source internal.DocumentSource, xmlBytes []byte) (ProcessResult, error) {
	if s.db == nil {
		return ProcessResult{}, ErrNoStore
	}
	traceID := uuid.NewString()
	log := s.log.With("trace_id", traceID, "source", string(source))

	art, timings, err := s.transform(xmlBytes, "")
	if err != nil {
		log.Error("transform failed", "err", err)
		return ProcessResult{}, err
	}

	snapshotJSON, err := json.Marshal(art.Snapshot)
	if err != nil {
		return ProcessResult{}, err
	}
	signalsJSON, err := json.Marshal(art.Signals)
	if err != nil {
		return ProcessResult{}, err
	}

	doc, err := s.db.UpsertDocument(internal.DocumentRow{
		GTIN:         art.Signals.Identity.GTIN,
		Source:       string(source),
		Hash:         contentHash(xmlBytes),
		RawXML:       string(xmlBytes),
		SnapshotJSON: string(snapshotJSON),
		SignalsJSON:  string(signalsJSON),
	})
	if err != nil {
		return ProcessResult{}, err
	}

	counts := internal.RunCounts{
		Allergens:    len(art.Signals.Allergens.Items),
		Media:        len(art.Signals.Media),
		Descriptions: len(art.Signals.Naming.DescriptionShort),
	}
	if err := s.db.InsertRun(traceID, doc.ID, timings, counts); err != nil {
		log.Warn("run not recorded", "err", err)
	}

	log.Info("document processed", "document_id", doc.ID, "gtin", util.Deref(art.Row.GTIN), "total_ms", timings["totalMs"])
	return ProcessResult{Document: doc, TraceID: traceID, Artifacts: art}, nil
}

// Reproject rebuilds the signal record of a stored document from its
// persisted snapshot, without reparsing the XML.
func (s *ProcessingService) Reproject(documentID int) (signal.Record, error) {
	if s.db == nil {
		return signal.Record{}, ErrNoStore
	}
	doc, err := s.db.GetDocumentByID(documentID)
	if err != nil {
		return signal.Record{}, err
	}
	if doc == nil {
		return signal.Record{}, fmt.Errorf("%w: id %d", ErrDocumentNotFound, documentID)
	}
	return s.reproject(*doc)
}

// ReprojectAll reprojects up to limit stored documents and returns how many
// were updated.
func (s *ProcessingService) ReprojectAll(limit int) (int, error) {
	if s.db == nil {
		return 0, ErrNoStore
	}
	docs, err := s.db.ListDocuments(limit)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, doc := range docs {
		if _, err := s.Reproject(doc.ID); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *ProcessingService) reproject(doc internal.DocumentRow) (signal.Record, error) {
	root, err := snapshot.Decode([]byte(doc.SnapshotJSON))
	if err != nil {
		return signal.Record{}, fmt.Errorf("document %d: %w", doc.ID, err)
	}
	rec := s.projector.Project(root)
	blob, err := json.Marshal(rec)
	if err != nil {
		return signal.Record{}, err
	}
	if err := s.db.UpdateSignals(doc.ID, string(blob)); err != nil {
		return signal.Record{}, err
	}
	s.log.Info("document reprojected", "document_id", doc.ID)
	return rec, nil
}

// WriteArtifacts writes every view of art into dir.
func WriteArtifacts(art Artifacts, dir string) error {
	if err := WriteJSON(art.Snapshot, filepath.Join(dir, "snapshot.json")); err != nil {
		return err
	}
	if err := WriteJSON(art.Raw, filepath.Join(dir, "snapshot_raw.json")); err != nil {
		return err
	}
	if err := WriteJSON(art.Signals, filepath.Join(dir, "signals.json")); err != nil {
		return err
	}
	if err := ExportRowToCSV(art.Row, filepath.Join(dir, "row.csv")); err != nil {
		return err
	}
	return ExportRowToXLSX(art.Row, filepath.Join(dir, "row.xlsx"))
}

func contentHash(blob []byte) string {
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
