package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cinsignal/internal"
	"cinsignal/internal/config"
	"cinsignal/internal/snapshot"
	"cinsignal/internal/storage"
)

const fixtureCIN = `<?xml version="1.0" encoding="UTF-8"?>
<cin:catalogueItemNotificationMessage xmlns:cin="urn:gs1:gdsn:catalogue_item_notification:xsd:3">
  <catalogueItem>
    <tradeItem>
      <gtin>07310865071811</gtin>
      <isTradeItemAConsumerUnit>true</isTradeItemAConsumerUnit>
      <tradeItemInformation>
        <brandName>Marabou</brandName>
        <descriptionShort languageCode="sv">Mjölkchoklad</descriptionShort>
        <descriptionShort languageCode="en">Milk chocolate</descriptionShort>
        <allergen>
          <allergenTypeCode>AM</allergenTypeCode>
          <levelOfContainmentCode>CONTAINS</levelOfContainmentCode>
        </allergen>
        <referencedFileHeader>
          <referencedFileTypeCode>PRODUCT_IMAGE</referencedFileTypeCode>
          <uniformResourceIdentifier>https://img.example/1.png</uniformResourceIdentifier>
          <isPrimaryFile>TRUE</isPrimaryFile>
        </referencedFileHeader>
      </tradeItemInformation>
    </tradeItem>
  </catalogueItem>
</cin:catalogueItemNotificationMessage>`

func newService(t *testing.T) (*ProcessingService, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "cin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewProcessingService(db, config.Config{ExportLanguage: "sv"}, nil), db
}

func TestTransformDerivesAllViews(t *testing.T) {
	svc := NewProcessingService(nil, config.Config{ExportLanguage: "sv"}, nil)

	art, err := svc.Transform([]byte(fixtureCIN), "")
	require.NoError(t, err)

	require.Equal(t, "catalogueItemNotificationMessage", art.Snapshot.Tag)
	_, ok := art.Raw.Get("catalogueItemNotificationMessage")
	require.True(t, ok)
	require.Equal(t, "Marabou", *art.Signals.Identity.Brand)
	require.Equal(t, "sv", art.Row.Language)
	require.Equal(t, "Mjölkchoklad", *art.Row.DescriptionShort)
	require.Equal(t, "https://img.example/1.png", *art.Row.PrimaryImage)
	require.Equal(t, "AM(CONTAINS)", art.Row.Allergens)
	require.Empty(t, art.Collisions)

	art, err = svc.Transform([]byte(fixtureCIN), "en")
	require.NoError(t, err)
	require.Equal(t, "Milk chocolate", *art.Row.DescriptionShort)
}

func TestTransformMalformed(t *testing.T) {
	svc := NewProcessingService(nil, config.Config{ExportLanguage: "sv"}, nil)

	_, err := svc.Transform([]byte("<a><b></a>"), "")
	require.ErrorIs(t, err, snapshot.ErrMalformedXML)
}

func TestProcessStoresDocumentAndRun(t *testing.T) {
	svc, db := newService(t)

	res, err := svc.Process(internal.SourceFile, []byte(fixtureCIN))
	require.NoError(t, err)
	require.NotEmpty(t, res.TraceID)
	require.Equal(t, "07310865071811", *res.Document.GTIN)

	again, err := svc.Process(internal.SourceFile, []byte(fixtureCIN))
	require.NoError(t, err)
	require.Equal(t, res.Document.ID, again.Document.ID)
	require.NotEqual(t, res.TraceID, again.TraceID)

	runs, err := db.CountRuns(res.Document.ID)
	require.NoError(t, err)
	require.Equal(t, 2, runs)

	stored, err := db.GetDocumentByGTIN("07310865071811")
	require.NoError(t, err)
	require.NotNil(t, stored)

	root, err := snapshot.Decode([]byte(stored.SnapshotJSON))
	require.NoError(t, err)
	require.Equal(t, res.Snapshot, root)
}

func TestReprojectFromStoredSnapshot(t *testing.T) {
	svc, db := newService(t)

	res, err := svc.Process(internal.SourceHTTP, []byte(fixtureCIN))
	require.NoError(t, err)
	require.NoError(t, db.UpdateSignals(res.Document.ID, "{}"))

	rec, err := svc.Reproject(res.Document.ID)
	require.NoError(t, err)
	require.Equal(t, res.Signals, rec)

	stored, err := db.GetDocumentByID(res.Document.ID)
	require.NoError(t, err)
	want, err := json.Marshal(res.Signals)
	require.NoError(t, err)
	require.JSONEq(t, string(want), stored.SignalsJSON)

	n, err := svc.ReprojectAll(10)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestReprojectUnknownDocument(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Reproject(42)
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestStorageOperationsNeedStore(t *testing.T) {
	svc := NewProcessingService(nil, config.Config{}, nil)

	_, err := svc.Process(internal.SourceHTTP, []byte(fixtureCIN))
	require.ErrorIs(t, err, ErrNoStore)
	_, err = svc.Reproject(1)
	require.ErrorIs(t, err, ErrNoStore)
	_, err = svc.ReprojectAll(10)
	require.ErrorIs(t, err, ErrNoStore)
}

func TestWriteArtifacts(t *testing.T) {
	svc := NewProcessingService(nil, config.Config{ExportLanguage: "sv"}, nil)
	art, err := svc.Transform([]byte(fixtureCIN), "")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, WriteArtifacts(art, dir))

	for _, name := range []string{"snapshot.json", "snapshot_raw.json", "signals.json", "row.csv", "row.xlsx"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	blob, err := os.ReadFile(filepath.Join(dir, "snapshot_raw.json"))
	require.NoError(t, err)
	require.Contains(t, string(blob), `"gtin": "07310865071811"`)
}
