package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cinsignal/internal"
	"cinsignal/internal/taxonomy"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strp(v string) *string { return &v }

func TestUpsertDocumentByHash(t *testing.T) {
	db := openTemp(t)

	first, err := db.UpsertDocument(internal.DocumentRow{
		GTIN: strp("07311041013663"), Source: "file", Hash: "h1",
		RawXML: "<m/>", SnapshotJSON: `{"tag":"m"}`, SignalsJSON: `{}`,
	})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := db.UpsertDocument(internal.DocumentRow{
		GTIN: strp("07311041013663"), Source: "tradeitem", Hash: "h1",
		RawXML: "<m/>", SnapshotJSON: `{"tag":"m"}`, SignalsJSON: `{"v":2}`,
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "tradeitem", second.Source)
	require.Equal(t, `{"v":2}`, second.SignalsJSON)

	got, err := db.GetDocumentByGTIN("07311041013663")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, first.ID, got.ID)

	missing, err := db.GetDocumentByGTIN("0000")
	require.NoError(t, err)
	require.Nil(t, missing)

	require.NoError(t, db.UpdateSignals(first.ID, `{"v":3}`))
	byID, err := db.GetDocumentByID(first.ID)
	require.NoError(t, err)
	require.Equal(t, `{"v":3}`, byID.SignalsJSON)

	list, err := db.ListDocuments(10)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestReplaceTaxonomyKeepsOrder(t *testing.T) {
	db := openTemp(t)
	parent := 1
	entries := []taxonomy.FlatEntry{
		{Level: 1, Code: 1, Title: "A", Path: []string{"A"}, Active: true},
		{Level: 2, Code: 2, Title: "B", ParentCode: &parent, Path: []string{"A", "B"}, Active: false},
	}
	require.NoError(t, db.ReplaceTaxonomy(entries))
	require.NoError(t, db.ReplaceTaxonomy(entries))

	got, err := db.ListTaxonomy()
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestRunsAndMetadata(t *testing.T) {
	db := openTemp(t)
	doc, err := db.UpsertDocument(internal.DocumentRow{Source: "file", Hash: "h", RawXML: "<m/>", SnapshotJSON: "{}", SignalsJSON: "{}"})
	require.NoError(t, err)

	require.NoError(t, db.InsertRun("trace", doc.ID, map[string]float64{"totalMs": 1}, internal.RunCounts{Media: 2}))
	n, err := db.CountRuns(doc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	v, err := db.GetMetadata("taxonomy.last_load")
	require.NoError(t, err)
	require.Nil(t, v)
	require.NoError(t, db.SetMetadata("taxonomy.last_load", "now"))
	v, err = db.GetMetadata("taxonomy.last_load")
	require.NoError(t, err)
	require.Equal(t, "now", *v)
}
