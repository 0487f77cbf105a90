package internal

// LocalizedText is one language variant of a multilingual field. Entries
// keep source order and are never deduplicated.
type LocalizedText struct {
	LanguageCode *string `json:"lang"`
	Text         string  `json:"text"`
}

// DocumentSource tells where a CIN document came from.
type DocumentSource string

const (
	SourceFile      DocumentSource = "file"
	SourceTradeItem DocumentSource = "tradeitem"
	SourceHTTP      DocumentSource = "http"
)

// DocumentRow is a stored CIN document with its derived artifacts.
type DocumentRow struct {
	ID           int
	GTIN         *string
	Source       string
	Hash         string
	RawXML       string
	SnapshotJSON string
	SignalsJSON  string
	CreatedAt    string
	UpdatedAt    string
}

// RunCounts summarises one pipeline run for the runs table.
type RunCounts struct {
	Allergens    int `json:"allergens"`
	Media        int `json:"media"`
	Descriptions int `json:"descriptions"`
}
