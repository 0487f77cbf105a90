package taxonomy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
)

const defaultSearchSize = 10

type searchDoc struct {
	Title  string `json:"title"`
	Path   string `json:"path"`
	Level  int    `json:"level"`
	Active bool   `json:"active"`
}

// Searcher answers free-text category lookups over an Index. The bleve
// index lives in memory and is rebuilt from the entries on construction.
type Searcher struct {
	idx   *Index
	bleve bleve.Index
}

func NewSearcher(idx *Index) (*Searcher, error) {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("create taxonomy search index: %w", err)
	}

	batch := index.NewBatch()
	for _, e := range idx.byCode {
		doc := searchDoc{
			Title:  e.Title,
			Path:   strings.Join(e.Path, " > "),
			Level:  e.Level,
			Active: e.Active,
		}
		if err := batch.Index(strconv.Itoa(e.Code), doc); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("index taxonomy code %d: %w", e.Code, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("index taxonomy: %w", err)
	}

	return &Searcher{idx: idx, bleve: index}, nil
}

// Search returns up to size entries ranked by title/path relevance.
func (s *Searcher) Search(query string, size int) ([]FlatEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []FlatEntry{}, nil
	}
	if size <= 0 {
		size = defaultSearchSize
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = size
	res, err := s.bleve.Search(req)
	if err != nil {
		return nil, fmt.Errorf("taxonomy search failed: %w", err)
	}

	out := make([]FlatEntry, 0, len(res.Hits))
	for _, hit := range res.Hits {
		code, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		if e, ok := s.idx.Get(code); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Searcher) Close() error {
	return s.bleve.Close()
}
