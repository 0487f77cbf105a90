package taxonomy

import (
	"errors"
	"fmt"
)

// Store is a persisted copy of a flattened hierarchy.
type Store interface {
	ListTaxonomy() ([]FlatEntry, error)
}

// Index is a read-only code lookup built once from a flattened hierarchy.
// A code that appears more than once resolves to its last occurrence.
type Index struct {
	entries    []FlatEntry
	byCode     map[int]FlatEntry
	duplicates []int
}

func BuildIndex(entries []FlatEntry) *Index {
	idx := &Index{
		entries: entries,
		byCode:  make(map[int]FlatEntry, len(entries)),
	}
	for _, e := range entries {
		if _, ok := idx.byCode[e.Code]; ok {
			idx.duplicates = append(idx.duplicates, e.Code)
		}
		idx.byCode[e.Code] = e
	}
	return idx
}

// Load reads, flattens and indexes a source file in one step.
func Load(path string) (*Index, error) {
	roots, err := LoadSource(path)
	if err != nil {
		return nil, err
	}
	return BuildIndex(Flatten(roots)), nil
}

// LoadOrStored reads path and, when the file cannot be read, rebuilds the
// index from store instead. An empty store keeps the read error.
func LoadOrStored(path string, store Store) (*Index, error) {
	idx, err := Load(path)
	if err == nil || store == nil || !errors.Is(err, ErrSourceUnreadable) {
		return idx, err
	}
	entries, listErr := store.ListTaxonomy()
	if listErr != nil {
		return nil, fmt.Errorf("%w: stored copy: %v", err, listErr)
	}
	if len(entries) == 0 {
		return nil, err
	}
	return BuildIndex(entries), nil
}

func (i *Index) Get(code int) (FlatEntry, bool) {
	e, ok := i.byCode[code]
	return e, ok
}

// LevelNames maps "level_1".."level_n" to the titles on the path to code.
func (i *Index) LevelNames(code int) (map[string]string, bool) {
	e, ok := i.byCode[code]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(e.Path))
	for n, title := range e.Path {
		out[fmt.Sprintf("level_%d", n+1)] = title
	}
	return out, true
}

// Entries returns the flattened list the index was built from.
func (i *Index) Entries() []FlatEntry {
	return i.entries
}

// Duplicates lists codes seen more than once, in order of the repeat.
func (i *Index) Duplicates() []int {
	return i.duplicates
}

func (i *Index) Len() int {
	return len(i.byCode)
}
