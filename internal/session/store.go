// Package session holds uploaded documents in memory between upload and
// translation. Process-lifetime only, by design: it only bridges "just
// uploaded" to "about to translate", so losing it on restart is fine.
package session

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"vantage/internal/types"
)

// Store maps opaque document ids to uploaded documents. Backed by a bounded
// LRU so a burst of abandoned uploads cannot grow memory without limit.
// Inject it; never reach for a package-level singleton.
type Store struct {
	docs *lru.Cache[string, types.Document]
}

// NewStore creates a store holding up to maxEntries documents.
func NewStore(maxEntries int) (*Store, error) {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	docs, err := lru.New[string, types.Document](maxEntries)
	if err != nil {
		return nil, err
	}
	return &Store{docs: docs}, nil
}

// Put stores a document under the given id. Documents are never mutated
// after creation.
func (s *Store) Put(id string, doc types.Document) {
	s.docs.Add(id, doc)
}

// Get returns the document for id, if present.
func (s *Store) Get(id string) (types.Document, bool) {
	return s.docs.Get(id)
}

// Delete removes a document once the pipeline has consumed it.
func (s *Store) Delete(id string) {
	s.docs.Remove(id)
}

// Len reports how many documents are currently held.
func (s *Store) Len() int { return s.docs.Len() }
