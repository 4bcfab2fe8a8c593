package server

import (
	"sync"

	"github.com/blackbridge/blackbridge/document"
)

// docStore tracks the text of documents the editor has opened. The editor
// syncs whole documents, so an update replaces the stored source.
type docStore struct {
	mu   sync.RWMutex
	docs map[string]document.Document
}

func newDocStore() *docStore {
	return &docStore{docs: make(map[string]document.Document)}
}

func (s *docStore) Open(d document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.URI] = d
}

func (s *docStore) Update(uri, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[uri]
	if !ok {
		d = document.FromItem(uri, text)
	}
	d.Source = text
	s.docs[uri] = d
}

func (s *docStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func (s *docStore) Get(uri string) (document.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[uri]
	return d, ok
}
