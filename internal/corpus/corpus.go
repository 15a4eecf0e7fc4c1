// Package corpus defines the document model and the immutable corpus snapshot
// shared by both retrieval engines. A snapshot is built once at startup and is
// read-only afterwards; document ids are dense 0-based offsets stable for the
// lifetime of one load/cache cycle.
package corpus

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Document is a single searchable record. Immutable once loaded.
type Document struct {
	ID          int
	Title       string
	Description string
	Date        time.Time // zero value means no date
	Source      string
}

// Snapshot is an ordered, immutable sequence of documents plus the derived
// searchable text per document. Both engines index the same texts.
type Snapshot struct {
	docs        []Document
	texts       []string
	fingerprint string
}

// NewSnapshot builds a snapshot from loaded documents. Searchable text is the
// normalized concatenation of title and description, computed once here so
// build and query paths can never diverge.
func NewSnapshot(docs []Document) *Snapshot {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = Normalize(d.Title + " " + d.Description)
	}
	return &Snapshot{
		docs:        docs,
		texts:       texts,
		fingerprint: computeFingerprint(texts),
	}
}

// Len returns the number of documents.
func (s *Snapshot) Len() int {
	return len(s.docs)
}

// Doc returns the document with the given id.
func (s *Snapshot) Doc(id int) (Document, bool) {
	if id < 0 || id >= len(s.docs) {
		return Document{}, false
	}
	return s.docs[id], true
}

// Texts returns the searchable text for every document, in id order.
// Callers must not mutate the returned slice.
func (s *Snapshot) Texts() []string {
	return s.texts
}

// Text returns the searchable text for one document.
func (s *Snapshot) Text(id int) string {
	if id < 0 || id >= len(s.texts) {
		return ""
	}
	return s.texts[id]
}

// Fingerprint identifies the corpus content. Cached index artifacts carry the
// fingerprint they were built from; any mismatch marks the artifact stale.
func (s *Snapshot) Fingerprint() string {
	return s.fingerprint
}

// computeFingerprint hashes the searchable texts with a record separator so
// that ["ab","c"] and ["a","bc"] cannot collide.
func computeFingerprint(texts []string) string {
	h := sha256.New()
	for _, t := range texts {
		h.Write([]byte(t))
		h.Write([]byte{0x1e})
	}
	return fmt.Sprintf("%d:%x", len(texts), h.Sum(nil))
}
