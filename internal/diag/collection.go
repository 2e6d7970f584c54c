package diag

import "sync"

// Collection maps document identity to its current diagnostic set.
//
// At most one set exists per document, always the result of the most
// recently completed lint cycle. Sets are replaced wholesale, never
// merged; sequencing of competing cycles is the caller's concern.
type Collection struct {
	mu   sync.Mutex
	docs map[string][]Diagnostic
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{docs: make(map[string][]Diagnostic)}
}

// Set replaces the document's entire diagnostic set.
func (c *Collection) Set(docID string, list []Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cloned := make([]Diagnostic, len(list))
	copy(cloned, list)
	c.docs[docID] = cloned
}

// Clear empties the document's set while keeping the document known.
// Used after a failed lint cycle: stale diagnostics must not survive.
func (c *Collection) Clear(docID string) {
	c.Set(docID, nil)
}

// Delete removes the document entirely, e.g. when it closes.
func (c *Collection) Delete(docID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, docID)
}

// Get returns a copy of the document's current set.
func (c *Collection) Get(docID string) []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.docs[docID]
	out := make([]Diagnostic, len(list))
	copy(out, list)
	return out
}

// Docs returns the identities currently tracked.
func (c *Collection) Docs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.docs))
	for id := range c.docs {
		out = append(out, id)
	}
	return out
}
