package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/domain/repositories"
)

type sourceKey struct {
	docType entities.DocumentType
	code    string
}

// SourceDocumentRepository provides in-memory storage of open MRs, PRs and POs
type SourceDocumentRepository struct {
	mu      sync.RWMutex
	sources map[sourceKey]entities.SourceDocument
}

// NewSourceDocumentRepository creates a new in-memory source repository
func NewSourceDocumentRepository() *SourceDocumentRepository {
	return &SourceDocumentRepository{
		sources: make(map[sourceKey]entities.SourceDocument),
	}
}

// Verify interface compliance
var _ repositories.SourceDocumentRepository = (*SourceDocumentRepository)(nil)

// LoadSources loads source documents, replacing any with the same type and code
func (r *SourceDocumentRepository) LoadSources(docs []*entities.SourceDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		r.sources[sourceKey{docType: doc.Type, code: doc.Code}] = copySource(*doc)
	}
	return nil
}

// GetSource returns the open document of docType with the given code
func (r *SourceDocumentRepository) GetSource(docType entities.DocumentType, code string) (*entities.SourceDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.sources[sourceKey{docType: docType, code: code}]
	if !exists {
		return nil, fmt.Errorf("%s not found: %s", docType, code)
	}
	out := copySource(doc)
	return &out, nil
}

// ListSources returns all open documents of docType ordered by code
func (r *SourceDocumentRepository) ListSources(docType entities.DocumentType) ([]*entities.SourceDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var docs []*entities.SourceDocument
	for key, doc := range r.sources {
		if key.docType != docType {
			continue
		}
		out := copySource(doc)
		docs = append(docs, &out)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Code < docs[j].Code
	})
	return docs, nil
}

func copySource(doc entities.SourceDocument) entities.SourceDocument {
	lines := make([]entities.SourceLine, len(doc.Lines))
	copy(lines, doc.Lines)
	doc.Lines = lines
	return doc
}
