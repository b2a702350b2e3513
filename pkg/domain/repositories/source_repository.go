package repositories

import "github.com/embunadw/wms/pkg/domain/entities"

// SourceDocumentRepository provides access to open MRs, PRs and POs
type SourceDocumentRepository interface {
	GetSource(docType entities.DocumentType, code string) (*entities.SourceDocument, error)
	ListSources(docType entities.DocumentType) ([]*entities.SourceDocument, error)
	LoadSources(docs []*entities.SourceDocument) error
}
