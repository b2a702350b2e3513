package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/embunadw/wms/pkg/domain/entities"
)

// DraftView is the JSON form of a draft returned by the HTTP service
type DraftView struct {
	ID           string     `json:"id"`
	DocumentType string     `json:"document_type"`
	SourceCode   string     `json:"source_code,omitempty"`
	Location     string     `json:"location,omitempty"`
	Lines        []LineView `json:"lines"`
	CreatedAt    time.Time  `json:"created_at"`
}

type LineView struct {
	Index        int              `json:"index"`
	PartID       string           `json:"part_id"`
	PartNumber   string           `json:"part_number"`
	PartName     string           `json:"part_name,omitempty"`
	Unit         string           `json:"unit,omitempty"`
	Quantity     int64            `json:"quantity"`
	Priority     string           `json:"priority,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	SourceLineID string           `json:"source_line_id,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

// NewDraftView builds the view of a draft state
func NewDraftView(id string, createdAt time.Time, draft entities.Draft) DraftView {
	view := DraftView{
		ID:           id,
		DocumentType: draft.Type.String(),
		SourceCode:   draft.SourceCode,
		Location:     draft.Location,
		Lines:        make([]LineView, 0, len(draft.Lines)),
		CreatedAt:    createdAt,
	}
	for i, l := range draft.Lines {
		view.Lines = append(view.Lines, NewLineView(i, l))
	}
	return view
}

func NewLineView(index int, l entities.DocumentLine) LineView {
	return LineView{
		Index:        index,
		PartID:       string(l.PartID),
		PartNumber:   string(l.PartNumber),
		PartName:     l.PartName,
		Unit:         l.Unit,
		Quantity:     int64(l.Quantity),
		Priority:     string(l.Priority),
		UnitPrice:    l.UnitPrice,
		SourceLineID: l.SourceLineID,
		Notes:        l.Notes,
	}
}
