package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document categories.
const (
	CategoryDrawing  = "drawing"
	CategoryContract = "contract"
	CategoryReport   = "report"
	CategoryInvoice  = "invoice"
	CategoryOther    = "other"
)

// Document is file metadata; the payload lives in object storage under ObjectKey.
type Document struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"projectId"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	ObjectKey    string    `json:"objectKey"`
	ContentType  string    `json:"contentType,omitempty"`
	SizeBytes    int64     `json:"sizeBytes"`
	UploadedByID uuid.UUID `json:"uploadedById"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UpdateDocumentInput applies partial metadata updates; nil fields are left
// untouched. The stored object itself never changes here.
type UpdateDocumentInput struct {
	Name     *string
	Category *string
}

// ListDocumentsRequest filters document listings.
type ListDocumentsRequest struct {
	ProjectID *uuid.UUID
	Category  string
}
