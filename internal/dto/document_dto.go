package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title   string `json:"title" validate:"required"`
	Source  string `json:"source" validate:"required"`
	Content string `json:"content" validate:"required"`
	Domain  string `json:"domain,omitempty"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetDocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	Domain     string    `json:"domain,omitempty"`
	ChunkCount int64     `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// PublishIndexDocumentMessage is the indexing event payload.
type PublishIndexDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
