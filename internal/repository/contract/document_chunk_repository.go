package contract

import (
	"context"

	"corrective-rag-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredChunk wraps a DocumentChunk with its cosine similarity.
type ScoredChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	CountByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error)
	// SearchSimilarWithScore returns chunks with their similarity scores,
	// filtered by threshold and ordered best-first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredChunk, error)
}
