package implementation

import (
	"context"

	"corrective-rag-be/internal/entity"
	"corrective-rag-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentChunkRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{db: db}
}

func (r *DocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&chunks).Error
}

func (r *DocumentChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("document_id = ?", documentId).
		Delete(&entity.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) CountByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.DocumentChunk{}).
		Where("document_id = ?", documentId).
		Count(&count).Error
	return count, err
}

// SearchSimilarWithScore runs a cosine similarity search. pgvector's <=>
// operator is cosine distance, so similarity = 1 - distance.
func (r *DocumentChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		entity.DocumentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("document_chunks.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunk, len(results))
	for i, res := range results {
		chunk := res.DocumentChunk
		scored[i] = &contract.ScoredChunk{
			Chunk:      &chunk,
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
