package contract

import (
	"context"

	"corrective-rag-be/internal/entity"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Document, error)
	Count(ctx context.Context) (int64, error)
}
