package implementation

import (
	"context"
	"errors"

	"corrective-rag-be/internal/entity"
	"corrective-rag-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, document *entity.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *DocumentRepositoryImpl) Update(ctx context.Context, document *entity.Document) error {
	return r.db.WithContext(ctx).Save(document).Error
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Document{}, id).Error
}

func (r *DocumentRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var document entity.Document
	err := r.db.WithContext(ctx).First(&document, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &document, nil
}

func (r *DocumentRepositoryImpl) FindAll(ctx context.Context, limit, offset int) ([]*entity.Document, error) {
	var documents []*entity.Document
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Document{}).Count(&count).Error
	return count, err
}
