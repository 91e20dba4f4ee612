package implementation

import (
	"context"

	"corrective-rag-be/internal/entity"
	"corrective-rag-be/internal/repository/contract"

	"gorm.io/gorm"
)

type FeedbackRepositoryImpl struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) contract.FeedbackRepository {
	return &FeedbackRepositoryImpl{db: db}
}

func (r *FeedbackRepositoryImpl) Create(ctx context.Context, feedback *entity.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *FeedbackRepositoryImpl) FindBySessionId(ctx context.Context, sessionId string) ([]*entity.Feedback, error) {
	var feedbacks []*entity.Feedback
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at DESC").
		Find(&feedbacks).Error
	if err != nil {
		return nil, err
	}
	return feedbacks, nil
}
