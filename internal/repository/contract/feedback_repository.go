package contract

import (
	"context"

	"corrective-rag-be/internal/entity"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
	FindBySessionId(ctx context.Context, sessionId string) ([]*entity.Feedback, error)
}
