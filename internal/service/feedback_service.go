package service

import (
	"context"
	"fmt"
	"time"

	"corrective-rag-be/internal/dto"
	"corrective-rag-be/internal/entity"
	"corrective-rag-be/internal/repository/contract"

	"github.com/google/uuid"
)

type IFeedbackService interface {
	CreateFeedback(ctx context.Context, request *dto.CreateFeedbackRequest) (*dto.CreateFeedbackResponse, error)
	GetFeedbackBySession(ctx context.Context, sessionId string) ([]*entity.Feedback, error)
}

type feedbackService struct {
	feedbackRepo contract.FeedbackRepository
}

func NewFeedbackService(feedbackRepo contract.FeedbackRepository) IFeedbackService {
	return &feedbackService{feedbackRepo: feedbackRepo}
}

func (fs *feedbackService) CreateFeedback(ctx context.Context, request *dto.CreateFeedbackRequest) (*dto.CreateFeedbackResponse, error) {
	feedback := &entity.Feedback{
		Id:        uuid.New(),
		SessionId: request.SessionId,
		Rating:    request.Rating,
		Comment:   request.Comment,
		Helpful:   request.Helpful,
		CreatedAt: time.Now(),
	}

	if err := fs.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return &dto.CreateFeedbackResponse{Id: feedback.Id}, nil
}

func (fs *feedbackService) GetFeedbackBySession(ctx context.Context, sessionId string) ([]*entity.Feedback, error) {
	return fs.feedbackRepo.FindBySessionId(ctx, sessionId)
}
