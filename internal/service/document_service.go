package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"corrective-rag-be/internal/dto"
	"corrective-rag-be/internal/entity"
	"corrective-rag-be/internal/repository/contract"
	pktNats "corrective-rag-be/pkg/nats"

	"github.com/google/uuid"
)

type IDocumentService interface {
	CreateDocument(ctx context.Context, request *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	GetDocuments(ctx context.Context, limit, offset int) ([]*dto.GetDocumentResponse, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
	ReindexDocument(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	documentRepo     contract.DocumentRepository
	chunkRepo        contract.DocumentChunkRepository
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewDocumentService(
	documentRepo contract.DocumentRepository,
	chunkRepo contract.DocumentChunkRepository,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) IDocumentService {
	return &documentService{
		documentRepo:     documentRepo,
		chunkRepo:        chunkRepo,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

func (ds *documentService) CreateDocument(ctx context.Context, request *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	document := &entity.Document{
		Id:        uuid.New(),
		Title:     request.Title,
		Source:    request.Source,
		Content:   request.Content,
		Domain:    request.Domain,
		CreatedAt: time.Now(),
	}

	if err := ds.documentRepo.Create(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	if err := ds.publishIndexMessage(ctx, document.Id); err != nil {
		// The document row exists; indexing can be retried via ReindexDocument.
		log.Printf("[ERROR] Failed to publish index message for document %s: %v", document.Id, err)
	}

	return &dto.CreateDocumentResponse{Id: document.Id}, nil
}

func (ds *documentService) GetDocuments(ctx context.Context, limit, offset int) ([]*dto.GetDocumentResponse, error) {
	documents, err := ds.documentRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	responses := make([]*dto.GetDocumentResponse, 0, len(documents))
	for _, document := range documents {
		chunkCount, err := ds.chunkRepo.CountByDocumentId(ctx, document.Id)
		if err != nil {
			log.Printf("[WARN] Failed to count chunks for document %s: %v", document.Id, err)
		}
		responses = append(responses, &dto.GetDocumentResponse{
			Id:         document.Id,
			Title:      document.Title,
			Source:     document.Source,
			Domain:     document.Domain,
			ChunkCount: chunkCount,
			CreatedAt:  document.CreatedAt,
		})
	}
	return responses, nil
}

func (ds *documentService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	document, err := ds.documentRepo.FindById(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	if document == nil {
		return fmt.Errorf("document not found: %s", id)
	}

	if err := ds.chunkRepo.DeleteByDocumentId(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	if err := ds.documentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (ds *documentService) ReindexDocument(ctx context.Context, id uuid.UUID) error {
	document, err := ds.documentRepo.FindById(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	if document == nil {
		return fmt.Errorf("document not found: %s", id)
	}
	return ds.publishIndexMessage(ctx, id)
}

func (ds *documentService) publishIndexMessage(ctx context.Context, documentId uuid.UUID) error {
	payload := dto.PublishIndexDocumentMessage{DocumentId: documentId}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal index message: %w", err)
	}
	return ds.publisherService.Publish(ctx, payloadJson)
}
