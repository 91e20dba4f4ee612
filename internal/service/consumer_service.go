package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"corrective-rag-be/internal/dto"
	"corrective-rag-be/internal/entity"
	"corrective-rag-be/internal/repository/contract"
	"corrective-rag-be/pkg/embedding"
	pktEvents "corrective-rag-be/pkg/events"
	pktNats "corrective-rag-be/pkg/nats"
	"corrective-rag-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	documentRepo      contract.DocumentRepository
	chunkRepo         contract.DocumentChunkRepository
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	documentRepo contract.DocumentRepository,
	chunkRepo contract.DocumentChunkRepository,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		documentRepo:      documentRepo,
		chunkRepo:         chunkRepo,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Indexing document %s", payload.DocumentId)

	document, err := cs.documentRepo.FindById(ctx, payload.DocumentId)
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if document == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	// ChunkSize: 1500 chars (approx 375 tokens) - safe for context limits
	// Overlap: 200 chars
	chunks := utils.SplitText(document.Content, 1500, 200)
	log.Printf("[INFO] Document %s split into %d chunks", payload.DocumentId, len(chunks))

	var newChunks []*entity.DocumentChunk
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Failed to generate embedding for chunk %d of document %s: %v", i, payload.DocumentId, err)
			msg.Nack()
			return
		}

		metadata, err := json.Marshal(map[string]interface{}{
			"source": document.Source,
			"title":  document.Title,
			"domain": document.Domain,
		})
		if err != nil {
			log.Printf("[ERROR] Failed to marshal chunk metadata: %v", err)
			msg.Ack()
			return
		}

		newChunks = append(newChunks, &entity.DocumentChunk{
			Id:             uuid.New(),
			DocumentId:     document.Id,
			Content:        chunk,
			EmbeddingValue: pgvector.NewVector(res.Embedding.Values),
			ChunkIndex:     i,
			Metadata:       datatypes.JSON(metadata),
			CreatedAt:      time.Now(),
		})
	}

	// Re-indexing replaces the previous chunk set.
	log.Printf("[INFO] Deleting old chunks for document %s", payload.DocumentId)
	if err := cs.chunkRepo.DeleteByDocumentId(ctx, document.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Creating %d new chunks for document %s", len(newChunks), payload.DocumentId)
	if len(newChunks) > 0 {
		if err := cs.chunkRepo.CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[ERROR] Failed to create bulk chunks: %v", err)
			msg.Nack()
			return
		}
	}

	if cs.eventPublisher != nil {
		evt := pktEvents.NewDocumentIndexed(document.Id.String(), len(newChunks))
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish DOCUMENT_INDEXED event: %v", err)
		}
	}

	log.Printf("[SUCCESS] Document indexed: %d chunks for %s", len(newChunks), payload.DocumentId)
	msg.Ack()
}
