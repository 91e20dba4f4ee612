package service

import (
	"context"
	"encoding/json"

	"corrective-rag-be/internal/dto"
	"corrective-rag-be/internal/repository/contract"
	"corrective-rag-be/pkg/rag/orchestrator"
	"corrective-rag-be/pkg/rag/ragerror"
	"corrective-rag-be/pkg/rag/retrieve"
)

type IRagService interface {
	Chat(ctx context.Context, request *dto.ChatRequest) (*orchestrator.Result, error)
	GetPendingSession(sessionId string) *dto.PendingSessionResponse
}

type ragService struct {
	orchestrator *orchestrator.Orchestrator
}

func NewRagService(orch *orchestrator.Orchestrator) IRagService {
	return &ragService{orchestrator: orch}
}

func (rs *ragService) Chat(ctx context.Context, request *dto.ChatRequest) (*orchestrator.Result, error) {
	if request.Query == "" && request.UserResponse == "" {
		return nil, ragerror.ErrEmptyQuery
	}
	return rs.orchestrator.Process(ctx, request.Query, request.SessionId, request.UserResponse)
}

func (rs *ragService) GetPendingSession(sessionId string) *dto.PendingSessionResponse {
	clarification, found := rs.orchestrator.GetPendingClarification(sessionId)
	if !found {
		return &dto.PendingSessionResponse{SessionId: sessionId, Pending: false}
	}
	return &dto.PendingSessionResponse{
		SessionId:             sessionId,
		Pending:               true,
		ClarificationQuestion: clarification.Question,
		Options:               clarification.Options,
	}
}

// VectorSearcher adapts the chunk repository to the retriever's search
// dependency, translating entities into plain scored chunks.
type VectorSearcher struct {
	chunkRepo contract.DocumentChunkRepository
	threshold float64
}

func NewVectorSearcher(chunkRepo contract.DocumentChunkRepository, threshold float64) *VectorSearcher {
	return &VectorSearcher{
		chunkRepo: chunkRepo,
		threshold: threshold,
	}
}

func (vs *VectorSearcher) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]retrieve.ScoredChunk, error) {
	scored, err := vs.chunkRepo.SearchSimilarWithScore(ctx, embedding, limit, vs.threshold)
	if err != nil {
		return nil, err
	}

	chunks := make([]retrieve.ScoredChunk, 0, len(scored))
	for _, sc := range scored {
		var meta struct {
			Source  string `json:"source"`
			Title   string `json:"title"`
			Section string `json:"section"`
		}
		if len(sc.Chunk.Metadata) > 0 {
			// Metadata stays best-effort; a chunk without it is still usable.
			_ = json.Unmarshal(sc.Chunk.Metadata, &meta)
		}
		chunks = append(chunks, retrieve.ScoredChunk{
			Content:    sc.Chunk.Content,
			Source:     meta.Source,
			Title:      meta.Title,
			Section:    meta.Section,
			ChunkIndex: sc.Chunk.ChunkIndex,
			Similarity: sc.Similarity,
		})
	}
	return chunks, nil
}
