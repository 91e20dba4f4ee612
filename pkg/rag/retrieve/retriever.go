// Package retrieve turns a query into scored documents from the vector store.
package retrieve

import (
	"context"
	"fmt"
	"log"

	"corrective-rag-be/pkg/embedding"
	"corrective-rag-be/pkg/rag/state"
)

// ScoredChunk is one vector-store hit with its cosine similarity.
type ScoredChunk struct {
	Content    string
	Source     string
	Title      string
	Section    string
	ChunkIndex int
	Similarity float64
}

// Searcher is the vector-store dependency. The gorm/pgvector repository
// satisfies it.
type Searcher interface {
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]ScoredChunk, error)
}

// Retriever embeds queries and searches the vector store.
type Retriever struct {
	searcher   Searcher
	embedder   embedding.EmbeddingProvider
	maxResults int
	logger     *log.Logger
}

func NewRetriever(searcher Searcher, embedder embedding.EmbeddingProvider, maxResults int, logger *log.Logger) *Retriever {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Retriever{
		searcher:   searcher,
		embedder:   embedder,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Retrieve returns documents ordered by similarity. An empty result is a
// valid outcome here; callers decide whether that means correction or web
// search.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]state.Document, error) {
	embResp, err := r.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	chunks, err := r.searcher.SearchSimilarWithScore(ctx, embResp.Embedding.Values, r.maxResults)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	r.logger.Printf("[DEBUG] retrieved %d chunks for query", len(chunks))

	docs := make([]state.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, state.Document{
			Content: chunk.Content,
			Metadata: state.DocumentMetadata{
				Source:     chunk.Source,
				Title:      chunk.Title,
				Section:    chunk.Section,
				ChunkIndex: chunk.ChunkIndex,
			},
			EmbeddingScore: state.FloatPtr(chunk.Similarity),
		})
	}
	return docs, nil
}
