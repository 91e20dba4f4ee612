package websearch

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"corrective-rag-be/internal/constant"
	"corrective-rag-be/pkg/llm"
	"corrective-rag-be/pkg/rag/state"
)

const (
	minInclusionScore = 0.3
	maxEvalContent    = 2000
	maxExcerptLength  = 500
)

// resultEvaluation is the LLM's judgment of one web hit.
type resultEvaluation struct {
	ContentRelevance        float64 `json:"content_relevance"`
	SourceReliability       float64 `json:"source_reliability"`
	InformationCompleteness float64 `json:"information_completeness"`
	OverallScore            float64 `json:"overall_score"`
	UsefulExcerpt           string  `json:"useful_excerpt"`
	ShouldInclude           bool    `json:"should_include"`
}

// Agent optimizes the query for the public web, searches, and scores the
// results into workflow documents.
type Agent struct {
	client      *TavilyClient
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewAgent(client *TavilyClient, llmProvider llm.LLMProvider, logger *log.Logger) *Agent {
	return &Agent{
		client:      client,
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Search runs the full web fallback: optimize, search, evaluate, convert.
// Results come back sorted by combined score.
func (a *Agent) Search(ctx context.Context, query string, detectedDomains []string) ([]state.Document, error) {
	searchQuery := a.optimizeQuery(ctx, query, detectedDomains)

	results, err := a.client.Search(ctx, searchQuery)
	if err != nil {
		return nil, fmt.Errorf("web search failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	evaluations := make([]resultEvaluation, len(results))
	var wg sync.WaitGroup
	for i, res := range results {
		wg.Add(1)
		go func(i int, res TavilyResult) {
			defer wg.Done()
			evaluations[i] = a.evaluateResult(ctx, query, res)
		}(i, res)
	}
	wg.Wait()

	var docs []state.Document
	for i, res := range results {
		eval := evaluations[i]
		if !eval.ShouldInclude || eval.OverallScore < minInclusionScore {
			continue
		}

		content := eval.UsefulExcerpt
		if content == "" {
			content = res.Content
		}
		docs = append(docs, state.Document{
			Content: content,
			Metadata: state.DocumentMetadata{
				Source:  res.URL,
				Title:   res.Title,
				Section: "web_search",
			},
			EmbeddingScore:    state.FloatPtr(res.Score),
			LLMRelevanceScore: state.FloatPtr(eval.OverallScore),
			CombinedScore:     state.FloatPtr(eval.OverallScore),
		})
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return *docs[i].CombinedScore > *docs[j].CombinedScore
	})
	return docs, nil
}

// optimizeQuery strips internal jargon for the public web. Any failure keeps
// the original query.
func (a *Agent) optimizeQuery(ctx context.Context, query string, detectedDomains []string) string {
	domains := "없음"
	if len(detectedDomains) > 0 {
		domains = strings.Join(detectedDomains, ", ")
	}
	prompt := fmt.Sprintf(constant.WebQueryOptimizationPrompt, query, domains)

	var result struct {
		OptimizedQuery string `json:"optimized_query"`
		SearchFocus    string `json:"search_focus"`
	}
	err := llm.GenerateStructured(ctx, a.llmProvider, prompt, &result,
		llm.WithSystemPrompt("You are a web search query optimizer."),
	)
	if err != nil || strings.TrimSpace(result.OptimizedQuery) == "" {
		if err != nil {
			a.logger.Printf("[DEBUG] web query optimization failed, using original: %v", err)
		}
		return query
	}
	return result.OptimizedQuery
}

func (a *Agent) evaluateResult(ctx context.Context, query string, res TavilyResult) resultEvaluation {
	content := res.Content
	if len(content) > maxEvalContent {
		content = content[:maxEvalContent]
	}

	prompt := fmt.Sprintf(constant.WebResultEvaluationPrompt, query, res.Title, res.URL, content)

	var eval resultEvaluation
	err := llm.GenerateStructured(ctx, a.llmProvider, prompt, &eval)
	if err != nil {
		excerpt := res.Content
		if len(excerpt) > maxExcerptLength {
			excerpt = excerpt[:maxExcerptLength]
		}
		return resultEvaluation{
			ContentRelevance:        0.5,
			SourceReliability:       estimateSourceReliability(res.URL),
			InformationCompleteness: 0.5,
			OverallScore:            0.5,
			UsefulExcerpt:           excerpt,
			ShouldInclude:           true,
		}
	}
	return eval
}

var trustedDomains = []string{
	"docs.python.org",
	"developer.mozilla.org",
	"docs.microsoft.com",
	"cloud.google.com",
	"aws.amazon.com",
	"kubernetes.io",
	"docker.com",
	"github.com",
	"stackoverflow.com",
	"medium.com",
}

func estimateSourceReliability(url string) float64 {
	lower := strings.ToLower(url)
	for _, domain := range trustedDomains {
		if strings.Contains(lower, domain) {
			return 0.9
		}
	}
	for _, pattern := range []string{"docs.", "documentation", "wiki"} {
		if strings.Contains(lower, pattern) {
			return 0.8
		}
	}
	return 0.6
}
