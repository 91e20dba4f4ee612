package state

import (
	"time"
)

// Complexity classifies a query after analysis.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityComplex Complexity = "complex"
)

// AmbiguityType names why a query was flagged as ambiguous.
type AmbiguityType string

const (
	AmbiguityMultipleInterpretation AmbiguityType = "multiple_interpretation"
	AmbiguityMissingContext         AmbiguityType = "missing_context"
	AmbiguityVagueTerm              AmbiguityType = "vague_term"
)

// RetrievalSource tells where the evidence for an answer came from.
type RetrievalSource string

const (
	SourceVector RetrievalSource = "vector"
	SourceWeb    RetrievalSource = "web"
	SourceHybrid RetrievalSource = "hybrid"
)

// Node names of the workflow graph.
const (
	NodeStart               = "start"
	NodeAnalyzeQuery        = "analyze_query"
	NodeClarifyHITL         = "clarify_hitl"
	NodeProcessHITLResponse = "process_hitl_response"
	NodeDecomposeQuery      = "decompose_query"
	NodeRetrieve            = "retrieve"
	NodeEvaluateRelevance   = "evaluate_relevance"
	NodeRewriteQuery        = "rewrite_query"
	NodeWebSearch           = "web_search"
	NodeGenerateResponse    = "generate_response"
	NodeEvaluateQuality     = "evaluate_quality"
)

// DocumentMetadata carries provenance for a retrieved chunk.
type DocumentMetadata struct {
	Source     string `json:"source"`
	Title      string `json:"title,omitempty"`
	Section    string `json:"section,omitempty"`
	ChunkIndex int    `json:"chunk_index,omitempty"`
}

// Document is one unit of retrieved evidence, from the vector store or the web.
// Score pointers are nil until the corresponding evaluation has run.
type Document struct {
	Content           string           `json:"content"`
	Metadata          DocumentMetadata `json:"metadata"`
	EmbeddingScore    *float64         `json:"embedding_score,omitempty"`
	LLMRelevanceScore *float64         `json:"llm_relevance_score,omitempty"`
	CombinedScore     *float64         `json:"combined_score,omitempty"`
}

// CombineScores computes the weighted score (40% embedding, 60% LLM) once both
// components are present.
func (d *Document) CombineScores() {
	if d.EmbeddingScore == nil || d.LLMRelevanceScore == nil {
		return
	}
	combined := 0.4*(*d.EmbeddingScore) + 0.6*(*d.LLMRelevanceScore)
	d.CombinedScore = &combined
}

// SubQuestion is one part of a decomposed complex query. Dependencies refer to
// sub-question ids within the same decomposition batch.
type SubQuestion struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	TargetDomain string   `json:"target_domain"`
	Dependencies []string `json:"dependencies"`
}

// SubAnswer binds a sub-question to its answer. Failed tasks are represented
// with a placeholder answer and zero confidence, never a missing entry.
type SubAnswer struct {
	QuestionID string   `json:"question_id"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// State carries every fact accumulated about one query's journey through the
// workflow. Nodes never mutate it directly; they return a Delta which the
// graph runner applies between steps.
type State struct {
	// Input
	Query     string
	SessionID string

	// Query analysis
	RefinedQuery      string
	Complexity        Complexity
	ClarityConfidence float64
	IsAmbiguous       bool
	AmbiguityType     AmbiguityType
	DetectedDomains   []string

	// HITL
	ClarificationNeeded   bool
	ClarificationQuestion string
	ClarificationOptions  []string
	UserResponse          string
	InteractionCount      int

	// Retrieval
	RetrievedDocs        []Document
	RelevanceScores      []float64
	AvgRelevance         float64
	HighRelevanceCount   int
	MediumRelevanceCount int

	// Correction
	RetryCount          int
	RewrittenQueries    []string
	CorrectionTriggered bool

	// Decomposition
	SubQuestions   []SubQuestion
	ParallelGroups [][]string
	SynthesisGuide string
	SubAnswers     []SubAnswer

	// Web search
	WebSearchTriggered bool
	WebResults         []Document
	WebConfidence      float64

	// Output
	GeneratedResponse  string
	ResponseConfidence float64
	Sources            []string
	NeedsDisclaimer    bool

	// Bookkeeping
	CurrentNode   string
	TotalLLMCalls int
	ErrorLog      []string
	StartTime     time.Time
	EndTime       time.Time
}

// New creates the initial state for a fresh query.
func New(query, sessionID string) *State {
	return &State{
		Query:        query,
		SessionID:    sessionID,
		RefinedQuery: query,
		Complexity:   ComplexitySimple,
		CurrentNode:  NodeStart,
		StartTime:    time.Now(),
	}
}

// EffectiveQuery returns the refined query when one exists, else the original.
func (s *State) EffectiveQuery() string {
	if s.RefinedQuery != "" {
		return s.RefinedQuery
	}
	return s.Query
}
