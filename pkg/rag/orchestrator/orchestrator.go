// Package orchestrator wires the corrective RAG components into a named-node
// workflow graph and exposes the process/resume API on top of it.
package orchestrator

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"corrective-rag-be/pkg/embedding"
	"corrective-rag-be/pkg/llm"
	"corrective-rag-be/pkg/rag/analyze"
	"corrective-rag-be/pkg/rag/corrective"
	"corrective-rag-be/pkg/rag/decompose"
	"corrective-rag-be/pkg/rag/hitl"
	"corrective-rag-be/pkg/rag/pending"
	"corrective-rag-be/pkg/rag/quality"
	"corrective-rag-be/pkg/rag/ragerror"
	"corrective-rag-be/pkg/rag/relevance"
	"corrective-rag-be/pkg/rag/response"
	"corrective-rag-be/pkg/rag/retrieve"
	"corrective-rag-be/pkg/rag/rewrite"
	"corrective-rag-be/pkg/rag/routing"
	"corrective-rag-be/pkg/rag/state"
	"corrective-rag-be/pkg/websearch"
)

// EventSink receives node-transition events. Implementations must be safe for
// concurrent use; a nil sink disables events.
type EventSink interface {
	NodeEntered(sessionID, node string)
	Completed(sessionID string, durationMs int64)
}

// Config carries the workflow tuning knobs.
type Config struct {
	RelevanceThreshold   float64
	MinHighRelevanceDocs int
	MaxRetrievalResults  int
	MaxCorrectionRetries int
	MaxHITLInteractions  int
	Gate                 routing.GateMode
	HITLEnabled          bool
	PendingTTL           time.Duration
}

// Result is the outcome of one Process call: either a final answer or a
// clarification request that suspended the session.
type Result struct {
	SessionID          string
	NeedsClarification bool
	Clarification      *hitl.Clarification
	Response           string
	Sources            []string
	Confidence         float64
	NeedsDisclaimer    bool
	RetrievalSource    state.RetrievalSource
	ProcessingTimeMs   int64
	State              *state.State
}

// Orchestrator owns the main graph, the HITL continuation graph, and the
// pending-session registry.
type Orchestrator struct {
	analyzer      *analyze.Analyzer
	hitl          *hitl.Controller
	decomposer    *decompose.Controller
	retriever     *retrieve.Retriever
	relevanceEval *relevance.Evaluator
	rewriter      *rewrite.Rewriter
	corrective    *corrective.Engine
	webAgent      *websearch.Agent
	generator     *response.Generator
	qualityEval   *quality.Evaluator

	pendingSessions *pending.Registry
	mainGraph       *Graph
	resumeGraph     *Graph
	routeSettings   routing.Settings
	events          EventSink
	logger          *log.Logger
}

// Dependencies are the external services the orchestrator builds on.
type Dependencies struct {
	LLMProvider llm.LLMProvider
	Searcher    retrieve.Searcher
	Embedder    embedding.EmbeddingProvider
	WebClient   *websearch.TavilyClient
	Events      EventSink
	Logger      *log.Logger
}

// New assembles the orchestrator and compiles both graphs.
func New(deps Dependencies, cfg Config) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	retriever := retrieve.NewRetriever(deps.Searcher, deps.Embedder, cfg.MaxRetrievalResults, logger)
	relevanceEval := relevance.NewEvaluator(deps.LLMProvider, logger, cfg.RelevanceThreshold)
	rewriter := rewrite.NewRewriter(deps.LLMProvider, logger)

	o := &Orchestrator{
		analyzer:      analyze.NewAnalyzer(deps.LLMProvider, logger),
		hitl:          hitl.NewController(deps.LLMProvider, logger, cfg.HITLEnabled, cfg.MaxHITLInteractions),
		decomposer:    decompose.NewController(deps.LLMProvider, logger),
		retriever:     retriever,
		relevanceEval: relevanceEval,
		rewriter:      rewriter,
		corrective: corrective.NewEngine(
			retriever, relevanceEval, rewriter, logger,
			cfg.MaxCorrectionRetries, cfg.MinHighRelevanceDocs, cfg.RelevanceThreshold,
		),
		webAgent:        websearch.NewAgent(deps.WebClient, deps.LLMProvider, logger),
		generator:       response.NewGenerator(deps.LLMProvider, logger),
		qualityEval:     quality.NewEvaluator(deps.LLMProvider, logger),
		pendingSessions: pending.NewRegistry(cfg.PendingTTL),
		routeSettings: routing.Settings{
			RelevanceThreshold:   cfg.RelevanceThreshold,
			MinHighRelevanceDocs: cfg.MinHighRelevanceDocs,
			MaxCorrectionRetries: cfg.MaxCorrectionRetries,
			MaxHITLInteractions:  cfg.MaxHITLInteractions,
			Gate:                 cfg.Gate,
			HITLEnabled:          cfg.HITLEnabled,
		},
		events: deps.Events,
		logger: logger,
	}

	o.mainGraph = o.buildMainGraph()
	o.resumeGraph = o.buildResumeGraph()
	return o
}

// buildMainGraph compiles the full workflow entered at query analysis.
func (o *Orchestrator) buildMainGraph() *Graph {
	g := NewGraph(state.NodeAnalyzeQuery, o.logger)
	o.addSharedNodes(g)

	g.AddNode(state.NodeAnalyzeQuery, o.instrument(state.NodeAnalyzeQuery, o.analyzeQueryNode))
	g.AddNode(state.NodeClarifyHITL, o.instrument(state.NodeClarifyHITL, o.clarifyHITLNode))
	g.MarkInterrupt(state.NodeClarifyHITL)

	g.AddConditionalEdge(state.NodeAnalyzeQuery, func(s *state.State) string {
		return routing.AfterAnalysis(s, o.routeSettings)
	})
	return g
}

// buildResumeGraph compiles the smaller continuation graph entered at
// process_hitl_response. A resumed session can interrupt again if another
// clarification round is allowed.
func (o *Orchestrator) buildResumeGraph() *Graph {
	g := NewGraph(state.NodeProcessHITLResponse, o.logger)
	o.addSharedNodes(g)

	g.AddNode(state.NodeProcessHITLResponse, o.instrument(state.NodeProcessHITLResponse, o.processHITLResponseNode))
	g.AddNode(state.NodeClarifyHITL, o.instrument(state.NodeClarifyHITL, o.clarifyHITLNode))
	g.MarkInterrupt(state.NodeClarifyHITL)

	g.AddConditionalEdge(state.NodeProcessHITLResponse, func(s *state.State) string {
		return routing.AfterHITLResponse(s)
	})
	return g
}

// addSharedNodes registers the retrieval-to-quality backbone common to both
// graphs.
func (o *Orchestrator) addSharedNodes(g *Graph) {
	g.AddNode(state.NodeDecomposeQuery, o.instrument(state.NodeDecomposeQuery, o.decomposeQueryNode))
	g.AddNode(state.NodeRetrieve, o.instrument(state.NodeRetrieve, o.retrieveNode))
	g.AddNode(state.NodeEvaluateRelevance, o.instrument(state.NodeEvaluateRelevance, o.evaluateRelevanceNode))
	g.AddNode(state.NodeRewriteQuery, o.instrument(state.NodeRewriteQuery, o.rewriteQueryNode))
	g.AddNode(state.NodeWebSearch, o.instrument(state.NodeWebSearch, o.webSearchNode))
	g.AddNode(state.NodeGenerateResponse, o.instrument(state.NodeGenerateResponse, o.generateResponseNode))
	g.AddNode(state.NodeEvaluateQuality, o.instrument(state.NodeEvaluateQuality, o.evaluateQualityNode))

	g.AddEdge(state.NodeDecomposeQuery, state.NodeRetrieve)
	g.AddEdge(state.NodeRetrieve, state.NodeEvaluateRelevance)
	g.AddConditionalEdge(state.NodeEvaluateRelevance, func(s *state.State) string {
		return routing.AfterEvaluation(s, o.routeSettings)
	})
	g.AddEdge(state.NodeRewriteQuery, state.NodeRetrieve)
	g.AddEdge(state.NodeWebSearch, state.NodeGenerateResponse)
	g.AddEdge(state.NodeGenerateResponse, state.NodeEvaluateQuality)
	g.AddEdge(state.NodeEvaluateQuality, "")
}

func (o *Orchestrator) instrument(name string, fn NodeFunc) NodeFunc {
	if o.events == nil {
		return fn
	}
	return func(ctx context.Context, s *state.State) (*state.Delta, error) {
		o.events.NodeEntered(s.SessionID, name)
		return fn(ctx, s)
	}
}

// Process runs a query through the workflow. When userResponse is non-empty
// and the session is suspended, the suspended state is resumed through the
// continuation graph; otherwise a fresh run starts. The suspended entry is
// consumed on resume.
func (o *Orchestrator) Process(ctx context.Context, query, sessionID, userResponse string) (*Result, error) {
	startTime := time.Now()
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	if userResponse != "" {
		if stored, found := o.pendingSessions.Pop(sessionID); found {
			stored.UserResponse = userResponse
			return o.runGraph(ctx, o.resumeGraph, stored, startTime)
		}
		return nil, ragerror.ErrUnknownSession
	}

	if query == "" {
		return nil, ragerror.ErrEmptyQuery
	}

	return o.runGraph(ctx, o.mainGraph, state.New(query, sessionID), startTime)
}

func (o *Orchestrator) runGraph(ctx context.Context, g *Graph, s *state.State, startTime time.Time) (*Result, error) {
	if err := g.Run(ctx, s); err != nil {
		return nil, err
	}

	// An interrupt at clarify_hitl suspends the session instead of answering.
	if s.CurrentNode == state.NodeClarifyHITL {
		o.pendingSessions.Save(s.SessionID, s)
		return &Result{
			SessionID:          s.SessionID,
			NeedsClarification: true,
			Clarification: &hitl.Clarification{
				Question: s.ClarificationQuestion,
				Options:  s.ClarificationOptions,
			},
			State: s,
		}, nil
	}

	return o.buildResult(s, startTime), nil
}

func (o *Orchestrator) buildResult(s *state.State, startTime time.Time) *Result {
	elapsed := time.Since(startTime).Milliseconds()
	if o.events != nil {
		o.events.Completed(s.SessionID, elapsed)
	}

	source := state.SourceVector
	if s.WebSearchTriggered {
		source = state.SourceWeb
		if len(s.RetrievedDocs) > 0 {
			source = state.SourceHybrid
		}
	}

	return &Result{
		SessionID:        s.SessionID,
		Response:         s.GeneratedResponse,
		Sources:          s.Sources,
		Confidence:       s.ResponseConfidence,
		NeedsDisclaimer:  s.NeedsDisclaimer,
		RetrievalSource:  source,
		ProcessingTimeMs: elapsed,
		State:            s,
	}
}

// HasPendingSession reports whether the session is suspended on a
// clarification.
func (o *Orchestrator) HasPendingSession(sessionID string) bool {
	return o.pendingSessions.Has(sessionID)
}

// GetPendingClarification returns the clarification the session is waiting
// on, without consuming the suspension.
func (o *Orchestrator) GetPendingClarification(sessionID string) (*hitl.Clarification, bool) {
	s, found := o.pendingSessions.Get(sessionID)
	if !found {
		return nil, false
	}
	return &hitl.Clarification{
		Question: s.ClarificationQuestion,
		Options:  s.ClarificationOptions,
	}, true
}
