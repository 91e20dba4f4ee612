// Package routing holds the pure decision functions of the corrective
// workflow. Every function is total and deterministic: it inspects the session
// state plus static settings and returns the name of the next node.
package routing

import (
	"corrective-rag-be/pkg/rag/state"
)

// GateMode selects the post-evaluation routing policy.
type GateMode string

const (
	// GateRelaxed routes to generation whenever any documents survived
	// retrieval, falling back to web search only on an empty set. This is the
	// default for small document collections.
	GateRelaxed GateMode = "relaxed"
	// GateStrict applies the full relevance gate: enough high-relevance docs,
	// or a good average, or a medium doc with a passable average; otherwise
	// rewrite while retries remain, then web search.
	GateStrict GateMode = "strict"
)

// Settings are the static knobs the routing functions need.
type Settings struct {
	RelevanceThreshold   float64
	MinHighRelevanceDocs int
	MaxCorrectionRetries int
	MaxHITLInteractions  int
	Gate                 GateMode
	HITLEnabled          bool
}

// AfterAnalysis decides the node that follows query analysis.
//
// Priority: clarification (if needed and under the interaction cap), then
// decomposition for complex queries, then plain retrieval.
func AfterAnalysis(s *state.State, cfg Settings) string {
	if s.ClarificationNeeded && s.InteractionCount < cfg.MaxHITLInteractions {
		return state.NodeClarifyHITL
	}
	if s.Complexity == state.ComplexityComplex {
		return state.NodeDecomposeQuery
	}
	return state.NodeRetrieve
}

// AfterHITLResponse decides where a resumed session goes once the user's
// clarification has been folded into the query.
func AfterHITLResponse(s *state.State) string {
	if s.Complexity == state.ComplexityComplex {
		return state.NodeDecomposeQuery
	}
	return state.NodeRetrieve
}

// AfterEvaluation is the corrective core: generate, rewrite, or fall back to
// web search, depending on the configured gate.
func AfterEvaluation(s *state.State, cfg Settings) string {
	if cfg.Gate == GateStrict {
		return afterEvaluationStrict(s, cfg)
	}
	return afterEvaluationRelaxed(s)
}

func afterEvaluationRelaxed(s *state.State) string {
	if len(s.RetrievedDocs) > 0 {
		return state.NodeGenerateResponse
	}
	return state.NodeWebSearch
}

func afterEvaluationStrict(s *state.State, cfg Settings) string {
	if s.HighRelevanceCount >= cfg.MinHighRelevanceDocs {
		return state.NodeGenerateResponse
	}
	if s.AvgRelevance >= cfg.RelevanceThreshold {
		return state.NodeGenerateResponse
	}
	// Relaxation for small collections: one medium doc plus a passable average.
	if s.MediumRelevanceCount >= 1 && len(s.RetrievedDocs) > 0 && s.AvgRelevance >= 0.3 {
		return state.NodeGenerateResponse
	}
	if s.RetryCount < cfg.MaxCorrectionRetries {
		return state.NodeRewriteQuery
	}
	return state.NodeWebSearch
}

// ShouldContinue is the liveness guard: a session that has accumulated three
// or more node errors is aborted instead of looping.
func ShouldContinue(s *state.State) bool {
	return len(s.ErrorLog) < 3
}
