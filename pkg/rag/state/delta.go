package state

import "time"

// Delta is a partial update produced by a single workflow node. Scalar fields
// are pointers: nil means "leave the state value alone", a non-nil pointer
// overwrites it. Slice fields replace the state slice when non-nil, except the
// append-only ones (Errors, RewrittenQueries, NewSubAnswers). Counter fields
// are additive.
type Delta struct {
	RefinedQuery      *string
	Complexity        *Complexity
	ClarityConfidence *float64
	IsAmbiguous       *bool
	AmbiguityType     *AmbiguityType
	DetectedDomains   []string

	ClarificationNeeded   *bool
	ClarificationQuestion *string
	ClarificationOptions  []string
	UserResponse          *string
	InteractionDelta      int

	RetrievedDocs        []Document
	DocsReplaced         bool
	RelevanceScores      []float64
	AvgRelevance         *float64
	HighRelevanceCount   *int
	MediumRelevanceCount *int

	RetryDelta          int
	RewrittenQueries    []string
	CorrectionTriggered *bool

	SubQuestions   []SubQuestion
	ParallelGroups [][]string
	SynthesisGuide *string
	NewSubAnswers  []SubAnswer

	WebSearchTriggered *bool
	WebResults         []Document
	WebConfidence      *float64

	GeneratedResponse  *string
	ResponseConfidence *float64
	Sources            []string
	NeedsDisclaimer    *bool

	CurrentNode *string
	LLMCalls    int
	Errors      []string
	Finished    bool
}

// Apply merges the delta into the state in place.
func (d *Delta) Apply(s *State) {
	if d == nil {
		return
	}
	if d.RefinedQuery != nil {
		s.RefinedQuery = *d.RefinedQuery
	}
	if d.Complexity != nil {
		s.Complexity = *d.Complexity
	}
	if d.ClarityConfidence != nil {
		s.ClarityConfidence = *d.ClarityConfidence
	}
	if d.IsAmbiguous != nil {
		s.IsAmbiguous = *d.IsAmbiguous
	}
	if d.AmbiguityType != nil {
		s.AmbiguityType = *d.AmbiguityType
	}
	if d.DetectedDomains != nil {
		s.DetectedDomains = d.DetectedDomains
	}

	if d.ClarificationNeeded != nil {
		s.ClarificationNeeded = *d.ClarificationNeeded
	}
	if d.ClarificationQuestion != nil {
		s.ClarificationQuestion = *d.ClarificationQuestion
	}
	if d.ClarificationOptions != nil {
		s.ClarificationOptions = d.ClarificationOptions
	}
	if d.UserResponse != nil {
		s.UserResponse = *d.UserResponse
	}
	s.InteractionCount += d.InteractionDelta

	if d.RetrievedDocs != nil || d.DocsReplaced {
		s.RetrievedDocs = d.RetrievedDocs
	}
	if d.RelevanceScores != nil {
		s.RelevanceScores = d.RelevanceScores
	}
	if d.AvgRelevance != nil {
		s.AvgRelevance = *d.AvgRelevance
	}
	if d.HighRelevanceCount != nil {
		s.HighRelevanceCount = *d.HighRelevanceCount
	}
	if d.MediumRelevanceCount != nil {
		s.MediumRelevanceCount = *d.MediumRelevanceCount
	}

	s.RetryCount += d.RetryDelta
	if len(d.RewrittenQueries) > 0 {
		s.RewrittenQueries = append(s.RewrittenQueries, d.RewrittenQueries...)
	}
	if d.CorrectionTriggered != nil {
		s.CorrectionTriggered = *d.CorrectionTriggered
	}

	if d.SubQuestions != nil {
		s.SubQuestions = d.SubQuestions
	}
	if d.ParallelGroups != nil {
		s.ParallelGroups = d.ParallelGroups
	}
	if d.SynthesisGuide != nil {
		s.SynthesisGuide = *d.SynthesisGuide
	}
	if len(d.NewSubAnswers) > 0 {
		s.SubAnswers = append(s.SubAnswers, d.NewSubAnswers...)
	}

	if d.WebSearchTriggered != nil {
		s.WebSearchTriggered = *d.WebSearchTriggered
	}
	if d.WebResults != nil {
		s.WebResults = d.WebResults
	}
	if d.WebConfidence != nil {
		s.WebConfidence = *d.WebConfidence
	}

	if d.GeneratedResponse != nil {
		s.GeneratedResponse = *d.GeneratedResponse
	}
	if d.ResponseConfidence != nil {
		s.ResponseConfidence = *d.ResponseConfidence
	}
	if d.Sources != nil {
		s.Sources = d.Sources
	}
	if d.NeedsDisclaimer != nil {
		s.NeedsDisclaimer = *d.NeedsDisclaimer
	}

	if d.CurrentNode != nil {
		s.CurrentNode = *d.CurrentNode
	}
	s.TotalLLMCalls += d.LLMCalls
	if len(d.Errors) > 0 {
		s.ErrorLog = append(s.ErrorLog, d.Errors...)
	}
	if d.Finished {
		s.EndTime = time.Now()
	}
}

// Helpers for building deltas without pointer boilerplate.

func StrPtr(v string) *string                     { return &v }
func BoolPtr(v bool) *bool                        { return &v }
func FloatPtr(v float64) *float64                 { return &v }
func IntPtr(v int) *int                           { return &v }
func ComplexityPtr(v Complexity) *Complexity      { return &v }
func AmbiguityPtr(v AmbiguityType) *AmbiguityType { return &v }
