// Package decompose breaks complex queries into sub-questions, schedules them
// in dependency waves, fans out retrieval, and synthesizes the sub-answers.
package decompose

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
	minSubQuestions = 2
	maxSubQuestions = 5
)

// Plan is the validated decomposition of one complex query.
type Plan struct {
	OriginalIntent string              `json:"original_intent"`
	SubQuestions   []state.SubQuestion `json:"sub_questions"`
	ParallelGroups [][]string          `json:"parallel_groups"`
	SynthesisGuide string              `json:"synthesis_guide"`
}

// Synthesis is the combined answer built from sub-answers.
type Synthesis struct {
	Response        string   `json:"synthesized_response"`
	Sources         []string `json:"sources"`
	CoverageScore   float64  `json:"coverage_score"`
	Inconsistencies []string `json:"inconsistencies"`
}

// AnswerFunc resolves one sub-question. Implementations run the retrieval and
// generation pipeline for the given question.
type AnswerFunc func(ctx context.Context, question, targetDomain string) (answer string, sources []string, confidence float64, err error)

// Controller owns decomposition, wave scheduling, parallel execution and
// synthesis.
type Controller struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewController(llmProvider llm.LLMProvider, logger *log.Logger) *Controller {
	return &Controller{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// ShouldDecompose reports whether a query of the given complexity needs
// decomposition.
func (c *Controller) ShouldDecompose(complexity state.Complexity) bool {
	return complexity == state.ComplexityComplex
}

// Decompose asks the LLM for 2-5 sub-questions. Anything out of bounds, and
// any LLM failure, degrades to a single-question plan wrapping the original
// query.
func (c *Controller) Decompose(ctx context.Context, query string, complexity state.Complexity, detectedDomains []string) *Plan {
	prompt := fmt.Sprintf(constant.QueryDecompositionPrompt,
		query,
		string(complexity),
		strings.Join(detectedDomains, ", "),
	)

	var plan Plan
	err := llm.GenerateStructured(ctx, c.llmProvider, prompt, &plan,
		llm.WithSystemPrompt("You are a query decomposition specialist."),
	)
	if err != nil {
		c.logger.Printf("[ERROR] decomposition failed, using single-question plan: %v", err)
		return singleQuestionPlan(query)
	}

	if len(plan.SubQuestions) < minSubQuestions || len(plan.SubQuestions) > maxSubQuestions {
		c.logger.Printf("[DEBUG] decomposition returned %d sub-questions, using single-question plan", len(plan.SubQuestions))
		return singleQuestionPlan(query)
	}

	if len(plan.ParallelGroups) == 0 {
		plan.ParallelGroups = BuildDefaultGroups(plan.SubQuestions)
	}
	return &plan
}

// BuildDefaultGroups derives execution waves from sub-question dependencies.
// Wave n holds every question whose dependencies are all satisfied by earlier
// waves. If no question is ready (a cycle or a dangling reference), all
// remaining questions are dumped into one final wave so execution always
// terminates.
func BuildDefaultGroups(subQuestions []state.SubQuestion) [][]string {
	var groups [][]string
	processed := make(map[string]bool)
	remaining := make([]state.SubQuestion, len(subQuestions))
	copy(remaining, subQuestions)

	for len(remaining) > 0 {
		var ready []string
		for _, q := range remaining {
			ok := true
			for _, dep := range q.Dependencies {
				if !processed[dep] {
					ok = false
					break
				}
			}
			if ok {
				ready = append(ready, q.ID)
			}
		}

		if len(ready) == 0 {
			var rest []string
			for _, q := range remaining {
				rest = append(rest, q.ID)
			}
			sort.Strings(rest)
			groups = append(groups, rest)
			break
		}

		sort.Strings(ready)
		groups = append(groups, ready)
		for _, id := range ready {
			processed[id] = true
		}

		var next []state.SubQuestion
		for _, q := range remaining {
			if !processed[q.ID] {
				next = append(next, q)
			}
		}
		remaining = next
	}

	return groups
}

// ExecuteParallel runs the plan wave by wave. Questions within a wave run
// concurrently; a failed question yields a placeholder sub-answer with zero
// confidence and never blocks its siblings. Unknown ids, duplicates, and
// questions whose dependencies have not completed yet are skipped.
func (c *Controller) ExecuteParallel(ctx context.Context, plan *Plan, answerFn AnswerFunc) []state.SubAnswer {
	questionMap := make(map[string]state.SubQuestion, len(plan.SubQuestions))
	for _, q := range plan.SubQuestions {
		questionMap[q.ID] = q
	}

	var answers []state.SubAnswer
	completed := make(map[string]bool)

	for _, group := range plan.ParallelGroups {
		var executable []state.SubQuestion
		for _, qid := range group {
			q, ok := questionMap[qid]
			if !ok || completed[qid] {
				continue
			}
			if !dependenciesCompleted(q, completed) {
				c.logger.Printf("[DEBUG] sub-question %s skipped: dependency not completed", q.ID)
				continue
			}
			executable = append(executable, q)
		}
		if len(executable) == 0 {
			continue
		}

		results := make([]state.SubAnswer, len(executable))
		var wg sync.WaitGroup
		for i, q := range executable {
			wg.Add(1)
			go func(i int, q state.SubQuestion) {
				defer wg.Done()
				results[i] = c.answerOne(ctx, q, answerFn)
			}(i, q)
		}
		wg.Wait()

		for i, q := range executable {
			answers = append(answers, results[i])
			completed[q.ID] = true
		}
	}

	return answers
}

func dependenciesCompleted(q state.SubQuestion, completed map[string]bool) bool {
	for _, dep := range q.Dependencies {
		if !completed[dep] {
			return false
		}
	}
	return true
}

func (c *Controller) answerOne(ctx context.Context, q state.SubQuestion, answerFn AnswerFunc) state.SubAnswer {
	answer, sources, confidence, err := answerFn(ctx, q.Question, q.TargetDomain)
	if err != nil {
		c.logger.Printf("[ERROR] sub-question %s failed: %v", q.ID, err)
		return state.SubAnswer{
			QuestionID: q.ID,
			Question:   q.Question,
			Answer:     constant.SubAnswerNotFound,
			Sources:    []string{},
			Confidence: 0.0,
		}
	}
	return state.SubAnswer{
		QuestionID: q.ID,
		Question:   q.Question,
		Answer:     answer,
		Sources:    sources,
		Confidence: confidence,
	}
}

// Synthesize combines sub-answers into one response. On LLM failure it
// concatenates the sub-answers deterministically with a 0.5 coverage score.
func (c *Controller) Synthesize(ctx context.Context, originalQuery string, subAnswers []state.SubAnswer, synthesisGuide string) *Synthesis {
	var formatted []string
	for _, sa := range subAnswers {
		src := "없음"
		if len(sa.Sources) > 0 {
			src = strings.Join(sa.Sources, ", ")
		}
		formatted = append(formatted, fmt.Sprintf("질문: %s\n답변: %s\n출처: %s\n신뢰도: %.2f",
			sa.Question, sa.Answer, src, sa.Confidence))
	}

	if synthesisGuide == "" {
		synthesisGuide = "논리적 순서로 답변을 결합하세요."
	}

	prompt := fmt.Sprintf(constant.SubAnswerSynthesisPrompt,
		originalQuery,
		strings.Join(formatted, "\n\n---\n\n"),
		synthesisGuide,
	)

	var result Synthesis
	err := llm.GenerateStructured(ctx, c.llmProvider, prompt, &result,
		llm.WithSystemPrompt("You are a response synthesizer."),
	)
	if err != nil || strings.TrimSpace(result.Response) == "" {
		if err != nil {
			c.logger.Printf("[ERROR] synthesis failed, using concatenation fallback: %v", err)
		}
		return concatenationFallback(subAnswers)
	}

	result.Sources = collectSources(subAnswers)
	return &result
}

func concatenationFallback(subAnswers []state.SubAnswer) *Synthesis {
	var parts []string
	for _, sa := range subAnswers {
		parts = append(parts, fmt.Sprintf("**%s**\n%s", sa.Question, sa.Answer))
	}
	return &Synthesis{
		Response:      strings.Join(parts, "\n\n"),
		Sources:       collectSources(subAnswers),
		CoverageScore: 0.5,
	}
}

func collectSources(subAnswers []state.SubAnswer) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, sa := range subAnswers {
		for _, s := range sa.Sources {
			if !seen[s] {
				seen[s] = true
				sources = append(sources, s)
			}
		}
	}
	return sources
}

func singleQuestionPlan(query string) *Plan {
	return &Plan{
		OriginalIntent: query,
		SubQuestions: []state.SubQuestion{
			{ID: "q1", Question: query},
		},
		ParallelGroups: [][]string{{"q1"}},
		SynthesisGuide: "단일 질문 - 직접 답변 사용",
	}
}
