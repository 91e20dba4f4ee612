package orchestrator

import (
	"context"
	"fmt"
	"log"

	"corrective-rag-be/pkg/rag/routing"
	"corrective-rag-be/pkg/rag/state"
)

// NodeFunc executes one workflow step and returns a partial-state delta.
type NodeFunc func(ctx context.Context, s *state.State) (*state.Delta, error)

// Router picks the next node after a step. Returning "" ends the run.
type Router func(s *state.State) string

// Graph is a named-node workflow with conditional edges. Runs are
// synchronous; an interrupt node ends the run with its name left in
// state.CurrentNode so the caller can suspend and resume later.
type Graph struct {
	nodes      map[string]NodeFunc
	edges      map[string]Router
	entryPoint string
	interrupts map[string]bool
	logger     *log.Logger
}

func NewGraph(entryPoint string, logger *log.Logger) *Graph {
	return &Graph{
		nodes:      make(map[string]NodeFunc),
		edges:      make(map[string]Router),
		entryPoint: entryPoint,
		interrupts: make(map[string]bool),
		logger:     logger,
	}
}

// AddNode registers a node under its name.
func (g *Graph) AddNode(name string, fn NodeFunc) {
	g.nodes[name] = fn
}

// AddEdge registers an unconditional edge.
func (g *Graph) AddEdge(from, to string) {
	g.edges[from] = func(*state.State) string { return to }
}

// AddConditionalEdge registers a router for a node.
func (g *Graph) AddConditionalEdge(from string, router Router) {
	g.edges[from] = router
}

// MarkInterrupt declares a node as an interrupt point: after it runs, the run
// stops without routing further.
func (g *Graph) MarkInterrupt(name string) {
	g.interrupts[name] = true
}

// Run drives the state through the graph until an end edge, an interrupt, or
// the liveness guard fires. Node failures are recorded in the state's error
// log; the guard aborts sessions that keep failing.
func (g *Graph) Run(ctx context.Context, s *state.State) error {
	current := g.entryPoint

	for current != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !routing.ShouldContinue(s) {
			g.logger.Printf("[ERROR] session %s aborted after %d errors", s.SessionID, len(s.ErrorLog))
			return nil
		}

		node, ok := g.nodes[current]
		if !ok {
			return fmt.Errorf("unknown node %q", current)
		}

		g.logger.Printf("[PHASE] session %s entering node %s", s.SessionID, current)
		delta, err := node(ctx, s)
		if err != nil {
			s.ErrorLog = append(s.ErrorLog, fmt.Sprintf("%s: %v", current, err))
			return fmt.Errorf("node %s failed: %w", current, err)
		}
		delta.Apply(s)

		if g.interrupts[current] {
			return nil
		}

		router, ok := g.edges[current]
		if !ok {
			return nil
		}
		current = router(s)
	}
	return nil
}
