package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "NODE_ENTERED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by the workflow event
// constructors below.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewNodeEntered marks a workflow session entering a node.
func NewNodeEntered(sessionID, node string) Event {
	return BaseEvent{
		Type: "WORKFLOW_NODE_ENTERED",
		Data: map[string]interface{}{
			"session_id": sessionID,
			"node":       node,
		},
		OccurredAt: time.Now(),
	}
}

// NewWorkflowCompleted marks a session finishing with a final answer.
func NewWorkflowCompleted(sessionID string, durationMs int64) Event {
	return BaseEvent{
		Type: "WORKFLOW_COMPLETED",
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"duration_ms": durationMs,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentIndexed marks a document finishing the indexing pipeline.
func NewDocumentIndexed(documentID string, chunkCount int) Event {
	return BaseEvent{
		Type: "DOCUMENT_INDEXED",
		Data: map[string]interface{}{
			"document_id": documentID,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}
