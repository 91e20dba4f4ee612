package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"corrective-rag-be/internal/constant"
	"corrective-rag-be/internal/pkg/logger"
	"corrective-rag-be/pkg/rag/state"

	"github.com/redis/go-redis/v9"
)

// Frame types pushed to clients over a session connection.
const (
	FrameProgress             = "progress"
	FrameClarificationRequest = "clarification_request"
	FrameFinalResponse        = "final_response"
	FrameError                = "error"
)

// SessionMessageHandler runs a workflow turn for an inbound socket frame:
// a fresh chat query, or the answer to a pending clarification. It runs on
// the client's read goroutine.
type SessionMessageHandler func(ctx context.Context, sessionID, query, answer string)

type Hub struct {
	// Registered clients map: SessionID -> List of Clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Invoked for inbound chat and clarification frames.
	onSessionMessage SessionMessageHandler

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

// SetSessionMessageHandler must be called before Run.
func (h *Hub) SetSessionMessageHandler(fn SessionMessageHandler) {
	h.onSessionMessage = fn
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes one frame to every connection watching the session, then fans
// out over Redis so other instances can deliver it too.
func (h *Hub) Send(sessionID, frameType string, data interface{}) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":       frameType,
		"session_id": sessionID,
		"data":       data,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal frame", map[string]interface{}{"type": frameType, "error": err.Error()})
		return
	}

	h.deliverLocal(sessionID, payload)

	if h.rdb != nil {
		clusterPayload, _ := json.Marshal(map[string]interface{}{
			"target_session_id": sessionID,
			"message":           json.RawMessage(payload),
		})
		h.rdb.Publish(context.Background(), "cluster_events", clusterPayload)
	}
}

func (h *Hub) deliverLocal(sessionID string, payload []byte) {
	h.mu.RLock()
	clients, found := h.clients[sessionID]
	h.mu.RUnlock()

	if !found {
		return
	}
	for _, client := range clients {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"session_id": sessionID})
			close(client.Send)
			h.unregister <- client
		}
	}
}

// NodeEntered and Completed let the hub double as a workflow event sink:
// every node transition becomes a progress frame on the session's socket.
func (h *Hub) NodeEntered(sessionID, node string) {
	h.Send(sessionID, FrameProgress, map[string]interface{}{
		"node":   node,
		"status": statusMessage(node),
	})
}

func (h *Hub) Completed(sessionID string, durationMs int64) {
	h.Send(sessionID, FrameProgress, map[string]interface{}{
		"node":        "done",
		"status":      constant.StatusComplete,
		"duration_ms": durationMs,
	})
}

func statusMessage(node string) string {
	switch node {
	case state.NodeAnalyzeQuery, state.NodeProcessHITLResponse, state.NodeDecomposeQuery:
		return constant.StatusAnalyzing
	case state.NodeRetrieve, state.NodeRewriteQuery, state.NodeWebSearch:
		return constant.StatusSearching
	case state.NodeEvaluateRelevance, state.NodeEvaluateQuality:
		return constant.StatusEvaluating
	case state.NodeGenerateResponse:
		return constant.StatusGenerating
	default:
		return ""
	}
}

func (h *Hub) subscribeToRedis() {
	// All instances subscribe to "cluster_events". When a frame arrives, an
	// instance delivers it only to sessions it holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetSessionID string          `json:"target_session_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		h.deliverLocal(payload.TargetSessionID, payload.Message)
	}
}
