package service

import (
	"context"
	"log"
	"time"

	pktEvents "corrective-rag-be/pkg/events"
	pktNats "corrective-rag-be/pkg/nats"
)

// natsEventSink forwards workflow transitions to the NATS event bus. Publish
// failures are logged and dropped; the workflow never blocks on the bus.
type natsEventSink struct {
	publisher *pktNats.Publisher
}

func NewNatsEventSink(publisher *pktNats.Publisher) *natsEventSink {
	return &natsEventSink{publisher: publisher}
}

func (ns *natsEventSink) NodeEntered(sessionID, node string) {
	ns.publish(pktEvents.NewNodeEntered(sessionID, node))
}

func (ns *natsEventSink) Completed(sessionID string, durationMs int64) {
	ns.publish(pktEvents.NewWorkflowCompleted(sessionID, durationMs))
}

func (ns *natsEventSink) publish(evt pktEvents.Event) {
	if ns.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := ns.publisher.Publish(ctx, evt); err != nil {
		log.Printf("[WARN] Failed to publish workflow event %s: %v", evt.EventType(), err)
	}
}
