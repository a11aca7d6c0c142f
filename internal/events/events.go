package events

import (
	"context"
	"time"
)

// Event types emitted by the service.
const (
	EventWorkOrderCreated = "workorder.created"
	EventWorkOrderUpdated = "workorder.updated"
	EventStaffAssigned    = "workorder.staff_assigned"
	EventStaffDetached    = "workorder.staff_detached"
	EventUserRemoved      = "user.removed"
	EventChatRoomCreated  = "chat.room_created"
	EventMessageSent      = "chat.message_sent"
	EventReportSent       = "report.sent"
	EventRepairSubmitted  = "repair.submitted"
)

// Topic is the single stream all service events are published to.
const Topic = "westside.events"

// Event is the envelope for every published event
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// EventPublisher publishes domain events to the message broker
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
