package ports

import (
	"context"
	"time"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

// HTTPServer defines the interface for the diff report server
type HTTPServer interface {
	Start(ctx context.Context, port int, host string) error
	Stop(ctx context.Context) error
	SetDiff(diff *entities.PresentationDiff)
	NotifyClients(event UpdateEvent) error
	IsRunning() bool
}

// UpdateEvent represents an event sent to WebSocket clients
type UpdateEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// UpdateEventType constants
const (
	EventTypeConnected   = "connected"
	EventTypeDiffUpdated = "diff_updated"
)
