package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published during workspace synchronization
const (
	TopicSyncStatus = "sync_status"
	TopicTargetMap  = "target_map"
	TopicCoverage   = "coverage"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "sync_status")
	Type    string          `json:"type"`    // Event type (e.g., "querying", "ready", "failed")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic.
	// Context cancellation will close the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// SyncStatus reports the progress of a workspace sync
type SyncStatus struct {
	State   string `json:"state"`   // querying, parsing, ready, failed
	Message string `json:"message"` // Human-readable status message
	Step    int    `json:"step"`    // Current step number (1-based)
	Total   int    `json:"total"`   // Total number of steps
}

// TargetMapSummary describes the freshly synced target map
type TargetMapSummary struct {
	Targets   int   `json:"targets"`
	Edges     int   `json:"edges"`
	SyncIndex int64 `json:"syncIndex"`
	Complete  bool  `json:"complete"`
}
