package metrics

import (
	"context"
	"time"
)

// EventRecorder defines the core domain interface
type EventRecorder interface {
	Record(ctx context.Context, event *Event) error
	Close() error
}

// EventRepository defines the interface for journal storage
type EventRepository interface {
	Record(event *Event) error
	Close() error
}

// EventKind names the state change an Event describes.
type EventKind string

const (
	KindProfile     EventKind = "profile"
	KindInteractive EventKind = "interactive"
	KindBoost       EventKind = "boost"
	KindFeature     EventKind = "feature"
)

// Event is one applied state change together with the controller
// state right after it.
type Event struct {
	Timestamp       time.Time
	Kind            EventKind
	Profile         string
	Interactive     bool
	TouchKeyBlocked bool
	Detail          string
}
