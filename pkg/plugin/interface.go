// Package plugin provides the entry point for recon modules.
package plugin

import (
	"context"

	"github.com/telisik/telisik/pkg/event"
)

// Target is the subject of a scan as seen by a module.
type Target interface {
	Value() string
	Matches(name string) bool
}

// Session is the per-scan collaborator handed to a module on every
// event delivery. Seen/MarkSeen back the within-scan deduplication,
// SetError puts the scan in a terminal error state that modules must
// honor by checking Errored before doing any work.
type Session interface {
	ScanID() string
	Target() Target
	Emit(evt event.Event)
	Seen(value string) bool
	MarkSeen(value string)
	ShouldStop() bool
	SetError(msg string)
	Errored() bool
}

// Module defines the behaviour that must be implemented by a recon module
type Module interface {
	Name() string
	Initialize(config []byte) error
	WatchedEvents() []string
	ProducedEvents() []string
	HandleEvent(ctx context.Context, s Session, evt event.Event) error
}
