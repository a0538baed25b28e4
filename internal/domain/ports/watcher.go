package ports

import (
	"context"
	"time"
)

// FileWatcher reports changes to the presentation files being compared.
// Every Watch call on one watcher returns the same channel, which is closed
// by Stop.
type FileWatcher interface {
	Watch(ctx context.Context, path string) (<-chan FileChangeEvent, error)
	Stop() error
}

// FileChangeEvent is one change to a watched file. Path is absolute.
type FileChangeEvent struct {
	Path      string
	Type      ChangeType
	Timestamp time.Time
}

// ChangeType tells what happened to a watched file
type ChangeType int

const (
	Modified ChangeType = iota
	Created
	Deleted
)

func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}
