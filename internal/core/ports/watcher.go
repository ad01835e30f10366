package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of file system change seen for a class file.
type WatchOp uint8

const (
	// OpWrite indicates a class file was created or rewritten.
	OpWrite WatchOp = iota
	// OpRemove indicates a class file was deleted or renamed away.
	OpRemove
)

// ClassEvent reports a change to one class file below the watched root.
type ClassEvent struct {
	// Path is the root-relative, slash separated class file path.
	Path string
	// Class is the internal class name derived from Path.
	Class     string
	Operation WatchOp
}

// Watcher observes a classes directory for compiler output.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start watches root and every directory created below it.
	Start(ctx context.Context, root string) error
	// Stop releases the underlying watches and ends the event stream.
	Stop() error
	// Events yields class file changes until the watcher stops.
	Events() iter.Seq[ClassEvent]
}
