package ui

import (
	"reddit-overlay/internal/artifact"
	"reddit-overlay/internal/session"
)

// Messages for Bubble Tea

// FeedLoadedMsg is sent when a feed fetch finishes.
type FeedLoadedMsg struct {
	Source string
	Raw    string
	Err    error
}

// ThreadLoadedMsg carries the result of a thread request. It may be stale.
type ThreadLoadedMsg struct {
	Result session.ThreadResult
}

// SnapshotLoadedMsg is sent when the last saved session has been read.
type SnapshotLoadedMsg struct {
	Snapshot artifact.MainContent
	Err      error
}

// SessionSavedMsg reports a best-effort session snapshot.
type SessionSavedMsg struct {
	At  string
	Err error
}

// spinnerStartMsg asks Update to start the spinner, since Init cannot record
// that it is ticking.
type spinnerStartMsg struct{}
