package models

// EEventType identifies a playback event reported by a client.
type EEventType string

const (
	EventPlay EEventType = "play"
	EventSkip EEventType = "skip"
)
