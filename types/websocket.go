package types

import "time"

// EventMessage is the envelope pushed over WebSocket connections. Channel is
// a player session ID, an import job ID, or "all". Exactly one of Player or
// the progress fields is populated depending on Type.
type EventMessage struct {
	Channel   string       `json:"channel"`
	Type      string       `json:"type"` // "state", "progress", "complete", "error"
	Player    *PlayerState `json:"player,omitempty"`
	Progress  float64      `json:"progress,omitempty"` // 0-100 percentage
	Status    string       `json:"status,omitempty"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
