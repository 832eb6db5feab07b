package types

import "time"

// PlayerState is the externally visible state of one player session.
// Index is -1 while the playlist is empty.
type PlayerState struct {
	SessionID  string    `json:"sessionId"`
	Index      int       `json:"index"`
	Track      *Track    `json:"track,omitempty"`
	Playing    bool      `json:"playing"`
	TrackCount int       `json:"trackCount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
