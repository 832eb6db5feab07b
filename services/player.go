package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goblin987/legendary-meme/types"
	"github.com/goblin987/legendary-meme/websocket"
)

// ErrSessionNotFound is returned for commands against unknown sessions
var ErrSessionNotFound = fmt.Errorf("session not found")

// ErrEmptyPlaylist is returned for transport commands while no tracks exist
var ErrEmptyPlaylist = fmt.Errorf("playlist is empty")

// PlayerService manages player sessions. Each session holds an ordered
// track list and a current index; every transition is broadcast over the
// WebSocket hub so visualizer clients can follow playback activity.
type PlayerService interface {
	OpenSession(tracks []types.Track, autoplay bool) *types.PlayerState
	GetSession(id string) (*types.PlayerState, bool)
	GetAllSessions() []*types.PlayerState
	Next(id string) (*types.PlayerState, error)
	Previous(id string) (*types.PlayerState, error)
	Play(id string) (*types.PlayerState, error)
	Pause(id string) (*types.PlayerState, error)
	Ended(id string) (*types.PlayerState, error)
	CloseSession(id string) bool
}

// session is the internal mutable state behind one PlayerState
type session struct {
	id      string
	tracks  []types.Track
	index   int
	playing bool
	updated time.Time
}

type playerService struct {
	sessions map[string]*session
	mu       sync.RWMutex
	hub      websocket.Hub
}

// NewPlayerService creates a new player service
func NewPlayerService(hub websocket.Hub) PlayerService {
	return &playerService{
		sessions: make(map[string]*session),
		hub:      hub,
	}
}

// OpenSession creates a session over the given playlist. With a non-empty
// playlist and autoplay enabled the first track starts playing immediately;
// an empty playlist opens idle at index -1.
func (p *playerService) OpenSession(tracks []types.Track, autoplay bool) *types.PlayerState {
	s := &session{
		id:      uuid.New().String(),
		tracks:  tracks,
		index:   -1,
		updated: time.Now(),
	}

	if len(tracks) > 0 {
		s.index = 0
		s.playing = autoplay
	}

	p.mu.Lock()
	p.sessions[s.id] = s
	p.mu.Unlock()

	state := snapshot(s)
	p.broadcast(state)
	return state
}

// GetSession returns the state of a session by ID
func (p *playerService) GetSession(id string) (*types.PlayerState, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, exists := p.sessions[id]
	if !exists {
		return nil, false
	}
	return snapshot(s), true
}

// GetAllSessions returns the state of every open session
func (p *playerService) GetAllSessions() []*types.PlayerState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	states := make([]*types.PlayerState, 0, len(p.sessions))
	for _, s := range p.sessions {
		states = append(states, snapshot(s))
	}
	return states
}

// Next advances to the following track, wrapping past the last one
func (p *playerService) Next(id string) (*types.PlayerState, error) {
	return p.transition(id, func(s *session) {
		s.index = (s.index + 1) % len(s.tracks)
		s.playing = true
	})
}

// Previous steps back one track; at the first track it wraps to the last
func (p *playerService) Previous(id string) (*types.PlayerState, error) {
	return p.transition(id, func(s *session) {
		s.index = (s.index - 1 + len(s.tracks)) % len(s.tracks)
		s.playing = true
	})
}

// Play resumes playback of the current track
func (p *playerService) Play(id string) (*types.PlayerState, error) {
	return p.transition(id, func(s *session) {
		s.playing = true
	})
}

// Pause suspends playback without moving the index
func (p *playerService) Pause(id string) (*types.PlayerState, error) {
	return p.transition(id, func(s *session) {
		s.playing = false
	})
}

// Ended records the natural end of the current track and auto-advances,
// exactly as if Next had been invoked.
func (p *playerService) Ended(id string) (*types.PlayerState, error) {
	return p.Next(id)
}

// CloseSession removes a session. Returns false for unknown IDs.
func (p *playerService) CloseSession(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.sessions[id]; !exists {
		return false
	}
	delete(p.sessions, id)
	return true
}

// transition applies fn under the lock and broadcasts the resulting state
func (p *playerService) transition(id string, fn func(*session)) (*types.PlayerState, error) {
	p.mu.Lock()
	s, exists := p.sessions[id]
	if !exists {
		p.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if len(s.tracks) == 0 {
		p.mu.Unlock()
		return nil, ErrEmptyPlaylist
	}

	fn(s)
	s.updated = time.Now()
	state := snapshot(s)
	p.mu.Unlock()

	p.broadcast(state)
	return state, nil
}

// snapshot copies a session into its wire representation
func snapshot(s *session) *types.PlayerState {
	state := &types.PlayerState{
		SessionID:  s.id,
		Index:      s.index,
		Playing:    s.playing,
		TrackCount: len(s.tracks),
		UpdatedAt:  s.updated,
	}
	if s.index >= 0 && s.index < len(s.tracks) {
		track := s.tracks[s.index]
		state.Track = &track
	}
	return state
}

func (p *playerService) broadcast(state *types.PlayerState) {
	if p.hub != nil {
		p.hub.BroadcastState(state.SessionID, state)
	}
}
