package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goblin987/legendary-meme/config"
	"github.com/goblin987/legendary-meme/services"
	"github.com/goblin987/legendary-meme/types"
	"github.com/goblin987/legendary-meme/websocket"
)

// PlayerHandler handles player session endpoints
type PlayerHandler struct {
	player   services.PlayerService
	playlist services.PlaylistService
	hub      websocket.Hub
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(player services.PlayerService, playlist services.PlaylistService, hub websocket.Hub) *PlayerHandler {
	return &PlayerHandler{
		player:   player,
		playlist: playlist,
		hub:      hub,
	}
}

// OpenSession creates a player session over the current playlist. With
// autoplay enabled (the default) the first track starts playing at once.
func (h *PlayerHandler) OpenSession(c *gin.Context) {
	tracks, err := h.playlist.Load(config.GetMusicDir())
	if err != nil {
		log.Printf("Error loading playlist for session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to load playlist",
			"details": err.Error(),
		})
		return
	}

	settings, err := config.LoadSettings()
	if err != nil {
		settings = config.DefaultSettings()
	}

	state := h.player.OpenSession(tracks, settings.Autoplay)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Player session opened",
		"state":   state,
	})
}

// GetSession returns the state of a session by ID
func (h *PlayerHandler) GetSession(c *gin.Context) {
	state, exists := h.player.GetSession(c.Param("sessionId"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "session not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state": state,
	})
}

// GetAllSessions returns the state of every open session
func (h *PlayerHandler) GetAllSessions(c *gin.Context) {
	states := h.player.GetAllSessions()
	c.JSON(http.StatusOK, gin.H{
		"sessions": states,
		"total":    len(states),
	})
}

// CloseSession removes a player session
func (h *PlayerHandler) CloseSession(c *gin.Context) {
	if !h.player.CloseSession(c.Param("sessionId")) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "session not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "session closed",
	})
}

// Next advances to the following track (wraps past the last one)
func (h *PlayerHandler) Next(c *gin.Context) {
	h.command(c, h.player.Next)
}

// Previous steps back one track (wraps to the last track at index 0)
func (h *PlayerHandler) Previous(c *gin.Context) {
	h.command(c, h.player.Previous)
}

// Play resumes playback
func (h *PlayerHandler) Play(c *gin.Context) {
	h.command(c, h.player.Play)
}

// Pause suspends playback
func (h *PlayerHandler) Pause(c *gin.Context) {
	h.command(c, h.player.Pause)
}

// Ended records a natural end-of-track and auto-advances
func (h *PlayerHandler) Ended(c *gin.Context) {
	h.command(c, h.player.Ended)
}

// command runs one transport operation and writes the resulting state
func (h *PlayerHandler) command(c *gin.Context, op func(string) (*types.PlayerState, error)) {
	state, err := op(c.Param("sessionId"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, services.ErrEmptyPlaylist):
			c.JSON(http.StatusConflict, gin.H{"error": "playlist is empty"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "player command failed",
				"details": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state": state,
	})
}

// HandleWebSocketConnection handles WebSocket connections for one session's
// state broadcasts (this is what a visualizer subscribes to)
func (h *PlayerHandler) HandleWebSocketConnection(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session ID is required"})
		return
	}

	if _, exists := h.player.GetSession(sessionID); !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, sessionID)
	h.hub.RegisterClient(client)
	client.StartPumps()
}

// HandleWebSocketAllConnection handles WebSocket connections that follow
// every session and import job
func (h *PlayerHandler) HandleWebSocketAllConnection(c *gin.Context) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, "all")
	h.hub.RegisterClient(client)
	client.StartPumps()
}
