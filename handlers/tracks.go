package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goblin987/legendary-meme/config"
	"github.com/goblin987/legendary-meme/services"
	"github.com/goblin987/legendary-meme/types"
)

// TrackHandler handles playlist and library endpoints
type TrackHandler struct {
	playlist services.PlaylistService
	library  services.LibraryService
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(playlist services.PlaylistService, library services.LibraryService) *TrackHandler {
	return &TrackHandler{
		playlist: playlist,
		library:  library,
	}
}

// ListTracks returns the current playlist in playback order
func (h *TrackHandler) ListTracks(c *gin.Context) {
	tracks, err := h.playlist.Load(config.GetMusicDir())
	if err != nil {
		log.Printf("Error loading playlist: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to load playlist",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tracks": tracks,
		"count":  len(tracks),
	})
}

// LibraryReport returns the advisory report for the music folder: missing
// required files, naming violations, encoding advisories.
func (h *TrackHandler) LibraryReport(c *gin.Context) {
	report, err := h.library.Report(config.GetMusicDir())
	if err != nil {
		log.Printf("Error building library report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to build library report",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// Search filters the playlist by display name
func (h *TrackHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query parameter 'q' is required",
		})
		return
	}

	tracks, err := h.playlist.Load(config.GetMusicDir())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "search failed",
			"details": err.Error(),
		})
		return
	}

	needle := strings.ToLower(query)
	results := make([]types.Track, 0)
	for _, track := range tracks {
		if strings.Contains(strings.ToLower(track.Name), needle) ||
			strings.Contains(strings.ToLower(track.Src), needle) {
			results = append(results, track)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}
