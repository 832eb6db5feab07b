package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goblin987/legendary-meme/config"
	"github.com/goblin987/legendary-meme/services"
)

// SettingsHandler handles player settings endpoints
type SettingsHandler struct{}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler() *SettingsHandler {
	return &SettingsHandler{}
}

// GetSettings returns the current settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := config.LoadSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load settings",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings replaces the player settings. Playlist entries are
// validated up front so a bad edit never lands on disk.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var newSettings config.Settings
	if err := c.ShouldBindJSON(&newSettings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid settings format",
			"details": err.Error(),
		})
		return
	}

	for i, entry := range newSettings.Entries {
		if err := services.ValidateEntry(entry); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid playlist entry",
				"details": err.Error(),
				"index":   i,
			})
			return
		}
	}

	if err := config.SaveSettings(&newSettings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save settings",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings updated successfully",
		"settings": newSettings,
	})
}
