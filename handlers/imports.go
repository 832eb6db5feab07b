package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goblin987/legendary-meme/services"
)

// ImportHandler handles track import endpoints
type ImportHandler struct {
	imports services.ImportService
}

// NewImportHandler creates a new import handler
func NewImportHandler(imports services.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// ImportRequest is the body of a track import request
type ImportRequest struct {
	URL  string `json:"url" binding:"required,url"`
	Name string `json:"name" binding:"required"`
}

// QueueImport queues an import of a remote track into the music folder
func (h *ImportHandler) QueueImport(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "url and name are required",
			"details": err.Error(),
		})
		return
	}

	job := h.imports.AddJob(req.URL, req.Name)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Track import queued successfully",
		"job":     job,
	})
}

// GetAllJobs returns all import jobs
func (h *ImportHandler) GetAllJobs(c *gin.Context) {
	jobs := h.imports.GetAllJobs()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetJob returns a specific import job by ID
func (h *ImportHandler) GetJob(c *gin.Context) {
	job, exists := h.imports.GetJob(c.Param("jobId"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "job not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job": job,
	})
}

// CancelJob cancels a queued import job
func (h *ImportHandler) CancelJob(c *gin.Context) {
	if !h.imports.CancelJob(c.Param("jobId")) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job cannot be cancelled (not found or already processing)",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "job cancelled successfully",
	})
}
