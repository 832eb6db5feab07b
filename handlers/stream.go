package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goblin987/legendary-meme/config"
	"github.com/goblin987/legendary-meme/services"
)

// StreamHandler serves audio bytes from the music folder
type StreamHandler struct {
	library services.LibraryService
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(library services.LibraryService) *StreamHandler {
	return &StreamHandler{library: library}
}

// StreamTrack streams an audio file with support for range requests
func (h *StreamHandler) StreamTrack(c *gin.Context) {
	requestedPath := strings.TrimPrefix(c.Param("filepath"), "/")

	if err := h.library.ValidateFilePath(requestedPath); err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "path security violation",
			"details": err.Error(),
		})
		return
	}

	if strings.ToLower(filepath.Ext(requestedPath)) != ".mp3" {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "file extension not allowed",
			"details": "only .mp3 files can be streamed",
		})
		return
	}

	musicDir := config.GetMusicDir()
	fullPath := filepath.Join(musicDir, requestedPath)

	// Ensure the resolved path stays inside the music folder
	absMusicDir, err := filepath.Abs(musicDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "server configuration error",
		})
		return
	}

	absRequestPath, err := filepath.Abs(fullPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid file path",
		})
		return
	}

	if !strings.HasPrefix(absRequestPath, absMusicDir) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "path traversal not allowed",
		})
		return
	}

	fileInfo, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "file not found",
				"path":  requestedPath,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "file access error",
			"details": err.Error(),
		})
		return
	}

	if fileInfo.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path is a directory, not a file",
		})
		return
	}

	file, err := os.Open(fullPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to open file",
			"details": err.Error(),
		})
		return
	}
	defer file.Close()

	c.Header("Content-Type", h.library.GetContentType(requestedPath))
	c.Header("Content-Length", strconv.FormatInt(fileInfo.Size(), 10))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("Access-Control-Allow-Origin", "*")

	if rangeHeader := c.GetHeader("Range"); rangeHeader != "" {
		h.handleRangeRequest(c, file, fileInfo.Size(), rangeHeader, requestedPath)
		return
	}

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		log.Printf("Error streaming file %s: %v", requestedPath, err)
	}
}

// handleRangeRequest handles HTTP range requests for efficient seeking
func (h *StreamHandler) handleRangeRequest(c *gin.Context, file *os.File, fileSize int64, rangeHeader string, filePath string) {
	// Parse range header (e.g., "bytes=0-1023" or "bytes=1024-")
	if !strings.HasPrefix(rangeHeader, "bytes=") {
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	ranges := strings.Split(strings.TrimPrefix(rangeHeader, "bytes="), "-")
	if len(ranges) != 2 {
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	var start, end int64
	var err error

	if ranges[0] != "" {
		start, err = strconv.ParseInt(ranges[0], 10, 64)
		if err != nil || start < 0 {
			c.Status(http.StatusRequestedRangeNotSatisfiable)
			return
		}
	}

	if ranges[1] != "" {
		end, err = strconv.ParseInt(ranges[1], 10, 64)
		if err != nil || end < start {
			c.Status(http.StatusRequestedRangeNotSatisfiable)
			return
		}
	} else {
		end = fileSize - 1
	}

	if start >= fileSize {
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}
	if end >= fileSize {
		end = fileSize - 1
	}

	contentLength := end - start + 1

	if _, err = file.Seek(start, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to seek file",
		})
		return
	}

	c.Header("Content-Type", h.library.GetContentType(filePath))
	c.Header("Content-Length", strconv.FormatInt(contentLength, 10))
	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, fileSize))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Status(http.StatusPartialContent)

	if _, err := io.CopyN(c.Writer, file, contentLength); err != nil {
		log.Printf("Error streaming range %d-%d: %v", start, end, err)
	}
}
