package cmd

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/goblin987/legendary-meme/config"
	"github.com/goblin987/legendary-meme/handlers"
	"github.com/goblin987/legendary-meme/middleware"
	"github.com/goblin987/legendary-meme/services"
	"github.com/goblin987/legendary-meme/websocket"
)

// NewRouter wires services, handlers, and routes into a ready gin engine.
// The returned hub and import workers are already running.
func NewRouter() *gin.Engine {
	// Initialize services
	hub := websocket.NewHub()
	go hub.Run()

	encoding := services.NewEncodingService()
	library := services.NewLibraryService(encoding)
	playlist := services.NewPlaylistService(library)
	player := services.NewPlayerService(hub)

	imports := services.NewImportService(2, config.GetMusicDir(), hub)
	imports.Start()

	// Initialize handlers
	trackHandler := handlers.NewTrackHandler(playlist, library)
	streamHandler := handlers.NewStreamHandler(library)
	playerHandler := handlers.NewPlayerHandler(player, playlist, hub)
	importHandler := handlers.NewImportHandler(imports)
	healthHandler := handlers.NewHealthHandler()
	settingsHandler := handlers.NewSettingsHandler()

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Logging())
	r.Use(middleware.Security())

	setupRoutes(r, trackHandler, streamHandler, playerHandler, importHandler, healthHandler, settingsHandler)

	return r
}

// StartWebServer starts the web server
func StartWebServer(port int) {
	// Set production mode if not specified
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := NewRouter()

	portStr := strconv.Itoa(port)
	if serverPort := os.Getenv("SERVER_PORT"); serverPort != "" {
		portStr = serverPort
	}

	log.Printf("Shop music server starting on port %s", portStr)
	log.Printf("Music folder: %s", config.GetMusicDir())
	if err := r.Run(":" + portStr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes configures all the HTTP routes
func setupRoutes(r *gin.Engine, trackHandler *handlers.TrackHandler, streamHandler *handlers.StreamHandler, playerHandler *handlers.PlayerHandler, importHandler *handlers.ImportHandler, healthHandler *handlers.HealthHandler, settingsHandler *handlers.SettingsHandler) {
	// Health check endpoint
	r.GET("/health", healthHandler.HealthCheck)

	// API routes group
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", healthHandler.APIStatus)

		// Playlist and library
		apiGroup.GET("/tracks", trackHandler.ListTracks)
		apiGroup.GET("/library/report", trackHandler.LibraryReport)
		apiGroup.GET("/search", trackHandler.Search)

		// Streaming
		apiGroup.GET("/stream/*filepath", streamHandler.StreamTrack)

		// Player sessions
		playerGroup := apiGroup.Group("/player")
		{
			playerGroup.POST("/sessions", playerHandler.OpenSession)
			playerGroup.GET("/sessions", playerHandler.GetAllSessions)
			playerGroup.GET("/sessions/:sessionId", playerHandler.GetSession)
			playerGroup.DELETE("/sessions/:sessionId", playerHandler.CloseSession)

			playerGroup.POST("/sessions/:sessionId/next", playerHandler.Next)
			playerGroup.POST("/sessions/:sessionId/previous", playerHandler.Previous)
			playerGroup.POST("/sessions/:sessionId/play", playerHandler.Play)
			playerGroup.POST("/sessions/:sessionId/pause", playerHandler.Pause)
			playerGroup.POST("/sessions/:sessionId/ended", playerHandler.Ended)
		}

		// Track imports
		importsGroup := apiGroup.Group("/imports")
		{
			importsGroup.POST("", importHandler.QueueImport)
			importsGroup.GET("", importHandler.GetAllJobs)
			importsGroup.GET("/:jobId", importHandler.GetJob)
			importsGroup.DELETE("/:jobId", importHandler.CancelJob)
		}

		// WebSocket endpoints for real-time player state
		wsGroup := apiGroup.Group("/ws")
		{
			wsGroup.GET("/player/:sessionId", playerHandler.HandleWebSocketConnection)
			wsGroup.GET("/player", playerHandler.HandleWebSocketAllConnection)
		}

		// Settings endpoints
		apiGroup.GET("/settings", settingsHandler.GetSettings)
		apiGroup.POST("/settings", settingsHandler.UpdateSettings)
	}
}
