package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/goblin987/legendary-meme/cmd"
	"github.com/goblin987/legendary-meme/services"
	"github.com/goblin987/legendary-meme/types"
)

// TestHelper provides utilities for testing the shop music server
type TestHelper struct {
	Server   *httptest.Server
	MusicDir string
	Router   *gin.Engine
}

// NewTestHelper boots the real router against a temporary music folder
// seeded with the five required files.
func NewTestHelper(t *testing.T) *TestHelper {
	testDir := t.TempDir()

	t.Setenv("SHOP_MUSIC_DIR", testDir)
	t.Setenv("SHOP_SETTINGS_FILE", filepath.Join(t.TempDir(), "settings.json"))

	gin.SetMode(gin.TestMode)

	helper := &TestHelper{MusicDir: testDir}
	helper.setupTestData(t)

	helper.Router = cmd.NewRouter()
	helper.Server = httptest.NewServer(helper.Router)

	return helper
}

// Cleanup shuts the test server down
func (h *TestHelper) Cleanup(t *testing.T) {
	if h.Server != nil {
		h.Server.Close()
	}
}

// setupTestData fills the music folder with the required shop files
func (h *TestHelper) setupTestData(t *testing.T) {
	for _, name := range services.RequiredFiles {
		h.CreateTestFile(t, name, createMinimalMP3File())
	}
}

// createMinimalMP3File returns bytes that pass the extension checks and
// exercise the filename-fallback metadata path
func createMinimalMP3File() []byte {
	return []byte("ID3\x03\x00\x00\x00\x00\x00\x00")
}

// newTrackServer serves the given track bytes for any request, standing in
// for a remote CDN during import tests
func newTrackServer(content []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(content)
	}))
}

// CreateTestFile creates a file inside the music folder
func (h *TestHelper) CreateTestFile(t *testing.T, relativePath string, content []byte) {
	fullPath := filepath.Join(h.MusicDir, relativePath)

	err := os.MkdirAll(filepath.Dir(fullPath), 0755)
	require.NoError(t, err)

	err = os.WriteFile(fullPath, content, 0644)
	require.NoError(t, err)
}

// MakeRequest makes an HTTP request to the test server
func (h *TestHelper) MakeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, h.Server.URL+path, reqBody)
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	return resp
}

// GetJSON makes a GET request and unmarshals the JSON response
func (h *TestHelper) GetJSON(t *testing.T, path string, target interface{}) *http.Response {
	resp := h.MakeRequest(t, "GET", path, nil)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	if target != nil {
		err = json.Unmarshal(body, target)
		require.NoError(t, err)
	}

	return resp
}

// PostJSON makes a POST request with a JSON body and unmarshals the response
func (h *TestHelper) PostJSON(t *testing.T, path string, requestBody interface{}, target interface{}) *http.Response {
	resp := h.MakeRequest(t, "POST", path, requestBody)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	if target != nil {
		err = json.Unmarshal(body, target)
		require.NoError(t, err)
	}

	return resp
}

// OpenSession opens a player session and returns its initial state
func (h *TestHelper) OpenSession(t *testing.T) *types.PlayerState {
	var response struct {
		State *types.PlayerState `json:"state"`
	}

	resp := h.PostJSON(t, "/api/player/sessions", nil, &response)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, response.State)

	return response.State
}

// WaitForJobCompletion polls an import job until it finishes or times out
func (h *TestHelper) WaitForJobCompletion(t *testing.T, jobID string, timeout time.Duration) *types.ImportJob {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		var response struct {
			Job *types.ImportJob `json:"job"`
		}

		resp := h.GetJSON(t, "/api/imports/"+jobID, &response)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		if response.Job.Status == types.JobStatusCompleted || response.Job.Status == types.JobStatusFailed {
			return response.Job
		}

		time.Sleep(50 * time.Millisecond)
	}

	t.Fatalf("Job %s did not complete within timeout", jobID)
	return nil
}

// ConnectWebSocket connects to a WebSocket endpoint
func (h *TestHelper) ConnectWebSocket(t *testing.T, path string) *websocket.Conn {
	wsURL := "ws" + h.Server.URL[4:] + path // Replace http:// with ws://

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	return conn
}
