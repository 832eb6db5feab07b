package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goblin987/legendary-meme/services"
	"github.com/goblin987/legendary-meme/types"
)

// TestHealthEndpoint tests the basic health check endpoint
func TestHealthEndpoint(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var response map[string]interface{}
	resp := helper.GetJSON(t, "/health", &response)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "shopmusic", response["service"])
}

// TestListTracks tests that the playlist comes back in shop order with the
// autoplay track first
func TestListTracks(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var response struct {
		Tracks []types.Track `json:"tracks"`
		Count  int           `json:"count"`
	}

	resp := helper.GetJSON(t, "/api/tracks", &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, len(services.RequiredFiles), response.Count)

	assert.Equal(t, "big_poppa.mp3", response.Tracks[0].Src)
	assert.Equal(t, "Big Poppa", response.Tracks[0].Name)

	for i, track := range response.Tracks {
		assert.Equal(t, services.RequiredFiles[i], track.Src)
		assert.True(t, track.Local)
		assert.NotEmpty(t, track.Name)
	}
}

// TestListTracksExtrasAppend tests that conforming extra files come after
// the required five, sorted by name
func TestListTracksExtrasAppend(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	helper.CreateTestFile(t, "warning.mp3", createMinimalMP3File())
	helper.CreateTestFile(t, "everyday_struggle.mp3", createMinimalMP3File())

	var response struct {
		Tracks []types.Track `json:"tracks"`
		Count  int           `json:"count"`
	}

	resp := helper.GetJSON(t, "/api/tracks", &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, len(services.RequiredFiles)+2, response.Count)

	assert.Equal(t, "everyday_struggle.mp3", response.Tracks[5].Src)
	assert.Equal(t, "warning.mp3", response.Tracks[6].Src)
}

// TestSearchEndpoint tests playlist search
func TestSearchEndpoint(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "match by display name",
			query:          "poppa",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "match by filename",
			query:          "juice",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "no matches",
			query:          "nosuchtrack",
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name:           "empty query",
			query:          "",
			expectedStatus: http.StatusBadRequest,
			expectedCount:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var response struct {
				Results []types.Track `json:"results"`
				Count   int           `json:"count"`
			}

			resp := helper.GetJSON(t, "/api/search?q="+tt.query, &response)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedCount, response.Count)
			}
		})
	}
}

// TestLibraryReport tests the advisory report for a complete folder
func TestLibraryReport(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var report types.LibraryReport
	resp := helper.GetJSON(t, "/api/library/report", &report)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 0, report.Missing)
	require.Len(t, report.Required, len(services.RequiredFiles))
	for _, required := range report.Required {
		assert.True(t, required.Present, "required file should be present: %s", required.Filename)
	}
	assert.Empty(t, report.Violations)
}

// TestLibraryReportViolations tests naming violation detection
func TestLibraryReportViolations(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	helper.CreateTestFile(t, "Bad Name.mp3", createMinimalMP3File())

	var report types.LibraryReport
	resp := helper.GetJSON(t, "/api/library/report", &report)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, report.Violations, 1)
	assert.Equal(t, "Bad Name.mp3", report.Violations[0].Filename)
	assert.Equal(t, "bad_name.mp3", report.Violations[0].Expected)
}

// TestStreamTrack tests full-file streaming
func TestStreamTrack(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	resp := helper.MakeRequest(t, "GET", "/api/stream/big_poppa.mp3", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "bytes", resp.Header.Get("Accept-Ranges"))
}

// TestStreamTrackRange tests HTTP range requests for seeking
func TestStreamTrackRange(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	content := make([]byte, 1024)
	copy(content, createMinimalMP3File())
	helper.CreateTestFile(t, "hypnotize.mp3", content)

	req, err := http.NewRequest("GET", helper.Server.URL+"/api/stream/hypnotize.mp3", nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=0-511")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "512", resp.Header.Get("Content-Length"))
	assert.Equal(t, "bytes 0-511/1024", resp.Header.Get("Content-Range"))
}

// TestStreamTrackSecurity tests traversal and extension rejection
func TestStreamTrackSecurity(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{
			name:           "path traversal",
			path:           "/api/stream/..%2fsettings.json",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "disallowed extension",
			path:           "/api/stream/notes.txt",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "missing file",
			path:           "/api/stream/ten_crack_commandments.mp3",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := helper.MakeRequest(t, "GET", tt.path, nil)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

// TestPlayerSessionWorkflow tests the full open -> transport -> close flow
func TestPlayerSessionWorkflow(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	// Opening a session autoplays the first track
	state := helper.OpenSession(t)
	assert.Equal(t, 0, state.Index)
	assert.True(t, state.Playing)
	require.NotNil(t, state.Track)
	assert.Equal(t, "big_poppa.mp3", state.Track.Src)
	assert.Equal(t, len(services.RequiredFiles), state.TrackCount)

	sessionID := state.SessionID

	// Next advances
	var response struct {
		State *types.PlayerState `json:"state"`
	}
	resp := helper.PostJSON(t, "/api/player/sessions/"+sessionID+"/next", nil, &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, response.State.Index)
	assert.Equal(t, "notorious_thugs.mp3", response.State.Track.Src)

	// Previous returns to the start
	resp = helper.PostJSON(t, "/api/player/sessions/"+sessionID+"/previous", nil, &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, response.State.Index)

	// Previous at index 0 wraps to the last track
	resp = helper.PostJSON(t, "/api/player/sessions/"+sessionID+"/previous", nil, &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, len(services.RequiredFiles)-1, response.State.Index)
	assert.Equal(t, "hypnotize.mp3", response.State.Track.Src)

	// Ended behaves like next (wraps back to the first track here)
	resp = helper.PostJSON(t, "/api/player/sessions/"+sessionID+"/ended", nil, &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, response.State.Index)
	assert.True(t, response.State.Playing)

	// Pause keeps the index
	resp = helper.PostJSON(t, "/api/player/sessions/"+sessionID+"/pause", nil, &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, response.State.Playing)
	assert.Equal(t, 0, response.State.Index)

	// Close and verify it is gone
	resp = helper.MakeRequest(t, "DELETE", "/api/player/sessions/"+sessionID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = helper.MakeRequest(t, "GET", "/api/player/sessions/"+sessionID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestPlayerSessionNotFound tests commands against unknown sessions
func TestPlayerSessionNotFound(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var response map[string]interface{}
	resp := helper.PostJSON(t, "/api/player/sessions/no-such-session/next", nil, &response)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "session not found", response["error"])
}

// TestSettingsWorkflow tests reading and updating settings
func TestSettingsWorkflow(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	// Defaults
	var settings struct {
		Autoplay bool                  `json:"autoplay"`
		Entries  []types.PlaylistEntry `json:"entries"`
	}
	resp := helper.GetJSON(t, "/api/settings", &settings)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, settings.Autoplay)
	assert.Empty(t, settings.Entries)

	// Valid remote playlist replaces the scanned folder
	update := map[string]interface{}{
		"autoplay": true,
		"entries": []map[string]string{
			{"name": "Big Poppa", "src": "https://cdn.example.com/big_poppa.mp3"},
			{"name": "Juice", "src": "https://cdn.example.com/juice.mp3"},
		},
	}
	resp = helper.PostJSON(t, "/api/settings", update, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tracks struct {
		Tracks []types.Track `json:"tracks"`
		Count  int           `json:"count"`
	}
	resp = helper.GetJSON(t, "/api/tracks", &tracks)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 2, tracks.Count)
	assert.Equal(t, "Big Poppa", tracks.Tracks[0].Name)
	assert.False(t, tracks.Tracks[0].Local)
}

// TestSettingsRejectsInvalidEntries tests entry validation on update
func TestSettingsRejectsInvalidEntries(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	tests := []struct {
		name  string
		entry map[string]string
	}{
		{
			name:  "missing display name",
			entry: map[string]string{"name": "", "src": "https://cdn.example.com/a.mp3"},
		},
		{
			name:  "missing src",
			entry: map[string]string{"name": "Track", "src": ""},
		},
		{
			name:  "local src breaking convention",
			entry: map[string]string{"name": "Track", "src": "Bad Name.mp3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := map[string]interface{}{
				"autoplay": true,
				"entries":  []map[string]string{tt.entry},
			}

			var response map[string]interface{}
			resp := helper.PostJSON(t, "/api/settings", update, &response)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, response, "error")
		})
	}
}

// TestImportWorkflow tests importing a remote track into the music folder
func TestImportWorkflow(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	// Serve fake track bytes from a second test server
	trackBytes := make([]byte, 2048)
	copy(trackBytes, createMinimalMP3File())
	remote := newTrackServer(trackBytes)
	defer remote.Close()

	var created struct {
		Job *types.ImportJob `json:"job"`
	}
	body := map[string]string{"url": remote.URL + "/ten_crack_commandments.mp3", "name": "Ten Crack Commandments"}
	resp := helper.PostJSON(t, "/api/imports", body, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, created.Job)
	assert.Equal(t, "ten_crack_commandments.mp3", created.Job.Filename)

	job := helper.WaitForJobCompletion(t, created.Job.ID, 10*time.Second)
	require.Equal(t, types.JobStatusCompleted, job.Status)

	// The imported file now shows up in the playlist
	var tracks struct {
		Tracks []types.Track `json:"tracks"`
		Count  int           `json:"count"`
	}
	resp = helper.GetJSON(t, "/api/tracks", &tracks)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, len(services.RequiredFiles)+1, tracks.Count)
}

// TestImportValidation tests import request validation
func TestImportValidation(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "missing url", body: map[string]string{"name": "Track"}},
		{name: "missing name", body: map[string]string{"url": "https://cdn.example.com/a.mp3"}},
		{name: "malformed url", body: map[string]string{"url": "not-a-url", "name": "Track"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var response map[string]interface{}
			resp := helper.PostJSON(t, "/api/imports", tt.body, &response)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, response, "error")
		})
	}
}

// TestImportJobNotFound tests requesting a non-existent job
func TestImportJobNotFound(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	var response map[string]interface{}
	resp := helper.GetJSON(t, "/api/imports/non-existent-job", &response)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "job not found", response["error"])
}

// TestConcurrentSessions tests that sessions are independent
func TestConcurrentSessions(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	first := helper.OpenSession(t)
	second := helper.OpenSession(t)
	require.NotEqual(t, first.SessionID, second.SessionID)

	var response struct {
		State *types.PlayerState `json:"state"`
	}
	resp := helper.PostJSON(t, "/api/player/sessions/"+first.SessionID+"/next", nil, &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, response.State.Index)

	// The second session stays on the first track
	resp = helper.GetJSON(t, "/api/player/sessions/"+second.SessionID, &response)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, response.State.Index)

	var all struct {
		Sessions []types.PlayerState `json:"sessions"`
		Total    int                 `json:"total"`
	}
	resp = helper.GetJSON(t, "/api/player/sessions", &all)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, all.Total)
}
