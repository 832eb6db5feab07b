package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goblin987/legendary-meme/types"
)

func testTracks() []types.Track {
	return []types.Track{
		{Name: "Big Poppa", Src: "big_poppa.mp3", Local: true},
		{Name: "Notorious Thugs", Src: "notorious_thugs.mp3", Local: true},
		{Name: "Juice", Src: "juice.mp3", Local: true},
	}
}

func TestOpenSessionAutoplay(t *testing.T) {
	player := NewPlayerService(nil)

	state := player.OpenSession(testTracks(), true)
	assert.Equal(t, 0, state.Index)
	assert.True(t, state.Playing)
	assert.Equal(t, 3, state.TrackCount)
	require.NotNil(t, state.Track)
	assert.Equal(t, "big_poppa.mp3", state.Track.Src)
}

func TestOpenSessionWithoutAutoplay(t *testing.T) {
	player := NewPlayerService(nil)

	state := player.OpenSession(testTracks(), false)
	assert.Equal(t, 0, state.Index)
	assert.False(t, state.Playing)
}

func TestOpenSessionEmptyPlaylist(t *testing.T) {
	player := NewPlayerService(nil)

	state := player.OpenSession(nil, true)
	assert.Equal(t, -1, state.Index)
	assert.False(t, state.Playing)
	assert.Nil(t, state.Track)
	assert.Equal(t, 0, state.TrackCount)

	// Transport commands have nothing to act on
	_, err := player.Next(state.SessionID)
	assert.ErrorIs(t, err, ErrEmptyPlaylist)
	_, err = player.Play(state.SessionID)
	assert.ErrorIs(t, err, ErrEmptyPlaylist)
}

func TestNextWrapsPastLastTrack(t *testing.T) {
	player := NewPlayerService(nil)
	state := player.OpenSession(testTracks(), true)

	for _, expected := range []int{1, 2, 0, 1} {
		next, err := player.Next(state.SessionID)
		require.NoError(t, err)
		assert.Equal(t, expected, next.Index)
		assert.True(t, next.Playing)
	}
}

func TestPreviousWrapsToLastTrack(t *testing.T) {
	player := NewPlayerService(nil)
	state := player.OpenSession(testTracks(), true)

	prev, err := player.Previous(state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, prev.Index)
	assert.Equal(t, "juice.mp3", prev.Track.Src)

	prev, err = player.Previous(state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, prev.Index)
}

func TestEndedAdvancesLikeNext(t *testing.T) {
	player := NewPlayerService(nil)
	state := player.OpenSession(testTracks(), true)

	ended, err := player.Ended(state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, ended.Index)
	assert.True(t, ended.Playing)
}

func TestPlayPauseKeepIndex(t *testing.T) {
	player := NewPlayerService(nil)
	state := player.OpenSession(testTracks(), true)

	paused, err := player.Pause(state.SessionID)
	require.NoError(t, err)
	assert.False(t, paused.Playing)
	assert.Equal(t, 0, paused.Index)

	playing, err := player.Play(state.SessionID)
	require.NoError(t, err)
	assert.True(t, playing.Playing)
	assert.Equal(t, 0, playing.Index)
}

func TestNextAfterPauseResumesPlayback(t *testing.T) {
	player := NewPlayerService(nil)
	state := player.OpenSession(testTracks(), true)

	_, err := player.Pause(state.SessionID)
	require.NoError(t, err)

	next, err := player.Next(state.SessionID)
	require.NoError(t, err)
	assert.True(t, next.Playing)
}

func TestCloseSession(t *testing.T) {
	player := NewPlayerService(nil)
	state := player.OpenSession(testTracks(), true)

	assert.True(t, player.CloseSession(state.SessionID))
	assert.False(t, player.CloseSession(state.SessionID))

	_, exists := player.GetSession(state.SessionID)
	assert.False(t, exists)

	_, err := player.Next(state.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUnknownSessionCommands(t *testing.T) {
	player := NewPlayerService(nil)

	_, err := player.Next("no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, exists := player.GetSession("no-such-session")
	assert.False(t, exists)
}

func TestGetAllSessions(t *testing.T) {
	player := NewPlayerService(nil)

	first := player.OpenSession(testTracks(), true)
	second := player.OpenSession(testTracks(), false)

	states := player.GetAllSessions()
	require.Len(t, states, 2)

	ids := map[string]bool{}
	for _, s := range states {
		ids[s.SessionID] = true
	}
	assert.True(t, ids[first.SessionID])
	assert.True(t, ids[second.SessionID])
}
