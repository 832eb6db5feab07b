package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goblin987/legendary-meme/config"
	"github.com/goblin987/legendary-meme/types"
)

// PlaylistService builds the ordered track list the player runs on. Two
// supply methods exist: local files in the music folder, or the {name, src}
// entries of the settings file. Non-empty settings entries win.
type PlaylistService interface {
	Load(musicDir string) ([]types.Track, error)
}

type playlistService struct {
	library LibraryService
}

// NewPlaylistService creates a new playlist service
func NewPlaylistService(library LibraryService) PlaylistService {
	return &playlistService{library: library}
}

// Load returns the current playlist in playback order
func (ps *playlistService) Load(musicDir string) ([]types.Track, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if len(settings.Entries) > 0 {
		return tracksFromEntries(settings.Entries)
	}

	return ps.library.ScanTracks(musicDir)
}

// tracksFromEntries converts settings entries into tracks, rejecting the
// whole list when any entry is malformed. A broken playlist must not leave
// the shop half-configured.
func tracksFromEntries(entries []types.PlaylistEntry) ([]types.Track, error) {
	tracks := make([]types.Track, 0, len(entries))
	for i, entry := range entries {
		if err := ValidateEntry(entry); err != nil {
			return nil, fmt.Errorf("playlist entry %d: %w", i, err)
		}

		tracks = append(tracks, types.Track{
			Name:   entry.Name,
			Src:    entry.Src,
			Local:  !isRemoteSrc(entry.Src),
			Format: "mp3",
		})
	}
	return tracks, nil
}

// ValidateEntry checks that a playlist entry has a non-empty display name
// and a resolvable src: either an absolute http(s) URL or a filename that
// follows the folder convention.
func ValidateEntry(entry types.PlaylistEntry) error {
	if strings.TrimSpace(entry.Name) == "" {
		return fmt.Errorf("display name is required")
	}
	if strings.TrimSpace(entry.Src) == "" {
		return fmt.Errorf("src is required")
	}

	if isRemoteSrc(entry.Src) {
		u, err := url.Parse(entry.Src)
		if err != nil || u.Host == "" {
			return fmt.Errorf("src %q is not a valid URL", entry.Src)
		}
		return nil
	}

	if v := CheckNaming(entry.Src); v != nil {
		return fmt.Errorf("src %q: %s", entry.Src, v.Reason)
	}
	return nil
}

func isRemoteSrc(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
