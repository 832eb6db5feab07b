package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dhowden/tag"

	"github.com/goblin987/legendary-meme/types"
)

// RequiredFiles are the filenames the shop expects in the music folder, in
// playback order. The first one is the mandatory autoplay track.
var RequiredFiles = []string{
	"big_poppa.mp3",
	"notorious_thugs.mp3",
	"juice.mp3",
	"party_and_bullshit.mp3",
	"hypnotize.mp3",
}

// conventionRe matches the folder naming convention: lowercase letters,
// digits and underscores, .mp3 extension.
var conventionRe = regexp.MustCompile(`^[a-z0-9_]+\.mp3$`)

// LibraryService interface defines methods for music folder management
type LibraryService interface {
	ScanTracks(musicDir string) ([]types.Track, error)
	Report(musicDir string) (*types.LibraryReport, error)
	ExtractMetadata(filePath string) *types.TrackMetadata
	ValidateFilePath(path string) error
	GetContentType(filePath string) string
}

// libraryService implements the LibraryService interface
type libraryService struct {
	encoding EncodingService
}

// NewLibraryService creates a new library service
func NewLibraryService(encoding EncodingService) LibraryService {
	return &libraryService{encoding: encoding}
}

// ScanTracks walks the music folder and returns its playable tracks in shop
// order: the required filenames first (those that exist), then any other
// mp3 files sorted by path.
func (ls *libraryService) ScanTracks(musicDir string) ([]types.Track, error) {
	found := make(map[string]types.Track)
	var extras []string

	err := filepath.Walk(musicDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Printf("Error accessing path %s: %v", path, err)
			return nil // keep walking, a bad entry must not kill the scan
		}

		if info.IsDir() || strings.ToLower(filepath.Ext(path)) != ".mp3" {
			return nil
		}

		relativePath, err := filepath.Rel(musicDir, path)
		if err != nil {
			relativePath = path
		}
		relativePath = filepath.ToSlash(relativePath)

		metadata := ls.ExtractMetadata(path)
		found[relativePath] = types.Track{
			Name:     displayName(info.Name(), metadata),
			Src:      relativePath,
			Local:    true,
			Size:     info.Size(),
			Format:   "mp3",
			Metadata: metadata,
		}

		if !isRequiredFile(relativePath) {
			extras = append(extras, relativePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan music folder: %w", err)
	}

	sort.Strings(extras)

	tracks := make([]types.Track, 0, len(found))
	for _, name := range RequiredFiles {
		if track, ok := found[name]; ok {
			tracks = append(tracks, track)
		}
	}
	for _, name := range extras {
		tracks = append(tracks, found[name])
	}

	return tracks, nil
}

// Report builds the advisory report for the music folder: missing required
// files, naming convention violations, and encoding advisories.
func (ls *libraryService) Report(musicDir string) (*types.LibraryReport, error) {
	report := &types.LibraryReport{MusicDir: musicDir}

	entries, err := os.ReadDir(musicDir)
	if err != nil {
		if os.IsNotExist(err) {
			// An absent folder just means every required file is missing
			entries = nil
		} else {
			return nil, fmt.Errorf("failed to read music folder: %w", err)
		}
	}

	present := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		present[name] = true

		if strings.ToLower(filepath.Ext(name)) != ".mp3" {
			continue
		}

		if v := CheckNaming(name); v != nil {
			report.Violations = append(report.Violations, *v)
		}

		if ls.encoding != nil {
			advisory := ls.encoding.Advisory(filepath.Join(musicDir, name))
			if advisory != nil {
				report.Encoding = append(report.Encoding, *advisory)
			}
		}
	}

	for _, name := range RequiredFiles {
		status := types.RequiredFileStatus{Filename: name, Present: present[name]}
		if !status.Present {
			report.Missing++
		}
		report.Required = append(report.Required, status)
	}

	return report, nil
}

// CheckNaming validates a filename against the folder convention. Returns
// nil when the name conforms.
func CheckNaming(filename string) *types.NamingViolation {
	if conventionRe.MatchString(filename) {
		return nil
	}

	violation := &types.NamingViolation{
		Filename: filename,
		Expected: NormalizeFilename(strings.TrimSuffix(filename, filepath.Ext(filename))),
	}

	switch {
	case strings.ToLower(filepath.Ext(filename)) != ".mp3":
		violation.Reason = "extension must be .mp3"
	case strings.ContainsAny(filename, " "):
		violation.Reason = "spaces must be replaced with underscores"
	case filename != strings.ToLower(filename):
		violation.Reason = "filename must be lowercase"
	default:
		violation.Reason = "only lowercase letters, digits and underscores are allowed"
	}

	return violation
}

// NormalizeFilename converts a display name or arbitrary filename to the
// folder convention: lowercase, underscores for spaces, .mp3 extension.
func NormalizeFilename(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")

	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}

	normalized := b.String()
	if normalized == "" {
		normalized = "track"
	}
	return normalized + ".mp3"
}

// ExtractMetadata extracts tag metadata from an audio file with filename
// fallback for files without usable tags.
func (ls *libraryService) ExtractMetadata(filePath string) *types.TrackMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		log.Printf("Warning: Could not open audio file %s: %v", filePath, err)
		return &types.TrackMetadata{Title: titleFromFilename(filepath.Base(filePath))}
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		return &types.TrackMetadata{Title: titleFromFilename(filepath.Base(filePath))}
	}

	metadata := &types.TrackMetadata{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
	}
	track, _ := meta.Track()
	metadata.TrackNumber = track

	if metadata.Title == "" {
		metadata.Title = titleFromFilename(filepath.Base(filePath))
	}

	return metadata
}

// displayName picks the UI label for a track: tag title when available,
// otherwise the prettified filename.
func displayName(filename string, metadata *types.TrackMetadata) string {
	if metadata != nil && metadata.Title != "" {
		return metadata.Title
	}
	return titleFromFilename(filename)
}

// titleFromFilename turns "big_poppa.mp3" into "Big Poppa"
func titleFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == ' '
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// GetContentType returns the appropriate MIME type for an audio file
func (ls *libraryService) GetContentType(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	default:
		return "application/octet-stream"
	}
}

// ValidateFilePath checks for path traversal attempts and other security issues
func (ls *libraryService) ValidateFilePath(path string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("absolute paths not allowed")
	}

	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty path not allowed")
	}

	return nil
}

// isRequiredFile reports whether the relative path is one of the expected
// shop filenames.
func isRequiredFile(relativePath string) bool {
	for _, name := range RequiredFiles {
		if relativePath == name {
			return true
		}
	}
	return false
}
