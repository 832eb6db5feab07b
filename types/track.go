package types

// Track represents one entry of the shop playlist. Src is either a filename
// inside the music folder or an absolute http(s) URL.
type Track struct {
	Name     string         `json:"name"`
	Src      string         `json:"src"`
	Local    bool           `json:"local"`
	Size     int64          `json:"size,omitempty"`
	Format   string         `json:"format,omitempty"`
	Metadata *TrackMetadata `json:"metadata,omitempty"`
}

// TrackMetadata represents tag metadata for a local audio file
type TrackMetadata struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	TrackNumber int    `json:"trackNumber,omitempty"`
}

// PlaylistEntry is the hand-editable {name, src} pair accepted by the
// settings file as an alternative to local files.
type PlaylistEntry struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// RequiredFileStatus reports presence of one of the expected filenames
type RequiredFileStatus struct {
	Filename string `json:"filename"`
	Present  bool   `json:"present"`
}

// NamingViolation reports a file that breaks the folder naming convention
// (lowercase, underscores instead of spaces, .mp3 extension)
type NamingViolation struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
	Expected string `json:"expected,omitempty"`
}

// EncodingAdvisory reports a local file whose encoding falls outside the
// recommended envelope. Advisory only, never enforced.
type EncodingAdvisory struct {
	Filename string   `json:"filename"`
	Issues   []string `json:"issues"`
}

// EncodingInfo holds the measured encoding parameters of a local MP3
type EncodingInfo struct {
	SampleRate  int     `json:"sampleRate"`  // Hz
	Channels    int     `json:"channels"`    // 1 = mono, 2 = stereo
	BitrateKbps int     `json:"bitrateKbps"` // average, derived from size/duration
	Duration    float64 `json:"duration"`    // seconds
}

// LibraryReport is the full advisory report for the music folder
type LibraryReport struct {
	MusicDir   string               `json:"musicDir"`
	Required   []RequiredFileStatus `json:"required"`
	Missing    int                  `json:"missing"`
	Violations []NamingViolation    `json:"violations"`
	Encoding   []EncodingAdvisory   `json:"encoding"`
}
