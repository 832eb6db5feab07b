package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/goblin987/legendary-meme/types"
)

// Recommended encoding envelope for shop tracks. Files outside it still
// play; the report only flags them.
const (
	MinBitrateKbps         = 128
	MaxBitrateKbps         = 320
	RecommendedBitrateKbps = 192
	RecommendedSampleRate  = 44100
	RecommendedChannels    = 2
)

// EncodingService probes local MP3 files and reports advisories against the
// recommended encoding parameters.
type EncodingService interface {
	Probe(filePath string) (*types.EncodingInfo, error)
	Advisory(filePath string) *types.EncodingAdvisory
}

type encodingService struct{}

// NewEncodingService creates a new encoding service
func NewEncodingService() EncodingService {
	return &encodingService{}
}

// Probe decodes enough of the file to measure sample rate, duration,
// average bitrate, and channel mode.
func (es *encodingService) Probe(filePath string) (*types.EncodingInfo, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	channels, err := readChannelMode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}

	info := &types.EncodingInfo{
		SampleRate: decoder.SampleRate(),
		Channels:   channels,
	}

	// Length is decoded PCM size: 16-bit stereo output, 4 bytes per sample
	if decoder.SampleRate() > 0 && decoder.Length() > 0 {
		info.Duration = float64(decoder.Length()) / float64(decoder.SampleRate()*4)
	}
	if info.Duration > 0 {
		info.BitrateKbps = int(float64(stat.Size()*8) / info.Duration / 1000)
	}

	return info, nil
}

// Advisory probes a file and returns its issues against the recommended
// envelope, or nil when the file conforms. Probe failures are reported as a
// single "could not probe" issue rather than an error: the recommendations
// are advisory, not enforced.
func (es *encodingService) Advisory(filePath string) *types.EncodingAdvisory {
	info, err := es.Probe(filePath)
	if err != nil {
		return &types.EncodingAdvisory{
			Filename: filepath.Base(filePath),
			Issues:   []string{fmt.Sprintf("could not probe encoding: %v", err)},
		}
	}

	issues := CheckEncoding(info)
	if len(issues) == 0 {
		return nil
	}

	return &types.EncodingAdvisory{Filename: filepath.Base(filePath), Issues: issues}
}

// CheckEncoding compares measured parameters against the recommended
// envelope and returns the list of human-readable issues.
func CheckEncoding(info *types.EncodingInfo) []string {
	var issues []string

	if info.BitrateKbps > 0 && info.BitrateKbps < MinBitrateKbps {
		issues = append(issues, fmt.Sprintf("bitrate %d kbps below recommended minimum %d kbps", info.BitrateKbps, MinBitrateKbps))
	}
	if info.BitrateKbps > MaxBitrateKbps {
		issues = append(issues, fmt.Sprintf("bitrate %d kbps above recommended maximum %d kbps", info.BitrateKbps, MaxBitrateKbps))
	}
	if info.SampleRate != 0 && info.SampleRate != RecommendedSampleRate {
		issues = append(issues, fmt.Sprintf("sample rate %d Hz, recommended %d Hz", info.SampleRate, RecommendedSampleRate))
	}
	if info.Channels != 0 && info.Channels != RecommendedChannels {
		issues = append(issues, "mono audio, stereo recommended")
	}

	return issues
}

// readChannelMode locates the first MPEG frame header and returns the
// channel count. go-mp3 upmixes everything to stereo on decode, so the
// channel mode has to come from the raw header.
func readChannelMode(r io.ReadSeeker) (int, error) {
	if err := skipID3(r); err != nil {
		return 0, err
	}

	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}

	// Scan forward for the 11-bit frame sync
	for i := 0; i < 1<<16; i++ {
		if buf[0] == 0xFF && buf[1]&0xE0 == 0xE0 {
			mode := buf[3] >> 6
			if mode == 3 { // single channel
				return 1, nil
			}
			return 2, nil
		}
		copy(buf, buf[1:])
		if _, err := io.ReadFull(r, buf[3:]); err != nil {
			return 0, err
		}
	}

	return 0, fmt.Errorf("no MPEG frame sync found")
}

// skipID3 advances past an ID3v2 header when present
func skipID3(r io.ReadSeeker) error {
	header := make([]byte, 10)
	if _, err := io.ReadFull(r, header); err != nil {
		return err
	}

	if string(header[:3]) != "ID3" {
		_, err := r.Seek(0, io.SeekStart)
		return err
	}

	// Tag size is a 28-bit syncsafe integer
	size := uint32(header[6]&0x7F)<<21 | uint32(header[7]&0x7F)<<14 |
		uint32(header[8]&0x7F)<<7 | uint32(header[9]&0x7F)

	_, err := r.Seek(int64(size), io.SeekCurrent)
	return err
}
