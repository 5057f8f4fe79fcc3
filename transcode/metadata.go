package transcode

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// Metadata holds the tag fields shown next to extracted notes
type Metadata struct {
	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Album    string `json:"album,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Year     int    `json:"year,omitempty"`
	Format   string `json:"format,omitempty"`    // Tag format, e.g. ID3v2.4
	FileType string `json:"file_type,omitempty"` // Container, e.g. MP3, FLAC
}

// ReadMetadata reads embedded tags (ID3, MP4, FLAC, OGG) from a file
func ReadMetadata(filename string) (*Metadata, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	return &Metadata{
		Title:    m.Title(),
		Artist:   m.Artist(),
		Album:    m.Album(),
		Genre:    m.Genre(),
		Year:     m.Year(),
		Format:   string(m.Format()),
		FileType: string(m.FileType()),
	}, nil
}
