//go:build linux

package mpris

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/nfnt/resize"

	"github.com/mrenaud/cadence/internal/catalog"
)

// coverMaxSize bounds the exported cover dimension in pixels; desktop
// applets only render small thumbnails.
const coverMaxSize = 256

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// coverPath resolves art for a track: embedded tag art is exported to
// the cache directory, otherwise the track's directory is scanned for
// conventional cover files.
func coverPath(track *catalog.Track) string {
	if track.Metadata != nil && len(track.Metadata.Art) > 0 {
		if path, err := ExportCover(track.ID, track.Metadata.Art); err == nil {
			return path
		}
	}
	if track.Handle != "" {
		return FindAlbumArt(track.Handle)
	}
	return ""
}

// ExportCover writes embedded art to a cached PNG, downscaled to at
// most coverMaxSize pixels, and returns its path. The file is reused
// on subsequent calls for the same track.
func ExportCover(trackID string, art []byte) (string, error) {
	path, err := xdg.CacheFile(filepath.Join("cadence", "covers", trackID+".png"))
	if err != nil {
		return "", fmt.Errorf("resolve cover cache path: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	img, _, err := image.Decode(bytes.NewReader(art))
	if err != nil {
		return "", fmt.Errorf("decode embedded art: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > coverMaxSize || bounds.Dy() > coverMaxSize {
		img = resize.Thumbnail(coverMaxSize, coverMaxSize, img, resize.Lanczos3)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create cover file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encode cover: %w", err)
	}
	return path, nil
}

// FindAlbumArt looks for album art in the same directory as the track.
// Returns the path to the art file, or empty string if not found.
func FindAlbumArt(trackPath string) string {
	dir := filepath.Dir(trackPath)
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
