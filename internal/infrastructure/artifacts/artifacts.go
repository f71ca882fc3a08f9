// Package artifacts names and writes the files a run leaves behind:
// screenshots, their thumbnails, and trace archives.
package artifacts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	DefaultScreenshotDir = "screenshots/"
	DefaultVideoDir      = "test-videos/"
	DefaultTraceDir      = "test-traces/"

	maxNameLen = 120
)

// Sanitize maps s onto [A-Za-z0-9_-], replacing everything else with '_'.
// Subtest separators become '_' too, so "TestA/case_1" stays one path
// element. An empty result is replaced by fallback.
func Sanitize(s, fallback string) string {
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "_")
	if s == "" {
		return fallback
	}
	if len(s) > maxNameLen {
		s = strings.TrimRight(s[:maxNameLen], "_")
	}
	return s
}

// ScreenshotPath is {dir}/{testName}_{label}.png.
func ScreenshotPath(dir, testName, label string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.png", Sanitize(testName, "test"), Sanitize(label, "screenshot")))
}

func TracePath(dir, testName string) string {
	return filepath.Join(dir, Sanitize(testName, "test")+".zip")
}

// WriteFile creates the parent directory on demand and overwrites any file
// already at path.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

// ThumbnailPath is the sibling file a thumbnail of path is written to.
func ThumbnailPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".thumb.png"
}

// WriteThumbnail decodes a PNG or JPEG screenshot and writes a copy scaled
// down to width (aspect ratio kept) next to path. Images already narrower
// than width are written unscaled.
func WriteThumbnail(path string, data []byte, width int) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode screenshot: %w", err)
	}

	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	thumb := ThumbnailPath(path)
	if err := imaging.Save(img, thumb); err != nil {
		return "", fmt.Errorf("save thumbnail: %w", err)
	}
	return thumb, nil
}
