package sky

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
)

// Image formats understood by Encode.
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// FormatFromPath picks an image format from the file extension.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	default:
		return "", fmt.Errorf("unsupported image extension %q (want .png or .bmp)", ext)
	}
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// Output decides where rendered images go.
type Output struct {
	outputDir string
	prefix    string
}

// NewOutput creates an output handler writing prefix_<timestamp> files
// into outputDir.
func NewOutput(outputDir, prefix string) *Output {
	return &Output{
		outputDir: outputDir,
		prefix:    prefix,
	}
}

// GenerateFilename generates a timestamped PNG filename without saving.
func (o *Output) GenerateFilename() string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.png", o.prefix, timestamp)
	if o.outputDir != "" {
		filename = filepath.Join(o.outputDir, filename)
	}
	return filename
}

// Save writes img to path, or to a generated filename when path is empty.
// It returns the path written.
func (o *Output) Save(img image.Image, path string) (string, error) {
	if path == "" {
		path = o.GenerateFilename()
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return "", err
	}

	// Create output directory if needed
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := Encode(file, img, format); err != nil {
		return "", fmt.Errorf("encoding %s: %w", strings.ToUpper(format), err)
	}
	return path, nil
}
