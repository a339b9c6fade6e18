// Package imageio loads and saves binary images, label maps and renders.
package imageio

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"blobscope/internal/binimg"
	"blobscope/internal/labeling"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Load decodes the image at path. BMP, PNG, JPEG and TIFF are recognized.
func Load(path string) (image.Image, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image %s: %w", filepath.Base(path), err)
	}
	return img, format, nil
}

// LoadBinary decodes the image at path and thresholds it: luma below
// threshold becomes foreground (0), the rest background (255).
func LoadBinary(path string, threshold uint8) (*binimg.Image, error) {
	img, _, err := Load(path)
	if err != nil {
		return nil, err
	}
	bin, err := binimg.FromImage(img, threshold)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return bin, nil
}

// LoadLabelMap decodes a label image written by SaveLabelMap. 16-bit gray
// images keep their full label range.
func LoadLabelMap(path string) (*labeling.LabelMap, error) {
	img, _, err := Load(path)
	if err != nil {
		return nil, err
	}
	if g16, ok := img.(*image.Gray16); ok {
		b := g16.Bounds()
		m := labeling.NewLabelMap(b.Dx(), b.Dy())
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				m.Set(x, y, int(g16.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
		return m, nil
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		b := img.Bounds()
		gray = image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				gray.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	}
	return labeling.FromGray(gray), nil
}

// Save encodes img to path, choosing the encoder from the file extension.
func Save(path string, img image.Image) error {
	encode, err := encoderFor(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}

// SaveLabelMap writes m as an 8-bit gray image. Maps with more than 255
// labels are written 16-bit when the format allows it (PNG, TIFF) and fail
// with labeling.ErrCapacityExceeded otherwise.
func SaveLabelMap(path string, m *labeling.LabelMap) error {
	gray, err := m.ToGray()
	if err == nil {
		return Save(path, gray)
	}
	switch formatOf(path) {
	case ".png", ".tif", ".tiff":
		gray16, err16 := m.ToGray16()
		if err16 != nil {
			return err16
		}
		return Save(path, gray16)
	}
	return err
}

type encodeFunc func(w io.Writer, img image.Image) error

func encoderFor(path string) (encodeFunc, error) {
	switch formatOf(path) {
	case ".bmp":
		return func(w io.Writer, img image.Image) error { return bmp.Encode(w, img) }, nil
	case ".png":
		return func(w io.Writer, img image.Image) error { return png.Encode(w, img) }, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
		}, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error { return tiff.Encode(w, img, nil) }, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

func formatOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".bmp", ".png", ".tiff", ".tif", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := formatOf(path)
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
