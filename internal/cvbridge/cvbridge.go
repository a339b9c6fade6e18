// Package cvbridge connects binary images and label maps to OpenCV.
package cvbridge

import (
	"fmt"
	"image"

	"blobscope/internal/binimg"
	"blobscope/internal/labeling"

	"gocv.io/x/gocv"
)

// Tracer extracts contours with gocv.FindContours. It satisfies
// contour.Tracer and returns the same point sequence length as
// contour.Moore for a single region.
type Tracer struct{}

// Trace returns the longest external contour of the mask, or nil when the
// mask has no foreground.
func (Tracer) Trace(mask *binimg.Image) []image.Point {
	m, err := ObjectMat(mask)
	if err != nil {
		return nil
	}
	defer m.Close()

	contours := gocv.FindContours(m, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	var best []image.Point
	for i := 0; i < contours.Size(); i++ {
		pts := contours.At(i).ToPoints()
		if len(pts) > len(best) {
			best = pts
		}
	}
	return best
}

// ObjectMat converts a binary image into an 8-bit Mat with OpenCV polarity:
// object pixels 255, background 0. The caller must Close it.
func ObjectMat(img *binimg.Image) (gocv.Mat, error) {
	if err := img.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	data := make([]byte, len(img.Pix))
	for i, v := range img.Pix {
		if v == binimg.Foreground {
			data[i] = 255
		}
	}
	return gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC1, data)
}

// BinaryFromMat converts a single-channel 8-bit Mat into a binary image.
// Pixels below threshold become foreground.
func BinaryFromMat(m gocv.Mat, threshold uint8) (*binimg.Image, error) {
	if m.Empty() {
		return nil, fmt.Errorf("%w: empty mat", binimg.ErrInvalidInput)
	}
	if m.Type() != gocv.MatTypeCV8UC1 {
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(m, &gray, gocv.ColorBGRToGray)
		m = gray
	}

	img, err := binimg.New(m.Cols(), m.Rows())
	if err != nil {
		return nil, err
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if m.GetUCharAt(y, x) < threshold {
				img.SetForeground(x, y)
			}
		}
	}
	return img, nil
}

// LabelMat exports a label map as an 8-bit Mat. Maps holding more than 255
// labels fail with labeling.ErrCapacityExceeded. The caller must Close it.
func LabelMat(m *labeling.LabelMap) (gocv.Mat, error) {
	g, err := m.ToGray()
	if err != nil {
		return gocv.NewMat(), err
	}
	return gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8UC1, g.Pix)
}

// ReadBinary loads an image file through OpenCV and thresholds it.
func ReadBinary(path string, threshold uint8) (*binimg.Image, error) {
	m := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer m.Close()
	if m.Empty() {
		return nil, fmt.Errorf("failed to read image: %s", path)
	}
	return BinaryFromMat(m, threshold)
}

// WriteLabels saves a label map through OpenCV, format chosen by extension.
func WriteLabels(path string, m *labeling.LabelMap) error {
	mat, err := LabelMat(m)
	if err != nil {
		return err
	}
	defer mat.Close()
	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("failed to write image: %s", path)
	}
	return nil
}
