//go:build opencv

package cvbridge

import (
	"path/filepath"
	"testing"

	"blobscope/internal/binimg"
	"blobscope/internal/contour"
	"blobscope/internal/labeling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracer_MatchesMooreLength(t *testing.T) {
	fixtures := map[string][]string{
		"square": {".....", ".###.", ".###.", ".###.", "....."},
		"pixel":  {"...", ".#.", "..."},
		"line":   {".......", ".#####.", "......."},
		"blob": {
			"..####..",
			".######.",
			"########",
			"###..###",
			"##....##",
		},
	}
	for name, rows := range fixtures {
		t.Run(name, func(t *testing.T) {
			img := binimg.MustFromRows(rows...)
			cv := Tracer{}.Trace(img)
			moore := contour.Moore{}.Trace(img)
			assert.Len(t, cv, len(moore))
			for _, p := range cv {
				assert.True(t, img.IsForeground(p.X, p.Y), "%v", p)
			}
		})
	}
}

func TestTracer_Empty(t *testing.T) {
	assert.Empty(t, Tracer{}.Trace(binimg.MustFromRows("...")))
}

func TestObjectMatRoundTrip(t *testing.T) {
	img := binimg.MustFromRows(
		"#..#",
		".##.",
	)
	m, err := ObjectMat(img)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, uint8(255), m.GetUCharAt(0, 0))
	assert.Equal(t, uint8(0), m.GetUCharAt(0, 1))

	// Object pixels are bright in OpenCV polarity, so threshold above them.
	back, err := BinaryFromMat(m, 1)
	require.NoError(t, err)
	assert.Equal(t, ".##.\n#..#\n", back.String())
}

func TestWriteAndReadLabels(t *testing.T) {
	lm, err := (&labeling.BFS{}).Label(binimg.MustFromRows("#.#"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "labels.png")
	require.NoError(t, WriteLabels(path, lm))

	bin, err := ReadBinary(path, 1)
	require.NoError(t, err)
	// Label 0 reads as foreground below threshold 1; labels 1 and 2 do not.
	assert.Equal(t, ".#.\n", bin.String())
}
