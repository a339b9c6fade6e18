package imageio

import (
	"os"
	"path/filepath"
	"testing"

	"blobscope/internal/binimg"
	"blobscope/internal/labeling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryRoundTrip(t *testing.T) {
	img := binimg.MustFromRows(
		"#..#",
		".##.",
		"#..#",
	)
	for _, ext := range []string{".bmp", ".png", ".tif"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "in"+ext)
			require.NoError(t, Save(path, img.Gray()))

			back, err := LoadBinary(path, binimg.DefaultThreshold)
			require.NoError(t, err)
			assert.Equal(t, img.String(), back.String())
		})
	}
}

func TestLabelMapRoundTrip(t *testing.T) {
	m, err := (&labeling.BFS{}).Label(binimg.MustFromRows(
		"#.#.#",
		"#.#.#",
	))
	require.NoError(t, err)

	for _, ext := range []string{".bmp", ".png"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "labels"+ext)
			require.NoError(t, SaveLabelMap(path, m))

			back, err := LoadLabelMap(path)
			require.NoError(t, err)
			assert.Equal(t, m, back)
		})
	}
}

func TestSaveLabelMap_WideLabels(t *testing.T) {
	m := labeling.NewLabelMap(2, 1)
	m.Set(1, 0, 300)

	dir := t.TempDir()
	err := SaveLabelMap(filepath.Join(dir, "labels.bmp"), m)
	assert.ErrorIs(t, err, labeling.ErrCapacityExceeded)

	path := filepath.Join(dir, "labels.png")
	require.NoError(t, SaveLabelMap(path, m))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	back, err := LoadLabelMap(path)
	require.NoError(t, err)
	assert.Equal(t, m, back)
}

func TestSave_UnsupportedFormat(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "out.gif"), binimg.MustFromRows("#").Gray())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_Missing(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	_, err = LoadBinary(path, binimg.DefaultThreshold)
	assert.Error(t, err)
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("a/b/scan.BMP"))
	assert.True(t, IsSupportedFormat("scan.tiff"))
	assert.False(t, IsSupportedFormat("scan.gif"))
	assert.False(t, IsSupportedFormat("scan"))
}
