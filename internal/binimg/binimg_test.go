package binimg

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsEmptySize(t *testing.T) {
	for _, size := range [][2]int{{0, 1}, {1, 0}, {-3, 4}} {
		_, err := New(size[0], size[1])
		assert.ErrorIs(t, err, ErrInvalidInput, "size %v", size)
	}
}

func TestNew_FilledWithBackground(t *testing.T) {
	img, err := New(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, img.ForegroundCount())
	for _, v := range img.Pix {
		assert.Equal(t, Background, v)
	}
}

func TestFromRows(t *testing.T) {
	img, err := FromRows(
		"#..",
		".X1",
	)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.True(t, img.IsForeground(0, 0))
	assert.False(t, img.IsForeground(1, 0))
	assert.True(t, img.IsForeground(1, 1))
	assert.True(t, img.IsForeground(2, 1))
	assert.Equal(t, 3, img.ForegroundCount())
	assert.Equal(t, "#..\n.##\n", img.String())
}

func TestFromRows_Ragged(t *testing.T) {
	_, err := FromRows("##", "#")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = FromRows()
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFromRows_NonASCII(t *testing.T) {
	_, err := FromRows("é#", "###")
	assert.ErrorIs(t, err, ErrInvalidInput)

	img, err := FromRows("..#", "#..")
	require.NoError(t, err)
	assert.True(t, img.IsForeground(2, 0))
	assert.True(t, img.IsForeground(0, 1))
}

func TestIsForeground_OutOfBounds(t *testing.T) {
	img := MustFromRows("#")
	assert.False(t, img.IsForeground(-1, 0))
	assert.False(t, img.IsForeground(0, 1))
	assert.False(t, img.IsForeground(1, 0))
}

func TestFromImage_Threshold(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 1))
	src.SetGray(0, 0, color.Gray{Y: 0})
	src.SetGray(1, 0, color.Gray{Y: 127})
	src.SetGray(2, 0, color.Gray{Y: 128})
	src.SetGray(3, 0, color.Gray{Y: 255})

	img, err := FromImage(src, DefaultThreshold)
	require.NoError(t, err)
	assert.Equal(t, []uint8{Foreground, Foreground, Background, Background}, img.Pix)
}

func TestFromImage_OffsetBounds(t *testing.T) {
	src := image.NewGray(image.Rect(10, 20, 12, 21))
	src.SetGray(11, 20, color.Gray{Y: 0})
	src.SetGray(10, 20, color.Gray{Y: 255})

	img, err := FromImage(src, DefaultThreshold)
	require.NoError(t, err)
	assert.False(t, img.IsForeground(0, 0))
	assert.True(t, img.IsForeground(1, 0))
}

func TestGrayRoundTrip(t *testing.T) {
	img := MustFromRows(
		"#.#",
		"..#",
	)
	back, err := FromGray(img.Gray())
	require.NoError(t, err)
	assert.Equal(t, img, back)
}

func TestValidate(t *testing.T) {
	var nilImg *Image
	assert.ErrorIs(t, nilImg.Validate(), ErrInvalidInput)

	bad := &Image{Width: 2, Height: 2, Pix: make([]uint8, 3)}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidInput)

	assert.NoError(t, MustFromRows("#").Validate())
}
