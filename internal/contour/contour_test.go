package contour

import (
	"image"
	"testing"

	"blobscope/internal/binimg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() *binimg.Image {
	return binimg.MustFromRows(
		".....",
		".###.",
		".###.",
		".###.",
		".....",
	)
}

func TestMoore_Square(t *testing.T) {
	pts := Moore{}.Trace(square())
	assert.Equal(t, []image.Point{
		{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 1, Y: 3},
		{X: 2, Y: 3}, {X: 3, Y: 3},
		{X: 3, Y: 2}, {X: 3, Y: 1},
		{X: 2, Y: 1},
	}, pts)
}

func TestMoore_Sizes(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want int
	}{
		{name: "empty", rows: []string{"...", "..."}, want: 0},
		{name: "single pixel", rows: []string{"...", ".#.", "..."}, want: 1},
		{name: "two pixel line", rows: []string{"##"}, want: 2},
		{name: "horizontal line", rows: []string{"#####"}, want: 8},
		{name: "vertical line", rows: []string{"#", "#", "#", "#"}, want: 6},
		{name: "diagonal line", rows: []string{"#..", ".#.", "..#"}, want: 4},
		{name: "filled 4x4 block", rows: []string{"####", "####", "####", "####"}, want: 12},
		{name: "only first region", rows: []string{"#.##"}, want: 1},
		{name: "ring", rows: []string{"###", "#.#", "###"}, want: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := Moore{}.Trace(binimg.MustFromRows(tt.rows...))
			assert.Len(t, pts, tt.want)
		})
	}
}

func TestMoore_ContourPixelsAreForeground(t *testing.T) {
	img := binimg.MustFromRows(
		"..####..",
		".######.",
		"########",
		"###..###",
		"##....##",
	)
	pts := Moore{}.Trace(img)
	require.NotEmpty(t, pts)
	for i, p := range pts {
		assert.True(t, img.IsForeground(p.X, p.Y), "point %d %v", i, p)
		next := pts[(i+1)%len(pts)]
		dx, dy := next.X-p.X, next.Y-p.Y
		assert.True(t, dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1, "gap between %v and %v", p, next)
	}
	assert.Equal(t, image.Point{X: 2, Y: 0}, pts[0])
}

func TestChainCode_Square(t *testing.T) {
	code, ok := ChainCode(square())
	require.True(t, ok)
	assert.Equal(t, image.Point{X: 1, Y: 1}, code.Start)
	assert.Equal(t, []Direction{South, South, East, East, North, North, West, West}, code.Directions)
	assert.Equal(t, 8, code.Len())
	assert.Equal(t, "66002244", code.String())
}

func TestChainCode_Empty(t *testing.T) {
	_, ok := ChainCode(binimg.MustFromRows(".."))
	assert.False(t, ok)
}

func TestDerivative(t *testing.T) {
	code, ok := ChainCode(square())
	require.True(t, ok)
	d := code.Derivative()
	assert.Equal(t, []Direction{0, 2, 0, 2, 0, 2, 0, 2}, d.Directions)

	assert.Empty(t, Code{Directions: []Direction{East}}.Derivative().Directions)
	assert.Equal(t, []Direction{4, 4}, Code{Directions: []Direction{East, West}}.Derivative().Directions)
}

func TestDerivative_RotationInvariant(t *testing.T) {
	code, ok := ChainCode(square())
	require.True(t, ok)

	rotated := Code{Start: code.Start}
	for _, d := range code.Directions {
		rotated.Directions = append(rotated.Directions, (d+2)%8)
	}
	assert.Equal(t, code.Derivative().Directions, rotated.Derivative().Directions)
}

func TestReconstruct(t *testing.T) {
	img := square()
	code, ok := ChainCode(img)
	require.True(t, ok)

	out, err := code.Reconstruct(img.Width, img.Height)
	require.NoError(t, err)
	assert.Equal(t, ".....\n.###.\n.#.#.\n.###.\n.....\n", out.String())

	for _, p := range code.Points() {
		assert.True(t, out.IsForeground(p.X, p.Y))
	}
}

func TestReconstruct_ClipsOutside(t *testing.T) {
	code := Code{Start: image.Point{X: 1, Y: 0}, Directions: []Direction{East, East, East}}
	out, err := code.Reconstruct(3, 1)
	require.NoError(t, err)
	assert.Equal(t, ".##\n", out.String())

	_, err = code.Reconstruct(0, 1)
	assert.ErrorIs(t, err, binimg.ErrInvalidInput)
}

func TestParseCode(t *testing.T) {
	code, err := ParseCode("1 1 8\n6 6 0 0 2 2 4 4\n")
	require.NoError(t, err)
	assert.Equal(t, image.Point{X: 1, Y: 1}, code.Start)
	assert.Equal(t, "66002244", code.String())

	out, err := code.Reconstruct(5, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, out.ForegroundCount())
}

func TestParseCode_Errors(t *testing.T) {
	_, err := ParseCode("1 2")
	assert.Error(t, err)

	_, err = ParseCode("1 x 3 0")
	assert.Error(t, err)

	_, err = ParseCode("0 0 2 0 z")
	assert.Error(t, err)

	code, err := ParseCode("0 0 3 0 9 4")
	require.NoError(t, err)
	assert.Equal(t, []Direction{East, West}, code.Directions)
}

func TestCode_TextRoundTrip(t *testing.T) {
	code, ok := ChainCode(square())
	require.True(t, ok)

	text, err := code.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1 1 8\n6 6 0 0 2 2 4 4\n", string(text))

	back, err := ParseCode(string(text))
	require.NoError(t, err)
	assert.Equal(t, code, back)
}

func TestCode_Bounds(t *testing.T) {
	code, err := ParseCode("1 1 8 6 6 0 0 2 2 4 4")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(1, 1, 4, 4), code.Bounds())

	assert.Equal(t, image.Rect(2, 3, 3, 4), Code{Start: image.Point{X: 2, Y: 3}}.Bounds())
}

func TestCode_StringGroups(t *testing.T) {
	dirs := make([]Direction, 55)
	code := Code{Directions: dirs}
	want := "0000000000 0000000000 0000000000 0000000000 0000000000\n00000"
	assert.Equal(t, want, code.String())
}
