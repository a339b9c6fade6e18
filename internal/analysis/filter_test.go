package analysis

import (
	"image"
	"testing"

	"blobscope/internal/contour"
	"blobscope/pkg/colorutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Label 1: 3x3 square (area 9, phi 0). Label 2: vertical bar (area 5,
// phi 90). Label 3: horizontal bar (area 6, phi 0).
var filterFixture = []string{
	"###.#.",
	"###.#.",
	"###.#.",
	"....#.",
	"....#.",
	"......",
	"######",
}

func TestCriteria_Accepts(t *testing.T) {
	c := Criteria{AreaThreshold: 10, PhiLow: 30, PhiHigh: 60}
	tests := []struct {
		name  string
		props Properties
		want  bool
	}{
		{name: "inside", props: Properties{Area: 5, Orientation: 45}, want: true},
		{name: "area at threshold", props: Properties{Area: 10, Orientation: 45}, want: false},
		{name: "phi at low bound", props: Properties{Area: 1, Orientation: 30}, want: true},
		{name: "phi at high bound", props: Properties{Area: 1, Orientation: 60}, want: true},
		{name: "phi below", props: Properties{Area: 1, Orientation: 29.9}, want: false},
		{name: "negative phi normalized", props: Properties{Area: 1, Orientation: -135}, want: true},
		{name: "negative phi outside", props: Properties{Area: 1, Orientation: -45}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Accepts(tt.props))
		})
	}
}

func TestFilter(t *testing.T) {
	m := label(t, filterFixture...)
	require.Equal(t, 3, m.MaxLabel())

	out, decisions, err := Filter(m, Criteria{AreaThreshold: 8, PhiLow: 0, PhiHigh: 45}, contour.Moore{})
	require.NoError(t, err)

	require.Len(t, decisions, 3)
	assert.Equal(t, Decision{Label: 1, Area: 9, Phi: 0, Kept: false}, decisions[0])
	assert.Equal(t, 2, decisions[1].Label)
	assert.InDelta(t, 90.0, decisions[1].Phi, 1e-9)
	assert.False(t, decisions[1].Kept)
	assert.Equal(t, Decision{Label: 3, Area: 6, Phi: 0, Kept: true}, decisions[2])

	// Kept objects keep their label, everything else becomes background.
	assert.Equal(t, map[int]int{3: 6}, out.Areas())
	assert.Equal(t, 3, out.At(0, 6))
	assert.Zero(t, out.At(0, 0))

	// The input map is left alone.
	assert.Equal(t, 3, m.MaxLabel())
	assert.Equal(t, 1, m.At(0, 0))
}

func TestFilter_OutputFeedsAnalyzer(t *testing.T) {
	m := label(t, filterFixture...)
	out, _, err := Filter(m, Criteria{AreaThreshold: 100, PhiLow: 80, PhiHigh: 100}, contour.Moore{})
	require.NoError(t, err)

	before, err := Analyze(m, 2, contour.Moore{})
	require.NoError(t, err)
	after, err := Analyze(out, 2, contour.Moore{})
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = Analyze(out, 1, contour.Moore{})
	assert.ErrorIs(t, err, ErrEmptyRegion)
}

func TestFilter_KeepAllAndNone(t *testing.T) {
	m := label(t, filterFixture...)

	all, _, err := Filter(m, Criteria{AreaThreshold: 1000, PhiLow: 0, PhiHigh: 180}, contour.Moore{})
	require.NoError(t, err)
	assert.Equal(t, m, all)

	none, decisions, err := Filter(m, Criteria{AreaThreshold: 1, PhiLow: 0, PhiHigh: 180}, contour.Moore{})
	require.NoError(t, err)
	assert.Zero(t, none.MaxLabel())
	for _, d := range decisions {
		assert.False(t, d.Kept)
	}
}

func TestProjections(t *testing.T) {
	m := label(t, filterFixture...)
	for _, l := range m.Labels() {
		hor, ver := Projections(m, l)
		require.Len(t, hor, m.Width)
		require.Len(t, ver, m.Height)

		sumH, sumV := 0, 0
		for _, v := range hor {
			sumH += v
		}
		for _, v := range ver {
			sumV += v
		}
		area := m.Areas()[l]
		assert.Equal(t, area, sumH, "label %d", l)
		assert.Equal(t, area, sumV, "label %d", l)
	}

	hor, ver := Projections(m, 1)
	assert.Equal(t, []int{3, 3, 3, 0, 0, 0}, hor)
	assert.Equal(t, []int{3, 3, 3, 0, 0, 0, 0}, ver)
}

func TestRenderProjections(t *testing.T) {
	img := RenderProjections(5, 5, []int{0, 3, 3, 3, 0}, []int{0, 3, 3, 3, 0})
	assert.Equal(t, image.Rect(0, 0, 5, 5), img.Bounds())
	assert.Equal(t, colorutil.Black, img.RGBAAt(0, 4))
	assert.Equal(t, colorutil.Green, img.RGBAAt(1, 4))
	assert.Equal(t, colorutil.Red, img.RGBAAt(0, 1))
	assert.Equal(t, colorutil.Black, img.RGBAAt(4, 0))
}

func TestRenderFeatures(t *testing.T) {
	m := label(t,
		".....",
		".###.",
		".###.",
		".###.",
		".....",
	)
	p, err := Analyze(m, 1, contour.Moore{})
	require.NoError(t, err)

	base := image.NewRGBA(image.Rect(0, 0, 5, 5))
	out := RenderFeatures(base, p, DefaultRenderOptions())
	assert.Equal(t, base.Bounds(), out.Bounds())
	// The principal axis is drawn last, through the center.
	assert.Equal(t, colorutil.Blue, out.RGBAAt(2, 2))
	// The base image is not drawn on.
	assert.Equal(t, uint8(0), base.RGBAAt(2, 2).A)
}
