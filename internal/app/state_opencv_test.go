//go:build opencv

package app

import (
	"path/filepath"
	"testing"

	"blobscope/internal/binimg"
	"blobscope/internal/config"
	"blobscope/internal/imageio"
	"blobscope/internal/labeling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_OpenCVBackendIO(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.png")
	require.NoError(t, imageio.Save(in, binimg.MustFromRows(sessionFixture...).Gray()))

	opts := config.Default()
	opts.Tracer = config.TracerOpenCV
	s := NewSession(opts, nil)
	require.NoError(t, s.Open(in))
	assert.Equal(t, binimg.MustFromRows(sessionFixture...), s.Binary)

	n, err := s.Label(labeling.AlgorithmTwoPass)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	out := filepath.Join(dir, "labels.png")
	require.NoError(t, s.SaveLabels(out))
	back, err := imageio.LoadLabelMap(out)
	require.NoError(t, err)
	assert.Equal(t, s.Labels, back)
}

func TestSession_OpenCVBackendWideLabels(t *testing.T) {
	m := labeling.NewLabelMap(2, 1)
	m.Set(1, 0, 300)

	opts := config.Default()
	opts.Tracer = config.TracerOpenCV
	s := NewSession(opts, nil)
	require.NoError(t, s.SetLabels(m))

	out := filepath.Join(t.TempDir(), "labels.png")
	require.NoError(t, s.SaveLabels(out))
	back, err := imageio.LoadLabelMap(out)
	require.NoError(t, err)
	assert.Equal(t, m, back)
}
