// Package app provides the labeling session shared by the console menu and
// the batch command.
package app

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"blobscope/internal/analysis"
	"blobscope/internal/binimg"
	"blobscope/internal/config"
	"blobscope/internal/contour"
	"blobscope/internal/cvbridge"
	"blobscope/internal/imageio"
	"blobscope/internal/labeling"
	"blobscope/internal/logger"
	"blobscope/pkg/colorutil"
)

const component = "session"

// ErrNoImage is returned by operations that need an opened image.
var ErrNoImage = errors.New("app: no image loaded")

// ErrNotLabeled is returned by operations that need a label map.
var ErrNotLabeled = errors.New("app: image not labeled")

// Session holds the binary image, its current label map and the last
// selection.
type Session struct {
	mu sync.RWMutex

	// Source
	ImagePath string
	Binary    *binimg.Image

	// Labeling
	Algorithm labeling.Algorithm
	Labels    *labeling.LabelMap
	Filtered  *labeling.LabelMap

	// Selection
	Selected   image.Point
	Properties *analysis.Properties

	opts    config.Options
	tracer  contour.Tracer
	palette *colorutil.Palette
	log     logger.Logger

	listeners map[EventType][]EventListener
}

// EventType identifies session events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventLabeled
	EventSelectionChanged
	EventFiltered
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewSession creates a session configured by opts. A nil log discards
// events.
func NewSession(opts config.Options, log logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		Algorithm: opts.Algorithm,
		opts:      opts,
		tracer:    NewTracer(opts.Tracer),
		palette:   colorutil.NewPalette(opts.PaletteSize, opts.PaletteSeed),
		log:       log,
		listeners: make(map[EventType][]EventListener),
	}
}

// NewTracer returns the contour tracer for backend, defaulting to Moore.
func NewTracer(backend config.TracerBackend) contour.Tracer {
	if backend == config.TracerOpenCV {
		return cvbridge.Tracer{}
	}
	return contour.Moore{}
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Options returns the options the session runs with.
func (s *Session) Options() config.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Open loads and binarizes the image at path, dropping any previous labels.
func (s *Session) Open(path string) error {
	img, err := s.readBinary(path)
	if err != nil {
		s.log.Error(component, err, map[string]interface{}{"path": path})
		return err
	}
	s.SetBinary(img)
	s.setPath(path)

	s.log.Info(component, "image loaded", map[string]interface{}{
		"path":       path,
		"width":      img.Width,
		"height":     img.Height,
		"foreground": img.ForegroundCount(),
	})
	s.Emit(EventImageLoaded, path)
	return nil
}

// OpenLabels loads a label map saved by SaveLabels so it can be analyzed
// or filtered without relabeling.
func (s *Session) OpenLabels(path string) error {
	m, err := imageio.LoadLabelMap(path)
	if err != nil {
		s.log.Error(component, err, map[string]interface{}{"path": path})
		return err
	}
	if err := s.install(m); err != nil {
		return err
	}
	s.setPath(path)

	s.log.Info(component, "label map loaded", map[string]interface{}{
		"path":       path,
		"width":      m.Width,
		"height":     m.Height,
		"components": len(m.Labels()),
	})
	s.Emit(EventImageLoaded, path)
	s.labeled(m.MaxLabel())
	return nil
}

// SetBinary replaces the working image without touching the filesystem.
func (s *Session) SetBinary(img *binimg.Image) {
	s.mu.Lock()
	s.Binary = img
	s.ImagePath = ""
	s.Labels = nil
	s.Filtered = nil
	s.Properties = nil
	s.mu.Unlock()
}

// SetLabels replaces the label map. The working image becomes the nonzero
// cells of m.
func (s *Session) SetLabels(m *labeling.LabelMap) error {
	if err := s.install(m); err != nil {
		return err
	}
	s.labeled(m.MaxLabel())
	return nil
}

func (s *Session) install(m *labeling.LabelMap) error {
	img, err := binimg.New(m.Width, m.Height)
	if err != nil {
		return err
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) != 0 {
				img.SetForeground(x, y)
			}
		}
	}

	s.mu.Lock()
	s.Binary = img
	s.ImagePath = ""
	s.Labels = m
	s.Filtered = nil
	s.Properties = nil
	s.mu.Unlock()
	return nil
}

func (s *Session) setPath(path string) {
	s.mu.Lock()
	s.ImagePath = path
	s.opts.LastDir = filepath.Dir(path)
	s.mu.Unlock()
}

// readBinary goes through OpenCV when the OpenCV backend is selected.
func (s *Session) readBinary(path string) (*binimg.Image, error) {
	if s.opts.Tracer == config.TracerOpenCV {
		return cvbridge.ReadBinary(path, s.opts.Threshold)
	}
	return imageio.LoadBinary(path, s.opts.Threshold)
}

// Label labels the working image with algorithm a and returns the number
// of components.
func (s *Session) Label(a labeling.Algorithm) (int, error) {
	s.mu.RLock()
	img := s.Binary
	s.mu.RUnlock()
	if img == nil {
		return 0, ErrNoImage
	}

	labeler, err := labeling.New(a, labeling.Options{})
	if err != nil {
		return 0, err
	}
	m, err := labeler.Label(img)
	if err != nil {
		s.log.Error(component, err, map[string]interface{}{"algorithm": a.String()})
		return 0, err
	}

	count := m.MaxLabel()
	s.mu.Lock()
	s.Algorithm = a
	s.Labels = m
	s.Filtered = nil
	s.Properties = nil
	s.mu.Unlock()

	s.log.Info(component, "image labeled", map[string]interface{}{
		"algorithm":  a.String(),
		"components": count,
	})
	s.labeled(count)
	return count, nil
}

func (s *Session) labeled(count int) {
	if count > 0 && !s.palette.Covers(count) {
		s.log.Warning(component, "labels beyond palette share the background color", map[string]interface{}{
			"components": count,
			"palette":    s.palette.Size(),
		})
	}
	s.Emit(EventLabeled, count)
}

// SelectAt analyzes the object under (x, y) and remembers it as the
// current selection.
func (s *Session) SelectAt(x, y int) (analysis.Properties, error) {
	m, err := s.labels()
	if err != nil {
		return analysis.Properties{}, err
	}

	pt := image.Point{X: x, Y: y}
	props, err := analysis.SelectAt(m, pt, s.tracer)
	if err != nil {
		s.log.Warning(component, "selection rejected", map[string]interface{}{
			"x": x, "y": y, "error": err.Error(),
		})
		return analysis.Properties{}, err
	}

	s.mu.Lock()
	s.Selected = pt
	s.Properties = &props
	s.mu.Unlock()

	s.log.Debug(component, "object selected", map[string]interface{}{
		"label":       props.Label,
		"area":        props.Area,
		"orientation": props.Orientation,
	})
	s.Emit(EventSelectionChanged, props)
	return props, nil
}

// AnalyzeAll returns the properties of every labeled object.
func (s *Session) AnalyzeAll() ([]analysis.Properties, error) {
	m, err := s.labels()
	if err != nil {
		return nil, err
	}
	return analysis.AnalyzeAll(m, s.tracer)
}

// Filter keeps the objects satisfying c. The current label map is left
// untouched; the result is stored as Filtered.
func (s *Session) Filter(c analysis.Criteria) (*labeling.LabelMap, []analysis.Decision, error) {
	m, err := s.labels()
	if err != nil {
		return nil, nil, err
	}

	out, decisions, err := analysis.Filter(m, c, s.tracer)
	if err != nil {
		s.log.Error(component, err, nil)
		return nil, nil, err
	}

	kept := 0
	for _, d := range decisions {
		if d.Kept {
			kept++
		}
	}
	s.mu.Lock()
	s.Filtered = out
	s.opts.Criteria = c
	s.mu.Unlock()

	s.log.Info(component, "objects filtered", map[string]interface{}{
		"area_threshold": c.AreaThreshold,
		"phi_low":        c.PhiLow,
		"phi_high":       c.PhiHigh,
		"kept":           kept,
		"total":          len(decisions),
	})
	s.Emit(EventFiltered, decisions)
	return out, decisions, nil
}

// Colorize renders the current label map with the session palette.
func (s *Session) Colorize() (*image.RGBA, error) {
	m, err := s.labels()
	if err != nil {
		return nil, err
	}
	return labeling.Colorize(m, s.palette), nil
}

// RenderSelection draws the contour, center and principal axis of the
// selected object over the colorized label map.
func (s *Session) RenderSelection() (*image.RGBA, error) {
	base, err := s.Colorize()
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	selected := s.Properties
	s.mu.RUnlock()
	if selected == nil {
		return nil, fmt.Errorf("%w: nothing selected", analysis.ErrInvalidLabel)
	}
	opts := analysis.DefaultRenderOptions()
	opts.DrawBounds = true
	return analysis.RenderFeatures(base, *selected, opts), nil
}

// ChainCode returns the chain code of the selected object, or of the first
// object in raster order when nothing is selected.
func (s *Session) ChainCode() (contour.Code, error) {
	m, err := s.labels()
	if err != nil {
		return contour.Code{}, err
	}

	s.mu.RLock()
	selected := s.Properties
	s.mu.RUnlock()

	mask, err := binimg.New(m.Width, m.Height)
	if err != nil {
		return contour.Code{}, err
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			l := m.At(x, y)
			if l != 0 && (selected == nil || l == selected.Label) {
				mask.SetForeground(x, y)
			}
		}
	}

	code, ok := contour.ChainCode(mask)
	if !ok {
		return contour.Code{}, fmt.Errorf("%w: no object to trace", analysis.ErrEmptyRegion)
	}
	return code, nil
}

// Projections returns the per-column and per-row counts of the selected
// object.
func (s *Session) Projections() (horizontal, vertical []int, err error) {
	m, err := s.labels()
	if err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	selected := s.Properties
	s.mu.RUnlock()
	if selected == nil {
		return nil, nil, fmt.Errorf("%w: nothing selected", analysis.ErrInvalidLabel)
	}
	horizontal, vertical = analysis.Projections(m, selected.Label)
	return horizontal, vertical, nil
}

// SaveLabels writes the current (or filtered, when present) label map.
func (s *Session) SaveLabels(path string) error {
	m, err := s.labels()
	if err != nil {
		return err
	}
	s.mu.RLock()
	if s.Filtered != nil {
		m = s.Filtered
	}
	s.mu.RUnlock()

	if err := s.writeLabels(path, m); err != nil {
		s.log.Error(component, err, map[string]interface{}{"path": path})
		return err
	}
	s.log.Info(component, "labels saved", map[string]interface{}{"path": path})
	return nil
}

// writeLabels goes through OpenCV when the OpenCV backend is selected.
// OpenCV only writes 8-bit maps; larger ones fall back to imageio.
func (s *Session) writeLabels(path string, m *labeling.LabelMap) error {
	if s.opts.Tracer == config.TracerOpenCV {
		err := cvbridge.WriteLabels(path, m)
		if !errors.Is(err, labeling.ErrCapacityExceeded) {
			return err
		}
	}
	return imageio.SaveLabelMap(path, m)
}

// ReconstructFile reads a chain code saved in "row col count d d ..." form
// and draws the pixels it visits. The canvas matches the working image
// when one is loaded and otherwise just holds the code.
func (s *Session) ReconstructFile(path string) (*binimg.Image, contour.Code, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, contour.Code{}, fmt.Errorf("failed to read chain code: %w", err)
	}
	code, err := contour.ParseCode(string(data))
	if err != nil {
		return nil, contour.Code{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	size := code.Bounds().Max
	s.mu.RLock()
	if s.Binary != nil {
		size = image.Point{X: s.Binary.Width, Y: s.Binary.Height}
	}
	s.mu.RUnlock()

	img, err := code.Reconstruct(size.X, size.Y)
	if err != nil {
		return nil, contour.Code{}, err
	}
	s.log.Info(component, "chain code reconstructed", map[string]interface{}{
		"path":   path,
		"moves":  code.Len(),
		"pixels": img.ForegroundCount(),
	})
	return img, code, nil
}

func (s *Session) labels() (*labeling.LabelMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Binary == nil {
		return nil, ErrNoImage
	}
	if s.Labels == nil {
		return nil, ErrNotLabeled
	}
	return s.Labels, nil
}
