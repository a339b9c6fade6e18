// Package main provides the interactive console for blobscope.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"blobscope/internal/analysis"
	"blobscope/internal/app"
	"blobscope/internal/config"
	"blobscope/internal/imageio"
	"blobscope/internal/labeling"
	"blobscope/internal/logger"
	"blobscope/internal/version"
)

const menu = `
 1) Open image
 2) Label (BFS)
 3) Label (two-pass)
 4) Analyze object at point
 5) Filter by area and orientation
 6) Chain code of selection
 7) Projections of selection
 8) Save label map
 9) Save colorized labels
10) Open label map
11) Reconstruct chain code from file
 0) Exit
> `

func main() {
	prefs := config.LoadPrefs(config.DefaultPrefsPath())
	opts := config.Default().Apply(prefs)

	log := logger.NewConsoleLogger(logger.ParseLevel(opts.LogLevel))
	log.Info("main", version.String("blobscope"), map[string]interface{}{"prefs": prefs.Path()})

	session := app.NewSession(opts, log)
	c := newConsole(os.Stdin, os.Stdout, session)
	if len(os.Args) > 1 {
		if err := session.Open(os.Args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "open %s: %v\n", os.Args[1], err)
		}
	}
	c.run()

	session.Options().Store(prefs)
	if err := prefs.Save(); err != nil {
		log.Error("main", err, map[string]interface{}{"prefs": prefs.Path()})
	}
}

type console struct {
	in      *bufio.Reader
	out     io.Writer
	session *app.Session
}

func newConsole(in io.Reader, out io.Writer, session *app.Session) *console {
	c := &console{in: bufio.NewReader(in), out: out, session: session}
	session.On(app.EventImageLoaded, c.onLoaded)
	session.On(app.EventLabeled, c.onLabeled)
	session.On(app.EventSelectionChanged, c.onSelected)
	session.On(app.EventFiltered, c.onFiltered)
	return c
}

func (c *console) onLoaded(data interface{}) {
	img := c.session.Binary
	fmt.Fprintf(c.out, "loaded %v (%dx%d)\n", data, img.Width, img.Height)
}

func (c *console) onLabeled(data interface{}) {
	fmt.Fprintf(c.out, "%v objects labeled\n", data)
}

func (c *console) onSelected(data interface{}) {
	p, ok := data.(analysis.Properties)
	if !ok {
		return
	}
	fmt.Fprintf(c.out, "label       %d\n", p.Label)
	fmt.Fprintf(c.out, "area        %d\n", p.Area)
	fmt.Fprintf(c.out, "center      (%.2f, %.2f)\n", p.Center.X, p.Center.Y)
	fmt.Fprintf(c.out, "bounds      %dx%d at (%d, %d)\n", p.Bounds.Width, p.Bounds.Height, p.Bounds.X, p.Bounds.Y)
	fmt.Fprintf(c.out, "moments     m11=%.3f m20=%.3f m02=%.3f\n", p.M11, p.M20, p.M02)
	fmt.Fprintf(c.out, "orientation %.2f deg\n", p.Orientation)
	fmt.Fprintf(c.out, "elongation  %.3f\n", p.Elongation)
	fmt.Fprintf(c.out, "perimeter   %d\n", p.Perimeter)
	fmt.Fprintf(c.out, "thinness    %.4f\n", p.Thinness)
}

func (c *console) onFiltered(data interface{}) {
	decisions, _ := data.([]analysis.Decision)
	for _, d := range decisions {
		mark := "-"
		if d.Kept {
			mark = "+"
		}
		fmt.Fprintf(c.out, "%s label %d area %d phi %.2f\n", mark, d.Label, d.Area, d.Phi)
	}
}

func (c *console) run() {
	for {
		fmt.Fprint(c.out, menu)
		choice, err := c.readLine()
		if err != nil {
			return
		}

		switch choice {
		case "1":
			err = c.open()
		case "2":
			err = c.label(labeling.AlgorithmBFS)
		case "3":
			err = c.label(labeling.AlgorithmTwoPass)
		case "4":
			err = c.analyze()
		case "5":
			err = c.filter()
		case "6":
			err = c.chainCode()
		case "7":
			err = c.projections()
		case "8":
			err = c.saveLabels()
		case "9":
			err = c.saveColorized()
		case "10":
			err = c.openLabels()
		case "11":
			err = c.reconstruct()
		case "0", "q", "exit":
			return
		default:
			fmt.Fprintf(c.out, "unknown option %q\n", choice)
		}

		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
}

func (c *console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *console) prompt(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)
	return c.readLine()
}

func (c *console) promptFloat(label string, fallback float64) (float64, error) {
	s, err := c.prompt(fmt.Sprintf("%s [%g]", label, fallback))
	if err != nil || s == "" {
		return fallback, err
	}
	return strconv.ParseFloat(s, 64)
}

func (c *console) promptPath(label string) (string, error) {
	dir := c.session.Options().LastDir
	path, err := c.prompt(fmt.Sprintf("%s (relative to %q)", label, dir))
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	return path, nil
}

func (c *console) open() error {
	path, err := c.promptPath("image path")
	if err != nil {
		return err
	}
	if !imageio.IsSupportedFormat(path) {
		return fmt.Errorf("%w: %s", imageio.ErrUnsupportedFormat, filepath.Ext(path))
	}
	return c.session.Open(path)
}

func (c *console) openLabels() error {
	path, err := c.promptPath("label map path")
	if err != nil {
		return err
	}
	return c.session.OpenLabels(path)
}

func (c *console) label(a labeling.Algorithm) error {
	_, err := c.session.Label(a)
	return err
}

func (c *console) analyze() error {
	s, err := c.prompt("point x,y")
	if err != nil {
		return err
	}
	var x, y int
	if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "%d,%d", &x, &y); err != nil {
		return fmt.Errorf("invalid point %q: %w", s, err)
	}
	_, err = c.session.SelectAt(x, y)
	return err
}

func (c *console) filter() error {
	current := c.session.Options().Criteria
	area, err := c.promptFloat("area threshold", float64(current.AreaThreshold))
	if err != nil {
		return err
	}
	low, err := c.promptFloat("phi low", current.PhiLow)
	if err != nil {
		return err
	}
	high, err := c.promptFloat("phi high", current.PhiHigh)
	if err != nil {
		return err
	}

	_, _, err = c.session.Filter(analysis.Criteria{AreaThreshold: int(area), PhiLow: low, PhiHigh: high})
	return err
}

func (c *console) chainCode() error {
	code, err := c.session.ChainCode()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "start (%d, %d), %d moves\n%s\n", code.Start.X, code.Start.Y, code.Len(), code)
	fmt.Fprintf(c.out, "derivative:\n%s\n", code.Derivative())

	path, err := c.prompt("save chain code to (empty to skip)")
	if err != nil || path == "" {
		return err
	}
	text, err := code.MarshalText()
	if err != nil {
		return err
	}
	return os.WriteFile(path, text, 0o644)
}

func (c *console) reconstruct() error {
	path, err := c.prompt("chain code file")
	if err != nil {
		return err
	}
	img, code, err := c.session.ReconstructFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "start (%d, %d), %d moves, %d pixels drawn\n", code.Start.X, code.Start.Y, code.Len(), img.ForegroundCount())

	out, err := c.prompt("save reconstruction to")
	if err != nil {
		return err
	}
	return imageio.Save(out, img.Gray())
}

func (c *console) projections() error {
	hor, ver, err := c.session.Projections()
	if err != nil {
		return err
	}
	path, err := c.prompt("save projections to (empty to skip)")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintf(c.out, "columns %v\nrows    %v\n", hor, ver)
		return nil
	}
	return imageio.Save(path, analysis.RenderProjections(len(hor), len(ver), hor, ver))
}

func (c *console) saveLabels() error {
	path, err := c.prompt("label map path")
	if err != nil {
		return err
	}
	return c.session.SaveLabels(path)
}

func (c *console) saveColorized() error {
	path, err := c.prompt("colorized image path")
	if err != nil {
		return err
	}
	img, err := c.session.Colorize()
	if err != nil {
		return err
	}
	return imageio.Save(path, img)
}
