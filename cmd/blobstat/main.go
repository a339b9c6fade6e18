// Command blobstat labels the objects of a binary image and prints their
// properties.
package main

import (
	"flag"
	"fmt"
	"os"
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

func main() {
	defaults := config.Default()

	imagePath := flag.String("image", "", "Path to input image (BMP, PNG, JPEG or TIFF); dark pixels are objects")
	labelsPath := flag.String("labels", "", "Path to a saved label map to analyze instead of labeling -image")
	algo := flag.String("algo", defaults.Algorithm.String(), "Labeling algorithm: bfs or twopass")
	out := flag.String("out", "", "Write the label map to this file")
	colorOut := flag.String("color", "", "Write the colorized label map to this file")
	selectAt := flag.String("select", "", "Analyze only the object at x,y")
	render := flag.String("render", "", "With -select, draw the object's contour and axis to this file")
	filterArea := flag.Int("filter-area", 0, "Keep objects with area below this value (0 disables filtering)")
	phiLow := flag.Float64("phi-low", defaults.Criteria.PhiLow, "Lower orientation bound in degrees")
	phiHigh := flag.Float64("phi-high", defaults.Criteria.PhiHigh, "Upper orientation bound in degrees")
	tracer := flag.String("tracer", string(defaults.Tracer), "Contour tracer and image I/O backend: moore or opencv")
	threshold := flag.Int("threshold", int(defaults.Threshold), "Luma below this value is foreground")
	seed := flag.Int64("seed", defaults.PaletteSeed, "Palette seed for -color")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn or error")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("blobstat"))
		return
	}
	if *imagePath == "" && *labelsPath == "" {
		fmt.Println("Usage: blobstat -image <path> | -labels <path> [-algo twopass|bfs] [-out labels.png] [-color colored.png]")
		fmt.Println("                [-select x,y] [-filter-area N -phi-low a -phi-high b] [-tracer moore|opencv]")
		os.Exit(1)
	}

	opts := defaults
	var err error
	if opts.Algorithm, err = labeling.ParseAlgorithm(*algo); err != nil {
		fail(err)
	}
	if opts.Tracer, err = config.ParseTracer(*tracer); err != nil {
		fail(err)
	}
	if *threshold < 0 || *threshold > 255 {
		fail(fmt.Errorf("threshold %d outside 0..255", *threshold))
	}
	opts.Threshold = uint8(*threshold)
	opts.PaletteSeed = *seed
	opts.LogLevel = *logLevel

	session := app.NewSession(opts, logger.NewConsoleLogger(logger.ParseLevel(opts.LogLevel)))
	if *labelsPath != "" {
		if err := session.OpenLabels(*labelsPath); err != nil {
			fail(err)
		}
		fmt.Printf("Loaded %s: %d objects\n", *labelsPath, len(session.Labels.Labels()))
	} else {
		if err := session.Open(*imagePath); err != nil {
			fail(err)
		}
		count, err := session.Label(opts.Algorithm)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Labeled %s with %s: %d objects\n", *imagePath, opts.Algorithm, count)
	}

	if *selectAt != "" {
		x, y, err := parsePoint(*selectAt)
		if err != nil {
			fail(err)
		}
		props, err := session.SelectAt(x, y)
		if err != nil {
			fail(err)
		}
		printHeader()
		printProperties(props)

		if *render != "" {
			img, err := session.RenderSelection()
			if err != nil {
				fail(err)
			}
			if err := imageio.Save(*render, img); err != nil {
				fail(err)
			}
			fmt.Printf("Selection rendered to %s\n", *render)
		}
	} else {
		all, err := session.AnalyzeAll()
		if err != nil {
			fail(err)
		}
		printHeader()
		for _, props := range all {
			printProperties(props)
		}
	}

	if *filterArea > 0 {
		criteria := analysis.Criteria{AreaThreshold: *filterArea, PhiLow: *phiLow, PhiHigh: *phiHigh}
		_, decisions, err := session.Filter(criteria)
		if err != nil {
			fail(err)
		}
		fmt.Printf("\nFilter: area < %d, %.1f <= phi <= %.1f\n", criteria.AreaThreshold, criteria.PhiLow, criteria.PhiHigh)
		fmt.Printf("%6s %8s %8s %6s\n", "Label", "Area", "Phi", "Kept")
		for _, d := range decisions {
			fmt.Printf("%6d %8d %8.2f %6v\n", d.Label, d.Area, d.Phi, d.Kept)
		}
	}

	if *out != "" {
		if err := session.SaveLabels(*out); err != nil {
			fail(err)
		}
		fmt.Printf("Label map written to %s\n", *out)
	}
	if *colorOut != "" {
		img, err := session.Colorize()
		if err != nil {
			fail(err)
		}
		if err := imageio.Save(*colorOut, img); err != nil {
			fail(err)
		}
		fmt.Printf("Colorized labels written to %s\n", *colorOut)
	}
}

func printHeader() {
	fmt.Printf("%6s %8s %16s %10s %10s %8s %10s\n",
		"Label", "Area", "Center", "Orient", "Elong", "Perim", "Thinness")
	fmt.Println(strings.Repeat("-", 74))
}

func printProperties(p analysis.Properties) {
	center := fmt.Sprintf("(%.1f, %.1f)", p.Center.X, p.Center.Y)
	fmt.Printf("%6d %8d %16s %10.2f %10.3f %8d %10.4f\n",
		p.Label, p.Area, center, p.Orientation, p.Elongation, p.Perimeter, p.Thinness)
}

// parsePoint reads "x,y".
func parsePoint(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid point %q, want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x in %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y in %q: %w", s, err)
	}
	return x, y, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "blobstat: %v\n", err)
	os.Exit(1)
}
