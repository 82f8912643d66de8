// Command colorgrid reads a photographed colored-grid board and prints the
// color-class label of every cell as JSON.
//
// Usage:
//
//	colorgrid [-image board.png] [-device 0] [-config options.json] [-solve] [-preview out.png]
//
// Without -image the camera is opened and a live preview is shown; press
// SPACE to capture the board or q to quit.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"colorgrid/internal/capture"
	"colorgrid/internal/config"
	"colorgrid/internal/pipeline"
	"colorgrid/internal/queens"
	"colorgrid/internal/render"
	"colorgrid/internal/version"

	"gocv.io/x/gocv"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	previewMaxSide = 800
)

type options struct {
	imagePath   string
	device      int
	configPath  string
	gridSize    int
	solve       bool
	previewPath string
	verbose     bool
	version     bool
}

// logAdapter routes pipeline debug output to a standard logger.
type logAdapter struct {
	l *log.Logger
}

func (a logAdapter) Debugf(format string, args ...interface{}) {
	a.l.Printf(format, args...)
}

type result struct {
	Labels    pipeline.LabelGrid `json:"labels"`
	Solutions [][]string         `json:"solutions"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("colorgrid", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.imagePath, "image", "", "Read a still image (PNG, JPEG, GIF, TIFF, BMP or WebP) instead of the camera")
	fs.IntVar(&opts.device, "device", 0, "Camera index")
	fs.StringVar(&opts.configPath, "config", "", "Options file (default: user config dir, colorgrid/options.json)")
	fs.IntVar(&opts.gridSize, "size", 0, "Fixed grid size; 0 infers it from the board lines")
	fs.BoolVar(&opts.solve, "solve", false, "Also solve the color-region queens puzzle")
	fs.StringVar(&opts.previewPath, "preview", "", "Write the labelled board to this PNG or JPEG file; a %d in the name writes one file per solution")
	fs.BoolVar(&opts.verbose, "v", false, "Log pipeline stages to stderr")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return exitUsage
	}

	if opts.version {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}

	logger := log.New(stderr, "", log.LstdFlags|log.Lshortfile)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: config: %v\n", err)
		return exitUsage
	}
	pipeOpts := cfg.Options()
	if opts.gridSize != 0 {
		pipeOpts.GridSize = opts.gridSize
	}

	var readerOpts []pipeline.ReaderOption
	if opts.verbose {
		readerOpts = append(readerOpts, pipeline.WithLogger(logAdapter{logger}))
	}
	reader, err := pipeline.NewReader(pipeOpts, readerOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: config: %v\n", err)
		return exitUsage
	}

	var reading *pipeline.Reading
	if opts.imagePath != "" {
		reading, err = readStill(reader, opts.imagePath)
	} else {
		reading, err = readCamera(reader, opts.device, logger)
	}
	if errors.Is(err, capture.ErrQuit) {
		fmt.Fprintln(stderr, "Cancelled.")
		return exitError
	}
	if err != nil {
		return fail(stderr, err)
	}
	defer reading.Close()

	if opts.verbose {
		for l, c := range reading.Centroids {
			rgba := c.ToRGBA()
			logger.Printf("label %d: #%02x%02x%02x", l, rgba.R, rgba.G, rgba.B)
		}
	}

	if err := report(stdout, logger, reading, opts); err != nil {
		return fail(stderr, err)
	}
	return exitOK
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadDefault()
	}
	return config.Load(path)
}

func readStill(reader *pipeline.Reader, path string) (*pipeline.Reading, error) {
	frame, err := capture.LoadStill(path)
	if err != nil {
		return nil, err
	}
	defer frame.Close()
	return reader.Read(frame)
}

func readCamera(reader *pipeline.Reader, device int, logger *log.Logger) (*pipeline.Reading, error) {
	webcam, err := capture.OpenCamera(device)
	if err != nil {
		return nil, err
	}
	defer webcam.Close()

	window := gocv.NewWindow("colorgrid: SPACE to capture, q to quit")
	defer window.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var reading *pipeline.Reading
	err = capture.Run(ctx, webcam, window, func(frame gocv.Mat) (bool, error) {
		defer frame.Close()
		r, err := reader.Read(frame)
		if errors.Is(err, pipeline.ErrBoardNotFound) {
			logger.Printf("No board found, try again")
			return false, nil
		}
		if err != nil {
			return false, err
		}
		reading = r
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return reading, nil
}

func report(stdout io.Writer, logger *log.Logger, reading *pipeline.Reading, opts options) error {
	var sols []queens.Solution
	if opts.solve {
		var err error
		sols, err = queens.Solve(reading.Labels, 0)
		if err != nil {
			return err
		}
		logger.Printf("Total solutions found: %d", len(sols))
	}

	if opts.previewPath != "" {
		if err := writePreviews(reading, sols, opts.previewPath); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(stdout)
	if !opts.solve {
		return enc.Encode(reading.Labels)
	}

	out := result{Labels: reading.Labels, Solutions: make([][]string, 0, len(sols))}
	for _, s := range sols {
		out.Solutions = append(out.Solutions, s.Rows())
	}
	return enc.Encode(out)
}

// writePreviews renders the board once per solution when path holds a %d
// verb, numbering from 1. Otherwise only the first solution is drawn.
func writePreviews(reading *pipeline.Reading, sols []queens.Solution, path string) error {
	if !strings.Contains(path, "%d") || len(sols) == 0 {
		var first *queens.Solution
		if len(sols) > 0 {
			first = &sols[0]
		}
		return writePreview(reading, first, strings.ReplaceAll(path, "%d", "1"))
	}

	for i := range sols {
		if err := writePreview(reading, &sols[i], fmt.Sprintf(path, i+1)); err != nil {
			return err
		}
	}
	return nil
}

func writePreview(reading *pipeline.Reading, sol *queens.Solution, path string) error {
	img, err := render.Board(reading.Rectified, reading.Labels, sol)
	if err != nil {
		return err
	}
	return render.Save(img, path, previewMaxSide)
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "ERROR: %s: %v\n", pipeline.Kind(err), err)
	return exitError
}
