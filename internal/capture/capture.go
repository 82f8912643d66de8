// Package capture supplies board frames from a camera or a still image file.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrQuit is returned when the user quits the capture loop.
	ErrQuit = errors.New("capture quit")

	// ErrNoFrame is returned when the source stops producing frames.
	ErrNoFrame = errors.New("no frame from source")
)

// Keys recognized by Run.
const (
	KeySpace = ' '
	KeyQuit  = 'q'
	KeyEsc   = 27
)

// pollDelay is the WaitKey delay in milliseconds between frames.
const pollDelay = 1

// Source produces frames. *gocv.VideoCapture satisfies it.
type Source interface {
	Read(m *gocv.Mat) bool
}

// Display shows frames and reports key presses. *gocv.Window satisfies it.
type Display interface {
	IMShow(img gocv.Mat)
	WaitKey(delay int) int
}

// Handler processes a frame captured with SPACE. It owns frame and reports
// done when no more frames are needed.
type Handler func(frame gocv.Mat) (done bool, err error)

// Run shows frames from src on disp until a handler call reports done, the
// user quits, the source runs dry or ctx is cancelled. Pressing SPACE hands a
// copy of the current frame to handle.
func Run(ctx context.Context, src Source, disp Display, handle Handler) error {
	frame := gocv.NewMat()
	defer frame.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if ok := src.Read(&frame); !ok || frame.Empty() {
			return ErrNoFrame
		}
		disp.IMShow(frame)

		switch disp.WaitKey(pollDelay) & 0xff {
		case KeySpace:
			done, err := handle(frame.Clone())
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		case KeyQuit, KeyEsc:
			return ErrQuit
		}
	}
}

// OpenCamera opens the camera with the given index.
func OpenCamera(device int) (*gocv.VideoCapture, error) {
	webcam, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", device, err)
	}
	if !webcam.IsOpened() {
		webcam.Close()
		return nil, fmt.Errorf("camera %d is not available", device)
	}
	return webcam, nil
}

// LoadStill decodes a PNG, JPEG, GIF, TIFF, BMP or WebP file into a BGR Mat.
// The caller owns the returned Mat.
func LoadStill(path string) (gocv.Mat, error) {
	file, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to decode image: %w", err)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to convert image: %w", err)
	}
	return mat, nil
}
