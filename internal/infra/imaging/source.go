package imaging

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/SdReum/ClassMood/internal/analysis"
)

// ImageOpener opens a still image as a one-frame source, the degraded
// fallback when video decoding is not possible.
type ImageOpener struct{}

func NewImageOpener() *ImageOpener {
	return &ImageOpener{}
}

func (o *ImageOpener) Open(_ context.Context, path string) (analysis.FrameSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrNotOpenable, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", analysis.ErrNotOpenable, err)
	}

	return &imageSource{frame: toRGB24(img)}, nil
}

// imageSource presents exactly one frame, then end-of-stream. Frame
// rate and count are not meaningful for a still and report unknown.
type imageSource struct {
	frame *analysis.Frame
	done  bool
}

func (s *imageSource) FrameRate() float64 { return 0 }
func (s *imageSource) FrameCount() int64  { return 0 }

func (s *imageSource) Next() (*analysis.Frame, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.frame, nil
}

func (s *imageSource) Close() error { return nil }

func toRGB24(img image.Image) *analysis.Frame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pix := make([]byte, w*h*3)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pix[i] = uint8(r >> 8)
			pix[i+1] = uint8(g >> 8)
			pix[i+2] = uint8(b >> 8)
			i += 3
		}
	}
	return &analysis.Frame{Pix: pix, Width: w, Height: h}
}
