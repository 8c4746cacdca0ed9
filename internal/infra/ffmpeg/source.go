package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/SdReum/ClassMood/internal/analysis"
	"go.uber.org/zap"
)

// VideoOpener opens media files as streaming RGB24 frame sources
// backed by an ffmpeg child process.
type VideoOpener struct {
	logger *zap.Logger
}

func NewVideoOpener(logger *zap.Logger) *VideoOpener {
	return &VideoOpener{logger: logger}
}

// Open probes the file and starts ffmpeg decoding to a rawvideo pipe.
// Probe or start failures are reported as ErrNotOpenable; no process
// or pipe is left behind on any failure path.
func (o *VideoOpener) Open(ctx context.Context, path string) (analysis.FrameSource, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg not found in $PATH", analysis.ErrNotOpenable)
	}

	info, err := Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrNotOpenable, err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-an",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", analysis.ErrNotOpenable, err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		stdout.Close()
		return nil, fmt.Errorf("%w: start ffmpeg: %v", analysis.ErrNotOpenable, err)
	}

	o.logger.Debug("ffmpeg decode started",
		zap.String("path", path),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Float64("frame_rate", info.FrameRate),
		zap.Int64("frame_count", info.FrameCount),
	)

	return &videoSource{
		info:   info,
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		logger: o.logger,
	}, nil
}

// videoSource reads fixed-size RGB24 frames off the ffmpeg pipe.
// Forward-only; each Next depends on decoder state advanced by the
// previous one. Not safe for concurrent use.
type videoSource struct {
	info   *VideoInfo
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	logger *zap.Logger
	read   int64
	closed bool
}

func (s *videoSource) FrameRate() float64 { return s.info.FrameRate }
func (s *videoSource) FrameCount() int64  { return s.info.FrameCount }

func (s *videoSource) Next() (*analysis.Frame, error) {
	frameSize := s.info.Width * s.info.Height * 3
	pix := make([]byte, frameSize)

	_, err := io.ReadFull(s.stdout, pix)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read raw frame: %w", err)
	}

	s.read++
	return &analysis.Frame{Pix: pix, Width: s.info.Width, Height: s.info.Height}, nil
}

func (s *videoSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.stdout.Close()
	err := s.cmd.Wait()
	// An early close mid-stream makes ffmpeg exit nonzero on the broken
	// pipe; that is the expected teardown, not a decode failure.
	if err != nil && s.stderr.Len() > 0 {
		s.logger.Debug("ffmpeg exited",
			zap.Error(err),
			zap.Int64("frames_read", s.read),
			zap.String("stderr", s.stderr.String()),
		)
	}
	return nil
}
