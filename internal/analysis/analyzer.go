package analysis

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Analyzer runs the full analysis of one media file: try the video
// path, degrade to a single still-image sample when video decoding
// fails, and report a summary of whatever was produced. Analyzer is
// stateless across calls; concurrent calls are independent as long as
// the openers hand out one FrameSource per call.
type Analyzer struct {
	video  Opener
	image  Opener
	scorer Scorer
	logger *zap.Logger
}

func NewAnalyzer(video, image Opener, scorer Scorer, logger *zap.Logger) *Analyzer {
	return &Analyzer{video: video, image: image, scorer: scorer, logger: logger}
}

// Analyze produces the engagement series for the media file at path.
// A missing file is ErrNotFound, checked before any decoder resource
// is allocated. Any failure on the video path triggers exactly one
// image attempt; if that also fails the result is ErrUnreadableMedia.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	series, err := a.analyzeVideo(ctx, path)
	if err != nil {
		a.logger.Debug("video analysis failed, degrading to image",
			zap.String("path", path),
			zap.Error(err),
		)
		series, err = a.analyzeImage(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnreadableMedia, path)
		}
	}

	a.report(path, series)
	return &Result{Series: series}, nil
}

func (a *Analyzer) analyzeVideo(ctx context.Context, path string) (Series, error) {
	src, err := a.video.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer src.Close()

	duration := EstimateDuration(src.FrameCount(), src.FrameRate())
	plan := Plan(duration, src.FrameRate())

	series, err := Assemble(src, plan, a.scorer)
	if err != nil {
		return nil, fmt.Errorf("assemble series: %w", err)
	}
	return series, nil
}

func (a *Analyzer) analyzeImage(ctx context.Context, path string) (Series, error) {
	src, err := a.image.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer src.Close()

	return AssembleSingle(src, a.scorer)
}

// report emits the observability record for a finished analysis:
// a summary at info and the full series at debug. It has no error
// path and never alters the returned result.
func (a *Analyzer) report(path string, series Series) {
	var sum float64
	vmin, vmax := series[0].Value, series[0].Value
	for _, pt := range series {
		sum += pt.Value
		if pt.Value < vmin {
			vmin = pt.Value
		}
		if pt.Value > vmax {
			vmax = pt.Value
		}
	}

	a.logger.Info("media analyzed",
		zap.String("path", path),
		zap.Int("points", len(series)),
		zap.Float64("avg_value", sum/float64(len(series))),
		zap.Float64("min_value", vmin),
		zap.Float64("max_value", vmax),
		zap.Float64("t_min", series[0].T),
		zap.Float64("t_max", series[len(series)-1].T),
	)
	a.logger.Debug("full series", zap.Any("series", series))
}
