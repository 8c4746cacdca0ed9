package port

import (
	"context"

	"github.com/SdReum/ClassMood/internal/analysis"
)

// MediaAnalyzer produces the engagement series for a local media file.
type MediaAnalyzer interface {
	Analyze(ctx context.Context, path string) (*analysis.Result, error)
}
