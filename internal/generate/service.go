package generate

import (
	"context"
	"fmt"
	"image"
	"time"

	"artify/internal/domain"
	"artify/internal/imaging"
	"artify/internal/infra"
	providers "artify/internal/providers/image"
)

// Generator produces the raw image for a request.
type Generator interface {
	Generate(ctx context.Context, req providers.Request) (*providers.RawImage, error)
}

// Processor post-processes a raw image.
type Processor interface {
	Process(img image.Image, tier domain.QualityTier, credentialed bool) (image.Image, imaging.Report)
	Finish(img image.Image) image.Image
}

// Result is a finished, display-ready image.
type Result struct {
	Image        image.Image
	PNG          []byte
	Prompt       string
	Provider     string
	Credentialed bool
	Sequence     string
	Report       imaging.Report
	Filename     string
	MIME         string
}

// Service runs a request through the provider chain and the filter pipeline.
type Service struct {
	generator Generator
	processor Processor
	logger    *infra.Logger
}

func NewService(generator Generator, processor Processor, logger *infra.Logger) *Service {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Service{generator: generator, processor: processor, logger: logger}
}

// Generate validates req, fetches a raw image, applies the selected sequence
// and the closing enhancement, and encodes the result as PNG. Nothing is
// processed when no provider succeeds.
func (s *Service) Generate(ctx context.Context, req domain.GenerationRequest, requestID string) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	raw, err := s.generator.Generate(ctx, providers.Request{
		Prompt:    req.Prompt,
		Width:     req.Width,
		Height:    req.Height,
		RequestID: requestID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", requestID).Msg("generate: no provider produced an image")
		return nil, err
	}

	processed, report := s.processor.Process(raw.Image, req.Quality, raw.Credentialed)
	final := imaging.FitExact(s.processor.Finish(processed), req.Width, req.Height)

	data, err := imaging.EncodePNG(final)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	s.logger.Info().
		Str("request_id", requestID).
		Str("provider", raw.Provider).
		Bool("credentialed", raw.Credentialed).
		Str("quality", string(req.Quality)).
		Str("sequence", report.Sequence).
		Int("stages", len(report.Applied)).
		Strs("failed_stages", report.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("generate: image ready")

	return &Result{
		Image:        final,
		PNG:          data,
		Prompt:       req.Prompt,
		Provider:     raw.Provider,
		Credentialed: raw.Credentialed,
		Sequence:     report.Sequence,
		Report:       report,
		Filename:     imaging.DownloadFilename,
		MIME:         imaging.PNGMime,
	}, nil
}
