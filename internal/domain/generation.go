package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// QualityTier controls how aggressive the post-processing sequence is.
type QualityTier string

const (
	QualityStandard QualityTier = "standard"
	QualityHigh     QualityTier = "high"
	QualityUltra    QualityTier = "ultra"
)

// QualityLabels are the labels offered by the UI form, in display order.
var QualityLabels = []struct {
	Label string
	Tier  QualityTier
}{
	{"Standard", QualityStandard},
	{"High Quality", QualityHigh},
	{"Ultra High Quality", QualityUltra},
}

// ParseQualityTier accepts either a tier name or a UI label. An empty value
// selects the standard tier.
func ParseQualityTier(s string) (QualityTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return QualityStandard, nil
	case "high", "high quality":
		return QualityHigh, nil
	case "ultra", "ultra high quality":
		return QualityUltra, nil
	}
	return "", fmt.Errorf("%w: unknown quality %q", ErrInvalidRequest, s)
}

// SizePreset is one of the image sizes offered by the UI form.
type SizePreset struct {
	Label  string
	Width  int
	Height int
}

var SizePresets = []SizePreset{
	{Label: "1024x1024 (Square)", Width: 1024, Height: 1024},
	{Label: "1792x1024 (Landscape)", Width: 1792, Height: 1024},
	{Label: "1024x1792 (Portrait)", Width: 1024, Height: 1792},
	{Label: "512x512 (Small Square)", Width: 512, Height: 512},
}

// ParseSize resolves a preset label or a bare "WxH" token. Unknown presets
// fall back to 1024x1024 like the form does.
func ParseSize(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1024, 1024, nil
	}
	for _, p := range SizePresets {
		if p.Label == s {
			return p.Width, p.Height, nil
		}
	}
	token := strings.Fields(s)[0]
	w, h, ok := strings.Cut(strings.ToLower(token), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: invalid size %q", ErrInvalidRequest, s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid width %q", ErrInvalidRequest, w)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid height %q", ErrInvalidRequest, h)
	}
	return width, height, nil
}

// GenerationRequest is created once per user action and never mutated.
type GenerationRequest struct {
	Prompt  string      `json:"prompt" validate:"required,max=2000"`
	Width   int         `json:"width" validate:"gt=0,lte=2048"`
	Height  int         `json:"height" validate:"gt=0,lte=2048"`
	Quality QualityTier `json:"quality" validate:"required,oneof=standard high ultra"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewGenerationRequest trims the prompt and validates the result.
func NewGenerationRequest(prompt string, width, height int, quality QualityTier) (GenerationRequest, error) {
	req := GenerationRequest{
		Prompt:  strings.TrimSpace(prompt),
		Width:   width,
		Height:  height,
		Quality: quality,
	}
	if err := req.Validate(); err != nil {
		return GenerationRequest{}, err
	}
	return req, nil
}

// Validate checks field constraints and reports violations as ErrInvalidRequest.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrEmptyPrompt)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Credential is a named secret for a credentialed provider. The core only
// ever holds it in memory.
type Credential struct {
	Name   string
	Secret string
}

// String hides the secret value in logs.
func (c Credential) String() string {
	return c.Name
}
