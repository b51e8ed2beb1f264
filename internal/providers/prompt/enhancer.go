package prompt

import (
	"context"
	"strings"

	"artify/internal/domain"
)

// QualitySuffix is appended to prompts by the static enhancer.
const QualitySuffix = ", highly detailed, professional quality, vibrant colors, masterpiece, award-winning, cinematic lighting, 4K resolution"

// Enhancer rewrites a prompt to steer providers toward better output.
type Enhancer interface {
	Enhance(ctx context.Context, prompt string) (string, error)
}

// StaticEnhancer appends QualitySuffix. It never calls out to a model.
type StaticEnhancer struct{}

func NewStaticEnhancer() *StaticEnhancer {
	return &StaticEnhancer{}
}

func (s *StaticEnhancer) Enhance(ctx context.Context, prompt string) (string, error) {
	prompt = strings.Join(strings.Fields(prompt), " ")
	if prompt == "" {
		return "", domain.ErrEmptyPrompt
	}
	if strings.HasSuffix(prompt, QualitySuffix) {
		return prompt, nil
	}
	return prompt + QualitySuffix, nil
}
