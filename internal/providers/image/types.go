package image

import (
	"context"
	"image"

	"artify/internal/domain"
)

// Request is the provider-facing view of a generation request.
type Request struct {
	Prompt    string
	Width     int
	Height    int
	RequestID string
}

// RawImage is the decoded output of the first provider that succeeded.
type RawImage struct {
	Image        image.Image
	Provider     string
	Credentialed bool
	MIME         string
}

// Provider performs a single generation attempt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*RawImage, error)
}

// CredentialSource resolves credential names to the secrets that are set,
// preserving order.
type CredentialSource interface {
	Credentials(ctx context.Context, names []string) []domain.Credential
}
