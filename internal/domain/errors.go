package domain

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid generation request")
	ErrProviderAuth        = errors.New("provider rejected credential")
	ErrProviderRateLimited = errors.New("provider rate limited")
	ErrProviderTransport   = errors.New("provider transport failure")
	ErrProviderBadResponse = errors.New("provider returned unusable response")
	ErrGenerationFailed    = errors.New("image generation failed")
	ErrFilterStageFailed   = errors.New("filter stage failed")
	ErrEmptyPrompt         = errors.New("prompt is empty")
)

// Skippable reports whether a provider error should advance the fallback
// chain instead of aborting it.
func Skippable(err error) bool {
	return errors.Is(err, ErrProviderAuth) ||
		errors.Is(err, ErrProviderRateLimited) ||
		errors.Is(err, ErrProviderTransport) ||
		errors.Is(err, ErrProviderBadResponse)
}
