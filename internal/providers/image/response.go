package image

import (
	"errors"
	"fmt"
	"image"
	"io"
	"mime"
	"net/http"
	"strings"

	"artify/internal/domain"
	"artify/internal/imaging"
)

const maxImageBytes = 32 << 20

// ResponseError carries the HTTP status of a rejected attempt.
type ResponseError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: %v (status %d)", e.Provider, e.Err, e.Status)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status recorded in err, or 0.
func StatusOf(err error) int {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// fetchImage executes req and classifies the outcome into the provider
// sentinel errors.
func fetchImage(client *http.Client, provider string, req *http.Request) (image.Image, string, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w: %v", provider, domain.ErrProviderTransport, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(provider, resp.StatusCode); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, "", err
	}
	mediaType := contentType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, "", &ResponseError{
			Provider: provider,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%w: content type %q", domain.ErrProviderBadResponse, mediaType),
		}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w: read body: %v", provider, domain.ErrProviderTransport, err)
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, "", &ResponseError{
			Provider: provider,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%w: %v", domain.ErrProviderBadResponse, err),
		}
	}
	return img, mediaType, nil
}

func classifyStatus(provider string, status int) error {
	var err error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		err = domain.ErrProviderAuth
	case status == http.StatusTooManyRequests:
		err = domain.ErrProviderRateLimited
	case status < 200 || status > 299:
		err = domain.ErrProviderBadResponse
	default:
		return nil
	}
	return &ResponseError{Provider: provider, Status: status, Err: err}
}

func contentType(header string) string {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(header))
	}
	return mediaType
}
