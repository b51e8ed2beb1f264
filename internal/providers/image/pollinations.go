package image

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"artify/internal/domain"
)

// SeedRange bounds the deterministic seed sent to no-credential providers.
const SeedRange = 1000

const fallbackUserAgent = "Mozilla/5.0"

// PromptSeed maps a prompt to a stable seed in [0, SeedRange).
func PromptSeed(prompt string) int {
	sum := sha256.Sum256([]byte(prompt))
	return int(binary.BigEndian.Uint64(sum[:8]) % SeedRange)
}

// BuildFallbackURL renders the GET URL of a no-credential provider.
func BuildFallbackURL(baseURL, model string, req Request) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	b.WriteString("/prompt/")
	b.WriteString(url.PathEscape(req.Prompt))
	fmt.Fprintf(&b, "?width=%d&height=%d&seed=%d&enhance=true&nologo=true",
		req.Width, req.Height, PromptSeed(req.Prompt))
	if model = strings.TrimSpace(model); model != "" {
		b.WriteString("&model=")
		b.WriteString(url.QueryEscape(model))
	}
	return b.String()
}

// PollinationsClient fetches images from a public GET endpoint that needs no
// credential.
type PollinationsClient struct {
	name       string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewPollinationsClient(name, baseURL, model string, httpClient *http.Client) *PollinationsClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PollinationsClient{name: name, baseURL: baseURL, model: model, httpClient: httpClient}
}

func (c *PollinationsClient) Name() string { return c.name }

func (c *PollinationsClient) Generate(ctx context.Context, req Request) (*RawImage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, BuildFallbackURL(c.baseURL, c.model, req), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", c.name, domain.ErrProviderTransport, err)
	}
	httpReq.Header.Set("User-Agent", fallbackUserAgent)
	if req.RequestID != "" {
		httpReq.Header.Set("X-Request-ID", req.RequestID)
	}
	img, mediaType, err := fetchImage(c.httpClient, c.name, httpReq)
	if err != nil {
		return nil, err
	}
	return &RawImage{Image: img, Provider: c.name, MIME: mediaType}, nil
}
