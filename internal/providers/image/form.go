package image

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"artify/internal/domain"
)

const defaultKeyHeader = "x-api-key"

// FormClient posts the prompt as a multipart form to a credentialed
// text-to-image endpoint.
type FormClient struct {
	name       string
	endpoint   string
	header     string
	credential domain.Credential
	httpClient *http.Client
}

// FormOptions configures a FormClient.
type FormOptions struct {
	Name       string
	Endpoint   string
	Header     string
	Credential domain.Credential
	HTTPClient *http.Client
}

func NewFormClient(opts FormOptions) *FormClient {
	header := strings.TrimSpace(opts.Header)
	if header == "" {
		header = defaultKeyHeader
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &FormClient{
		name:       opts.Name,
		endpoint:   opts.Endpoint,
		header:     header,
		credential: opts.Credential,
		httpClient: httpClient,
	}
}

func (c *FormClient) Name() string { return c.name }

// HasCredentials reports whether a secret is configured.
func (c *FormClient) HasCredentials() bool {
	return c != nil && strings.TrimSpace(c.credential.Secret) != ""
}

func (c *FormClient) Generate(ctx context.Context, req Request) (*RawImage, error) {
	if !c.HasCredentials() {
		return nil, fmt.Errorf("%s: %w: no secret", c.name, domain.ErrProviderAuth)
	}
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("prompt", req.Prompt); err != nil {
		return nil, fmt.Errorf("%s: build form: %w", c.name, err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("%s: build form: %w", c.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", c.name, domain.ErrProviderTransport, err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set(c.header, c.credential.Secret)
	if req.RequestID != "" {
		httpReq.Header.Set("X-Request-ID", req.RequestID)
	}

	img, mediaType, err := fetchImage(c.httpClient, c.name, httpReq)
	if err != nil {
		return nil, err
	}
	return &RawImage{Image: img, Provider: c.name, Credentialed: true, MIME: mediaType}, nil
}
