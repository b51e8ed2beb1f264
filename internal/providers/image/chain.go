package image

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"artify/internal/domain"
	"artify/internal/imaging"
	"artify/internal/infra"
)

// ChainOptions configures a Chain.
type ChainOptions struct {
	Providers       []infra.ProviderConfig
	Fallbacks       []infra.FallbackConfig
	Credentials     CredentialSource
	HTTPClient      *http.Client
	ProviderTimeout time.Duration
	FallbackTimeout time.Duration
	Logger          *infra.Logger
}

// Chain tries credentialed providers first, each credential in order, then
// the no-credential providers. The first success wins.
type Chain struct {
	providers       []infra.ProviderConfig
	fallbacks       []fallback
	credentials     CredentialSource
	httpClient      *http.Client
	providerTimeout time.Duration
	logger          *infra.Logger
}

type fallback struct {
	provider Provider
	timeout  time.Duration
}

func NewChain(opts ChainOptions) *Chain {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	providerTimeout := opts.ProviderTimeout
	if providerTimeout <= 0 {
		providerTimeout = 60 * time.Second
	}
	fallbackTimeout := opts.FallbackTimeout
	if fallbackTimeout <= 0 {
		fallbackTimeout = 60 * time.Second
	}

	c := &Chain{
		providers:       opts.Providers,
		credentials:     opts.Credentials,
		httpClient:      httpClient,
		providerTimeout: providerTimeout,
		logger:          logger,
	}
	for _, f := range opts.Fallbacks {
		timeout := fallbackTimeout
		if f.TimeoutSeconds > 0 {
			timeout = time.Duration(f.TimeoutSeconds) * time.Second
		}
		c.fallbacks = append(c.fallbacks, fallback{
			provider: NewPollinationsClient(f.Name, f.BaseURL, f.Model, httpClient),
			timeout:  timeout,
		})
	}
	return c
}

// Generate returns the first image any provider produced, resized to the
// requested dimensions. When every attempt fails the error wraps
// domain.ErrGenerationFailed together with each attempt's error.
func (c *Chain) Generate(ctx context.Context, req Request) (*RawImage, error) {
	var errs []error

	for _, p := range c.providers {
		if c.credentials == nil {
			break
		}
		for _, cred := range c.credentials.Credentials(ctx, p.Secrets) {
			client := NewFormClient(FormOptions{
				Name:       p.Name,
				Endpoint:   p.Endpoint,
				Header:     p.Header,
				Credential: cred,
				HTTPClient: c.httpClient,
			})
			raw, err := c.attempt(ctx, client, c.providerTimeout, req)
			if err == nil {
				raw.Credentialed = true
				return raw, nil
			}
			c.logAttempt(req, p.Name, cred.Name, err)
			errs = append(errs, err)
			if ctx.Err() != nil {
				return nil, c.failure(ctx, errs)
			}
		}
	}

	for _, f := range c.fallbacks {
		raw, err := c.attempt(ctx, f.provider, f.timeout, req)
		if err == nil {
			raw.Credentialed = false
			return raw, nil
		}
		c.logAttempt(req, f.provider.Name(), "", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, c.failure(ctx, errs)
}

func (c *Chain) attempt(ctx context.Context, p Provider, timeout time.Duration, req Request) (*RawImage, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := p.Generate(attemptCtx, req)
	if err != nil {
		return nil, err
	}
	if raw == nil || raw.Image == nil {
		return nil, fmt.Errorf("%s: %w: empty image", p.Name(), domain.ErrProviderBadResponse)
	}
	raw.Image = imaging.FitExact(raw.Image, req.Width, req.Height)
	return raw, nil
}

func (c *Chain) logAttempt(req Request, provider, credential string, err error) {
	evt := c.logger.Warn().
		Err(err).
		Str("provider", provider).
		Str("request_id", req.RequestID)
	if credential != "" {
		evt = evt.Str("credential", credential)
	}
	if status := StatusOf(err); status != 0 {
		evt = evt.Int("status", status)
	}
	evt.Msg("image provider attempt failed")
}

func (c *Chain) failure(ctx context.Context, errs []error) error {
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no providers configured"))
	}
	return fmt.Errorf("%w: %w", domain.ErrGenerationFailed, errors.Join(errs...))
}
