package domain

import (
	"errors"
	"testing"
)

func TestParseQualityTier(t *testing.T) {
	tests := []struct {
		in   string
		want QualityTier
	}{
		{"", QualityStandard},
		{"Standard", QualityStandard},
		{"High Quality", QualityHigh},
		{"high", QualityHigh},
		{" Ultra High Quality ", QualityUltra},
		{"ULTRA", QualityUltra},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseQualityTier(tc.in)
			if err != nil {
				t.Fatalf("ParseQualityTier(%q) error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseQualityTier(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	if _, err := ParseQualityTier("cinematic"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		w, h int
	}{
		{"", 1024, 1024},
		{"1792x1024 (Landscape)", 1792, 1024},
		{"1024x1792 (Portrait)", 1024, 1792},
		{"512x512", 512, 512},
		{"640X480", 640, 480},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			w, h, err := ParseSize(tc.in)
			if err != nil {
				t.Fatalf("ParseSize(%q) error: %v", tc.in, err)
			}
			if w != tc.w || h != tc.h {
				t.Fatalf("ParseSize(%q) = %dx%d, want %dx%d", tc.in, w, h, tc.w, tc.h)
			}
		})
	}

	for _, bad := range []string{"large", "axb", "10x"} {
		if _, _, err := ParseSize(bad); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("ParseSize(%q) error = %v, want ErrInvalidRequest", bad, err)
		}
	}
}

func TestNewGenerationRequestValidation(t *testing.T) {
	req, err := NewGenerationRequest("  sunset castle ", 1024, 1024, QualityStandard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Prompt != "sunset castle" {
		t.Fatalf("prompt = %q, want trimmed", req.Prompt)
	}

	tests := []struct {
		name    string
		prompt  string
		w, h    int
		quality QualityTier
	}{
		{"blank prompt", "   ", 512, 512, QualityHigh},
		{"zero width", "castle", 0, 512, QualityHigh},
		{"negative height", "castle", 512, -1, QualityHigh},
		{"too large", "castle", 4096, 512, QualityHigh},
		{"unknown tier", "castle", 512, 512, QualityTier("extreme")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGenerationRequest(tc.prompt, tc.w, tc.h, tc.quality)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestCredentialStringHidesSecret(t *testing.T) {
	c := Credential{Name: "CLIPDROP_API_KEY", Secret: "s3cret"}
	if got := c.String(); got != "CLIPDROP_API_KEY" {
		t.Fatalf("String() = %q", got)
	}
}

func TestSkippable(t *testing.T) {
	if !Skippable(ErrProviderRateLimited) {
		t.Fatalf("rate limit should be skippable")
	}
	if Skippable(ErrGenerationFailed) {
		t.Fatalf("generation failure is terminal")
	}
}
