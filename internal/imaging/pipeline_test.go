package imaging

import (
	"errors"
	"image"
	"strings"
	"testing"

	"artify/internal/domain"
)

func TestPipelineSelectsSequence(t *testing.T) {
	tests := []struct {
		tier         domain.QualityTier
		credentialed bool
		want         string
	}{
		{domain.QualityStandard, true, SequenceIdentity},
		{domain.QualityHigh, true, SequenceLighter},
		{domain.QualityUltra, true, SequenceLight},
		{domain.QualityStandard, false, SequenceSimple},
		{domain.QualityHigh, false, SequenceMedium},
		{domain.QualityUltra, false, SequenceAdvanced},
	}
	p := NewPipeline()
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			_, report := p.Process(gradientImage(16, 16), tc.tier, tc.credentialed)
			if report.Sequence != tc.want {
				t.Fatalf("sequence = %q, want %q", report.Sequence, tc.want)
			}
			if len(report.Failed) != 0 {
				t.Fatalf("unexpected failures: %v", report.Failed)
			}
		})
	}
}

func TestPipelineIdentityForCredentialedStandard(t *testing.T) {
	img := gradientImage(20, 10)
	out, report := NewPipeline().Process(img, domain.QualityStandard, true)
	if out != image.Image(img) {
		t.Fatalf("identity sequence must return the input image")
	}
	if len(report.Applied) != 0 {
		t.Fatalf("identity applied stages: %v", report.Applied)
	}
}

func TestPipelineAdvancedRunsThreePassesThenSharpens(t *testing.T) {
	_, report := NewPipeline().Process(gradientImage(24, 24), domain.QualityUltra, false)

	if got := report.Passes(); got != 3 {
		t.Fatalf("passes = %d, want 3", got)
	}
	var blurs []string
	for _, s := range report.Applied {
		if strings.HasPrefix(s.Name, "blur") {
			blurs = append(blurs, s.Name)
		}
	}
	wantBlurs := []string{"blur(0.50)", "blur(1.00)", "blur(1.50)"}
	if strings.Join(blurs, ",") != strings.Join(wantBlurs, ",") {
		t.Fatalf("blur radii = %v, want %v", blurs, wantBlurs)
	}
	last := report.Applied[len(report.Applied)-1]
	if !strings.HasPrefix(last.Name, "unsharp") || last.Pass != 0 {
		t.Fatalf("last stage = %+v, want finishing unsharp", last)
	}
	if len(report.Applied) != 3*3+1 {
		t.Fatalf("applied %d stages, want 10", len(report.Applied))
	}
}

func TestPipelineSimpleSequenceOrder(t *testing.T) {
	_, report := NewPipeline().Process(gradientImage(16, 16), domain.QualityStandard, false)
	var names []string
	for _, s := range report.Applied {
		names = append(names, s.Name)
	}
	want := "blur(1.00),contrast(1.80),color(1.60),brightness(1.15),unsharp(4.00,250,0)"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("stages = %s, want %s", got, want)
	}
}

func TestPipelineMediumRunsTwoPasses(t *testing.T) {
	_, report := NewPipeline().Process(gradientImage(16, 16), domain.QualityHigh, false)
	if got := report.Passes(); got != 2 {
		t.Fatalf("passes = %d, want 2", got)
	}
	if len(report.Applied) != 2*4+1 {
		t.Fatalf("applied %d stages, want 9", len(report.Applied))
	}
}

func TestPipelineFallsBackToSharpenWithoutUnsharp(t *testing.T) {
	_, report := NewPipeline(WithoutUnsharpMask()).Process(gradientImage(16, 16), domain.QualityStandard, false)
	n := len(report.Applied)
	if n < 2 || report.Applied[n-1].Name != "sharpen" || report.Applied[n-2].Name != "sharpen" {
		t.Fatalf("expected two trailing sharpen passes, got %v", report.Applied)
	}
	if len(report.Failed) != 1 || !strings.HasPrefix(report.Failed[0], "unsharp") {
		t.Fatalf("failed = %v, want the unsharp stage", report.Failed)
	}
}

func TestPipelinePreservesDimensions(t *testing.T) {
	p := NewPipeline(WithRegionPatch(true))
	for _, cred := range []bool{true, false} {
		for _, tier := range []domain.QualityTier{domain.QualityStandard, domain.QualityHigh, domain.QualityUltra} {
			out, _ := p.Process(gradientImage(33, 17), tier, cred)
			if b := out.Bounds(); b.Dx() != 33 || b.Dy() != 17 {
				t.Fatalf("%s/%v: size = %v, want 33x17", tier, cred, b)
			}
		}
	}
}

func TestPipelineRegionPatchOnlyForAdvanced(t *testing.T) {
	p := NewPipeline(WithRegionPatch(true))
	_, report := p.Process(gradientImage(32, 32), domain.QualityUltra, false)
	if !report.RegionPatch {
		t.Fatalf("advanced sequence should patch the corner")
	}
	_, report = p.Process(gradientImage(32, 32), domain.QualityUltra, true)
	if report.RegionPatch {
		t.Fatalf("credentialed output must not be patched")
	}
}

func TestRunRecoversPanicsAsStageFailure(t *testing.T) {
	p := NewPipeline()
	boom := Stage{Name: "boom", Apply: func(image.Image) (image.Image, error) {
		panic("unsupported filter")
	}}
	_, err := p.run(boom, gradientImage(4, 4))
	if !errors.Is(err, domain.ErrFilterStageFailed) {
		t.Fatalf("err = %v, want ErrFilterStageFailed", err)
	}
}

func TestApplyKeepsBestImageOnFailure(t *testing.T) {
	p := NewPipeline()
	img := gradientImage(8, 8)
	report := &Report{}
	out := p.apply(step{kind: stageBlur, value: -1}, 0, 1, img, report)
	if out != image.Image(img) {
		t.Fatalf("failed stage should return its input")
	}
	if len(report.Failed) != 1 {
		t.Fatalf("failed = %v", report.Failed)
	}
}

func TestFinishKeepsSize(t *testing.T) {
	out := NewPipeline().Finish(gradientImage(9, 7))
	if b := out.Bounds(); b.Dx() != 9 || b.Dy() != 7 {
		t.Fatalf("size = %v", b)
	}
}
