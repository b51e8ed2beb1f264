package imaging

import (
	"fmt"
	"image"
	"io"

	"github.com/rs/zerolog"

	"artify/internal/domain"
)

type stageKind int

const (
	stageBlur stageKind = iota
	stageContrast
	stageColor
	stageBrightness
	stageUnsharp
)

// step describes a stage as data. value grows by increment on every pass
// after the first, which is how the advanced sequence escalates.
type step struct {
	kind      stageKind
	value     float64
	increment float64
	percent   int
	threshold int
}

// sequence is one row of the post-processing table.
type sequence struct {
	credentialed bool
	tier         domain.QualityTier
	name         string
	passes       int
	pass         []step
	finish       []step
}

// Sequence names reported in Report.Sequence.
const (
	SequenceIdentity = "identity"
	SequenceLighter  = "lighter"
	SequenceLight    = "light"
	SequenceSimple   = "simple"
	SequenceMedium   = "medium"
	SequenceAdvanced = "advanced"
)

var sequences = []sequence{
	{credentialed: true, tier: domain.QualityStandard, name: SequenceIdentity},
	{
		credentialed: true, tier: domain.QualityHigh, name: SequenceLighter,
		finish: []step{
			{kind: stageContrast, value: 1.05},
			{kind: stageColor, value: 1.08},
		},
	},
	{
		credentialed: true, tier: domain.QualityUltra, name: SequenceLight,
		finish: []step{
			{kind: stageContrast, value: 1.1},
			{kind: stageColor, value: 1.15},
			{kind: stageUnsharp, value: 1.0, percent: 50, threshold: 2},
		},
	},
	{
		credentialed: false, tier: domain.QualityStandard, name: SequenceSimple,
		passes: 1,
		pass: []step{
			{kind: stageBlur, value: 1.0},
			{kind: stageContrast, value: 1.8},
			{kind: stageColor, value: 1.6},
			{kind: stageBrightness, value: 1.15},
		},
		finish: []step{
			{kind: stageUnsharp, value: 4, percent: 250, threshold: 0},
		},
	},
	{
		credentialed: false, tier: domain.QualityHigh, name: SequenceMedium,
		passes: 2,
		pass: []step{
			{kind: stageBlur, value: 1.0},
			{kind: stageContrast, value: 1.5},
			{kind: stageBrightness, value: 1.1},
			{kind: stageColor, value: 1.4},
		},
		finish: []step{
			{kind: stageUnsharp, value: 3, percent: 180, threshold: 1},
		},
	},
	{
		credentialed: false, tier: domain.QualityUltra, name: SequenceAdvanced,
		passes: 3,
		pass: []step{
			{kind: stageBlur, value: 0.5, increment: 0.5},
			{kind: stageContrast, value: 1.2, increment: 0.1},
			{kind: stageColor, value: 1.2, increment: 0.1},
		},
		finish: []step{
			{kind: stageUnsharp, value: 2, percent: 150, threshold: 3},
		},
	},
}

func lookupSequence(tier domain.QualityTier, credentialed bool) sequence {
	for _, s := range sequences {
		if s.tier == tier && s.credentialed == credentialed {
			return s
		}
	}
	// Unknown tiers get the mildest treatment for their source.
	if credentialed {
		return sequences[0]
	}
	return sequences[3]
}

// AppliedStage records a stage that ran. Pass is 1-based for iterated
// stages and 0 for finishing stages.
type AppliedStage struct {
	Name string
	Pass int
}

// Report describes what Process did to an image.
type Report struct {
	Sequence    string
	RegionPatch bool
	Applied     []AppliedStage
	Failed      []string
}

// Passes counts the distinct iteration passes that ran at least one stage.
func (r Report) Passes() int {
	seen := map[int]struct{}{}
	for _, s := range r.Applied {
		if s.Pass > 0 {
			seen[s.Pass] = struct{}{}
		}
	}
	return len(seen)
}

// Pipeline selects and runs a post-processing sequence.
type Pipeline struct {
	logger      zerolog.Logger
	regionPatch bool
	unsharp     bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for stage failures.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithRegionPatch enables the bottom-right region replacement ahead of the
// advanced sequence.
func WithRegionPatch(enabled bool) Option {
	return func(p *Pipeline) { p.regionPatch = enabled }
}

// WithoutUnsharpMask makes unsharp stages fall back to two sharpen passes.
func WithoutUnsharpMask() Option {
	return func(p *Pipeline) { p.unsharp = false }
}

func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:  zerolog.New(io.Discard),
		unsharp: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the sequence chosen for (tier, credentialed) over img. Stage
// failures are recorded and skipped; the result is always the best image
// produced so far. The identity sequence returns img itself.
func (p *Pipeline) Process(img image.Image, tier domain.QualityTier, credentialed bool) (image.Image, Report) {
	seq := lookupSequence(tier, credentialed)
	report := Report{Sequence: seq.name}
	current := img

	if p.regionPatch && seq.name == SequenceAdvanced {
		out, err := p.run(Stage{Name: "region-patch", Apply: func(in image.Image) (image.Image, error) {
			return PatchWatermarkRegion(in), nil
		}}, current)
		if err != nil {
			report.Failed = append(report.Failed, "region-patch")
		} else {
			current = out
			report.RegionPatch = true
		}
	}

	for pass := 0; pass < seq.passes; pass++ {
		for _, st := range seq.pass {
			current = p.apply(st, pass, pass+1, current, &report)
		}
	}
	for _, st := range seq.finish {
		current = p.apply(st, 0, 0, current, &report)
	}
	return current, report
}

func (p *Pipeline) apply(st step, iteration, pass int, img image.Image, report *Report) image.Image {
	stage, fallback := p.stageFor(st, iteration)
	out, err := p.run(stage, img)
	if err == nil {
		report.Applied = append(report.Applied, AppliedStage{Name: stage.Name, Pass: pass})
		return out
	}
	report.Failed = append(report.Failed, stage.Name)
	for _, fb := range fallback {
		next, fbErr := p.run(fb, img)
		if fbErr != nil {
			report.Failed = append(report.Failed, fb.Name)
			continue
		}
		report.Applied = append(report.Applied, AppliedStage{Name: fb.Name, Pass: pass})
		img = next
	}
	return img
}

// stageFor materializes a step for the given zero-based iteration, along
// with the stages to run if it fails.
func (p *Pipeline) stageFor(st step, iteration int) (Stage, []Stage) {
	v := st.value + st.increment*float64(iteration)
	switch st.kind {
	case stageBlur:
		return Blur(v), nil
	case stageContrast:
		return Contrast(v), nil
	case stageColor:
		return Color(v), nil
	case stageBrightness:
		return Brightness(v), nil
	case stageUnsharp:
		fallback := []Stage{Sharpen(), Sharpen()}
		if !p.unsharp {
			return unavailable(fmt.Sprintf("unsharp(%.2f,%d,%d)", v, st.percent, st.threshold), ErrUnsharpUnavailable), fallback
		}
		return UnsharpMask(v, st.percent, st.threshold), fallback
	}
	return unavailable("unknown", fmt.Errorf("unknown stage kind %d", st.kind)), nil
}

// run executes a stage, converting errors and panics into ErrFilterStageFailed.
func (p *Pipeline) run(stage Stage, img image.Image) (out image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: panic: %v", domain.ErrFilterStageFailed, stage.Name, r)
		}
		if err != nil {
			p.logger.Warn().Err(err).Str("stage", stage.Name).Msg("imaging: stage skipped")
		}
	}()
	out, err = stage.Apply(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFilterStageFailed, stage.Name, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s: no output", domain.ErrFilterStageFailed, stage.Name)
	}
	return out, nil
}

// Finish is the closing enhancement applied to every generated image:
// contrast and color, both x1.1. Failures leave the image as is.
func (p *Pipeline) Finish(img image.Image) image.Image {
	for _, stage := range []Stage{Contrast(1.1), Color(1.1)} {
		if out, err := p.run(stage, img); err == nil {
			img = out
		}
	}
	return img
}
