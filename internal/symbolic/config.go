package symbolic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DaisyQuest/Transcriberator/internal/errors"
)

// TranscriptionPipelineConfig gates the symbolic layer. Zero values are not
// meaningful; construct with DefaultPipelineConfig and override fields.
type TranscriptionPipelineConfig struct {
	AnalysisSampleRateHz     int            `json:"analysis_sample_rate_hz" yaml:"analysis_sample_rate_hz"`
	AnalysisChannels         int            `json:"analysis_channels" yaml:"analysis_channels"`
	FrameMs                  int            `json:"frame_ms" yaml:"frame_ms"`
	FrameOverlap             float64        `json:"frame_overlap" yaml:"frame_overlap"`
	EnableSourceSeparation   bool           `json:"enable_source_separation" yaml:"enable_source_separation"`
	EnableDynamics           bool           `json:"enable_dynamics_and_articulations" yaml:"enable_dynamics_and_articulations"`
	QuantizationSubdivisions []string       `json:"quantization_subdivisions" yaml:"quantization_subdivisions"`
	ChordVocabulary          []ChordQuality `json:"chord_vocabulary" yaml:"chord_vocabulary"`
	LowConfidenceThreshold   float64        `json:"low_confidence_threshold" yaml:"low_confidence_threshold"`
	EnableHumanReview        bool           `json:"enable_human_review" yaml:"enable_human_review"`
}

// DefaultPipelineConfig returns the configuration the worker assumes when
// the caller supplies none.
func DefaultPipelineConfig() TranscriptionPipelineConfig {
	return TranscriptionPipelineConfig{
		AnalysisSampleRateHz:     44100,
		AnalysisChannels:         1,
		FrameMs:                  30,
		FrameOverlap:             0.5,
		EnableSourceSeparation:   true,
		EnableDynamics:           false,
		QuantizationSubdivisions: []string{"1/4", "1/8", "1/16"},
		ChordVocabulary:          SupportedQualities(),
		LowConfidenceThreshold:   0.4,
		EnableHumanReview:        true,
	}
}

// Validate checks every field against its documented domain. Any violation
// is a hard failure raised before analysis runs.
func (c TranscriptionPipelineConfig) Validate() error {
	if c.AnalysisSampleRateHz <= 0 {
		return errors.NewValidationError("analysis_sample_rate_hz", "must be > 0")
	}
	if c.AnalysisChannels != 1 && c.AnalysisChannels != 2 {
		return errors.NewValidationError("analysis_channels", "must be 1 or 2")
	}
	if c.FrameMs < 20 || c.FrameMs > 50 {
		return errors.NewValidationError("frame_ms", "must be in [20, 50]")
	}
	if c.FrameOverlap < 0 || c.FrameOverlap >= 1 {
		return errors.NewValidationError("frame_overlap", "must be in [0.0, 1.0)")
	}
	if len(c.QuantizationSubdivisions) == 0 {
		return errors.NewValidationError("quantization_subdivisions", "must be non-empty")
	}
	if len(c.ChordVocabulary) == 0 {
		return errors.NewValidationError("chord_vocabulary", "must be non-empty")
	}
	for _, q := range c.ChordVocabulary {
		if !isSupportedQuality(q) {
			return errors.NewValidationError("chord_vocabulary", fmt.Sprintf("contains unsupported quality %q", string(q)))
		}
	}
	if c.LowConfidenceThreshold < 0 || c.LowConfidenceThreshold > 1 {
		return errors.NewValidationError("low_confidence_threshold", "must be in [0.0, 1.0]")
	}
	return nil
}

// ExecutionPlan renders the ordered, human-auditable list of configured
// stages.
func (c TranscriptionPipelineConfig) ExecutionPlan(preset, modelVersion string) []string {
	overlap := strconv.FormatFloat(c.FrameOverlap, 'g', -1, 64)
	return []string{
		fmt.Sprintf("decode_audio(sample_rate=%d channels=%d frame_ms=%d overlap=%s)",
			c.AnalysisSampleRateHz, c.AnalysisChannels, c.FrameMs, overlap),
		"separate_sources(" + enabledWord(c.EnableSourceSeparation) + ")",
		fmt.Sprintf("frame_signal(frame_ms=%d overlap=%s)", c.FrameMs, overlap),
		"detect_onsets(threshold=adaptive)",
		"estimate_pitches(fusion=zero_crossing,autocorrelation,spectral)",
		"quantize_timing(subdivisions=" + strings.Join(c.QuantizationSubdivisions, ",") + ")",
		"identify_chords(vocabulary=" + c.vocabularyList() + ")",
		"classify_instrument(preset=" + preset + ")",
		"infer_dynamics_articulations(" + enabledWord(c.EnableDynamics) + ")",
		fmt.Sprintf("score_confidence(threshold=%s)", strconv.FormatFloat(c.LowConfidenceThreshold, 'g', -1, 64)),
		"emit_result(model_version=" + modelVersion + ")",
	}
}

// ChordStrategy renders the ordered chord-matching strategy trace.
func (c TranscriptionPipelineConfig) ChordStrategy() []string {
	return []string{
		"normalize_frames(dedupe sort)",
		"match_intervals(vocabulary=" + c.vocabularyList() + ")",
		"prefer_bass_root(lowest_pitch_first)",
		"require_pitch_classes(min=3)",
		"dedupe_labels(order_preserving)",
		"isolate_pitches(threshold=max(2,peak/2))",
		"emit_chords(first_match_wins)",
	}
}

// ReviewFlags reports the human-review outcome for a finished result: a
// disabled marker, a low-confidence marker plus the fixed suggested actions,
// or the within-threshold marker.
func (c TranscriptionPipelineConfig) ReviewFlags(confidence float64) []string {
	if !c.EnableHumanReview {
		return []string{"human_review_disabled"}
	}
	if confidence < c.LowConfidenceThreshold {
		return []string{
			fmt.Sprintf("low_confidence_segment(confidence=%.3f threshold=%s)",
				confidence, strconv.FormatFloat(c.LowConfidenceThreshold, 'g', -1, 64)),
			"suggest_actions:re-quantize,key_adjust,merge_split_notes,fix_chords",
		}
	}
	return []string{"confidence_within_threshold"}
}

func (c TranscriptionPipelineConfig) vocabularyList() string {
	parts := make([]string, len(c.ChordVocabulary))
	for i, q := range c.ChordVocabulary {
		parts[i] = string(q)
	}
	return strings.Join(parts, ",")
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
