package amd

import "call-disposition/internal/cultural"

// Action is the recommended next step handed to the dialer after a verdict.
type Action string

const (
	ActionLeaveMessage  Action = "leave_message"
	ActionCallbackLater Action = "callback_later"
	ActionHumanTransfer Action = "human_transfer"
	ActionContinueCall  Action = "continue_call"
)

// BeepResult is the tone-scan sub-result.
type BeepResult struct {
	Detected    bool    `json:"detected"`
	FrequencyHz float64 `json:"frequency_hz,omitempty"`
	OffsetMs    int     `json:"offset_ms,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// AudioAnalysis carries the per-stage evidence behind a verdict.
type AudioAnalysis struct {
	GreetingPattern   cultural.Language `json:"greeting_pattern"`
	HumanLikelihood   float64           `json:"human_likelihood"`
	MachineIndicators []string          `json:"machine_indicators"`
	CulturalMarkers   []string          `json:"cultural_markers"`
	Beep              BeepResult        `json:"beep"`
}

// CulturalContext summarizes the cultural read of the far end.
type CulturalContext struct {
	MalayalamGreeting bool               `json:"malayalam_greeting"`
	Formality         cultural.Formality `json:"formality"`
	Dialect           cultural.Dialect   `json:"dialect"`
}

// DetectionResult is the immutable outcome of one detection call.
//
// Confidence polarity: Confidence is the fused belief that the far end is
// an answering machine. The verdict compares it against the configured
// sensitivity threshold; higher confidence means more machine-like.
// Results are always fully populated; internal failures surface as the
// conservative fallback result, never as a partial value.
type DetectionResult struct {
	IsAnsweringMachine bool    `json:"is_answering_machine"`
	Confidence         float64 `json:"confidence"`
	DetectionTimeMs    int     `json:"detection_time_ms"`

	AudioAnalysis   AudioAnalysis   `json:"audio_analysis"`
	CulturalContext CulturalContext `json:"cultural_context"`

	RecommendedAction Action `json:"recommended_action"`
}
