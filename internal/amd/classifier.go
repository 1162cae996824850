package amd

import (
	"context"
	"errors"

	"call-disposition/internal/audio"
)

// Classification is the ML stage output: a human-likelihood score plus the
// indicator tags that drove it.
type Classification struct {
	// HumanLikelihood is the model's belief the far end is a live human,
	// in [0,1].
	HumanLikelihood float64
	// Indicators are machine-indicator tags, in scoring order.
	Indicators []string
}

// Classifier scores acoustic features. The production model sits behind
// this interface; the heuristic implementation below is the shipped
// default and the test double's shape.
type Classifier interface {
	Classify(ctx context.Context, f audio.Features) (Classification, error)
}

var ErrClassifier = errors.New("amd: classifier failure")

// HeuristicClassifier scores the timing profile of the greeting. Live
// humans answer with a short utterance and wait; machines play a long,
// flat, pause-free script.
type HeuristicClassifier struct{}

func NewHeuristicClassifier() *HeuristicClassifier { return &HeuristicClassifier{} }

func (c *HeuristicClassifier) Classify(ctx context.Context, f audio.Features) (Classification, error) {
	if f.DurationMs == 0 {
		return Classification{}, ErrClassifier
	}

	out := Classification{HumanLikelihood: 0.8}

	if f.LongestRunMs > 3000 {
		out.HumanLikelihood -= 0.3
		out.Indicators = append(out.Indicators, "long_uninterrupted_speech")
	} else if f.LongestRunMs > 1800 {
		out.HumanLikelihood -= 0.15
		out.Indicators = append(out.Indicators, "extended_greeting")
	}

	if f.PauseCount == 0 && f.DurationMs > 2500 && f.SpeechRatio > 0.6 {
		out.HumanLikelihood -= 0.2
		out.Indicators = append(out.Indicators, "no_conversational_pauses")
	}

	if f.EnergyVariance < 0.0005 && f.SpeechRatio > 0.5 {
		out.HumanLikelihood -= 0.15
		out.Indicators = append(out.Indicators, "flat_energy_profile")
	}

	if f.SpeechRatio > 0.85 {
		out.HumanLikelihood -= 0.1
		out.Indicators = append(out.Indicators, "continuous_playback")
	}

	// Very short pickups ("hello?") are strongly human.
	if f.DurationMs < 1500 && f.PauseCount == 0 && f.LongestRunMs < 1200 {
		out.HumanLikelihood += 0.15
	}

	if out.HumanLikelihood < 0 {
		out.HumanLikelihood = 0
	}
	if out.HumanLikelihood > 1 {
		out.HumanLikelihood = 1
	}
	return out, nil
}
