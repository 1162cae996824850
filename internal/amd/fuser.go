package amd

import (
	"context"
	"errors"
	"math"
	"time"

	"call-disposition/internal/audio"
	"call-disposition/internal/cultural"
	"call-disposition/pkg/logger"
)

// Config tunes the fuser. Values come from external configuration; see
// internal/config.
type Config struct {
	// Sensitivity is the machine-confidence threshold. A call is classified
	// as an answering machine when fused confidence exceeds it.
	Sensitivity float64

	// MaxDetectionTime bounds the whole analysis group. One timeout governs
	// the scatter/gather, not per-stage deadlines.
	MaxDetectionTime time.Duration
}

func (c Config) withDefaults() Config {
	out := c
	if out.Sensitivity <= 0 {
		out.Sensitivity = 0.5
	}
	if out.MaxDetectionTime <= 0 {
		out.MaxDetectionTime = 5 * time.Second
	}
	return out
}

var ErrDetectionTimeout = errors.New("amd: detection timed out")

// Fuser combines classifier confidence, cultural markers, and beep
// detection into a single answering-machine verdict.
//
// Confidence polarity: everything below fuses on the machine axis. The
// classifier reports human likelihood; the fuser inverts it once at the
// base and applies boosts upward toward "machine". The verdict is
// confidence > sensitivity. This is deliberately a single polarity for
// base, boosts, threshold, and the reported value.
type Fuser struct {
	cfg Config

	transcriber audio.Transcriber
	classifier  Classifier
	patterns    *cultural.Bank
	beep        *BeepDetector

	clock func() time.Time
}

func NewFuser(cfg Config, t audio.Transcriber, c Classifier, bank *cultural.Bank) *Fuser {
	if t == nil {
		t = audio.NoopTranscriber()
	}
	if c == nil {
		c = NewHeuristicClassifier()
	}
	if bank == nil {
		bank = cultural.DefaultBank()
	}
	return &Fuser{
		cfg:         cfg.withDefaults(),
		transcriber: t,
		classifier:  c,
		patterns:    bank,
		beep:        NewBeepDetector(),
		clock:       time.Now,
	}
}

type culturalOut struct {
	match cultural.Match
	err   error
}

type classifyOut struct {
	cls Classification
	err error
}

// Analyze runs the three analysis stages concurrently, joins once, and
// fuses. It always returns a fully populated result within the configured
// maximum detection time; internal failures and timeouts produce the
// conservative fallback (treat as human, continue the call) because a
// missed machine is cheaper than dropping a live caller.
func (f *Fuser) Analyze(ctx context.Context, seg audio.Segment, phoneNumber string) DetectionResult {
	start := f.clock()
	log := logger.From(ctx)

	feats, err := audio.Extract(seg)
	if err != nil {
		log.Warn("amd fallback", "stage", "features", "err", err, "phone", phoneNumber)
		return f.fallback(start)
	}

	groupCtx, cancel := context.WithTimeout(ctx, f.cfg.MaxDetectionTime)
	defer cancel()

	culturalCh := make(chan culturalOut, 1)
	classifyCh := make(chan classifyOut, 1)
	beepCh := make(chan BeepResult, 1)

	go func() {
		transcript, terr := f.transcriber.Transcribe(groupCtx, seg)
		if terr != nil {
			culturalCh <- culturalOut{err: terr}
			return
		}
		culturalCh <- culturalOut{match: f.patterns.Match(transcript)}
	}()
	go func() {
		cls, cerr := f.classifier.Classify(groupCtx, feats)
		classifyCh <- classifyOut{cls: cls, err: cerr}
	}()
	go func() {
		beepCh <- f.beep.Detect(seg)
	}()

	// Single join point. All three stages complete or the group deadline
	// expires; there is no early-exit short-circuit.
	var (
		cult culturalOut
		cls  classifyOut
		beep BeepResult
	)
	for pending := 3; pending > 0; pending-- {
		select {
		case cult = <-culturalCh:
			if cult.err != nil {
				log.Warn("amd fallback", "stage", "cultural", "err", cult.err, "phone", phoneNumber)
				return f.fallback(start)
			}
		case cls = <-classifyCh:
			if cls.err != nil {
				log.Warn("amd fallback", "stage", "classifier", "err", cls.err, "phone", phoneNumber)
				return f.fallback(start)
			}
		case beep = <-beepCh:
		case <-groupCtx.Done():
			log.Warn("amd fallback", "stage", "join", "err", ErrDetectionTimeout, "phone", phoneNumber)
			return f.fallback(start)
		}
	}

	return f.fuse(start, cult.match, cls.cls, beep)
}

func (f *Fuser) fuse(start time.Time, match cultural.Match, cls Classification, beep BeepResult) DetectionResult {
	// Base: invert the classifier's human likelihood onto the machine axis.
	confidence := 1 - cls.HumanLikelihood
	indicators := cls.Indicators

	// Cultural boost. A matched machine-script phrase is direct evidence;
	// a recognized greeting is weaker evidence of a scripted opening.
	if len(match.MachinePhrases) > 0 {
		confidence *= 1.25
		indicators = append(indicators, "machine_script_phrase")
	} else if match.GreetingMatched() {
		confidence *= 1.1
	}
	if confidence > 1 {
		confidence = 1
	}

	// Beep boost: tone presence is strong machine evidence.
	if beep.Detected {
		confidence = math.Min(0.95, confidence+0.3)
		indicators = append(indicators, "beep_tone")
	}

	isMachine := confidence > f.cfg.Sensitivity

	action := ActionContinueCall
	if isMachine {
		if match.GreetingMatched() {
			action = ActionLeaveMessage
		} else {
			action = ActionCallbackLater
		}
	}

	return DetectionResult{
		IsAnsweringMachine: isMachine,
		Confidence:         confidence,
		DetectionTimeMs:    int(f.clock().Sub(start) / time.Millisecond),
		AudioAnalysis: AudioAnalysis{
			GreetingPattern:   match.GreetingPattern,
			HumanLikelihood:   cls.HumanLikelihood,
			MachineIndicators: indicators,
			CulturalMarkers:   match.Markers,
			Beep:              beep,
		},
		CulturalContext: CulturalContext{
			MalayalamGreeting: match.MalayalamGreeting,
			Formality:         match.Formality,
			Dialect:           match.Dialect,
		},
		RecommendedAction: action,
	}
}

// fallback is the conservative default verdict: treat the far end as a
// live human and keep the call going.
func (f *Fuser) fallback(start time.Time) DetectionResult {
	return DetectionResult{
		IsAnsweringMachine: false,
		Confidence:         0.5,
		DetectionTimeMs:    int(f.clock().Sub(start) / time.Millisecond),
		AudioAnalysis: AudioAnalysis{
			GreetingPattern: cultural.LanguageUnknown,
			HumanLikelihood: 0.5,
		},
		CulturalContext: CulturalContext{
			Formality: cultural.FormalityCasual,
			Dialect:   cultural.DialectUnknown,
		},
		RecommendedAction: ActionContinueCall,
	}
}
