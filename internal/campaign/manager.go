package campaign

import (
	"context"

	"call-disposition/internal/amd"
	"call-disposition/internal/audio"
	"call-disposition/internal/cultural"
	"call-disposition/pkg/logger"
)

// Analyzer is the detection boundary the manager depends on.
type Analyzer interface {
	Analyze(ctx context.Context, seg audio.Segment, phoneNumber string) amd.DetectionResult
}

// MessageDeliverer plays a campaign message into the call. The dialer
// system implements this; delivery failures are reported but never undo
// analytics increments.
type MessageDeliverer interface {
	Deliver(ctx context.Context, campaignID, phoneNumber string, language cultural.Language, message string) error
}

// ProcessResult is the outcome of one campaign call.
type ProcessResult struct {
	AMD              amd.DetectionResult `json:"amd"`
	MessageDelivered bool                `json:"message_delivered"`
	// CulturalAdaptation is the language of the message variant selected
	// for a machine verdict; empty for human connections.
	CulturalAdaptation cultural.Language `json:"cultural_adaptation,omitempty"`
}

// Manager binds calls to campaigns: runs detection, delivers the
// machine-directed message variant, and updates analytics.
type Manager struct {
	store     Store
	analyzer  Analyzer
	deliverer MessageDeliverer
}

func NewManager(store Store, analyzer Analyzer, deliverer MessageDeliverer) *Manager {
	return &Manager{store: store, analyzer: analyzer, deliverer: deliverer}
}

// ProcessCall disposes one campaign call. Counter updates are append-only:
// a failed message delivery still counts as a detected machine.
func (m *Manager) ProcessCall(ctx context.Context, campaignID string, seg audio.Segment, phoneNumber string) (ProcessResult, error) {
	log := logger.From(ctx)

	c, err := m.store.Get(ctx, campaignID)
	if err != nil {
		return ProcessResult{}, err
	}
	if c.Status != StatusActive {
		return ProcessResult{}, ErrNotActive
	}

	res := m.analyzer.Analyze(ctx, seg, phoneNumber)
	out := ProcessResult{AMD: res}

	delta := Delta{TotalCalls: 1}
	if res.AudioAnalysis.GreetingPattern != cultural.LanguageUnknown {
		delta.CulturalEngagement = 1
	}

	if res.IsAnsweringMachine {
		delta.AMDDetections = 1
		delta.MessagesLeft = 1

		lang, message := m.selectMessage(c, res)
		out.CulturalAdaptation = lang
		if m.deliverer != nil && message != "" {
			if derr := m.deliverer.Deliver(ctx, campaignID, phoneNumber, lang, message); derr != nil {
				log.Warn("campaign message delivery failed", "campaign_id", campaignID, "err", derr)
			} else {
				out.MessageDelivered = true
			}
		}
	} else {
		delta.HumanConnections = 1
	}

	if ierr := m.store.Increment(ctx, campaignID, delta); ierr != nil {
		// Analytics are best-effort; the disposition already happened.
		log.Error("campaign analytics update failed", "campaign_id", campaignID, "err", ierr)
	}
	return out, nil
}

// selectMessage prefers the campaign's primary-language machine message
// when the cultural read indicates that language, falling back to the
// configured default language.
func (m *Manager) selectMessage(c Campaign, res amd.DetectionResult) (cultural.Language, string) {
	primary := c.Profile.PrimaryLanguage
	pattern := res.AudioAnalysis.GreetingPattern

	primaryIndicated := pattern == primary ||
		(primary == cultural.LanguageMalayalam && res.CulturalContext.MalayalamGreeting)

	if primaryIndicated {
		if pair, ok := c.Messages.Messages[primary]; ok && pair.Machine != "" {
			return primary, pair.Machine
		}
	}

	def := c.Messages.DefaultLanguage
	if def == "" {
		def = cultural.LanguageEnglish
	}
	if pair, ok := c.Messages.Messages[def]; ok && pair.Machine != "" {
		return def, pair.Machine
	}
	return def, ""
}
