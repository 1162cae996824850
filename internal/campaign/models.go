package campaign

import (
	"time"

	"call-disposition/internal/cultural"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusDraft     Status = "draft"
)

// CulturalProfile binds a campaign to its target audience.
type CulturalProfile struct {
	PrimaryLanguage    cultural.Language `json:"primary_language"`
	AudienceType       string            `json:"audience_type"`
	SensitivityLevel   string            `json:"sensitivity_level"`
	FestivalAdaptation bool              `json:"festival_adaptation"`
}

// MessagePair holds the human- and machine-directed variants of a
// campaign message in one language.
type MessagePair struct {
	Human   string `json:"human"`
	Machine string `json:"machine"`
}

type CallbackPolicy struct {
	Enabled      bool `json:"enabled"`
	MaxAttempts  int  `json:"max_attempts"`
	DelayMinutes int  `json:"delay_minutes"`
}

type MessageConfig struct {
	// Messages keys are languages; DefaultLanguage is used when the
	// cultural read does not match the campaign's primary language.
	Messages        map[cultural.Language]MessagePair `json:"messages"`
	DefaultLanguage cultural.Language                 `json:"default_language"`
	Callback        CallbackPolicy                    `json:"callback"`
}

// Analytics counters are monotonically increasing. Updates are
// append-only increments; there are no decrements and no rollback on
// partial failure.
type Analytics struct {
	TotalCalls         int64 `json:"total_calls"`
	AMDDetections      int64 `json:"amd_detections"`
	HumanConnections   int64 `json:"human_connections"`
	MessagesLeft       int64 `json:"messages_left"`
	CallbackSuccess    int64 `json:"callback_success"`
	CulturalEngagement int64 `json:"cultural_engagement"`
}

// Delta is one batch of counter increments applied atomically per call.
type Delta struct {
	TotalCalls         int64
	AMDDetections      int64
	HumanConnections   int64
	MessagesLeft       int64
	CallbackSuccess    int64
	CulturalEngagement int64
}

// Campaign is the mutable aggregate keyed by id. Archival of finished
// campaigns is an external concern; stores never delete.
type Campaign struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status Status `json:"status"`

	Profile  CulturalProfile `json:"profile"`
	Messages MessageConfig   `json:"messages"`

	Analytics Analytics `json:"analytics"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
