package routing

// Request is the immutable input to one routing evaluation. Intent and
// sentiment classification happen upstream; the engine only consumes
// their output.
type Request struct {
	Intent    Intent    `json:"intent"`
	Sentiment Sentiment `json:"sentiment"`
	Context   Context   `json:"context"`
	Overrides Overrides `json:"overrides"`
}

type Intent struct {
	Primary    string  `json:"primary"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category,omitempty"`
}

type Sentiment struct {
	// Score in [0,1]; lower is more negative.
	Score      float64 `json:"score"`
	Label      string  `json:"label,omitempty"`
	AngerLevel string  `json:"anger_level,omitempty"`
}

type Tier string

const (
	TierStandard   Tier = "standard"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

type Context struct {
	WorkflowID      string   `json:"workflow_id,omitempty"`
	SessionID       string   `json:"session_id,omitempty"`
	CustomerTier    Tier     `json:"customer_tier,omitempty"`
	AttemptCount    int      `json:"attempt_count,omitempty"`
	PreviousIntents []string `json:"previous_intents,omitempty"`
}

type Overrides struct {
	ForceHuman        bool     `json:"force_human,omitempty"`
	PreferredQueue    string   `json:"preferred_queue,omitempty"`
	SkillRequirements []string `json:"skill_requirements,omitempty"`
}

type TargetType string

const (
	TargetAI    TargetType = "ai"
	TargetHuman TargetType = "human"
)

// Decision is the fully-populated output of one routing evaluation.
//
// Factors is a non-empty ordered list of human-readable reasons; it is
// the audit trail for why a rule fired and is asserted on by tests.
type Decision struct {
	NextNodeID  string     `json:"next_node_id"`
	Destination string     `json:"destination"`
	TargetType  TargetType `json:"target_type"`
	Queue       string     `json:"queue,omitempty"`

	Factors []string `json:"factors"`

	RequiresAuth         bool `json:"requires_auth"`
	EstimatedWaitSeconds int  `json:"estimated_wait_seconds"`

	// FallbackNodeID is used by the call-control layer if delivery to the
	// chosen destination fails downstream.
	FallbackNodeID string `json:"fallback_node_id"`
}
