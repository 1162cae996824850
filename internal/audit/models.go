package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - Actor/IP capture is best-effort; never block call disposition on audit.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
// - Optional: partition by time for retention.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// CallID correlates the record with the telephony session.
	CallID     string `json:"call_id,omitempty" db:"call_id"`
	CampaignID string `json:"campaign_id,omitempty" db:"campaign_id"`

	// Verdict is "machine"/"human" for detections, the destination node
	// for routing decisions.
	Verdict    string  `json:"verdict,omitempty" db:"verdict"`
	Confidence float64 `json:"confidence,omitempty" db:"confidence"`

	// Factors is the ordered decision-factor list serialized as JSON.
	Factors string `json:"factors,omitempty" db:"factors"`

	// IPAddress captures the API caller when the record originates from an
	// HTTP request.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeDetection EventType = "amd_detection"
	EventTypeRouting   EventType = "routing_decision"
)
