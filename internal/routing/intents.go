package routing

// IntentConfig maps one intent label to its destinations and policy.
type IntentConfig struct {
	// AINode is the AI agent node able to handle this intent; empty means
	// the intent is not AI-capable.
	AINode string
	// HumanQueue is the default human destination for this intent.
	HumanQueue string
	// PreferHuman forces human handling regardless of sentiment
	// (cancellations, complaints, transfer requests).
	PreferHuman bool
	// RequiresAuth marks intents needing identity verification before any
	// account data is disclosed.
	RequiresAuth bool
}

// Registry holds the intent table and queue metadata. It is immutable
// after construction and safe for unlimited concurrent reads.
type Registry struct {
	intents map[string]IntentConfig
	queues  map[string]int // queue -> estimated wait seconds
}

// Queue names, ordered by expected wait.
const (
	QueuePriority  = "priority"
	QueueRetention = "retention"
	QueueBilling   = "billing"
	QueueSupport   = "support"
	QueueGeneral   = "general"
)

// NewDefaultRegistry returns the shipped intent table.
func NewDefaultRegistry() *Registry {
	return &Registry{
		intents: map[string]IntentConfig{
			"greeting":          {AINode: "ai_concierge", HumanQueue: QueueGeneral},
			"billing_inquiry":   {AINode: "ai_billing", HumanQueue: QueueBilling},
			"account_info":      {AINode: "ai_account", HumanQueue: QueueSupport, RequiresAuth: true},
			"payment":           {AINode: "ai_billing", HumanQueue: QueueBilling, RequiresAuth: true},
			"technical_support": {AINode: "ai_support", HumanQueue: QueueSupport},
			"order_status":      {AINode: "ai_orders", HumanQueue: QueueSupport},
			"cancellation":      {HumanQueue: QueueRetention, PreferHuman: true},
			"complaint":         {HumanQueue: QueueSupport, PreferHuman: true},
			"transfer_request":  {HumanQueue: QueueGeneral, PreferHuman: true},
			"unknown":           {HumanQueue: QueueGeneral},
		},
		queues: map[string]int{
			QueuePriority:  30,
			QueueRetention: 60,
			QueueBilling:   120,
			QueueSupport:   180,
			QueueGeneral:   240,
		},
	}
}

// Lookup resolves an intent label, defaulting to the unknown mapping so
// unrecognized intents route instead of failing.
func (r *Registry) Lookup(label string) (string, IntentConfig) {
	if cfg, ok := r.intents[label]; ok {
		return label, cfg
	}
	return "unknown", r.intents["unknown"]
}

// WaitSeconds returns the static wait estimate for a queue. Unknown
// queues report the general estimate.
func (r *Registry) WaitSeconds(queue string) int {
	if w, ok := r.queues[queue]; ok {
		return w
	}
	return r.queues[QueueGeneral]
}
