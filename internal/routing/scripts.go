package routing

import "fmt"

// Scripts are the prompts the telephony layer plays while executing a
// human-targeted decision.
type Scripts struct {
	Hold     string `json:"hold"`
	Transfer string `json:"transfer"`
}

// ScriptsFor returns the hold/transfer prompts for a decision. AI
// destinations have no scripts; the AI agent opens the conversation.
func ScriptsFor(d Decision) (Scripts, bool) {
	if d.TargetType != TargetHuman {
		return Scripts{}, false
	}
	switch d.Queue {
	case QueuePriority:
		return Scripts{
			Hold:     "Please stay on the line. You are being connected to a senior agent right away.",
			Transfer: "Connecting you to a priority agent now.",
		}, true
	case QueueRetention:
		return Scripts{
			Hold:     "Please hold while we connect you to a specialist who can help with your account.",
			Transfer: "Transferring you to our account specialist team.",
		}, true
	default:
		return Scripts{
			Hold:     fmt.Sprintf("Please hold while we connect you to our %s team.", d.Queue),
			Transfer: fmt.Sprintf("Transferring you to the %s team now.", d.Queue),
		}, true
	}
}
