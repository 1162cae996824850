package routing

import "fmt"

// Sentiment thresholds for the escalation rules.
const (
	sentimentCritical = 0.20
	sentimentLow      = 0.35
	sentimentAIFloor  = 0.50
)

// Engine evaluates routing for a connected human caller.
//
// Priority (first matching rule wins; the ordering is the contract):
//  1) forceHuman override
//  2) critical sentiment (< 0.20) -> priority queue, regardless of intent
//  3) low sentiment (< 0.35) -> intent's human destination
//  4) preferHuman intent
//  5) repeated failures (attemptCount > 2)
//  6) AI-capable intent with healthy sentiment (>= 0.50)
//  7) default to the intent's human destination
//
// Route is a pure function of its input: no side effects, no hidden
// state, deterministic, safe for unlimited concurrent invocation.
type Engine struct {
	registry *Registry
}

func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	return &Engine{registry: registry}
}

// FallbackNodeID is the safe destination the call-control layer uses when
// delivery of a decision fails downstream.
const FallbackNodeID = "queue:" + QueueGeneral

func (e *Engine) Route(req Request) Decision {
	label, cfg := e.registry.Lookup(req.Intent.Primary)

	var d Decision
	switch {
	case req.Overrides.ForceHuman:
		queue := cfg.HumanQueue
		if req.Overrides.PreferredQueue != "" {
			queue = req.Overrides.PreferredQueue
		}
		d = e.human(queue, "forced override to human agent")

	case req.Sentiment.Score < sentimentCritical:
		d = e.human(QueuePriority,
			fmt.Sprintf("critical sentiment %.2f escalated to priority queue", req.Sentiment.Score))

	case req.Sentiment.Score < sentimentLow:
		d = e.human(cfg.HumanQueue,
			fmt.Sprintf("low sentiment %.2f routed to human agent", req.Sentiment.Score))

	case cfg.PreferHuman:
		d = e.human(cfg.HumanQueue,
			fmt.Sprintf("intent %q always handled by human agent", label))

	case req.Context.AttemptCount > 2:
		d = e.human(cfg.HumanQueue,
			fmt.Sprintf("attempt %d exceeded retry budget, escalated to human", req.Context.AttemptCount))

	case cfg.AINode != "" && req.Sentiment.Score >= sentimentAIFloor:
		d = Decision{
			NextNodeID:  cfg.AINode,
			Destination: cfg.AINode,
			TargetType:  TargetAI,
			Factors:     []string{fmt.Sprintf("intent %q handled by AI agent %s", label, cfg.AINode)},
		}

	default:
		d = e.human(cfg.HumanQueue,
			fmt.Sprintf("no AI path for intent %q, defaulted to human agent", label))
	}

	// Tier post-processing. Enterprise callers never wait in a standard
	// queue; premium is noted for the agent but keeps the destination.
	if d.TargetType == TargetHuman {
		switch req.Context.CustomerTier {
		case TierEnterprise:
			if d.Queue != QueuePriority {
				d.Queue = QueuePriority
				d.NextNodeID = "queue:" + QueuePriority
				d.Destination = QueuePriority
			}
			d.Factors = append(d.Factors, "enterprise tier upgraded to priority queue")
		case TierPremium:
			d.Factors = append(d.Factors, "premium tier noted for agent")
		}
		d.EstimatedWaitSeconds = e.registry.WaitSeconds(d.Queue)
	}

	if cfg.RequiresAuth {
		d.RequiresAuth = true
		d.Factors = append(d.Factors, fmt.Sprintf("intent %q requires identity verification", label))
	}

	d.FallbackNodeID = FallbackNodeID
	return d
}

func (e *Engine) human(queue, reason string) Decision {
	return Decision{
		NextNodeID:  "queue:" + queue,
		Destination: queue,
		TargetType:  TargetHuman,
		Queue:       queue,
		Factors:     []string{reason},
	}
}
