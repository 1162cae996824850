package routing

import (
	"reflect"
	"testing"
)

func TestRoute_ForceHumanAlwaysWins(t *testing.T) {
	e := NewEngine(nil)
	d := e.Route(Request{
		Intent:    Intent{Primary: "greeting", Confidence: 0.99},
		Sentiment: Sentiment{Score: 0.95},
		Overrides: Overrides{ForceHuman: true},
	})
	if d.TargetType != TargetHuman {
		t.Fatalf("forced override must route human, got %q -> %q", d.TargetType, d.Destination)
	}
	if len(d.Factors) == 0 {
		t.Fatalf("expected decision factors")
	}
}

func TestRoute_ForceHumanHonorsPreferredQueue(t *testing.T) {
	d := NewEngine(nil).Route(Request{
		Intent:    Intent{Primary: "greeting"},
		Sentiment: Sentiment{Score: 0.9},
		Overrides: Overrides{ForceHuman: true, PreferredQueue: QueueRetention},
	})
	if d.Queue != QueueRetention {
		t.Fatalf("expected preferred queue, got %q", d.Queue)
	}
}

func TestRoute_CriticalSentimentEscalatesToPriority(t *testing.T) {
	e := NewEngine(nil)
	for _, intent := range []string{"greeting", "billing_inquiry", "order_status", "nonsense"} {
		d := e.Route(Request{Intent: Intent{Primary: intent}, Sentiment: Sentiment{Score: 0.10}})
		if d.Queue != QueuePriority || d.TargetType != TargetHuman {
			t.Fatalf("intent %q: sentiment 0.10 must hit priority queue, got %+v", intent, d)
		}
	}
}

func TestRoute_LowSentimentNeverReachesAI(t *testing.T) {
	e := NewEngine(nil)
	for _, score := range []float64{0.34, 0.30, 0.25, 0.21} {
		d := e.Route(Request{Intent: Intent{Primary: "billing_inquiry"}, Sentiment: Sentiment{Score: score}})
		if d.TargetType != TargetHuman {
			t.Fatalf("sentiment %v must route human, got %q", score, d.TargetType)
		}
		if d.Queue != QueueBilling {
			t.Fatalf("sentiment %v should keep the intent's queue, got %q", score, d.Queue)
		}
	}
}

func TestRoute_PreferHumanIntentIgnoresSentiment(t *testing.T) {
	d := NewEngine(nil).Route(Request{
		Intent:    Intent{Primary: "cancellation"},
		Sentiment: Sentiment{Score: 0.9},
	})
	if d.TargetType != TargetHuman || d.Queue != QueueRetention {
		t.Fatalf("cancellation must route to retention even with high sentiment, got %+v", d)
	}
}

func TestRoute_RepeatedAttemptsEscalate(t *testing.T) {
	d := NewEngine(nil).Route(Request{
		Intent:    Intent{Primary: "billing_inquiry"},
		Sentiment: Sentiment{Score: 0.8},
		Context:   Context{AttemptCount: 3},
	})
	if d.TargetType != TargetHuman {
		t.Fatalf("attempt 3 must escalate to human, got %q", d.TargetType)
	}
}

func TestRoute_AIPathWithHealthySentiment(t *testing.T) {
	d := NewEngine(nil).Route(Request{
		Intent:    Intent{Primary: "billing_inquiry"},
		Sentiment: Sentiment{Score: 0.7},
	})
	if d.TargetType != TargetAI || d.NextNodeID != "ai_billing" {
		t.Fatalf("expected ai_billing, got %+v", d)
	}
	if d.EstimatedWaitSeconds != 0 {
		t.Fatalf("AI destinations report zero wait, got %d", d.EstimatedWaitSeconds)
	}
}

func TestRoute_MidSentimentDefaultsToHuman(t *testing.T) {
	// 0.40 is neither low (<0.35) nor healthy enough for AI (>=0.50).
	d := NewEngine(nil).Route(Request{
		Intent:    Intent{Primary: "billing_inquiry"},
		Sentiment: Sentiment{Score: 0.40},
	})
	if d.TargetType != TargetHuman || d.Queue != QueueBilling {
		t.Fatalf("expected billing human default, got %+v", d)
	}
}

func TestRoute_EnterpriseUpgradeToPriority(t *testing.T) {
	d := NewEngine(nil).Route(Request{
		Intent:    Intent{Primary: "billing_inquiry"},
		Sentiment: Sentiment{Score: 0.60},
		Context:   Context{CustomerTier: TierEnterprise, AttemptCount: 3},
	})
	if d.TargetType != TargetHuman {
		t.Fatalf("expected human, got %q", d.TargetType)
	}
	if d.Queue != QueuePriority {
		t.Fatalf("enterprise human routing must land in priority, got %q", d.Queue)
	}
	if d.EstimatedWaitSeconds != 30 {
		t.Fatalf("expected priority wait estimate, got %d", d.EstimatedWaitSeconds)
	}
}

func TestRoute_PremiumNotedWithoutQueueChange(t *testing.T) {
	d := NewEngine(nil).Route(Request{
		Intent:    Intent{Primary: "complaint"},
		Sentiment: Sentiment{Score: 0.6},
		Context:   Context{CustomerTier: TierPremium},
	})
	if d.Queue != QueueSupport {
		t.Fatalf("premium must not change the queue, got %q", d.Queue)
	}
	found := false
	for _, f := range d.Factors {
		if f == "premium tier noted for agent" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected premium factor in %v", d.Factors)
	}
}

func TestRoute_AuthFlagIndependentOfDestination(t *testing.T) {
	e := NewEngine(nil)

	ai := e.Route(Request{Intent: Intent{Primary: "account_info"}, Sentiment: Sentiment{Score: 0.8}})
	if ai.TargetType != TargetAI || !ai.RequiresAuth {
		t.Fatalf("account_info via AI must still require auth, got %+v", ai)
	}
	human := e.Route(Request{Intent: Intent{Primary: "account_info"}, Sentiment: Sentiment{Score: 0.3}})
	if human.TargetType != TargetHuman || !human.RequiresAuth {
		t.Fatalf("account_info via human must require auth, got %+v", human)
	}
}

func TestRoute_UnknownIntentUsesUnknownMapping(t *testing.T) {
	d := NewEngine(nil).Route(Request{
		Intent:    Intent{Primary: "weather_on_mars"},
		Sentiment: Sentiment{Score: 0.9},
	})
	if d.TargetType != TargetHuman || d.Queue != QueueGeneral {
		t.Fatalf("unknown intent must default to general human queue, got %+v", d)
	}
}

func TestRoute_WaitEstimatesOrdered(t *testing.T) {
	r := NewDefaultRegistry()
	order := []string{QueuePriority, QueueRetention, QueueBilling, QueueSupport, QueueGeneral}
	for i := 1; i < len(order); i++ {
		if r.WaitSeconds(order[i-1]) >= r.WaitSeconds(order[i]) {
			t.Fatalf("wait estimates must increase from %s to %s", order[i-1], order[i])
		}
	}
}

func TestRoute_Deterministic(t *testing.T) {
	e := NewEngine(nil)
	req := Request{
		Intent:    Intent{Primary: "billing_inquiry", Confidence: 0.88},
		Sentiment: Sentiment{Score: 0.27, Label: "negative"},
		Context:   Context{CustomerTier: TierPremium, AttemptCount: 1},
	}
	first := e.Route(req)
	for i := 0; i < 10; i++ {
		if got := e.Route(req); !reflect.DeepEqual(got, first) {
			t.Fatalf("routing must be deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestRoute_EveryDecisionCarriesFactorsAndFallback(t *testing.T) {
	e := NewEngine(nil)
	reqs := []Request{
		{Intent: Intent{Primary: "greeting"}, Sentiment: Sentiment{Score: 0.9}},
		{Intent: Intent{Primary: "cancellation"}, Sentiment: Sentiment{Score: 0.1}},
		{Intent: Intent{Primary: "x"}, Sentiment: Sentiment{Score: 0.4}},
		{Overrides: Overrides{ForceHuman: true}},
	}
	for i, req := range reqs {
		d := e.Route(req)
		if len(d.Factors) == 0 {
			t.Fatalf("request %d: decision without factors", i)
		}
		if d.FallbackNodeID != FallbackNodeID {
			t.Fatalf("request %d: missing fallback node", i)
		}
	}
}

func TestScriptsFor_HumanOnly(t *testing.T) {
	e := NewEngine(nil)
	human := e.Route(Request{Intent: Intent{Primary: "complaint"}, Sentiment: Sentiment{Score: 0.6}})
	if _, ok := ScriptsFor(human); !ok {
		t.Fatalf("expected scripts for human decision")
	}
	ai := e.Route(Request{Intent: Intent{Primary: "greeting"}, Sentiment: Sentiment{Score: 0.9}})
	if _, ok := ScriptsFor(ai); ok {
		t.Fatalf("AI decisions must not carry scripts")
	}
}
