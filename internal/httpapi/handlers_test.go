package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"call-disposition/internal/amd"
	"call-disposition/internal/audio"
	"call-disposition/internal/audit"
	"call-disposition/internal/campaign"
	"call-disposition/internal/cultural"
	"call-disposition/internal/routing"

	"github.com/gin-gonic/gin"
)

type stubDetector struct {
	res amd.DetectionResult
}

func (s stubDetector) Analyze(ctx context.Context, seg audio.Segment, phone string) amd.DetectionResult {
	return s.res
}

func newRouter(h Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/v1/amd/analyze", h.AnalyzeCall)
	r.POST("/v1/campaigns/:campaign_id/process", h.ProcessCampaignCall)
	r.GET("/v1/campaigns/:campaign_id/analytics", h.GetCampaignAnalytics)
	r.POST("/v1/routing/decide", h.DecideRouting)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func pcmBody() string {
	return base64.StdEncoding.EncodeToString(make([]byte, 8000))
}

func TestAnalyzeCall_ReturnsResult(t *testing.T) {
	h := Handlers{
		Detector: stubDetector{res: amd.DetectionResult{
			IsAnsweringMachine: true,
			Confidence:         0.9,
			RecommendedAction:  amd.ActionLeaveMessage,
		}},
		Audit: audit.NewService(audit.NewMemoryRepo()),
	}
	w := doJSON(t, newRouter(h), http.MethodPost, "/v1/amd/analyze",
		gin.H{"audio": pcmBody(), "phone_number": "+919800000001"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		CallID string              `json:"call_id"`
		Result amd.DetectionResult `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CallID == "" || !resp.Result.IsAnsweringMachine {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAnalyzeCall_RejectsMissingAudio(t *testing.T) {
	h := Handlers{Detector: stubDetector{}}
	w := doJSON(t, newRouter(h), http.MethodPost, "/v1/amd/analyze", gin.H{"phone_number": "+91"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProcessCampaignCall_UnknownCampaign404(t *testing.T) {
	store := campaign.NewMemoryStore()
	mgr := campaign.NewManager(store, stubDetector{}, nil)
	h := Handlers{Campaigns: mgr, Store: store}

	w := doJSON(t, newRouter(h), http.MethodPost, "/v1/campaigns/nope/process", gin.H{"audio": pcmBody()})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestProcessCampaignCall_MachineFlow(t *testing.T) {
	store := campaign.NewMemoryStore()
	_ = store.Put(context.Background(), campaign.Campaign{
		ID:     "c1",
		Status: campaign.StatusActive,
		Profile: campaign.CulturalProfile{
			PrimaryLanguage: cultural.LanguageMalayalam,
		},
		Messages: campaign.MessageConfig{
			DefaultLanguage: cultural.LanguageEnglish,
			Messages: map[cultural.Language]campaign.MessagePair{
				cultural.LanguageEnglish: {Machine: "call us back"},
			},
		},
	})
	det := stubDetector{res: amd.DetectionResult{
		IsAnsweringMachine: true,
		Confidence:         0.85,
		AudioAnalysis:      amd.AudioAnalysis{GreetingPattern: cultural.LanguageEnglish},
		RecommendedAction:  amd.ActionLeaveMessage,
	}}
	deliver := deliverFunc(func(ctx context.Context, id, phone string, lang cultural.Language, msg string) error {
		return nil
	})
	mgr := campaign.NewManager(store, det, deliver)
	h := Handlers{Campaigns: mgr, Store: store}
	r := newRouter(h)

	w := doJSON(t, r, http.MethodPost, "/v1/campaigns/c1/process", gin.H{"audio": pcmBody(), "phone_number": "+91"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	aw := doJSON(t, r, http.MethodGet, "/v1/campaigns/c1/analytics", nil)
	var a campaign.Analytics
	if err := json.Unmarshal(aw.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode analytics: %v", err)
	}
	if a.TotalCalls != 1 || a.AMDDetections != 1 {
		t.Fatalf("unexpected analytics: %+v", a)
	}
}

type deliverFunc func(ctx context.Context, campaignID, phone string, lang cultural.Language, msg string) error

func (f deliverFunc) Deliver(ctx context.Context, campaignID, phone string, lang cultural.Language, msg string) error {
	return f(ctx, campaignID, phone, lang, msg)
}

func TestDecideRouting_Envelope(t *testing.T) {
	h := Handlers{Router: routing.NewEngine(nil), Audit: audit.NewService(audit.NewMemoryRepo())}
	w := doJSON(t, newRouter(h), http.MethodPost, "/v1/routing/decide", gin.H{
		"intent":    gin.H{"primary": "billing_inquiry", "confidence": 0.9},
		"sentiment": gin.H{"score": 0.3, "label": "negative"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Routing struct {
			NextNodeID string `json:"next_node_id"`
			TargetType string `json:"target_type"`
			Queue      string `json:"queue"`
		} `json:"routing"`
		Decision struct {
			Factors         []string `json:"factors"`
			SentimentImpact string   `json:"sentiment_impact"`
		} `json:"decision"`
		Scripts  *routing.Scripts `json:"scripts"`
		Fallback string           `json:"fallback"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Routing.TargetType != "human" || resp.Routing.Queue != routing.QueueBilling {
		t.Fatalf("low sentiment should route to billing humans: %+v", resp.Routing)
	}
	if len(resp.Decision.Factors) == 0 {
		t.Fatalf("expected factors")
	}
	if resp.Decision.SentimentImpact != "negative" {
		t.Fatalf("expected negative impact, got %q", resp.Decision.SentimentImpact)
	}
	if resp.Scripts == nil || resp.Scripts.Hold == "" {
		t.Fatalf("human decision must carry scripts")
	}
	if resp.Fallback != routing.FallbackNodeID {
		t.Fatalf("expected fallback node, got %q", resp.Fallback)
	}
}

func TestDecideRouting_AIDecisionOmitsScripts(t *testing.T) {
	h := Handlers{Router: routing.NewEngine(nil)}
	w := doJSON(t, newRouter(h), http.MethodPost, "/v1/routing/decide", gin.H{
		"intent":    gin.H{"primary": "greeting", "confidence": 0.9},
		"sentiment": gin.H{"score": 0.9},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp["scripts"]; ok {
		t.Fatalf("AI decision must not include scripts")
	}
}

func TestDecideRouting_ValidationDetails(t *testing.T) {
	h := Handlers{Router: routing.NewEngine(nil)}
	w := doJSON(t, newRouter(h), http.MethodPost, "/v1/routing/decide", gin.H{
		"intent":    gin.H{"primary": "", "confidence": 2.0},
		"sentiment": gin.H{"score": -0.5},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp struct {
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Details) < 3 {
		t.Fatalf("expected all validation problems reported, got %v", resp.Details)
	}
}

func TestDecideRouting_ForceHumanOverride(t *testing.T) {
	h := Handlers{Router: routing.NewEngine(nil)}
	w := doJSON(t, newRouter(h), http.MethodPost, "/v1/routing/decide", gin.H{
		"intent":    gin.H{"primary": "greeting", "confidence": 0.99},
		"sentiment": gin.H{"score": 0.95},
		"overrides": gin.H{"force_human": true},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Routing struct {
			TargetType string `json:"target_type"`
		} `json:"routing"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Routing.TargetType != "human" {
		t.Fatalf("forced override must land on a human, got %q", resp.Routing.TargetType)
	}
}

func TestDecideRouting_InternalFailureReturnsFallback(t *testing.T) {
	// A zero-value engine has no intent registry, so Route panics; the
	// handler must still hand the caller a usable destination.
	h := Handlers{Router: &routing.Engine{}}
	w := doJSON(t, newRouter(h), http.MethodPost, "/v1/routing/decide", gin.H{
		"intent":    gin.H{"primary": "billing_inquiry", "confidence": 0.9},
		"sentiment": gin.H{"score": 0.6},
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		CallID  string `json:"call_id"`
		Routing struct {
			NextNodeID  string `json:"next_node_id"`
			Destination string `json:"destination"`
			TargetType  string `json:"target_type"`
			Queue       string `json:"queue"`
		} `json:"routing"`
		Decision struct {
			Factors []string `json:"factors"`
		} `json:"decision"`
		Fallback string `json:"fallback"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CallID == "" {
		t.Fatalf("fallback payload must carry a call id")
	}
	if resp.Routing.NextNodeID != routing.FallbackNodeID || resp.Routing.Queue != routing.QueueGeneral {
		t.Fatalf("fallback must point at the general queue: %+v", resp.Routing)
	}
	if resp.Routing.TargetType != "human" {
		t.Fatalf("fallback must target a human, got %q", resp.Routing.TargetType)
	}
	if len(resp.Decision.Factors) == 0 {
		t.Fatalf("expected a failure factor")
	}
	if resp.Fallback != routing.FallbackNodeID {
		t.Fatalf("expected fallback node, got %q", resp.Fallback)
	}
}
