package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"call-disposition/internal/audio"
	"call-disposition/internal/audit"
	"call-disposition/internal/campaign"
	"call-disposition/internal/routing"
	"call-disposition/pkg/logger"
	"call-disposition/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal modules, return JSON.

type Handlers struct {
	Detector  campaign.Analyzer
	Campaigns *campaign.Manager
	Store     campaign.Store
	Router    *routing.Engine
	Audit     *audit.Service

	// Redis enables the optional per-campaign concurrency cap on
	// detection processing. Nil disables the cap.
	Redis             *redis.Client
	CampaignCallLimit int
}

// --- Detection ---

type analyzeRequest struct {
	// Audio is base64-encoded 16-bit LE PCM.
	Audio       string `json:"audio"`
	SampleRate  int    `json:"sample_rate,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	CallID      string `json:"call_id,omitempty"`
}

func (r analyzeRequest) segment() (audio.Segment, error) {
	if r.Audio == "" {
		return audio.Segment{}, errors.New("audio is required")
	}
	data, err := base64.StdEncoding.DecodeString(r.Audio)
	if err != nil {
		return audio.Segment{}, errors.New("audio must be base64-encoded PCM")
	}
	return audio.Segment{Data: data, SampleRate: r.SampleRate}, nil
}

// AnalyzeCall runs answering-machine detection over one audio segment.
func (h Handlers) AnalyzeCall(c *gin.Context) {
	if h.Detector == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "detector not configured"})
		return
	}
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	seg, err := req.segment()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	callID := req.CallID
	if callID == "" {
		callID = uuid.NewString()
	}

	res := h.Detector.Analyze(c.Request.Context(), seg, req.PhoneNumber)
	h.auditDetection(c, callID, "", res.IsAnsweringMachine, res.Confidence)

	c.JSON(http.StatusOK, gin.H{"call_id": callID, "result": res})
}

// --- Campaign processing ---

// ProcessCampaignCall disposes one call under a campaign: detection,
// machine-message delivery, analytics.
func (h Handlers) ProcessCampaignCall(c *gin.Context) {
	if h.Campaigns == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "campaign manager not configured"})
		return
	}
	campaignID := c.Param("campaign_id")
	if campaignID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "campaign_id required"})
		return
	}
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	seg, err := req.segment()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.Redis != nil && h.CampaignCallLimit > 0 {
		ok, capErr := utils.AcquireConcurrencyCap(c.Request.Context(), h.Redis,
			"amd:cap:"+campaignID, h.CampaignCallLimit, 30*time.Second)
		if capErr == nil && !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "campaign concurrency limit reached"})
			return
		}
		if capErr == nil {
			defer func() {
				_ = utils.ReleaseConcurrencyCap(c.Request.Context(), h.Redis, "amd:cap:"+campaignID)
			}()
		}
	}

	callID := req.CallID
	if callID == "" {
		callID = uuid.NewString()
	}

	out, err := h.Campaigns.ProcessCall(c.Request.Context(), campaignID, seg, req.PhoneNumber)
	switch {
	case errors.Is(err, campaign.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	case errors.Is(err, campaign.ErrNotActive):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "campaign is not active"})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "campaign processing failed"})
		return
	}

	h.auditDetection(c, callID, campaignID, out.AMD.IsAnsweringMachine, out.AMD.Confidence)
	c.JSON(http.StatusOK, gin.H{"call_id": callID, "result": out})
}

// GetCampaignAnalytics returns the campaign's counter block.
func (h Handlers) GetCampaignAnalytics(c *gin.Context) {
	if h.Store == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "campaign store not configured"})
		return
	}
	a, err := h.Store.GetAnalytics(c.Request.Context(), c.Param("campaign_id"))
	if errors.Is(err, campaign.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "analytics lookup failed"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// --- Routing ---

type routingRequestBody struct {
	CallID    string            `json:"call_id,omitempty"`
	Intent    routing.Intent    `json:"intent"`
	Sentiment routing.Sentiment `json:"sentiment"`
	Context   routing.Context   `json:"context"`
	Overrides routing.Overrides `json:"overrides"`
}

func (b routingRequestBody) validate() []string {
	var problems []string
	if b.Intent.Primary == "" && !b.Overrides.ForceHuman {
		problems = append(problems, "intent.primary is required")
	}
	if b.Intent.Confidence < 0 || b.Intent.Confidence > 1 {
		problems = append(problems, "intent.confidence must be in [0,1]")
	}
	if b.Sentiment.Score < 0 || b.Sentiment.Score > 1 {
		problems = append(problems, "sentiment.score must be in [0,1]")
	}
	if b.Context.AttemptCount < 0 {
		problems = append(problems, "context.attempt_count must be >= 0")
	}
	switch b.Context.CustomerTier {
	case "", routing.TierStandard, routing.TierPremium, routing.TierEnterprise:
	default:
		problems = append(problems, "context.customer_tier is invalid")
	}
	return problems
}

// DecideRouting evaluates the routing rules for a connected human caller.
// The telephony layer always gets a usable destination: validation errors
// return 400 with details, anything else degrades to the fallback payload.
func (h Handlers) DecideRouting(c *gin.Context) {
	if h.Router == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "routing engine not configured"})
		return
	}
	var body routingRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if problems := body.validate(); len(problems) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": problems})
		return
	}

	callID := body.CallID
	if callID == "" {
		callID = uuid.NewString()
	}

	decision, ok := h.routeSafely(c, routing.Request{
		Intent:    body.Intent,
		Sentiment: body.Sentiment,
		Context:   body.Context,
		Overrides: body.Overrides,
	})
	if !ok {
		// Internal failure: ship the safe fallback so the caller still has
		// a destination.
		c.JSON(http.StatusInternalServerError, fallbackEnvelope(callID))
		return
	}

	h.auditRouting(c, callID, decision)
	c.JSON(http.StatusOK, routingEnvelope(callID, body, decision))
}

// routeSafely isolates the engine call so an unexpected panic degrades to
// the fallback payload instead of a blank 500 from the recovery middleware.
func (h Handlers) routeSafely(c *gin.Context, req routing.Request) (d routing.Decision, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			logger.FromGin(c).Error("routing engine panicked", "panic", p)
			ok = false
		}
	}()
	return h.Router.Route(req), true
}

func routingEnvelope(callID string, body routingRequestBody, d routing.Decision) gin.H {
	env := gin.H{
		"call_id": callID,
		"routing": gin.H{
			"next_node_id": d.NextNodeID,
			"destination":  d.Destination,
			"target_type":  d.TargetType,
			"queue":        d.Queue,
		},
		"decision": gin.H{
			"factors":          d.Factors,
			"confidence":       body.Intent.Confidence,
			"sentiment_impact": sentimentImpact(body.Sentiment.Score),
		},
		"authentication": gin.H{"required": d.RequiresAuth},
		"estimates":      gin.H{"wait_seconds": d.EstimatedWaitSeconds},
		"fallback":       d.FallbackNodeID,
	}
	if scripts, ok := routing.ScriptsFor(d); ok {
		env["scripts"] = scripts
	}
	return env
}

func fallbackEnvelope(callID string) gin.H {
	return gin.H{
		"call_id": callID,
		"routing": gin.H{
			"next_node_id": routing.FallbackNodeID,
			"destination":  routing.QueueGeneral,
			"target_type":  routing.TargetHuman,
			"queue":        routing.QueueGeneral,
		},
		"decision": gin.H{
			"factors":          []string{"internal routing failure, defaulted to general queue"},
			"confidence":       0.0,
			"sentiment_impact": "unknown",
		},
		"authentication": gin.H{"required": false},
		"estimates":      gin.H{"wait_seconds": 240},
		"fallback":       routing.FallbackNodeID,
	}
}

func sentimentImpact(score float64) string {
	switch {
	case score < 0.20:
		return "critical"
	case score < 0.35:
		return "negative"
	case score < 0.50:
		return "neutral"
	default:
		return "positive"
	}
}

// --- audit helpers ---

func (h Handlers) auditDetection(c *gin.Context, callID, campaignID string, machine bool, confidence float64) {
	if h.Audit == nil {
		return
	}
	verdict := "human"
	if machine {
		verdict = "machine"
	}
	if err := h.Audit.LogDetection(c.Request.Context(), callID, campaignID, verdict, confidence, c.ClientIP(), ""); err != nil {
		logger.FromGin(c).Warn("detection audit failed", "err", err)
	}
}

func (h Handlers) auditRouting(c *gin.Context, callID string, d routing.Decision) {
	if h.Audit == nil {
		return
	}
	factors, err := json.Marshal(d.Factors)
	if err != nil {
		factors = []byte("[]")
	}
	if err := h.Audit.LogRouting(c.Request.Context(), callID, d.NextNodeID, string(factors), c.ClientIP()); err != nil {
		logger.FromGin(c).Warn("routing audit failed", "err", err)
	}
}
