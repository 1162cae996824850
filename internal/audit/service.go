package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only; these records back offline QA of detection
//   accuracy and routing behavior.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.CallID == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogDetection records one AMD verdict.
func (s *Service) LogDetection(ctx context.Context, callID, campaignID, verdict string, confidence float64, ip, metadata string) error {
	return s.Append(ctx, Event{
		Type:       EventTypeDetection,
		CallID:     callID,
		CampaignID: campaignID,
		Verdict:    verdict,
		Confidence: confidence,
		IPAddress:  ip,
		Message:    "amd verdict",
		Metadata:   metadata,
	})
}

// LogRouting records one routing decision with its ordered factors.
func (s *Service) LogRouting(ctx context.Context, callID, destination, factorsJSON, ip string) error {
	return s.Append(ctx, Event{
		Type:      EventTypeRouting,
		CallID:    callID,
		Verdict:   destination,
		Factors:   factorsJSON,
		IPAddress: ip,
		Message:   "routing decision",
	})
}
