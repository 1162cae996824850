package campaign

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("campaign: not found")
	ErrNotActive = errors.New("campaign: not active")
)

// Store is the persistence contract for campaigns.
//
// Increment must be safe for concurrent use from many simultaneously
// processing calls. Implementations serialize per campaign id (or use
// storage-native atomic increments); a process-global lock across all
// campaigns is not acceptable.
type Store interface {
	Get(ctx context.Context, id string) (Campaign, error)
	Put(ctx context.Context, c Campaign) error
	Increment(ctx context.Context, id string, d Delta) error
	GetAnalytics(ctx context.Context, id string) (Analytics, error)
}
