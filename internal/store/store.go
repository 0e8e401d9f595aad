package store

import (
	"context"
	"time"

	mb "github.com/saeidalz13/battleship-fleet/models/battleship"
)

// SessionStore keeps game snapshots between requests. Store
// failures are logged by the implementation and reported only
// as false or absent, they never reach the caller as errors.
type SessionStore interface {
	Save(ctx context.Context, sessionId string, snapshot mb.Snapshot) bool
	Load(ctx context.Context, sessionId string) (mb.Snapshot, bool)
	Remove(ctx context.Context, sessionId string) bool

	// Drops sessions nobody touched for longer than the store ttl,
	// every interval, until ctx is done.
	CleanUpPeriodically(ctx context.Context, interval time.Duration)
}
