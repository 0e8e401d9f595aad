package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/saeidalz13/battleship-fleet/db/sqlc"
	mb "github.com/saeidalz13/battleship-fleet/models/battleship"
	"github.com/sqlc-dev/pqtype"
)

// PostgresStore saves every snapshot as a jsonb row of the
// game_sessions table.
type PostgresStore struct {
	queries sqlc.Querier
	ttl     time.Duration
}

var _ SessionStore = (*PostgresStore)(nil)

func NewPostgresStore(queries sqlc.Querier, ttl time.Duration) *PostgresStore {
	return &PostgresStore{
		queries: queries,
		ttl:     ttl,
	}
}

func (ps *PostgresStore) Save(ctx context.Context, sessionId string, snapshot mb.Snapshot) bool {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("failed to encode session %s: %s\n", sessionId, err)
		return false
	}

	err = ps.queries.UpsertGameSession(ctx, sqlc.UpsertGameSessionParams{
		SessionID: sessionId,
		Snapshot:  pqtype.NullRawMessage{RawMessage: encoded, Valid: true},
	})
	if err != nil {
		log.Printf("failed to save session %s: %s\n", sessionId, err)
		return false
	}
	return true
}

func (ps *PostgresStore) Load(ctx context.Context, sessionId string) (mb.Snapshot, bool) {
	raw, err := ps.queries.GetGameSession(ctx, sessionId)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("failed to load session %s: %s\n", sessionId, err)
		}
		return mb.Snapshot{}, false
	}
	if !raw.Valid {
		return mb.Snapshot{}, false
	}

	var snapshot mb.Snapshot
	if err := json.Unmarshal(raw.RawMessage, &snapshot); err != nil {
		log.Printf("failed to decode session %s: %s\n", sessionId, err)
		return mb.Snapshot{}, false
	}
	return snapshot, true
}

func (ps *PostgresStore) Remove(ctx context.Context, sessionId string) bool {
	rows, err := ps.queries.DeleteGameSession(ctx, sessionId)
	if err != nil {
		log.Printf("failed to remove session %s: %s\n", sessionId, err)
		return false
	}
	return rows > 0
}

func (ps *PostgresStore) CleanUpPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ps.removeStale(ctx)
		}
	}
}

func (ps *PostgresStore) removeStale(ctx context.Context) {
	qCtx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()

	rows, err := ps.queries.DeleteStaleGameSessions(qCtx, time.Now().Add(-ps.ttl))
	if err != nil {
		log.Println("failed to clean up sessions:", err)
		return
	}
	if rows > 0 {
		log.Printf("removed %d stale sessions\n", rows)
	}
}
