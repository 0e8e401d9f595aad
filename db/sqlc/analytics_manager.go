package sqlc

import (
	"context"
	"log"
	"net"

	"github.com/sqlc-dev/pqtype"
)

// AnalyticsManager counts games per game server. Failing to
// record a count never stops a game, so the Record methods
// only log.
type AnalyticsManager struct {
	queries Querier
}

func NewAnalyticsManager(queries Querier) *AnalyticsManager {
	return &AnalyticsManager{queries: queries}
}

func serverInet(serverIpNet net.IPNet) pqtype.Inet {
	return pqtype.Inet{IPNet: serverIpNet, Valid: true}
}

func (a *AnalyticsManager) RecordGameCreated(serverIpNet net.IPNet) {
	ctx, cancel := context.WithTimeout(context.Background(), QuerierCtxTimeout)
	defer cancel()

	if err := a.queries.AnalyticsIncrementGamesCreatedCount(ctx, serverInet(serverIpNet)); err != nil {
		log.Println("failed to record created game:", err)
	}
}

func (a *AnalyticsManager) RecordGameFinished(serverIpNet net.IPNet) {
	ctx, cancel := context.WithTimeout(context.Background(), QuerierCtxTimeout)
	defer cancel()

	if err := a.queries.AnalyticsIncrementGamesFinishedCount(ctx, serverInet(serverIpNet)); err != nil {
		log.Println("failed to record finished game:", err)
	}
}

func (a *AnalyticsManager) GamesCreatedCount(ctx context.Context, serverIpNet net.IPNet) (int64, error) {
	return a.queries.AnalyticsGetGamesCreatedCount(ctx, serverInet(serverIpNet))
}

func (a *AnalyticsManager) GamesFinishedCount(ctx context.Context, serverIpNet net.IPNet) (int64, error) {
	return a.queries.AnalyticsGetGamesFinishedCount(ctx, serverInet(serverIpNet))
}
