package sqlc

import "time"

const (
	QuerierCtxTimeout = time.Second * 10
)

// DbManager groups what the server needs from postgres.
type DbManager struct {
	Queries   Querier
	Analytics *AnalyticsManager
}

func NewDbManager(db DBTX) DbManager {
	queries := New(db)

	return DbManager{
		Queries:   queries,
		Analytics: NewAnalyticsManager(queries),
	}
}
