package main

import (
	"context"
	"log"
	"time"

	"github.com/saeidalz13/battleship-fleet/api"
	"github.com/saeidalz13/battleship-fleet/db"
	"github.com/saeidalz13/battleship-fleet/db/sqlc"
	"github.com/saeidalz13/battleship-fleet/internal/config"
	"github.com/saeidalz13/battleship-fleet/internal/idgen"
	"github.com/saeidalz13/battleship-fleet/internal/store"
	mc "github.com/saeidalz13/battleship-fleet/models/connection"
)

const (
	sessionCleanupInterval = time.Minute * 5
	connCleanupInterval    = time.Minute * 10
)

func main() {
	cfg := config.MustLoad()

	rulesets, err := config.LoadRulesets(cfg.RulesetsFile)
	if err != nil {
		panic(err)
	}
	if _, err := rulesets.Find(cfg.DefaultRuleset); err != nil {
		panic(err)
	}

	ctx := context.Background()
	processorOpts := []api.ProcessorOption{api.WithDefaultRuleset(cfg.DefaultRuleset)}

	var sessionStore store.SessionStore
	switch cfg.Store {
	case config.StorePostgres:
		dbManager := sqlc.NewDbManager(db.MustConnectToDb(cfg.DatabaseUrl))
		sessionStore = store.NewPostgresStore(dbManager.Queries, cfg.SessionTtl)
		processorOpts = append(processorOpts, api.WithAnalytics(dbManager.Analytics))

	default:
		sessionStore = store.NewMemoryStore(cfg.SessionTtl)
	}
	log.Printf("session store: %s\trulesets: %d\n", cfg.Store, len(rulesets))

	sessionManager := mc.NewBattleshipSessionManager(connCleanupInterval)
	controller := api.NewGameController(sessionStore, idgen.NewUuidGenerator(), rulesets)

	go sessionStore.CleanUpPeriodically(ctx, sessionCleanupInterval)
	go sessionManager.CleanupPeriodically(ctx)

	server := api.NewServer(
		api.NewRequestProcessor(sessionManager, controller, processorOpts...),
		api.WithPort(cfg.Port),
		api.WithStage(cfg.Stage),
		api.WithAllowedOrigins(cfg.Origins()...),
	)
	log.Fatalln(server.ListenAndServe())
}
