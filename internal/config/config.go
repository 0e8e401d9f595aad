package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	mb "github.com/saeidalz13/battleship-fleet/models/battleship"
)

const (
	StageDev  = "dev"
	StageProd = "prod"

	StoreMemory   = "memory"
	StorePostgres = "postgres"

	defaultSessionTtl = time.Minute * 20
)

type Config struct {
	Stage          string
	Port           int
	Store          string
	DatabaseUrl    string
	RulesetsFile   string
	DefaultRuleset string
	SessionTtl     time.Duration

	// comma separated, only checked in prod
	AllowedOrigins string
}

// Reads the .env file outside of production and builds the
// config from the environment. Any problem stops the server.
func MustLoad() Config {
	if os.Getenv("STAGE") != StageProd {
		if err := godotenv.Load(".env"); err != nil {
			panic(err)
		}
	}

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		panic(err)
	}
	return cfg
}

func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Stage:          getenv("STAGE"),
		Store:          getenv("STORE"),
		RulesetsFile:   getenv("RULESETS_FILE"),
		DefaultRuleset: getenv("DEFAULT_RULESET"),
		SessionTtl:     defaultSessionTtl,
		AllowedOrigins: getenv("ALLOWED_ORIGINS"),
	}

	if cfg.Stage != StageDev && cfg.Stage != StageProd {
		return Config{}, fmt.Errorf("stage must be either dev or prod, got %q", cfg.Stage)
	}

	port, err := strconv.Atoi(getenv("PORT"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid port: %w", err)
	}
	cfg.Port = port

	switch cfg.Store {
	case "":
		cfg.Store = StoreMemory
	case StoreMemory:
	case StorePostgres:
		cfg.DatabaseUrl = databaseUrl(getenv)
	default:
		return Config{}, fmt.Errorf("store must be either memory or postgres, got %q", cfg.Store)
	}

	if cfg.DefaultRuleset == "" {
		cfg.DefaultRuleset = mb.RulesetClassic
	}

	if ttl := getenv("SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return Config{}, fmt.Errorf("invalid session ttl: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("session ttl must be positive, got %s", d)
		}
		cfg.SessionTtl = d
	}

	return cfg, nil
}

func (c Config) Origins() []string {
	origins := make([]string, 0, 2)
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// DATABASE_URL wins; otherwise the dsn is assembled
// from the separate DB_* variables.
func databaseUrl(getenv func(string) string) string {
	if url := getenv("DATABASE_URL"); url != "" {
		return url
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getenv("DB_HOST"),
		getenv("DB_PORT"),
		getenv("DB_USER"),
		getenv("DB_PASSWORD"),
		getenv("DB_NAME"),
	)
}
