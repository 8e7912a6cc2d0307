package main

import (
	"context"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/courtqueue/internal/auth"
	"github.com/mauv0809/courtqueue/internal/config"
	"github.com/mauv0809/courtqueue/internal/database"
	"github.com/mauv0809/courtqueue/internal/lifecycle"
	"github.com/mauv0809/courtqueue/internal/match"
	"github.com/mauv0809/courtqueue/internal/metrics"
	"github.com/mauv0809/courtqueue/internal/notifier"
	"github.com/mauv0809/courtqueue/internal/pubsub"
)

const (
	matchesPerQueue  = 6
	finishedPerQueue = 2
)

// Simplified config loading for the script
func loadConfig() (dbName, primaryURL, authToken, optionsFile string) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	primaryURL = os.Getenv("TURSO_PRIMARY_URL")
	authToken = os.Getenv("TURSO_AUTH_TOKEN")
	dbName, ok := os.LookupEnv("DB_NAME")
	if !ok && primaryURL == "" {
		log.Fatalf("Error: Required environment variable DB_NAME is not set.")
	}
	optionsFile = os.Getenv("OPTIONS_FILE")
	if optionsFile == "" {
		optionsFile = "config.yaml"
	}
	return dbName, primaryURL, authToken, optionsFile
}

func main() {
	log.Info("Starting database seeder...")
	dbName, primaryURL, authToken, optionsFile := loadConfig()

	catalog, err := config.LoadCatalog(optionsFile)
	if err != nil {
		log.Fatalf("Failed to load options file %s: %s", optionsFile, err)
	}
	db, teardown, err := database.InitDB(dbName, primaryURL, authToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	service := lifecycle.New(match.New(db), notifier.NewNoop(), metrics.NewService(), pubsub.NewNoop(), catalog, true)
	faker := gofakeit.New(uint64(time.Now().UnixNano()))
	ctx := auth.Admin(context.Background())

	scopes := seedScopes(catalog)
	startTime := time.Now()
	for _, scope := range scopes {
		for i := 0; i < matchesPerQueue; i++ {
			reg := lifecycle.Registration{Scope: scope, Player1: faker.Name(), Player2: faker.Name()}
			if scope.Kind == match.KindOfficial {
				reg.Tags = &match.Tags{
					RoundType: pick(faker, catalog.RoundTypes, "Round of 16"),
					Gender:    pick(faker, catalog.Genders, "Mixed"),
					MatchType: pick(faker, catalog.MatchTypes, "Singles"),
				}
			}
			m, err := service.Register(ctx, reg)
			if err != nil {
				log.Fatalf("Failed to register match in %s: %s", scope, err)
			}
			if i < finishedPerQueue {
				if _, err := service.RecordResult(ctx, m.ID, faker.Number(0, 7), faker.Number(0, 7)); err != nil {
					log.Fatalf("Failed to record result for match %d: %s", m.ID, err)
				}
			}
		}
		log.Info("Seeded queue", "scope", scope, "matches", matchesPerQueue, "finished", finishedPerQueue)
	}

	log.Info("Successfully seeded all queues.", "queues", len(scopes), "duration", time.Since(startTime))
}

// seedScopes returns every configured court and group, or a single demo court
// when the catalog is empty.
func seedScopes(catalog config.Catalog) []match.Scope {
	var scopes []match.Scope
	for _, c := range catalog.Courts {
		scopes = append(scopes, match.CourtScope(c.Tournament, c.Place, c.Court))
	}
	for _, g := range catalog.Groups {
		scopes = append(scopes, match.GroupScope(g))
	}
	if len(scopes) == 0 {
		scopes = append(scopes, match.CourtScope("Seed Open", "Main Hall", "1"))
	}
	return scopes
}

func pick(faker *gofakeit.Faker, options []string, fallback string) string {
	if len(options) == 0 {
		return fallback
	}
	return faker.RandomString(options)
}
