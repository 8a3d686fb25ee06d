package main

import (
	"log"
	"net/http"

	"mealplan-service/internal/auth"
	"mealplan-service/internal/clipper"
	"mealplan-service/internal/config"
	"mealplan-service/internal/database"
	"mealplan-service/internal/docstore"
	"mealplan-service/internal/llm"
	"mealplan-service/internal/metrics"
	"mealplan-service/internal/notify"
	"mealplan-service/internal/planner"
	"mealplan-service/internal/secrets"
	"mealplan-service/internal/server"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	store := docstore.NewSQLiteStore(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	// The Gemini client is constructed lazily on the first generation call;
	// startup does not resolve the API credential.
	provider := llm.NewProvider(secrets.NewEnvResolver(), cfg.GeminiSecretName)
	defer provider.Close()

	mealPlanner := planner.NewPlanner(provider, store, metricsStore, cfg.GeminiModel)
	dispatcher := notify.NewDispatcher(store, notify.NewExpoPusher(cfg))
	recipeClipper := clipper.NewClipper(provider, store, cfg.GeminiModel)
	verifier := auth.NewVerifier(cfg.JWTSigningKey)

	srv := server.NewServer(verifier, mealPlanner, dispatcher, recipeClipper)

	log.Printf("Listening on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Routes()); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
