package config

import (
	"fmt"
	"os"
)

// Config holds the configuration for the application.
type Config struct {
	// Name of the secret resolved to the Gemini API credential.
	GeminiSecretName string
	GeminiModel      string

	// Push provider
	PushAPIURL      string
	PushAccessToken string

	// Auth
	JWTSigningKey string

	// Storage
	DatabasePath string

	// HTTP surface
	ListenAddr string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	dbPath := os.Getenv("MEALPLAN_DB_PATH")
	if dbPath == "" {
		return nil, fmt.Errorf("MEALPLAN_DB_PATH environment variable not set")
	}

	jwtKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY environment variable not set")
	}

	pushURL := os.Getenv("PUSH_API_URL")
	if pushURL == "" {
		return nil, fmt.Errorf("PUSH_API_URL environment variable not set")
	}

	geminiSecretName := os.Getenv("GEMINI_SECRET_NAME")
	if geminiSecretName == "" {
		// Conventional env-backed secret when no explicit name is configured.
		geminiSecretName = "GEMINI_API_KEY"
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-1.5-flash"
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	return &Config{
		GeminiSecretName: geminiSecretName,
		GeminiModel:      model,
		PushAPIURL:       pushURL,
		PushAccessToken:  os.Getenv("PUSH_ACCESS_TOKEN"),
		JWTSigningKey:    jwtKey,
		DatabasePath:     dbPath,
		ListenAddr:       listenAddr,
	}, nil
}
