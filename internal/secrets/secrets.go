package secrets

import (
	"context"
	"fmt"
	"os"
)

// ErrSecretUnavailable is returned when a named secret has no resolvable value.
var ErrSecretUnavailable = fmt.Errorf("secret unavailable")

// Resolver resolves a named secret to its latest string value.
type Resolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// envResolver resolves secrets from environment variables.
type envResolver struct{}

// NewEnvResolver creates a Resolver backed by process environment variables.
func NewEnvResolver() Resolver {
	return &envResolver{}
}

// Resolve returns the value of the environment variable with the given name.
func (r *envResolver) Resolve(_ context.Context, name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("%w: %s is not set", ErrSecretUnavailable, name)
	}
	return value, nil
}
