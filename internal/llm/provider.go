package llm

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"mealplan-service/internal/secrets"
)

// Provider owns the process-wide Gemini client and constructs it lazily on
// first use. Concurrent first callers share a single in-flight initialization
// (one secret resolution, one client construction); a failed attempt is
// delivered to every waiter and the next caller starts over.
type Provider struct {
	resolver   secrets.Resolver
	secretName string
	construct  func(ctx context.Context, apiKey string) (ContentGenerator, error)

	group  singleflight.Group
	mu     sync.Mutex
	client ContentGenerator
}

// NewProvider creates a Provider that resolves the named secret and builds a
// Gemini client from it.
func NewProvider(resolver secrets.Resolver, secretName string) *Provider {
	return newProvider(resolver, secretName, func(ctx context.Context, apiKey string) (ContentGenerator, error) {
		return NewGeminiClient(ctx, apiKey)
	})
}

func newProvider(
	resolver secrets.Resolver,
	secretName string,
	construct func(ctx context.Context, apiKey string) (ContentGenerator, error),
) *Provider {
	return &Provider{
		resolver:   resolver,
		secretName: secretName,
		construct:  construct,
	}
}

// Client returns the shared client, initializing it if necessary.
func (p *Provider) Client(ctx context.Context) (ContentGenerator, error) {
	p.mu.Lock()
	client := p.client
	p.mu.Unlock()
	if client != nil {
		return client, nil
	}

	// singleflight collapses concurrent initialization into one attempt and
	// forgets the key once it completes, so a failure can be retried.
	v, err, _ := p.group.Do("init", func() (interface{}, error) {
		return p.initClient(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(ContentGenerator), nil
}

// initClient resolves the secret and constructs the client. A caller that
// observed a nil client may reach here only after an earlier flight has
// already completed and been forgotten, so the cache is re-checked first;
// without that a second client would be built and the first leaked.
func (p *Provider) initClient(ctx context.Context) (ContentGenerator, error) {
	p.mu.Lock()
	if p.client != nil {
		client := p.client
		p.mu.Unlock()
		return client, nil
	}
	p.mu.Unlock()

	apiKey, err := p.resolver.Resolve(ctx, p.secretName)
	if err != nil {
		return nil, err
	}
	built, err := p.construct(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.client = built
	p.mu.Unlock()
	return built, nil
}

// EnsureReady initializes the client without issuing a generation call.
func (p *Provider) EnsureReady(ctx context.Context) error {
	_, err := p.Client(ctx)
	return err
}

// Generate delegates to the shared client, initializing it on first use.
// Provider therefore satisfies ContentGenerator itself.
func (p *Provider) Generate(ctx context.Context, req GenerateRequest) (ContentResponse, error) {
	client, err := p.Client(ctx)
	if err != nil {
		return ContentResponse{}, err
	}
	return client.Generate(ctx, req)
}

// Close releases the underlying client if it was ever constructed.
func (p *Provider) Close() error {
	p.mu.Lock()
	client := p.client
	p.client = nil
	p.mu.Unlock()

	if closer, ok := client.(Closer); ok {
		return closer.Close()
	}
	return nil
}
