// Package notify delivers push notifications to a user's registered
// devices and prunes registrations the push provider reports as dead.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"

	"mealplan-service/internal/docstore"
)

var (
	// ErrUserNotFound indicates the target user has no document.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoRegisteredDevices indicates the user has zero push tokens.
	ErrNoRegisteredDevices = errors.New("no registered devices")
	// ErrAllDeliveriesFailed indicates every token failed; dispatch
	// succeeds as long as at least one delivery went through.
	ErrAllDeliveriesFailed = errors.New("all deliveries failed")
)

// Provider error codes that mean a token will never work again and should
// be removed from the user's registration list.
var staleTokenCodes = map[string]bool{
	"DeviceNotRegistered": true,
	"InvalidCredentials":  true,
}

// Notification is the payload delivered to each device.
type Notification struct {
	Title          string
	Body           string
	DeepLinkTarget string
}

// TokenResult is the per-token outcome of a multicast send.
type TokenResult struct {
	Token     string
	Success   bool
	ErrorCode string
}

// MulticastResult is the push provider's accounting for one send.
type MulticastResult struct {
	SuccessCount int
	FailureCount int
	Results      []TokenResult
}

// Pusher sends one notification to many tokens in a single request.
type Pusher interface {
	SendMulticast(ctx context.Context, tokens []string, n Notification) (*MulticastResult, error)
}

// DispatchResult reports per-token outcomes and which tokens were pruned.
type DispatchResult struct {
	SuccessCount  int
	FailureCount  int
	Outcomes      []TokenResult
	RemovedTokens []string
}

// userDocument is the subset of the user document the dispatcher reads.
type userDocument struct {
	PushTokens []string `json:"pushTokens"`
}

// Dispatcher sends notifications and keeps token registrations clean.
type Dispatcher struct {
	store  docstore.Store
	pusher Pusher
}

// NewDispatcher creates a new Dispatcher instance.
func NewDispatcher(store docstore.Store, pusher Pusher) *Dispatcher {
	return &Dispatcher{store: store, pusher: pusher}
}

// Notify sends one multicast push to every device the target user has
// registered. Tokens the provider reports as dead are removed from the
// user document best-effort; a cleanup failure never fails the dispatch.
func (d *Dispatcher) Notify(ctx context.Context, userID string, n Notification) (*DispatchResult, error) {
	path := "users/" + userID

	var user userDocument
	if err := d.store.Get(ctx, path, &user); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}

	if len(user.PushTokens) == 0 {
		return nil, fmt.Errorf("%w: user %s", ErrNoRegisteredDevices, userID)
	}

	sent, err := d.pusher.SendMulticast(ctx, user.PushTokens, n)
	if err != nil {
		return nil, fmt.Errorf("multicast send failed: %w", err)
	}

	result := &DispatchResult{
		SuccessCount: sent.SuccessCount,
		FailureCount: sent.FailureCount,
		Outcomes:     sent.Results,
	}

	var stale []string
	for _, outcome := range sent.Results {
		if !outcome.Success && staleTokenCodes[outcome.ErrorCode] {
			stale = append(stale, outcome.Token)
		}
	}
	if len(stale) > 0 {
		if err := d.store.RemoveElements(ctx, path, "pushTokens", stale); err != nil {
			// The notification itself already completed; losing the prune
			// only means the dead token is retried next time.
			log.Printf("Warning: failed to remove %d stale tokens for user %s: %v", len(stale), userID, err)
		} else {
			result.RemovedTokens = stale
		}
	}

	if result.SuccessCount == 0 {
		return result, fmt.Errorf("%w: %d tokens", ErrAllDeliveriesFailed, result.FailureCount)
	}
	return result, nil
}
