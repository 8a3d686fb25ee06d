package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mealplan-service/internal/config"
)

// expoPusher sends notifications through the Expo push gateway. One POST
// carries every token; the response holds one ticket per message, in order.
type expoPusher struct {
	apiURL      string
	accessToken string
	httpClient  *http.Client
}

// NewExpoPusher creates a new Expo push client.
func NewExpoPusher(cfg *config.Config) Pusher {
	return &expoPusher{
		apiURL:      cfg.PushAPIURL,
		accessToken: cfg.PushAccessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type expoMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type expoTicket struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

type expoResponse struct {
	Data []expoTicket `json:"data"`
}

// SendMulticast sends the notification to all tokens in one request and
// maps the returned tickets onto per-token results.
func (p *expoPusher) SendMulticast(ctx context.Context, tokens []string, n Notification) (*MulticastResult, error) {
	messages := make([]expoMessage, 0, len(tokens))
	for _, token := range tokens {
		msg := expoMessage{
			To:    token,
			Title: n.Title,
			Body:  n.Body,
		}
		if n.DeepLinkTarget != "" {
			msg.Data = map[string]string{"deepLink": n.DeepLinkTarget}
		}
		messages = append(messages, msg)
	}

	jsonBody, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.accessToken)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("push api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var pushResp expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&pushResp); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}
	if len(pushResp.Data) != len(tokens) {
		return nil, fmt.Errorf("push api returned %d tickets for %d tokens", len(pushResp.Data), len(tokens))
	}

	result := &MulticastResult{Results: make([]TokenResult, 0, len(tokens))}
	for i, ticket := range pushResp.Data {
		outcome := TokenResult{Token: tokens[i], Success: ticket.Status == "ok"}
		if outcome.Success {
			result.SuccessCount++
		} else {
			outcome.ErrorCode = ticket.Details.Error
			result.FailureCount++
		}
		result.Results = append(result.Results, outcome)
	}

	return result, nil
}
