package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mealplan-service/internal/config"
)

func TestExpoPusherSendMulticast(t *testing.T) {
	var gotAuth string
	var gotMessages []expoMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotMessages); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"status": "ok", "id": "ticket-1"},
			{"status": "error", "message": "not registered", "details": {"error": "DeviceNotRegistered"}}
		]}`))
	}))
	defer server.Close()

	pusher := NewExpoPusher(&config.Config{PushAPIURL: server.URL, PushAccessToken: "secret"})
	result, err := pusher.SendMulticast(context.Background(), []string{"tok-1", "tok-2"}, Notification{
		Title:          "Plan ready",
		Body:           "Your plan is ready",
		DeepLinkTarget: "/plans/p1",
	})
	if err != nil {
		t.Fatalf("SendMulticast failed: %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
	if len(gotMessages) != 2 {
		t.Fatalf("Expected one request carrying 2 messages, got %d", len(gotMessages))
	}
	if gotMessages[0].To != "tok-1" || gotMessages[0].Data["deepLink"] != "/plans/p1" {
		t.Errorf("Unexpected first message: %+v", gotMessages[0])
	}

	if result.SuccessCount != 1 || result.FailureCount != 1 {
		t.Errorf("Expected 1 success / 1 failure, got %d / %d", result.SuccessCount, result.FailureCount)
	}
	if result.Results[1].ErrorCode != "DeviceNotRegistered" {
		t.Errorf("Expected provider error code carried, got %q", result.Results[1].ErrorCode)
	}
}

func TestExpoPusherServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "push service down", http.StatusBadGateway)
	}))
	defer server.Close()

	pusher := NewExpoPusher(&config.Config{PushAPIURL: server.URL})
	if _, err := pusher.SendMulticast(context.Background(), []string{"tok-1"}, Notification{}); err == nil {
		t.Fatal("Expected an error on non-200 response")
	}
}

func TestExpoPusherTicketCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	pusher := NewExpoPusher(&config.Config{PushAPIURL: server.URL})
	if _, err := pusher.SendMulticast(context.Background(), []string{"tok-1"}, Notification{}); err == nil {
		t.Fatal("Expected an error when ticket count does not match token count")
	}
}
