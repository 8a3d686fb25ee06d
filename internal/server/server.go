// Package server exposes the service over HTTP: plan generation, push
// dispatch and recipe clipping, all behind bearer-token auth.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"mealplan-service/internal/auth"
	"mealplan-service/internal/clipper"
	"mealplan-service/internal/llm"
	"mealplan-service/internal/notify"
	"mealplan-service/internal/planner"
	"mealplan-service/internal/request"
)

// PlanGenerator runs the full generation pipeline for one user.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, userID string, req *request.MealPlanRequest, mode request.Mode) (*planner.MealPlanDocument, *planner.GenerationResult, error)
}

// Notifier dispatches a push notification to one user's devices.
type Notifier interface {
	Notify(ctx context.Context, userID string, n notify.Notification) (*notify.DispatchResult, error)
}

// URLClipper imports a recipe from a web page for one user.
type URLClipper interface {
	ClipURL(ctx context.Context, userID, url string) (*clipper.ClippedRecipe, error)
}

// Server holds the handlers' collaborators.
type Server struct {
	verifier *auth.Verifier
	planner  PlanGenerator
	notifier Notifier
	clipper  URLClipper
}

// NewServer creates a new Server instance. notifier and urlClipper may be
// nil, disabling their endpoints.
func NewServer(verifier *auth.Verifier, planGen PlanGenerator, notifier Notifier, urlClipper URLClipper) *Server {
	return &Server{
		verifier: verifier,
		planner:  planGen,
		notifier: notifier,
		clipper:  urlClipper,
	}
}

// Routes returns the service's HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/mealplans/generate", s.requireUser(s.handleGenerate(request.ModeFullPlan)))
	mux.HandleFunc("POST /v1/mealplans/generate-chunk", s.requireUser(s.handleGenerate(request.ModeChunk)))
	mux.HandleFunc("POST /v1/notifications", s.requireUser(s.handleNotify))
	mux.HandleFunc("POST /v1/recipes/clip", s.requireUser(s.handleClip))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

func (s *Server) requireUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.verifier.UserID(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) handleGenerate(mode request.Mode) userHandler {
	return func(w http.ResponseWriter, r *http.Request, userID string) {
		var req request.MealPlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if result := request.Validate(&req, mode); !result.IsValid() {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "invalid request",
				"issues": result.Errors,
			})
			return
		}

		doc, gen, err := s.planner.GeneratePlan(r.Context(), userID, &req, mode)
		if err != nil {
			writeGenerationError(w, err)
			return
		}

		// Plan-ready push is best effort; delivery problems never fail the
		// generation response.
		if s.notifier != nil {
			n := notify.Notification{
				Title:          "Your meal plan is ready",
				Body:           doc.Name,
				DeepLinkTarget: fmt.Sprintf("/mealplans/%s", doc.PlanID),
			}
			if _, err := s.notifier.Notify(r.Context(), userID, n); err != nil {
				log.Printf("Warning: plan-ready notification for user %s failed: %v", userID, err)
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"plan":         doc,
			"summaryNotes": gen.SummaryNotes,
		})
	}
}

func writeGenerationError(w http.ResponseWriter, err error) {
	var upstream *llm.UpstreamError
	switch {
	case errors.Is(err, llm.ErrSafetyBlocked):
		writeError(w, http.StatusUnprocessableEntity, "generation blocked by content safety")
	case errors.Is(err, planner.ErrMalformedAIOutput):
		writeError(w, http.StatusBadGateway, "model returned an unusable plan")
	case errors.As(err, &upstream),
		errors.Is(err, llm.ErrEmptyResponse),
		errors.Is(err, llm.ErrNoCandidates):
		writeError(w, http.StatusBadGateway, "generation service unavailable")
	default:
		log.Printf("Error: plan generation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request, userID string) {
	if s.notifier == nil {
		writeError(w, http.StatusNotImplemented, "notifications are not configured")
		return
	}

	var body struct {
		Title          string `json:"title"`
		Body           string `json:"body"`
		DeepLinkTarget string `json:"deepLinkTarget"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	result, err := s.notifier.Notify(r.Context(), userID, notify.Notification{
		Title:          body.Title,
		Body:           body.Body,
		DeepLinkTarget: body.DeepLinkTarget,
	})
	switch {
	case errors.Is(err, notify.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
		return
	case errors.Is(err, notify.ErrNoRegisteredDevices):
		writeError(w, http.StatusConflict, "user has no registered devices")
		return
	case errors.Is(err, notify.ErrAllDeliveriesFailed):
		// The per-token accounting is still meaningful to the caller.
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":         "all deliveries failed",
			"successCount":  result.SuccessCount,
			"failureCount":  result.FailureCount,
			"removedTokens": result.RemovedTokens,
		})
		return
	case err != nil:
		log.Printf("Error: notification dispatch for user %s failed: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"successCount":  result.SuccessCount,
		"failureCount":  result.FailureCount,
		"removedTokens": result.RemovedTokens,
	})
}

func (s *Server) handleClip(w http.ResponseWriter, r *http.Request, userID string) {
	if s.clipper == nil {
		writeError(w, http.StatusNotImplemented, "recipe clipping is not configured")
		return
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	clipped, err := s.clipper.ClipURL(r.Context(), userID, body.URL)
	if err != nil {
		log.Printf("Error: clipping %s for user %s failed: %v", body.URL, userID, err)
		writeError(w, http.StatusBadGateway, "failed to import recipe")
		return
	}

	writeJSON(w, http.StatusOK, clipped)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
