package planner

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"mealplan-service/internal/aijson"
	"mealplan-service/internal/docstore"
	"mealplan-service/internal/llm"
	"mealplan-service/internal/request"
)

// ErrMalformedAIOutput indicates the model answered, but its output could
// not be recovered into a structurally valid plan. Distinct from upstream
// call failures: this one means the prompt or schema needs fixing, not the
// service.
var ErrMalformedAIOutput = errors.New("malformed model output")

// chunkDays is the fixed window covered by one chunk request.
const chunkDays = 7

// UsageRecorder persists token accounting for model calls.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, operation string, usage llm.TokenUsage, latency time.Duration) error
}

// GenerationParams are the normalized parameters for one generation call.
type GenerationParams struct {
	Days      int
	StartDate time.Time
	Request   *request.MealPlanRequest
}

// Planner orchestrates plan generation: prompt construction, the model
// call, structured-output recovery and persistence.
type Planner struct {
	textGen llm.ContentGenerator
	store   docstore.Store
	usage   UsageRecorder
	model   string
}

// NewPlanner creates a new Planner instance. usage may be nil.
func NewPlanner(textGen llm.ContentGenerator, store docstore.Store, usage UsageRecorder, model string) *Planner {
	return &Planner{
		textGen: textGen,
		store:   store,
		usage:   usage,
		model:   model,
	}
}

// Window computes the date window a validated request covers. Full requests
// span durationDays from the start date; chunk requests cover the fixed
// 7-day window selected by chunkIndex.
func Window(req *request.MealPlanRequest, mode request.Mode, now time.Time) (time.Time, int, error) {
	start := nextMonday(now)
	if req.PlanStartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PlanStartDate)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("invalid planStartDate %q: %w", req.PlanStartDate, err)
		}
		start = parsed
	}

	if mode == request.ModeChunk {
		start = start.AddDate(0, 0, int(*req.ChunkIndex)*chunkDays)
		return start, chunkDays, nil
	}
	return start, int(*req.DurationDays), nil
}

// GeneratePlan runs the full pipeline for an authenticated user: generate,
// assemble the plan document, persist it. The returned document is the
// persisted form; the GenerationResult carries the model's raw proposal.
func (p *Planner) GeneratePlan(ctx context.Context, userID string, req *request.MealPlanRequest, mode request.Mode) (*MealPlanDocument, *GenerationResult, error) {
	now := time.Now()
	start, days, err := Window(req, mode, now)
	if err != nil {
		return nil, nil, err
	}

	params := GenerationParams{Days: days, StartDate: start, Request: req}
	result, err := p.GenerateChunk(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	doc := BuildDocument(userID, params, result, now)
	if err := p.SavePlan(ctx, doc); err != nil {
		return nil, nil, fmt.Errorf("failed to persist plan %s: %w", doc.PlanID, err)
	}
	return doc, result, nil
}

// GenerateChunk builds the prompt from normalized parameters, invokes the
// model and recovers a structurally valid plan fragment from its output.
// Upstream and safety errors pass through unchanged; recovery and shape
// failures surface as ErrMalformedAIOutput.
func (p *Planner) GenerateChunk(ctx context.Context, params GenerationParams) (*GenerationResult, error) {
	prompt := buildPlanPrompt(params)

	callStart := time.Now()
	resp, err := p.textGen.Generate(ctx, llm.GenerateRequest{
		Model:             p.model,
		Prompt:            prompt,
		SystemInstruction: plannerSystemInstruction,
		Config: llm.GenerationConfig{
			Temperature:      floatPtr(0.2),
			ResponseMIMEType: "application/json",
		},
	})
	if err != nil {
		return nil, err
	}

	if p.usage != nil {
		if err := p.usage.RecordUsage(ctx, "generate_plan", resp.Usage, time.Since(callStart)); err != nil {
			log.Printf("Warning: failed to record usage metrics: %v", err)
		}
	}

	result, err := recoverResult(resp.Content)
	if err != nil {
		return nil, err
	}
	result.Usage = ModelUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Model:            resp.Usage.Model,
	}
	return result, nil
}

// recoverResult extracts the proposed plan from raw model text. The model
// sometimes returns the bare day array instead of the documented envelope,
// so both shapes are accepted.
func recoverResult(content string) (*GenerationResult, error) {
	var result GenerationResult
	if err := aijson.ExtractFromFreeText(content, &result); err != nil {
		var days []AiDayPlan
		if err2 := aijson.ExtractFromFreeText(content, &days); err2 != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAIOutput, err)
		}
		result = GenerationResult{Plan: days}
	}

	if len(result.Plan) == 0 {
		return nil, fmt.Errorf("%w: proposed plan has no days", ErrMalformedAIOutput)
	}
	for i, day := range result.Plan {
		if len(day.Meals) == 0 {
			return nil, fmt.Errorf("%w: day %d has no meal mapping", ErrMalformedAIOutput, i)
		}
	}
	return &result, nil
}

// BuildDocument merges a generation result into a persistable plan document
// for the authenticated user. The document covers at most the requested
// window, and every AI-proposed meal is stored as a stub item.
func BuildDocument(userID string, params GenerationParams, result *GenerationResult, now time.Time) *MealPlanDocument {
	days := params.Days
	if len(result.Plan) < days {
		days = len(result.Plan)
	}

	doc := &MealPlanDocument{
		PlanID:    "plan-" + newID(),
		Name:      fmt.Sprintf("Meal plan starting %s", params.StartDate.Format("Jan 2, 2006")),
		StartDate: params.StartDate.Format("2006-01-02"),
		EndDate:   params.StartDate.AddDate(0, 0, days-1).Format("2006-01-02"),
		CreatedAt: now.UTC(),
		UserID:    userID,
	}

	for i := 0; i < days; i++ {
		date := params.StartDate.AddDate(0, 0, i)
		proposed := result.Plan[i]

		day := DayPlan{
			ID:        fmt.Sprintf("%s-day-%d", doc.PlanID, i+1),
			Date:      date.Format("2006-01-02"),
			DayOfWeek: date.Weekday().String(),
			Meals:     make(map[string][]MealSlotItem, len(proposed.Meals)),
		}
		for mealType, items := range proposed.Meals {
			slots := make([]MealSlotItem, 0, len(items))
			for _, item := range items {
				servings := item.Servings
				if servings <= 0 {
					servings = 1
				}
				slots = append(slots, MealSlotItem{
					ID:              "meal-" + newID(),
					Title:           item.Title,
					EstimatedMacros: item.EstimatedMacros,
					Servings:        servings,
					IsStub:          true,
					Source:          "ai",
					KeyIngredients:  item.KeyIngredients,
				})
			}
			day.Meals[mealType] = slots
		}
		doc.Days = append(doc.Days, day)
	}

	return doc
}

// SavePlan persists a plan document under its owner's namespace.
func (p *Planner) SavePlan(ctx context.Context, doc *MealPlanDocument) error {
	path := fmt.Sprintf("users/%s/mealPlans/%s", doc.UserID, doc.PlanID)
	return p.store.Set(ctx, path, doc, false)
}

func nextMonday(now time.Time) time.Time {
	day := now
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

func newID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func floatPtr(f float32) *float32 {
	return &f
}
