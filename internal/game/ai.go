package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIAdapter realizes AIAdapter against the OpenAI chat completions API
// (§4.L, grounded in Liggi-text-adventure's internal/llm.Service).
type OpenAIAdapter struct {
	client *openai.Client
	model  string
	tracer trace.Tracer
}

// NewOpenAIAdapter constructs an adapter bound to apiKey. model defaults to
// a JSON-friendly chat model if empty.
func NewOpenAIAdapter(apiKey, model string) *OpenAIAdapter {
	if model == "" {
		model = "gpt-4o-mini"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIAdapter{client: &client, model: model, tracer: otel.Tracer("tinymud/ai")}
}

// Generate implements AIAdapter. Each call is wrapped in an OpenTelemetry
// span recording response time (response_time_ms) and any error, so adapter
// health is observable without surfacing AdapterError to players (§4.L
// ambient stack). Truncation happens later, in planViaAdapter, and is not
// recorded on the span.
func (a *OpenAIAdapter) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, span := a.tracer.Start(ctx, "ai.generate", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("gen_ai.system", "openai"), attribute.String("gen_ai.request.model", a.model)))
	defer span.End()

	start := time.Now()
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are the autonomy planner for a text-adventure NPC. Respond with a JSON array of up to 4 action records, each {\"tool\": string, \"args\": object}."),
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	}
	resp, err := a.client.Chat.Completions.New(ctx, req)
	span.SetAttributes(attribute.Int64("response_time_ms", time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		return "", wrapKindError(KindAdapter, "chat completion", err)
	}
	if len(resp.Choices) == 0 {
		err := newAdapterError("no completion choices returned")
		span.RecordError(err)
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

// planViaAdapter invokes the AI path (§4.H.3) under a timeout, truncates an
// oversize response to maxResponseLen, extracts the JSON array and validates
// it as action records. A timeout, parse failure or malformed record is
// returned as an error; think falls back to the offline plan on any error.
func planViaAdapter(ctx context.Context, w *World, npcName string, sheet *CharacterSheet, room *Room, adapter AIAdapter, maxResponseLen int, timeout time.Duration) ([]ActionRecord, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := buildPlanningPrompt(w, npcName, sheet, room)
	raw, err := adapter.Generate(ctx, prompt, 512)
	if err != nil {
		return nil, err
	}
	if len(raw) > maxResponseLen {
		raw = raw[:maxResponseLen]
	}
	raw = extractJSONArray(raw)

	var records []ActionRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, wrapKindError(KindAdapter, "parse plan response", err)
	}
	if len(records) > 4 {
		records = records[:4]
	}
	for _, r := range records {
		if !r.WellFormed() {
			return nil, newAdapterError("plan response contained a malformed action record")
		}
	}
	return records, nil
}

func buildPlanningPrompt(w *World, npcName string, sheet *CharacterSheet, room *Room) string {
	var b strings.Builder
	fmt.Fprintf(&b, "World: %s — %s\n", w.Meta.Name, w.Meta.Conflict)
	fmt.Fprintf(&b, "NPC %s needs: hunger=%.0f thirst=%.0f social=%.0f sleep=%.0f\n",
		npcName, sheet.Needs.Hunger, sheet.Needs.Thirst, sheet.Needs.Socialization, sheet.Needs.Sleep)
	fmt.Fprintf(&b, "Personality: responsibility=%d aggression=%d confidence=%d curiosity=%d\n",
		sheet.Personality.Responsibility, sheet.Personality.Aggression, sheet.Personality.Confidence, sheet.Personality.Curiosity)
	b.WriteString("Room objects:\n")
	for _, o := range room.Objects {
		fmt.Fprintf(&b, "- %s (%s) tags=%v\n", o.DisplayName, o.ID, o.Tags)
	}
	b.WriteString("Inventory:\n")
	for _, o := range sheet.Inventory.Objects() {
		fmt.Fprintf(&b, "- %s (%s)\n", o.DisplayName, o.ID)
	}
	return b.String()
}

// extractJSONArray returns the first top-level JSON array substring in s,
// tolerating prose wrapped around a truncated model response.
func extractJSONArray(s string) string {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

// DeterministicFallback produces seeded, contextual action-record plans and
// stands in as the adapter when no API key is configured (§4.L); errors and
// timeouts of a live adapter fall back to GenerateOfflinePlan instead. Grounded in
// the teacher's commands/dream.go hash-seeded scene index, generalized from
// picking a fixed string to picking among fixed action-record templates so
// the offline plan path and the AI-absent fallback degrade to the same
// deterministic family of behaviors.
type DeterministicFallback struct{}

func (DeterministicFallback) Generate(_ context.Context, prompt string, _ int) (string, error) {
	templates := [][]ActionRecord{
		{{Tool: "do_nothing", Args: map[string]any{}}},
		{{Tool: "emote", Args: map[string]any{"message": "glances around."}}},
		{{Tool: "emote", Args: map[string]any{}}},
	}
	idx := seedIndex(prompt, len(templates))
	raw, _ := json.Marshal(templates[idx])
	return string(raw), nil
}

func seedIndex(s string, n int) int {
	if n <= 0 {
		return 0
	}
	sum := 0
	for _, r := range s {
		sum += int(r)
	}
	if sum < 0 {
		sum = -sum
	}
	return sum % n
}
