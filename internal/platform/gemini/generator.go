package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/homeroomhq/homeroom-api/internal/config"
	"github.com/homeroomhq/homeroom-api/internal/domain/cardcontent"
	"github.com/homeroomhq/homeroom-api/internal/generation"
)

const (
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = 2
	maxDraftCount            = 20
)

// promptTemplate instructs the model to emit a JSON object matching
// responseSchema. Only basic and true/false drafts are requested; richer
// variants need review anyway and the two simple types validate cleanly.
const promptTemplate = `You are generating study flashcards for a child from the source text below.
Produce %d flashcards as a single JSON object of the form:
{"cards":[{"card_type":"basic","question":"...","answer":"...","hint":"..."}]}
Allowed card_type values: "basic", "true_false".
For true_false cards, the answer must be exactly "True" or "False".
Keep questions short and age-appropriate. Do not include any text outside the JSON object.

Source text:
%s`

// responseSchema is the JSON shape the model is asked to produce.
type responseSchema struct {
	Cards []draftSchema `json:"cards"`
}

type draftSchema struct {
	CardType string `json:"card_type"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Hint     string `json:"hint,omitempty"`
}

// Generator implements generation.Generator on the Gemini API.
type Generator struct {
	logger *slog.Logger
	client *genai.Client
	model  string
}

// Ensure Generator implements generation.Generator
var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed draft generator.
// Returns generation.ErrInvalidConfig if the API key or model name is missing.
func NewGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.GenerationConfig,
) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger.With(slog.String("component", "gemini_generator")),
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// GenerateDrafts implements generation.Generator.GenerateDrafts
func (g *Generator) GenerateDrafts(
	ctx context.Context,
	sourceText string,
	count int,
) ([]cardcontent.RawFields, error) {
	if strings.TrimSpace(sourceText) == "" {
		return nil, generation.ErrEmptySourceText
	}

	if count < 1 {
		count = 1
	}
	if count > maxDraftCount {
		count = maxDraftCount
	}

	prompt := fmt.Sprintf(promptTemplate, count, sourceText)

	response, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return g.parseResponse(ctx, response)
}

// callWithRetry makes a Gemini API call with exponential backoff and jitter.
// Permanent errors (blocked content, malformed responses) are returned
// immediately; transient API failures are retried.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	for attempt := 0; ; attempt++ {
		g.logger.InfoContext(ctx, "calling Gemini API",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", defaultMaxRetries+1))

		response, transient, err := g.callOnce(ctx, prompt, genConfig)
		if err == nil {
			return response, nil
		}

		g.logger.WarnContext(ctx, "Gemini API call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		if !transient || attempt >= defaultMaxRetries {
			if transient {
				return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
					generation.ErrTransientFailure, defaultMaxRetries)
			}
			return nil, err
		}

		// delay = baseDelay * 2^attempt * jitter in [0.5, 1.0)
		backoff := float64(defaultRetryDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single API call. The boolean reports whether a failure
// is worth retrying.
func (g *Generator) callOnce(
	ctx context.Context,
	prompt string,
	genConfig *genai.GenerateContentConfig,
) (*responseSchema, bool, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, false, fmt.Errorf("%w: blocked by safety filters", generation.ErrContentBlocked)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(resp.Text()), &parsed); err != nil {
		return nil, false, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}

	return &parsed, false, nil
}

// parseResponse converts the model's JSON into raw card fields. Drafts with
// missing required fields are skipped rather than failing the batch; the
// model occasionally emits a dud alongside usable cards.
func (g *Generator) parseResponse(
	ctx context.Context,
	response *responseSchema,
) ([]cardcontent.RawFields, error) {
	if response == nil || len(response.Cards) == 0 {
		return nil, fmt.Errorf("%w: no cards in response", generation.ErrInvalidResponse)
	}

	drafts := make([]cardcontent.RawFields, 0, len(response.Cards))
	for i, card := range response.Cards {
		if card.Question == "" || card.Answer == "" {
			g.logger.WarnContext(ctx, "skipping incomplete draft card",
				slog.Int("index", i))
			continue
		}

		draft := cardcontent.RawFields{
			CardType: string(cardcontent.CardTypeBasic),
			Question: card.Question,
			Answer:   card.Answer,
			Hint:     card.Hint,
		}
		if card.CardType == string(cardcontent.CardTypeTrueFalse) {
			draft.CardType = card.CardType
			draft.TrueFalseAnswer = card.Answer
		}

		drafts = append(drafts, draft)
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: no usable cards in response", generation.ErrInvalidResponse)
	}

	g.logger.InfoContext(ctx, "draft cards generated",
		slog.Int("draft_count", len(drafts)))
	return drafts, nil
}
