// Package ai provides the dilemma and verdict generation collaborator.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/huutrungle2001/moral-duel-api/internal/config"
	"github.com/huutrungle2001/moral-duel-api/internal/models"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

// GeneratedCase is one dilemma with its sealed verdict, as produced by the
// model. The verdict never leaves the backend until the case closes.
type GeneratedCase struct {
	Title            string  `json:"title"`
	Context          string  `json:"context"`
	VerdictSide      string  `json:"verdict_side"`
	VerdictReasoning string  `json:"verdict_reasoning"`
	Confidence       float64 `json:"confidence"`
}

// Generator produces new dilemmas and verdicts for user-submitted cases.
type Generator interface {
	GenerateCase(ctx context.Context) (*GeneratedCase, error)
	JudgeCase(ctx context.Context, title, context string) (*GeneratedCase, error)
}

const systemPrompt = `You are the judge of a public moral-dilemma arena.
Respond with a single JSON object and nothing else:
{"title": string, "context": string, "verdict_side": "YES"|"NO", "verdict_reasoning": string, "confidence": number between 0 and 1}`

// HTTPGenerator calls a chat-completions API.
type HTTPGenerator struct {
	apiURL      string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	log         *logger.Logger
}

// NewHTTPGenerator creates a generator backed by a chat-completions endpoint.
func NewHTTPGenerator(cfg *config.AIConfig, log *logger.Logger) *HTTPGenerator {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPGenerator{
		apiURL:      cfg.APIURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
		log:         log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateCase asks the model for a fresh dilemma with a sealed verdict.
func (g *HTTPGenerator) GenerateCase(ctx context.Context) (*GeneratedCase, error) {
	prompt := "Invent a new, self-contained moral dilemma that splits reasonable people. Decide your verdict on it."
	return g.complete(ctx, prompt)
}

// JudgeCase asks the model to render a verdict on a user-submitted dilemma.
// The returned title and context echo the input.
func (g *HTTPGenerator) JudgeCase(ctx context.Context, title, caseContext string) (*GeneratedCase, error) {
	prompt := fmt.Sprintf("Render your verdict on this dilemma.\nTitle: %s\nContext: %s", title, caseContext)
	generated, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	generated.Title = title
	generated.Context = caseContext
	return generated, nil
}

func (g *HTTPGenerator) complete(ctx context.Context, prompt string) (*GeneratedCase, error) {
	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: g.temperature,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal completion response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("completion API returned no choices")
	}

	generated, err := parseGeneratedCase(chatResp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	g.log.Debug().
		Str("side", generated.VerdictSide).
		Float64("confidence", generated.Confidence).
		Msg("Model produced a verdict")
	return generated, nil
}

// parseGeneratedCase extracts and validates the JSON object from the model's
// reply, tolerating surrounding prose or code fences.
func parseGeneratedCase(content string) (*GeneratedCase, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("model reply contains no JSON object")
	}

	var generated GeneratedCase
	if err := json.Unmarshal([]byte(content[start:end+1]), &generated); err != nil {
		return nil, fmt.Errorf("failed to parse model reply: %w", err)
	}

	generated.VerdictSide = strings.ToUpper(strings.TrimSpace(generated.VerdictSide))
	if generated.VerdictSide != models.SideYes && generated.VerdictSide != models.SideNo {
		return nil, fmt.Errorf("model verdict side %q is not YES or NO", generated.VerdictSide)
	}
	if generated.VerdictReasoning == "" {
		return nil, fmt.Errorf("model verdict has no reasoning")
	}
	if generated.Confidence < 0 || generated.Confidence > 1 {
		return nil, fmt.Errorf("model confidence %f out of range", generated.Confidence)
	}
	return &generated, nil
}
