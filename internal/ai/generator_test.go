package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huutrungle2001/moral-duel-api/internal/config"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

func newTestGenerator(t *testing.T, reply string) *HTTPGenerator {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer auth, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: reply}},
			},
		})
	}))
	t.Cleanup(server.Close)

	cfg := &config.AIConfig{
		APIURL:         server.URL,
		APIKey:         "test-key",
		Model:          "test-model",
		TimeoutSeconds: 5,
		Temperature:    0.8,
	}
	return NewHTTPGenerator(cfg, logger.New("error", "console", "stdout"))
}

func TestHTTPGenerator_GenerateCase(t *testing.T) {
	reply := `{"title":"The Lifeboat","context":"Ten people, eight seats.","verdict_side":"no","verdict_reasoning":"Drawing lots respects equal worth.","confidence":0.7}`
	gen := newTestGenerator(t, reply)

	generated, err := gen.GenerateCase(context.Background())
	if err != nil {
		t.Fatalf("GenerateCase() failed: %v", err)
	}
	if generated.Title != "The Lifeboat" {
		t.Errorf("Expected title 'The Lifeboat', got %q", generated.Title)
	}
	// Side is normalized to upper case
	if generated.VerdictSide != "NO" {
		t.Errorf("Expected side NO, got %q", generated.VerdictSide)
	}
	if generated.Confidence != 0.7 {
		t.Errorf("Expected confidence 0.7, got %f", generated.Confidence)
	}
}

func TestHTTPGenerator_JudgeCase_EchoesInput(t *testing.T) {
	reply := `{"title":"ignored","context":"ignored","verdict_side":"YES","verdict_reasoning":"Consent was informed.","confidence":0.9}`
	gen := newTestGenerator(t, reply)

	generated, err := gen.JudgeCase(context.Background(), "My Dilemma", "The full story.")
	if err != nil {
		t.Fatalf("JudgeCase() failed: %v", err)
	}
	if generated.Title != "My Dilemma" {
		t.Errorf("Expected submitted title to be kept, got %q", generated.Title)
	}
	if generated.Context != "The full story." {
		t.Errorf("Expected submitted context to be kept, got %q", generated.Context)
	}
	if generated.VerdictSide != "YES" {
		t.Errorf("Expected side YES, got %q", generated.VerdictSide)
	}
}

func TestParseGeneratedCase(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name:    "clean JSON",
			content: `{"title":"t","context":"c","verdict_side":"YES","verdict_reasoning":"r","confidence":0.5}`,
		},
		{
			name:    "fenced JSON",
			content: "```json\n{\"title\":\"t\",\"context\":\"c\",\"verdict_side\":\"NO\",\"verdict_reasoning\":\"r\",\"confidence\":1}\n```",
		},
		{
			name:    "no JSON",
			content: "I cannot decide.",
			wantErr: true,
		},
		{
			name:    "invalid side",
			content: `{"title":"t","context":"c","verdict_side":"MAYBE","verdict_reasoning":"r","confidence":0.5}`,
			wantErr: true,
		},
		{
			name:    "missing reasoning",
			content: `{"title":"t","context":"c","verdict_side":"YES","confidence":0.5}`,
			wantErr: true,
		},
		{
			name:    "confidence out of range",
			content: `{"title":"t","context":"c","verdict_side":"YES","verdict_reasoning":"r","confidence":1.5}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseGeneratedCase(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseGeneratedCase() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
