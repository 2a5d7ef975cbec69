// Package decision implements game.DecisionProvider backed by an external
// chat-completions service, plus deterministic providers for tests and
// offline runs. Free-text parsing of model replies is isolated in parse.go;
// the engine never depends on parsing succeeding.
package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"merchants.ai/internal/game"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

type OpenRouterProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	log     *log.Logger
}

type Option func(*OpenRouterProvider)

func WithBaseURL(u string) Option { return func(p *OpenRouterProvider) { p.baseURL = u } }
func WithHTTPClient(c *http.Client) Option {
	return func(p *OpenRouterProvider) { p.client = c }
}

func NewOpenRouter(apiKey, model string, logger *log.Logger, opts ...Option) *OpenRouterProvider {
	if model == "" {
		model = "openai/gpt-4o-mini"
	}
	p := &OpenRouterProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     logger,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// callChat issues a single POST; retries belong to the caller's policy, not
// here, and certainly not to the engine.
func (p *OpenRouterProvider) callChat(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{Model: p.model, Messages: messages, MaxTokens: 500})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completion status: %s", resp.Status)
	}
	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion")
	}
	return cr.Choices[0].Message.Content, nil
}

func (p *OpenRouterProvider) Decide(ctx context.Context, player game.Player, state game.GameState, phase string, available []string) (game.Decision, error) {
	prompt := buildDecidePrompt(player, state, phase, available)
	raw, err := p.callChat(ctx, []chatMessage{
		{Role: "system", Content: player.Prompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return game.Decision{}, err
	}
	return ParseDecision(raw), nil
}

func (p *OpenRouterProvider) EvaluatePersuasion(ctx context.Context, target game.Player, req game.PersuasionRequest, state game.GameState) (game.Evaluation, error) {
	prompt := buildEvaluatePrompt(target, req, state)
	raw, err := p.callChat(ctx, []chatMessage{
		{Role: "system", Content: target.Prompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return game.Evaluation{}, err
	}
	return ParseEvaluation(raw), nil
}
