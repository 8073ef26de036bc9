package services

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"github.com/fitstack/apiserver/config"
)

// Generator produces a text reply for a user prompt. The production
// implementation talks to the Gemini API; tests substitute a fake.
type Generator interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator relays prompts to the Gemini generative-language API.
// It holds no per-request state and is safe for concurrent use.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator constructs a generator from config.
func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig) (*GeminiGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// GenerateReply forwards the prompt and returns the model's text reply.
func (g *GeminiGenerator) GenerateReply(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	reply := resp.Text()
	if reply == "" {
		return "", errors.New("empty reply from model")
	}
	return reply, nil
}

// WingmanService answers chat messages through a Generator.
type WingmanService struct {
	generator Generator
}

func NewWingmanService(generator Generator) *WingmanService {
	return &WingmanService{generator: generator}
}

func (s *WingmanService) Chat(ctx context.Context, message string) (string, error) {
	return s.generator.GenerateReply(ctx, message)
}
