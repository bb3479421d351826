package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

var ErrCompletionUnavailable = errors.New("completion service has no API key configured")

// TextCompleter is the opaque text-completion dependency of the chat flow.
type TextCompleter interface {
	Configured() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompletionService calls Gemini, walking a short fixed model list and returning the last
// error when every model fails. There are no retries beyond that list.
type CompletionService struct {
	appContext.DefaultService

	client *genai.Client
	apiKey string
	models []string

	timeout         time.Duration
	temperature     float32
	maxOutputTokens int32
}

const COMPLETION_SVC = "completion_svc"

func (svc CompletionService) Id() string {
	return COMPLETION_SVC
}

func (svc *CompletionService) Configure(ctx *appContext.Context) error {
	svc.apiKey = shared.GetEnv("GEMINI_API_KEY", shared.GetEnv("GOOGLE_API_KEY", ""))
	svc.models = splitList(shared.GetEnv("GEMINI_MODELS", "gemini-2.0-flash,gemini-1.5-flash"))
	svc.timeout = shared.GetEnvDuration("GEMINI_TIMEOUT", 30*time.Second)
	svc.temperature = float32(shared.GetEnvFloat("GEMINI_TEMPERATURE", 0.7))
	svc.maxOutputTokens = int32(shared.GetEnvInt("GEMINI_MAX_OUTPUT_TOKENS", 1024))

	return svc.DefaultService.Configure(ctx)
}

func (svc *CompletionService) Start() error {
	if svc.apiKey == "" {
		log.Warn("GEMINI_API_KEY / GOOGLE_API_KEY not set, chat completions disabled")
		return nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  svc.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	svc.client = client
	log.WithField("models", svc.models).Info("Gemini completion service ready")
	return nil
}

func (svc *CompletionService) Configured() bool {
	return svc.client != nil
}

func (svc *CompletionService) Complete(ctx context.Context, prompt string) (string, error) {
	if !svc.Configured() {
		return "", ErrCompletionUnavailable
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(svc.temperature),
		MaxOutputTokens: svc.maxOutputTokens,
	}

	lastErr := errors.New("no completion models configured")
	for _, model := range svc.models {
		text, err := svc.generate(ctx, model, prompt, config)
		if err == nil {
			return text, nil
		}

		log.WithError(err).WithField("model", model).Warn("Gemini generation failed")
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	return "", lastErr
}

func (svc *CompletionService) generate(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, svc.timeout)
	defer cancel()

	resp, err := svc.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("%s: %w", model, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%s: empty response", model)
	}
	return text, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
