package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

// IntentExtractor asks a chat model for the intents in a transcript.
type IntentExtractor struct {
	model llms.Model
	now   func() time.Time
	log   *zap.Logger
}

// NewChatModel builds the OpenAI-compatible chat model behind the extractor.
func NewChatModel(apiKey, model, baseURL string) (llms.Model, error) {
	opts := []lcopenai.Option{
		lcopenai.WithToken(apiKey),
		lcopenai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(baseURL))
	}
	return lcopenai.New(opts...)
}

func NewIntentExtractor(model llms.Model, log *zap.Logger) *IntentExtractor {
	return &IntentExtractor{
		model: model,
		now:   time.Now,
		log:   log,
	}
}

// Extract sends the recent session history as prior turns so follow-ups
// like "move it to 3pm" resolve against earlier actions.
func (e *IntentExtractor) Extract(ctx context.Context, transcript string, history []domain.ActionRecord) ([]domain.Intent, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, fmt.Sprintf(systemPrompt, e.now().Format("Monday, 2006-01-02"))),
	}
	for _, rec := range history {
		if rec.Transcript == "" {
			continue
		}
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, rec.Transcript))
		if reply := historyReply(rec); reply != "" {
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, reply))
		}
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, transcript))

	resp, err := e.model.GenerateContent(ctx, messages,
		llms.WithTemperature(0),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, fmt.Errorf("intent extraction: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("intent extraction: empty response")
	}

	intents, err := parseIntents(resp.Choices[0].Content)
	if err != nil {
		e.log.Warn("unparseable intent response", zap.String("content", resp.Choices[0].Content), zap.Error(err))
		return nil, err
	}
	return intents, nil
}

func historyReply(rec domain.ActionRecord) string {
	if rec.Result == nil {
		return ""
	}
	if rec.Result.Success {
		if rec.Result.SpokenResponse != "" {
			return rec.Result.SpokenResponse
		}
		return rec.Result.Detail()
	}
	return rec.Result.Error
}

// parseIntents accepts {"intents":[...]}, a bare array, or a single intent object.
func parseIntents(content string) ([]domain.Intent, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var wrapped struct {
		Intents []domain.Intent `json:"intents"`
	}
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &wrapped.Intents); err != nil {
			return nil, fmt.Errorf("intent extraction: %w", err)
		}
		return wrapped.Intents, nil
	}

	var single domain.Intent
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, fmt.Errorf("intent extraction: %w", err)
	}
	if len(wrapped.Intents) > 0 {
		return wrapped.Intents, nil
	}
	if err := json.Unmarshal([]byte(content), &single); err == nil && single.Kind != "" {
		return []domain.Intent{single}, nil
	}
	return nil, nil
}
