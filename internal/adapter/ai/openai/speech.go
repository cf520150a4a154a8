package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/infrastructure/circuitbreaker"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	maxAudioBytes  = 8 << 20
)

// SpeechSynthesizer turns replies into MP3 audio via the speech endpoint
// and hands it back as a data URI.
type SpeechSynthesizer struct {
	apiKey  string
	baseURL string
	model   string
	voice   string
	http    *circuitbreaker.HTTPClient
	log     *zap.Logger
}

func NewSpeechSynthesizer(apiKey, baseURL, model, voice string, httpClient *circuitbreaker.HTTPClient, log *zap.Logger) *SpeechSynthesizer {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "alloy"
	}
	return &SpeechSynthesizer{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		voice:   voice,
		http:    httpClient,
		log:     log,
	}
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

func (s *SpeechSynthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("openai: API key not configured")
	}

	payload, err := json.Marshal(speechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &domain.ExternalServiceError{Service: "OpenAI speech", StatusCode: resp.StatusCode}
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return "", fmt.Errorf("openai: read audio: %w", err)
	}

	s.log.Debug("Synthesized speech",
		zap.Int("chars", len(text)),
		zap.Int("bytes", len(audio)),
	)
	return "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(audio), nil
}
