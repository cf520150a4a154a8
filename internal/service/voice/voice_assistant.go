package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/observability/telemetry"
	"github.com/seu-repo/vox-assistant/internal/ports"
	"github.com/seu-repo/vox-assistant/internal/service/intent"
)

const (
	defaultHistoryLimit    = 10
	defaultConfirmationTTL = 5 * time.Minute
	didNotCatch            = "Sorry, I didn't catch that. Could you say it again?"
)

// BatchExecutor runs several intents from one utterance.
type BatchExecutor interface {
	ExecuteAll(ctx context.Context, userID, sessionID, transcript string, intents []domain.Intent) (*domain.AggregatedOutcome, error)
}

type Config struct {
	ConfirmationTTL time.Duration
	HistoryLimit    int
}

// VoiceAssistant turns a transcript into executed intents, holding
// side-effecting batches until the user confirms them.
type VoiceAssistant struct {
	extractor ports.IntentSource
	executor  intent.SingleExecutor
	batches   BatchExecutor
	actions   ports.ActionRepository
	sessions  ports.SessionRepository
	cache     ports.Cache
	speech    ports.SpeechSynthesizer
	cfg       Config
	logger    *zap.Logger
}

func NewVoiceAssistant(
	extractor ports.IntentSource,
	executor intent.SingleExecutor,
	batches BatchExecutor,
	actions ports.ActionRepository,
	sessions ports.SessionRepository,
	cache ports.Cache,
	speech ports.SpeechSynthesizer,
	cfg Config,
	logger *zap.Logger,
) *VoiceAssistant {
	if cfg.ConfirmationTTL <= 0 {
		cfg.ConfirmationTTL = defaultConfirmationTTL
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	return &VoiceAssistant{
		extractor: extractor,
		executor:  executor,
		batches:   batches,
		actions:   actions,
		sessions:  sessions,
		cache:     cache,
		speech:    speech,
		cfg:       cfg,
		logger:    logger,
	}
}

// ProcessTranscript handles one utterance. A new session is opened when
// sessionID is empty.
func (va *VoiceAssistant) ProcessTranscript(ctx context.Context, userID, sessionID, transcript string) (*domain.VoiceResponse, error) {
	started := time.Now()
	defer func() { telemetry.VoiceLatency.Observe(time.Since(started).Seconds()) }()

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, domain.NewValidationError("transcript", "is required")
	}

	session, err := va.session(ctx, userID, sessionID)
	if err != nil {
		telemetry.VoiceCommandsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	history, err := va.actions.ListBySession(ctx, session.ID, va.cfg.HistoryLimit)
	if err != nil {
		va.logger.Warn("conversation history unavailable", zap.String("session_id", session.ID), zap.Error(err))
		history = nil
	}

	extracted, err := va.extractor.Extract(ctx, transcript, history)
	if err != nil {
		telemetry.VoiceCommandsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("extract intents: %w", err)
	}

	intents := make([]domain.Intent, 0, len(extracted))
	for _, in := range extracted {
		if strings.TrimSpace(in.Kind.String()) != "" {
			intents = append(intents, in)
		}
	}
	if len(intents) == 0 {
		intents = []domain.Intent{{Kind: domain.IntentOther, NaturalLanguageResponse: didNotCatch}}
	}

	resp := &domain.VoiceResponse{
		SessionID:  session.ID,
		Transcript: transcript,
		Intents:    intents,
	}

	if intent.RequiresConfirmation(intents) {
		if err := va.hold(ctx, domain.PendingBatch{
			UserID:     userID,
			SessionID:  session.ID,
			Transcript: transcript,
			Intents:    intents,
		}); err != nil {
			telemetry.VoiceCommandsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		resp.RequiresConfirmation = true
		resp.Text = confirmationPrompt(intents)
		resp.SpokenText = resp.Text
		resp.Audio = va.speak(ctx, resp.Text)
		telemetry.VoiceCommandsTotal.WithLabelValues("awaiting_confirmation").Inc()
		return resp, nil
	}

	if err := va.run(ctx, userID, session.ID, transcript, intents, resp); err != nil {
		telemetry.VoiceCommandsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	telemetry.VoiceCommandsTotal.WithLabelValues("executed").Inc()
	return resp, nil
}

// Confirm executes or discards the batch held for the session. The batch is
// taken atomically, so overlapping confirms run it at most once.
func (va *VoiceAssistant) Confirm(ctx context.Context, userID, sessionID string, approved bool) (*domain.VoiceResponse, error) {
	if _, err := va.session(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	raw, err := va.cache.GetDel(ctx, pendingKey(sessionID))
	if errors.Is(err, ports.ErrCacheMiss) {
		return nil, fmt.Errorf("no pending confirmation for session %s: %w", sessionID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load pending confirmation: %w", err)
	}

	var batch domain.PendingBatch
	if err := json.Unmarshal([]byte(raw), &batch); err != nil {
		return nil, fmt.Errorf("decode pending confirmation: %w", err)
	}
	if batch.UserID != userID {
		if err := va.hold(ctx, batch); err != nil {
			va.logger.Warn("failed to restore pending confirmation", zap.String("session_id", sessionID), zap.Error(err))
		}
		return nil, fmt.Errorf("no pending confirmation for session %s: %w", sessionID, domain.ErrNotFound)
	}

	resp := &domain.VoiceResponse{
		SessionID:  batch.SessionID,
		Transcript: batch.Transcript,
		Intents:    batch.Intents,
	}
	if !approved {
		resp.Text = "Okay, I won't do that."
		resp.SpokenText = resp.Text
		resp.Audio = va.speak(ctx, resp.Text)
		telemetry.VoiceCommandsTotal.WithLabelValues("declined").Inc()
		return resp, nil
	}

	if err := va.run(ctx, userID, batch.SessionID, batch.Transcript, batch.Intents, resp); err != nil {
		return nil, err
	}
	telemetry.VoiceCommandsTotal.WithLabelValues("confirmed").Inc()
	return resp, nil
}

// History returns the session's action records in insertion order.
func (va *VoiceAssistant) History(ctx context.Context, userID, sessionID string, limit int) ([]domain.ActionRecord, error) {
	if _, err := va.session(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = va.cfg.HistoryLimit
	}
	return va.actions.ListBySession(ctx, sessionID, limit)
}

func (va *VoiceAssistant) run(ctx context.Context, userID, sessionID, transcript string, intents []domain.Intent, resp *domain.VoiceResponse) error {
	if len(intents) == 1 {
		out, err := va.executor.Execute(ctx, userID, sessionID, transcript, intents[0])
		if err != nil {
			return err
		}
		resp.Outcome = &out
		resp.Text = out.Detail()
		if !out.Success {
			resp.Text = out.Error
		}
		resp.SpokenText = out.SpeechText()
	} else {
		agg, err := va.batches.ExecuteAll(ctx, userID, sessionID, transcript, intents)
		if err != nil {
			return err
		}
		resp.Aggregate = agg
		resp.Text = agg.DisplayResponse
		resp.SpokenText = agg.SpokenResponse
	}
	resp.Audio = va.speak(ctx, resp.SpokenText)
	return nil
}

func (va *VoiceAssistant) session(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		s := &domain.Session{ID: uuid.NewString(), UserID: userID, CreatedAt: time.Now()}
		if err := va.sessions.Create(ctx, s); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		return s, nil
	}

	s, err := va.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil || s.UserID != userID {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	return s, nil
}

func (va *VoiceAssistant) hold(ctx context.Context, batch domain.PendingBatch) error {
	raw, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode pending confirmation: %w", err)
	}
	if err := va.cache.Set(ctx, pendingKey(batch.SessionID), string(raw), va.cfg.ConfirmationTTL); err != nil {
		return fmt.Errorf("store pending confirmation: %w", err)
	}
	return nil
}

// speak never fails the request; a missing audio reference only loses speech.
func (va *VoiceAssistant) speak(ctx context.Context, text string) string {
	if va.speech == nil || text == "" {
		return ""
	}
	audio, err := va.speech.Synthesize(ctx, text)
	if err != nil {
		va.logger.Warn("speech synthesis failed", zap.Error(err))
		return ""
	}
	return audio
}

func pendingKey(sessionID string) string {
	return "pending:" + sessionID
}

func confirmationPrompt(intents []domain.Intent) string {
	if len(intents) == 1 && intents[0].NaturalLanguageResponse != "" {
		return intents[0].NaturalLanguageResponse + " Should I go ahead?"
	}
	kinds := make([]string, len(intents))
	for i, in := range intents {
		kinds[i] = strings.ReplaceAll(in.Kind.String(), "_", " ")
	}
	return fmt.Sprintf("I'm about to %s. Should I go ahead?", strings.Join(kinds, ", then "))
}
