// Package actions holds one handler per intent kind. Handlers never return
// errors: every failure is reported as an unsuccessful ExecutionOutcome.
package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/ports"
	"github.com/seu-repo/vox-assistant/internal/service/timeparse"
)

// Dependencies are the collaborators the handlers call into. Cache may be nil.
// Every call must honour ctx: a call that outlives its deadline keeps running
// in the background after the handler has reported failure.
type Dependencies struct {
	Tasks    ports.TaskRepository
	Notes    ports.NoteRepository
	Profiles ports.ProfileRepository
	Actions  ports.ActionRepository
	Tokens   ports.TokenProvider
	Calendar ports.CalendarClient
	Mail     ports.MailClient
	Weather  ports.WeatherClient
	Times    ports.TimeParser
	Cache    ports.Cache
}

type Options struct {
	// WeatherDailyLimit caps get_weather lookups across all users per local day.
	WeatherDailyLimit int
	DefaultLocation   string
	WeatherCacheTTL   time.Duration
	// CallTimeout bounds every collaborator call made by a handler.
	CallTimeout time.Duration
	// Location is the zone used for "today", midnight and event times.
	Location *time.Location
	Now      func() time.Time
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		WeatherDailyLimit: 100,
		DefaultLocation:   "London",
		WeatherCacheTTL:   10 * time.Minute,
		CallTimeout:       10 * time.Second,
		Location:          time.Local,
		Now:               time.Now,
	}
}

type Service struct {
	deps Dependencies
	opts Options
	log  *zap.Logger
}

func NewService(deps Dependencies, opts Options, log *zap.Logger) *Service {
	def := DefaultOptions()
	if opts.WeatherDailyLimit <= 0 {
		opts.WeatherDailyLimit = def.WeatherDailyLimit
	}
	if opts.DefaultLocation == "" {
		opts.DefaultLocation = def.DefaultLocation
	}
	if opts.WeatherCacheTTL <= 0 {
		opts.WeatherCacheTTL = def.WeatherCacheTTL
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = def.CallTimeout
	}
	if opts.Location == nil {
		opts.Location = def.Location
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{deps: deps, opts: opts, log: log}
}

func (s *Service) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

func (s *Service) today() time.Time {
	return timeparse.StartOfDay(s.now())
}

// timeoutError reports a collaborator that missed the call deadline. For
// writes the request may still have reached the service.
type timeoutError struct {
	service string
	write   bool
}

func (e *timeoutError) Error() string {
	if e.write {
		return e.service + " took too long to respond, so the change may still have gone through"
	}
	return e.service + " took too long to respond"
}

func (e *timeoutError) Is(target error) bool {
	return target == domain.ErrTimedOut
}

type callResult[T any] struct {
	value T
	err   error
	panic any
}

// within runs fn under the configured call deadline. A panic inside fn is
// re-raised on the calling goroutine.
func within[T any](ctx context.Context, s *Service, service string, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()

	ch := make(chan callResult[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- callResult[T]{panic: r}
			}
		}()
		v, err := fn(callCtx)
		ch <- callResult[T]{value: v, err: err}
	}()

	var zero T
	select {
	case r := <-ch:
		if r.panic != nil {
			panic(r.panic)
		}
		if r.err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, &timeoutError{service: service}
		}
		return r.value, r.err
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, &timeoutError{service: service}
	}
}

// withinWrite is within for calls with side effects on an external service.
func withinWrite[T any](ctx context.Context, s *Service, service string, fn func(context.Context) (T, error)) (T, error) {
	v, err := within(ctx, s, service, fn)
	var te *timeoutError
	if errors.As(err, &te) {
		te.write = true
	}
	return v, err
}

// run is within for calls that only return an error.
func run(ctx context.Context, s *Service, service string, fn func(context.Context) error) error {
	_, err := within(ctx, s, service, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func (s *Service) fail(kind domain.IntentKind, userID, message string, err error) domain.ExecutionOutcome {
	s.log.Warn("action failed",
		zap.String("intent", kind.String()),
		zap.String("user_id", userID),
		zap.Error(err),
	)
	if err == nil {
		return domain.Failed(message)
	}
	return domain.Failed(fmt.Sprintf("%s: %v", message, err))
}

func (s *Service) knowledgeBase(ctx context.Context, userID string) (string, error) {
	profile, err := within(ctx, s, "profile store", func(ctx context.Context) (*domain.Profile, error) {
		return s.deps.Profiles.FindByUserID(ctx, userID)
	})
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", nil
	}
	return profile.KnowledgeBase, nil
}

// userMessage is the display form of err. Validation errors drop the field.
func userMessage(err error) string {
	msg := err.Error()
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		msg = ve.Message
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
