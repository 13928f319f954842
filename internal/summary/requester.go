// Package summary asks a text-generation model to explain the prediction log.
package summary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/wastenet/wastenet-go/internal/analytics"
	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

// errorPrefix starts the text returned in place of a summary on failure.
const errorPrefix = "Error generating summary: "

// TextGenerator produces text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Recorder receives summary metrics.
type Recorder interface {
	RecordOperation(operation, status string)
	RecordDuration(operation string, seconds float64)
	RecordError(operation, errorType string)
}

// Config tunes a Requester.
type Config struct {
	// Timeout bounds one generator call. Zero means no extra deadline.
	Timeout time.Duration
	// RateLimit is the sustained number of generator calls per second;
	// zero disables limiting.
	RateLimit float64
	Burst     int
	// CacheTTL keeps successful answers for identical prompts; zero disables caching.
	CacheTTL time.Duration
	// MaxRows bounds the raw log rows included in a summary prompt.
	MaxRows int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   60 * time.Second,
		RateLimit: 0.5,
		Burst:     2,
		CacheTTL:  10 * time.Minute,
		MaxRows:   500,
	}
}

// Requester builds prompts and calls the generator.
type Requester struct {
	gen      TextGenerator
	cfg      Config
	limiter  *rate.Limiter
	cache    *cache.Cache
	recorder Recorder
	log      logger.Logger
}

// Option configures a Requester.
type Option func(*Requester)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Requester) {
		if log != nil {
			r.log = log.Module("summary")
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Requester) { r.recorder = rec }
}

// NewRequester returns a Requester calling gen.
func NewRequester(gen TextGenerator, cfg Config, opts ...Option) *Requester {
	r := &Requester{
		gen: gen,
		cfg: cfg,
		log: logger.NewSlogLogger(nil, logger.LogLevelInfo, nil).Module("summary"),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.CacheTTL > 0 {
		r.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Summarize asks for trends and recommendations over the aggregated log.
// It never fails: a generator error comes back as text starting with
// "Error generating summary: ".
func (r *Requester) Summarize(ctx context.Context, result analytics.Result, records []predictionlog.Record) string {
	prompt := BuildPrompt(result, records, r.cfg.MaxRows)

	text, err := r.generate(ctx, "summarize", prompt)
	if err != nil {
		r.log.Warn("summary generation failed",
			logger.Int("records", len(records)),
			logger.Error(err))
		return errorPrefix + err.Error()
	}
	return text
}

// Answer asks a free-form waste logistics question.
func (r *Requester) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New(errors.NewStd("question is empty")).
			Component("summary").
			Category(errors.CategoryValidation).
			Build()
	}
	return r.generate(ctx, "chat", ChatPrompt(question))
}

// IsErrorText reports whether s is the inline failure text of Summarize.
func IsErrorText(s string) bool {
	return strings.HasPrefix(s, errorPrefix)
}

func (r *Requester) generate(ctx context.Context, operation, prompt string) (text string, err error) {
	if r.gen == nil {
		return "", errors.New(errors.NewStd("no text generator configured")).
			Component("summary").
			Category(errors.CategoryConfiguration).
			Context("operation", operation).
			Build()
	}

	key := cacheKey(prompt)
	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			r.observe(operation, "cache_hit", 0, nil)
			return cached.(string), nil
		}
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", errors.New(err).
				Component("summary").
				Category(errors.CategoryLimit).
				Context("operation", operation).
				Build()
		}
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err = r.gen.Generate(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		err = errors.New(err).
			Component("summary").
			Category(errors.CategoryLLM).
			Timing(operation, elapsed).
			Build()
		r.observe(operation, "error", elapsed, err)
		return "", err
	}

	r.observe(operation, "success", elapsed, nil)
	r.log.Debug("text generated",
		logger.String("operation", operation),
		logger.Int("prompt_chars", len(prompt)),
		logger.Int("response_chars", len(text)),
		logger.Duration("elapsed", elapsed))

	if r.cache != nil {
		r.cache.SetDefault(key, text)
	}
	return text, nil
}

func (r *Requester) observe(operation, status string, elapsed time.Duration, err error) {
	if r.recorder == nil {
		return
	}
	r.recorder.RecordOperation(operation, status)
	if elapsed > 0 {
		r.recorder.RecordDuration(operation, elapsed.Seconds())
	}
	if err != nil {
		r.recorder.RecordError(operation, string(errors.CategoryLLM))
	}
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
