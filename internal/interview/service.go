// Package interview implements the interview turn proxy: it records an audit
// entry, forwards the turn to the generative API and reshapes the reply.
package interview

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tjfontaine/interview-gateway/internal/api/gemini"
	"github.com/tjfontaine/interview-gateway/internal/domain"
	"github.com/tjfontaine/interview-gateway/internal/metrics"
	"github.com/tjfontaine/interview-gateway/internal/storage"
)

const (
	// RecentLogLimit caps how many entries Logs returns.
	RecentLogLimit = 100

	// logExcerptLength is how much of a user reply goes into the text log.
	logExcerptLength = 50

	defaultRole = "user"
)

// Generator is the upstream generative API.
type Generator interface {
	GenerateContent(ctx context.Context, req *gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error)
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics enables metric recording.
func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Service) {
		s.metrics = collector
	}
}

// WithClock overrides the wall clock used for log entries and health timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service handles interview turns, audit log reads and health checks.
type Service struct {
	generator Generator
	audit     storage.AuditLog
	metrics   *metrics.Collector
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new interview service.
func NewService(generator Generator, audit storage.AuditLog, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		audit:     audit,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle processes one interview turn. Every non-nil request produces exactly
// one audit entry, appended before the upstream call, whatever the outcome.
// Failures are always *domain.APIError.
func (s *Service) Handle(ctx context.Context, req *domain.InterviewRequest) (result *domain.InterviewResult, err error) {
	if req == nil {
		return nil, domain.ErrNoData()
	}

	req.ApplyDefaults()

	defer func() {
		outcome := metrics.OutcomeSuccess
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			outcome = string(apiErr.Type)
		}
		s.metrics.RecordRequest(req.AgentType, outcome)
	}()

	entry := domain.LogEntry{
		Timestamp:          s.now().UTC(),
		AgentType:          req.AgentType,
		UserResponse:       req.UserResponse,
		ConversationLength: len(req.ConversationHistory),
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to append audit entry", slog.String("error", err.Error()))
		return nil, domain.ErrUnknown(err)
	}
	s.metrics.RecordAuditEntry()

	s.logger.InfoContext(ctx, "interview request",
		slog.String("agent_type", string(req.AgentType)),
		slog.String("user_response", excerpt(req.UserResponse, logExcerptLength)),
		slog.Int("conversation_length", entry.ConversationLength),
	)

	start := time.Now()
	resp, err := s.generator.GenerateContent(ctx, buildUpstreamRequest(req))
	s.metrics.ObserveUpstream(req.AgentType, time.Since(start))
	if err != nil {
		apiErr := classify(err)
		s.logger.ErrorContext(ctx, "gemini request failed",
			slog.String("agent_type", string(req.AgentType)),
			slog.String("error_type", string(apiErr.Type)),
			slog.String("error", err.Error()),
		)
		return nil, apiErr
	}

	text, ok := resp.FirstText()
	if !ok {
		s.logger.ErrorContext(ctx, "no candidates in gemini response",
			slog.String("agent_type", string(req.AgentType)),
		)
		return nil, domain.ErrInvalidUpstreamResponse()
	}

	var data any
	if req.AgentType.IsOrchestrator() {
		data = domain.ParseOrchestratorReply(text)
	} else {
		data = domain.ContentPayload{Content: text}
	}

	s.logger.InfoContext(ctx, "interview request processed", slog.String("agent_type", string(req.AgentType)))

	return &domain.InterviewResult{
		Success:   true,
		Data:      data,
		AgentType: req.AgentType,
	}, nil
}

// Logs returns the most recent audit entries and the total ever appended.
func (s *Service) Logs(ctx context.Context) (*domain.LogsResult, error) {
	entries, err := s.audit.Recent(ctx, RecentLogLimit)
	if err != nil {
		return nil, domain.NewAPIError(domain.ErrorTypeUnknown, domain.MessageLogsUnavailable).WithCause(err)
	}
	total, err := s.audit.Total(ctx)
	if err != nil {
		return nil, domain.NewAPIError(domain.ErrorTypeUnknown, domain.MessageLogsUnavailable).WithCause(err)
	}
	return &domain.LogsResult{Logs: entries, TotalCount: total}, nil
}

// Health reports a fixed healthy status. It checks no dependencies.
func (s *Service) Health() domain.HealthStatus {
	return domain.HealthStatus{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	}
}

// buildUpstreamRequest orders contents as system prompt, history, additional context.
func buildUpstreamRequest(req *domain.InterviewRequest) *gemini.GenerateContentRequest {
	contents := make([]gemini.Content, 0, len(req.ConversationHistory)+2)

	if req.SystemPrompt != "" {
		contents = append(contents, textContent(defaultRole, req.SystemPrompt))
	}

	for _, turn := range req.ConversationHistory {
		role := turn.Role
		if role == "" {
			role = defaultRole
		}
		contents = append(contents, textContent(role, turn.Content))
	}

	if req.AdditionalContext != "" {
		contents = append(contents, textContent(defaultRole, req.AdditionalContext))
	}

	out := &gemini.GenerateContentRequest{
		Contents: contents,
		SafetySettings: []gemini.SafetySetting{
			{Category: gemini.HarmCategoryHarassment, Threshold: gemini.BlockMediumAndAbove},
			{Category: gemini.HarmCategoryHateSpeech, Threshold: gemini.BlockMediumAndAbove},
		},
	}

	if cfg := req.GenerationConfig; cfg != nil {
		out.GenerationConfig = &gemini.GenerationConfig{
			Temperature:     cfg.Temperature,
			TopK:            cfg.TopK,
			TopP:            cfg.TopP,
			MaxOutputTokens: cfg.MaxOutputTokens,
			StopSequences:   cfg.StopSequences,
		}
	}

	return out
}

func textContent(role, text string) gemini.Content {
	return gemini.Content{Role: role, Parts: []gemini.Part{{Text: text}}}
}

// classify maps an upstream failure onto the error taxonomy.
func classify(err error) *domain.APIError {
	var statusErr *gemini.StatusError
	switch {
	case errors.As(err, &statusErr):
		return domain.ErrUpstream(statusErr.StatusCode).WithCause(err)
	case errors.Is(err, gemini.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrTimeout().WithCause(err)
	default:
		return domain.ErrUnknown(err)
	}
}

// excerpt returns at most n runes of s.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
