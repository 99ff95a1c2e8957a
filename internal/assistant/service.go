package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/smartcampus/smartcampus/internal/campus"
	"github.com/smartcampus/smartcampus/internal/intent"
	"github.com/smartcampus/smartcampus/internal/nl2sql"
	"github.com/smartcampus/smartcampus/internal/observability"
	"github.com/smartcampus/smartcampus/internal/query"
	"github.com/smartcampus/smartcampus/internal/session"
	"github.com/smartcampus/smartcampus/internal/sqlguard"
)

// BlockedMessage is the normal payload returned when the safety gate rejects a
// generated statement.
const BlockedMessage = "Unsafe SQL blocked."

var (
	ErrGeneration = errors.New("statement generation failed")
	ErrExecution  = errors.New("statement execution failed")
)

type SchemaSource interface {
	Describe(ctx context.Context) (string, error)
}

type FAQRetriever interface {
	Retrieve(question string, k int) []string
}

type Dependencies struct {
	Logger    *slog.Logger
	Generator nl2sql.Generator
	Schema    SchemaSource
	Engine    query.Engine
	FAQ       FAQRetriever
	Sessions  session.Store

	FAQTopK int
	// ScopeBinding binds the student identity as a parameter when scoping
	// generated statements. When false the identity is quoted into the text.
	ScopeBinding bool
	// Dialect names the SQL dialect in generation prompts.
	Dialect nl2sql.Dialect
}

type Service struct {
	logger       *slog.Logger
	generator    nl2sql.Generator
	schema       SchemaSource
	engine       query.Engine
	faq          FAQRetriever
	sessions     session.Store
	faqTopK      int
	scopeBinding bool
	dialect      nl2sql.Dialect
}

type AskRequest struct {
	SessionID string
	Caller    campus.Caller
	Message   string
}

type SQLAnswer struct {
	SQL  string           `json:"sql"`
	Data []map[string]any `json:"data"`
}

// Response.Answer is a string for chat, faq and blocked outcomes and a
// SQLAnswer when a statement ran.
type Response struct {
	Route   intent.Route    `json:"route"`
	Answer  any             `json:"response"`
	History []session.Entry `json:"history"`
}

func NewService(deps Dependencies) (*Service, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if deps.Schema == nil {
		return nil, fmt.Errorf("schema source is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("query engine is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	topK := deps.FAQTopK
	if topK <= 0 {
		topK = 2
	}
	return &Service{
		logger:       logger,
		generator:    deps.Generator,
		schema:       deps.Schema,
		engine:       deps.Engine,
		faq:          deps.FAQ,
		sessions:     deps.Sessions,
		faqTopK:      topK,
		scopeBinding: deps.ScopeBinding,
		dialect:      deps.Dialect,
	}, nil
}

func (s *Service) Ask(ctx context.Context, req AskRequest) (Response, error) {
	if req.SessionID == "" {
		return Response{}, fmt.Errorf("session id is required")
	}
	if err := s.sessions.Init(ctx, req.SessionID); err != nil {
		return Response{}, err
	}
	if err := s.sessions.Append(ctx, req.SessionID, session.Entry{Role: session.RoleUser, Content: req.Message}); err != nil {
		return Response{}, err
	}

	route := intent.Classify(req.Message)
	observability.ObserveAsk(string(route))
	logger := s.logger.With(
		slog.String("trace_id", observability.TraceIDFromContext(ctx)),
		slog.String("route", string(route)),
		slog.String("role", string(req.Caller.Role)),
	)
	logger.DebugContext(ctx, "message_classified")

	var (
		answer any
		err    error
	)
	switch route {
	case intent.RouteFAQ:
		answer, err = s.answerFAQ(ctx, req.Message)
	case intent.RouteSQL:
		answer, err = s.answerSQL(ctx, logger, req)
	default:
		answer, err = s.generate(ctx, nl2sql.ChatPrompt(req.Message))
	}
	if err != nil {
		return Response{}, err
	}

	if err := s.sessions.Append(ctx, req.SessionID, session.Entry{Role: session.RoleAssistant, Content: historyText(answer)}); err != nil {
		return Response{}, err
	}
	history, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return Response{}, err
	}
	return Response{Route: route, Answer: answer, History: history}, nil
}

func (s *Service) answerFAQ(ctx context.Context, message string) (string, error) {
	var passages []string
	if s.faq != nil {
		passages = s.faq.Retrieve(message, s.faqTopK)
	}
	return s.generate(ctx, nl2sql.FAQPrompt(message, passages))
}

func (s *Service) answerSQL(ctx context.Context, logger *slog.Logger, req AskRequest) (any, error) {
	schema, err := s.schema.Describe(ctx)
	if err != nil {
		return nil, fmt.Errorf("describe schema: %w", err)
	}
	prompt := nl2sql.BuildPrompt(req.Message, schema, req.Caller, s.dialect)
	logger.DebugContext(ctx, "prompt_built", slog.Int("prompt_bytes", len(prompt)))

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		observability.ObserveSQLOutcome(observability.OutcomeGenerationFailed)
		return nil, err
	}
	candidate := nl2sql.Normalize(raw)
	logger.DebugContext(ctx, "statement_generated", slog.String("sql", candidate))

	decision, err := sqlguard.Approve(candidate, req.Caller, s.scopeBinding)
	switch {
	case errors.Is(err, sqlguard.ErrUnsafe):
		observability.ObserveSQLOutcome(observability.OutcomeBlocked)
		logger.WarnContext(ctx, "statement_blocked", slog.String("sql", candidate))
		return BlockedMessage, nil
	case err != nil:
		observability.ObserveSQLOutcome(observability.OutcomeRejected)
		logger.WarnContext(ctx, "statement_rejected", slog.String("error", err.Error()))
		return nil, err
	}
	if decision.Rewritten {
		observability.ObserveRewrite(string(req.Caller.Role))
		logger.DebugContext(ctx, "statement_scoped", slog.String("sql", decision.Approved.SQL()))
	}
	if req.Caller.Role == campus.RoleFaculty {
		logger.DebugContext(ctx, "faculty_scope_unverified", slog.String("department", req.Caller.Department))
	}

	result, err := s.engine.Execute(ctx, query.Request{SQL: decision.Approved.SQL(), Args: decision.Approved.Args()})
	if err != nil {
		observability.ObserveSQLOutcome(observability.OutcomeExecutionFailed)
		logger.ErrorContext(ctx, "statement_execution_failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	observability.ObserveSQLOutcome(observability.OutcomeExecuted)
	observability.ObserveExecutionLatency(result.Duration)
	logger.DebugContext(ctx, "statement_executed", slog.Int("rows", len(result.Rows)))

	return SQLAnswer{SQL: decision.Approved.SQL(), Data: result.Records()}, nil
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := s.generator.Generate(ctx, prompt)
	observability.ObserveGenerationLatency(time.Since(start))
	if err != nil {
		s.logger.ErrorContext(ctx, "generation_failed",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return out, nil
}

// historyText renders an answer the way it is kept in conversation history.
func historyText(answer any) string {
	switch typed := answer.(type) {
	case string:
		return typed
	default:
		payload, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(payload)
	}
}
