// Package solution handles a conversation turn: it extracts the intent,
// resolves the problem graph, runs the engine and persists the context.
package solution

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/kgflow/internal/idgen"
	"github.com/viant/kgflow/internal/logging"
	"github.com/viant/kgflow/model/state"
	"github.com/viant/kgflow/runtime/engine"
	"github.com/viant/kgflow/service/graph"
	"github.com/viant/kgflow/service/nlu"
	"github.com/viant/kgflow/service/session"
)

const (
	// DefaultPromptFormat combines user id and query, verbs: user id, query
	DefaultPromptFormat = "customer %s asks: %s"
	// DefaultClarification asks the user to restate the problem
	DefaultClarification = "Sorry, I am not sure about your problem. Would you like to check your account balance, resolve a transfer issue, or activate a card?"
	// DefaultUnsupported is a format with a single %s verb for the intent
	DefaultUnsupported = "Sorry, we cannot handle %s problems at the moment."
)

// Response represents a turn response
type Response struct {
	TurnID        string          `json:"turnId"`
	Message       string          `json:"message"`
	Intent        string          `json:"intent,omitempty"`
	Confidence    float64         `json:"confidence"`
	ProblemID     string          `json:"problemId,omitempty"`
	Clarification bool            `json:"clarification,omitempty"`
	Outcome       *engine.Outcome `json:"outcome,omitempty"`
}

// Service represents solution service
type Service struct {
	extractor     nlu.Extractor
	store         graph.Store
	engine        *engine.Service
	sessions      session.Store
	locker        *locker
	minConfidence float64
	promptFormat  string
	clarification string
	unsupported   string
}

// ProcessQuery handles a single user turn
func (s *Service) ProcessQuery(ctx context.Context, userID, query string) (*Response, error) {
	if userID == "" {
		return nil, session.ErrInvalidUser
	}
	turnID := idgen.New()
	logger := logging.FromContext(ctx).With("user", userID, "turn", turnID)
	ctx = logging.WithLogger(ctx, logger)
	logger.Info("processing query", "query", query)
	if s.locker != nil {
		defer s.locker.lock(userID)()
	}
	values, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load context of %v: %w", userID, err)
	}
	result := s.extractor.Extract(ctx, fmt.Sprintf(s.promptFormat, userID, query))
	if result == nil {
		result = nlu.Unknown()
	}
	logger.Info("intent extracted", "intent", result.Intent, "confidence", result.Confidence)
	values = values.Merge(state.FromMap(result.Entities))
	response := &Response{TurnID: turnID, Intent: result.Intent, Confidence: result.Confidence}

	if result.NeedsClarification(s.minConfidence) {
		response.Clarification = true
		response.Message = s.clarification
		return response, s.save(ctx, userID, values)
	}
	problemID, err := s.store.ProblemIDForIntent(ctx, result.Intent)
	if err != nil {
		if !errors.Is(err, graph.ErrNotFound) {
			logger.Error("failed to find problem", "intent", result.Intent, "error", err)
		}
		response.Message = fmt.Sprintf(s.unsupported, result.Intent)
		return response, s.save(ctx, userID, values)
	}
	response.ProblemID = problemID
	outcome := s.engine.Run(ctx, problemID, values)
	response.Outcome = outcome
	response.Message = outcome.Message
	return response, s.save(ctx, userID, outcome.Context)
}

// ClearContext removes user context
func (s *Service) ClearContext(ctx context.Context, userID string) error {
	if err := s.sessions.Clear(ctx, userID); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("context cleared", "user", userID)
	return nil
}

func (s *Service) save(ctx context.Context, userID string, values state.Context) error {
	if err := s.sessions.Put(ctx, userID, values); err != nil {
		return fmt.Errorf("failed to save context of %v: %w", userID, err)
	}
	return nil
}

// New creates solution service
func New(extractor nlu.Extractor, store graph.Store, engineService *engine.Service, sessions session.Store, opts ...Option) *Service {
	ret := &Service{
		extractor:     extractor,
		store:         store,
		engine:        engineService,
		sessions:      sessions,
		locker:        newLocker(),
		minConfidence: nlu.DefaultMinConfidence,
		promptFormat:  DefaultPromptFormat,
		clarification: DefaultClarification,
		unsupported:   DefaultUnsupported,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
