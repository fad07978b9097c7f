// Package engine walks a solution graph from the first step of a problem,
// running query steps and rendering the first reachable reply.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/viant/kgflow/internal/logging"
	"github.com/viant/kgflow/model"
	"github.com/viant/kgflow/model/state"
	"github.com/viant/kgflow/runtime/evaluator"
	"github.com/viant/kgflow/runtime/template"
	"github.com/viant/kgflow/service/graph"
	"github.com/viant/kgflow/service/query"
	"github.com/viant/kgflow/tracing"
)

// Service represents traversal engine
type Service struct {
	store     graph.Store
	query     query.Service
	evaluator evaluator.Evaluator
	messages  Messages
	maxSteps  int
	strict    bool
	logger    *slog.Logger
}

// turn holds the state of a single traversal
type turn struct {
	problemID string
	context   state.Context
	values    state.Context
	path      []model.StepKey
	logger    *slog.Logger
}

// Run traverses the problem graph; it never fails, every failure is
// reported as an interrupted outcome carrying the context as of the failure.
func (s *Service) Run(ctx context.Context, problemID string, input state.Context) (outcome *Outcome) {
	if s.logger != nil {
		ctx = logging.WithLogger(ctx, s.logger)
	}
	ctx, span := tracing.StartSpan(ctx, "engine.run", tracing.KindInternal)
	span.WithAttributes(map[string]string{"problem": problemID})
	defer func() {
		span.WithAttributes(map[string]string{"status": string(outcome.Status), "reason": string(outcome.Reason)})
		tracing.EndSpan(span, outcome.Err)
	}()

	t := &turn{
		problemID: problemID,
		context:   input.Clone(),
		values:    state.NewContext(),
		logger:    logging.FromContext(ctx).With("problem", problemID),
	}
	step, err := s.store.FirstStep(ctx, problemID)
	if err != nil {
		if !errors.Is(err, graph.ErrNotFound) {
			t.logger.Error("failed to load first step", "error", err)
			if s.strict {
				return s.interrupt(t, ReasonStorageFailure, "", err)
			}
		}
		return s.interrupt(t, ReasonNotFound, "", nil)
	}
	for {
		if len(t.path) >= s.maxSteps {
			t.logger.Error("step limit exceeded", "maxSteps", s.maxSteps)
			return s.interrupt(t, ReasonStepLimitExceeded, "", nil)
		}
		t.path = append(t.path, step.Key())
		outcome = s.execute(ctx, t, step)
		if outcome != nil {
			return outcome
		}
		if step, outcome = s.next(ctx, t, step); outcome != nil {
			return outcome
		}
	}
}

// execute runs a step, returns an outcome when traversal terminates
func (s *Service) execute(ctx context.Context, t *turn, step *model.Step) (outcome *Outcome) {
	ctx, span := tracing.StartSpan(ctx, "engine.step", tracing.KindInternal)
	span.WithAttributes(map[string]string{"step": strconv.Itoa(step.ID), "operation": string(step.Operation)})
	defer func() {
		var err error
		if outcome != nil && outcome.Status == StatusInterrupted {
			err = fmt.Errorf("%s", outcome.Reason)
		}
		tracing.EndSpan(span, err)
	}()
	switch step.Operation {
	case model.OperationQuery:
		return s.executeQuery(ctx, t, step)
	case model.OperationReply:
		return s.executeReply(t, step)
	}
	t.logger.Error("unsupported step operation", "step", step.ID, "operation", step.Operation)
	return s.interrupt(t, ReasonUnsupportedOperation, "", nil)
}

func (s *Service) executeQuery(ctx context.Context, t *turn, step *model.Step) *Outcome {
	if step.Condition == "" {
		t.logger.Warn("query step without condition, skipping", "step", step.ID)
		return nil
	}
	condition, err := template.Render(step.Condition, t.context)
	if err != nil {
		t.logger.Error("failed to render query condition", "step", step.ID, "error", err)
		return s.interrupt(t, ReasonRenderFailure, "", nil)
	}
	if s.query == nil {
		t.logger.Error("query service was not configured", "step", step.ID)
		return nil
	}
	value, err := s.query.QueryScalar(ctx, step.System, step.Table, step.Field, condition)
	if err != nil {
		t.logger.Error("query failed", "step", step.ID, "error", err)
		if s.strict {
			return s.interrupt(t, ReasonStorageFailure, "", err)
		}
		value = state.Null()
	}
	if value.IsNull() {
		t.logger.Info("query returned no value", "step", step.ID, "field", step.Field)
		return nil
	}
	t.values.Set(step.Field, value)
	t.context.Set(step.Field, value)
	t.logger.Info("query result", "step", step.ID, "field", step.Field, "value", value.String())
	return nil
}

func (s *Service) executeReply(t *turn, step *model.Step) *Outcome {
	if step.Reply == "" {
		t.logger.Error("reply step has empty template", "step", step.ID)
		return s.interrupt(t, ReasonEmptyReply, "", nil)
	}
	reply, err := template.Render(step.Reply, t.context)
	if err != nil {
		t.logger.Error("failed to render reply", "step", step.ID, "error", err)
		return s.interrupt(t, ReasonRenderFailure, missingName(err), nil)
	}
	t.logger.Info("reply generated", "step", step.ID)
	return &Outcome{
		Status:  StatusCompleted,
		Message: reply,
		Context: t.context,
		Values:  t.values,
		Path:    t.path,
	}
}

// next selects the next step: the first NEXT_DEFAULT encountered wins
// unconditionally, a NEXT_IF wins when its condition holds.
func (s *Service) next(ctx context.Context, t *turn, step *model.Step) (*model.Step, *Outcome) {
	candidates, err := s.store.NextCandidates(ctx, t.problemID, step.ID)
	if err != nil {
		t.logger.Error("failed to load next candidates", "step", step.ID, "error", err)
		if s.strict {
			return nil, s.interrupt(t, ReasonStorageFailure, "", err)
		}
		candidates = nil
	}
	if len(candidates) == 0 {
		t.logger.Error("no next step", "step", step.ID)
		return nil, s.interrupt(t, ReasonNoNextStep, "", nil)
	}
	for _, candidate := range candidates {
		if candidate.Step == nil {
			continue
		}
		switch candidate.Type {
		case model.EdgeNextDefault:
			t.logger.Debug("default transition", "from", step.ID, "to", candidate.Step.ID)
			return candidate.Step, nil
		case model.EdgeNextIf:
			if candidate.Condition == "" {
				continue
			}
			if s.evaluator.Evaluate(ctx, candidate.Condition, t.context) {
				t.logger.Debug("condition satisfied", "condition", candidate.Condition, "from", step.ID, "to", candidate.Step.ID)
				return candidate.Step, nil
			}
		}
	}
	t.logger.Error("no satisfied branch", "step", step.ID)
	return nil, s.interrupt(t, ReasonNoSatisfiedBranch, "", nil)
}

func (s *Service) interrupt(t *turn, reason Reason, detail string, err error) *Outcome {
	return &Outcome{
		Status:  StatusInterrupted,
		Reason:  reason,
		Message: s.messages.forReason(reason, detail),
		Context: t.context,
		Values:  t.values,
		Path:    t.path,
		Err:     err,
	}
}

func missingName(err error) string {
	var missing *template.MissingVariableError
	if errors.As(err, &missing) {
		return missing.Name
	}
	return err.Error()
}

// New creates traversal engine
func New(store graph.Store, queryService query.Service, opts ...Option) *Service {
	ret := &Service{
		store:     store,
		query:     queryService,
		evaluator: evaluator.NewTextual(),
		messages:  DefaultMessages(),
		maxSteps:  DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
