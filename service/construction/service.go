// Package construction builds solution graphs through a graph.Writer.
package construction

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/kgflow/model"
	"github.com/viant/kgflow/service/graph"
)

// Service represents graph construction service
type Service struct {
	writer graph.Writer
}

// NextProblemID returns the next TYPE-NNN identifier for the type.
//
// The id is derived from the largest existing suffix, so two concurrent
// creations of the same type can produce the same id; callers that create
// problems concurrently have to serialize per type themselves.
func (s *Service) NextProblemID(ctx context.Context, problemType string) (string, error) {
	ids, err := s.writer.ProblemIDs(ctx, problemType)
	if err != nil {
		return "", fmt.Errorf("failed to list %v problems: %w", problemType, err)
	}
	maxSeq := 0
	for _, id := range ids {
		if seq, ok := model.ProblemIDSequence(id); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	return model.FormatProblemID(problemType, maxSeq+1), nil
}

// CreateProblem assigns a generated id to the problem and stores it
func (s *Service) CreateProblem(ctx context.Context, problem *model.Problem) (string, error) {
	if problem == nil || strings.TrimSpace(problem.Type) == "" {
		return "", fmt.Errorf("problem type was empty")
	}
	id, err := s.NextProblemID(ctx, problem.Type)
	if err != nil {
		return "", err
	}
	problem.ID = id
	if err = s.writer.UpsertProblem(ctx, problem); err != nil {
		return "", fmt.Errorf("failed to create problem %v: %w", id, err)
	}
	return id, nil
}

// UpdateProblem updates an existing problem
func (s *Service) UpdateProblem(ctx context.Context, problem *model.Problem) error {
	if err := s.ensureProblem(ctx, problem.ID); err != nil {
		return err
	}
	return s.writer.UpsertProblem(ctx, problem)
}

// CreateStep upserts a step of an existing problem
func (s *Service) CreateStep(ctx context.Context, step *model.Step) error {
	if err := step.Validate(); err != nil {
		return err
	}
	if err := s.ensureProblem(ctx, step.ProblemID); err != nil {
		return err
	}
	return s.writer.UpsertStep(ctx, step)
}

// CreateRelation creates a relation once the problem and referenced steps exist
func (s *Service) CreateRelation(ctx context.Context, relation *model.Relation) error {
	if relation.Type == model.EdgeNextIf && strings.TrimSpace(relation.Condition) == "" {
		return ErrMissingCondition
	}
	if err := relation.Validate(); err != nil {
		return err
	}
	if err := s.ensureProblem(ctx, relation.ProblemID); err != nil {
		return err
	}
	if relation.Type.IsNext() {
		if err := s.ensureStep(ctx, relation.ProblemID, relation.FromStepID); err != nil {
			return err
		}
	}
	if err := s.ensureStep(ctx, relation.ProblemID, relation.ToStepID); err != nil {
		return err
	}
	return s.writer.CreateRelation(ctx, relation)
}

// DeleteStep removes an existing step and every relation touching it
func (s *Service) DeleteStep(ctx context.Context, problemID string, stepID int) error {
	if err := s.ensureStep(ctx, problemID, stepID); err != nil {
		return err
	}
	return s.writer.DeleteStep(ctx, problemID, stepID)
}

// DeleteRelation removes a relation of an existing problem; a missing relation is ignored
func (s *Service) DeleteRelation(ctx context.Context, relation *model.Relation) error {
	if err := relation.Validate(); err != nil {
		return err
	}
	if err := s.ensureProblem(ctx, relation.ProblemID); err != nil {
		return err
	}
	return s.writer.DeleteRelation(ctx, relation)
}

// Build creates every active problem of the definition, returns generated ids
func (s *Service) Build(ctx context.Context, definition *Definition) ([]string, error) {
	if err := definition.Validate(); err != nil {
		return nil, err
	}
	var ids []string
	for _, def := range definition.Problems {
		if !def.IsActive() {
			continue
		}
		id, err := s.CreateProblem(ctx, &model.Problem{Type: def.Type, Description: def.Description, Active: true})
		if err != nil {
			return ids, err
		}
		for _, step := range def.Steps {
			clone := *step
			clone.ProblemID = id
			if err = s.CreateStep(ctx, &clone); err != nil {
				return ids, err
			}
		}
		if err = s.CreateRelation(ctx, &model.Relation{ProblemID: id, Type: model.EdgeFirstStep, ToStepID: def.FirstStep}); err != nil {
			return ids, err
		}
		for _, relation := range def.Relations {
			clone := *relation
			clone.ProblemID = id
			if err = s.CreateRelation(ctx, &clone); err != nil {
				return ids, err
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Clear removes the whole graph
func (s *Service) Clear(ctx context.Context) error {
	return s.writer.Clear(ctx)
}

func (s *Service) ensureProblem(ctx context.Context, problemID string) error {
	ok, err := s.writer.ProblemExists(ctx, problemID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %v", ErrProblemNotFound, problemID)
	}
	return nil
}

func (s *Service) ensureStep(ctx context.Context, problemID string, stepID int) error {
	ok, err := s.writer.StepExists(ctx, problemID, stepID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %v", ErrStepNotFound, model.StepKey{ProblemID: problemID, StepID: stepID})
	}
	return nil
}

// New creates construction service
func New(writer graph.Writer) *Service {
	return &Service{writer: writer}
}
