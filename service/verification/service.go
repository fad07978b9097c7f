// Package verification checks structural well-formedness of solution graphs
// without mutating them.
package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/kgflow/internal/logging"
	"github.com/viant/kgflow/model"
	"github.com/viant/kgflow/service/graph"
)

// DefaultMaxDepth bounds traversal from the first step
const DefaultMaxDepth = 10

// Config represents verification settings
type Config struct {
	Enabled     bool `json:"enabled" yaml:"enabled"`
	VerifyPaths bool `json:"verifyPaths" yaml:"verifyPaths"`
	MaxDepth    int  `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`
}

// Report represents per problem verification result
type Report struct {
	ProblemID string           `json:"problemId"`
	Type      string           `json:"type"`
	Valid     bool             `json:"valid"`
	EndSteps  []*model.StepKey `json:"endSteps,omitempty"`
	Issues    []string         `json:"issues,omitempty"`
}

func (r *Report) addIssue(format string, args ...interface{}) {
	r.Valid = false
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

// Reader combines graph read contracts used by verification
type Reader interface {
	graph.Store
	graph.Catalog
}

// Service represents verification service
type Service struct {
	reader Reader
	config Config
}

// Verify verifies all problems, returns nil reports when verification is disabled
func (s *Service) Verify(ctx context.Context) ([]*Report, error) {
	if !s.config.Enabled {
		logging.FromContext(ctx).Info("graph verification disabled")
		return nil, nil
	}
	problems, err := s.reader.Problems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list problems: %w", err)
	}
	var reports = make([]*Report, 0, len(problems))
	for _, problem := range problems {
		report, err := s.VerifyProblem(ctx, problem)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Valid returns true when every report is valid
func Valid(reports []*Report) bool {
	for _, report := range reports {
		if !report.Valid {
			return false
		}
	}
	return true
}

// VerifyProblem verifies a single problem
func (s *Service) VerifyProblem(ctx context.Context, problem *model.Problem) (*Report, error) {
	logger := logging.FromContext(ctx).With("problem", problem.ID)
	report := &Report{ProblemID: problem.ID, Type: problem.Type, Valid: true}
	first, err := s.reader.FirstStep(ctx, problem.ID)
	if err != nil {
		if !errors.Is(err, graph.ErrNotFound) {
			return nil, err
		}
		report.addIssue("problem %v has no first step", problem.ID)
		logger.Error("problem has no first step")
		return report, nil
	}
	if !s.config.VerifyPaths {
		return report, nil
	}
	endSteps, err := s.endSteps(ctx, first)
	if err != nil {
		return nil, err
	}
	if len(endSteps) == 0 {
		report.addIssue("problem %v has no end steps", problem.ID)
		logger.Error("problem has no end steps")
		return report, nil
	}
	for _, step := range endSteps {
		key := step.Key()
		report.EndSteps = append(report.EndSteps, &key)
		if !step.IsReply() {
			report.addIssue("end step %v is not a reply operation", key)
			logger.Error("end step is not a reply operation", "step", step.ID, "operation", step.Operation)
		}
	}
	return report, nil
}

// endSteps returns steps within max depth that have no outgoing next edge
func (s *Service) endSteps(ctx context.Context, first *model.Step) ([]*model.Step, error) {
	maxDepth := s.config.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	visited := map[int]bool{first.ID: true}
	frontier := []*model.Step{first}
	var result []*model.Step
	for depth := 0; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []*model.Step
		for _, step := range frontier {
			candidates, err := s.reader.NextCandidates(ctx, step.ProblemID, step.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load candidates of %v: %w", step.Key(), err)
			}
			if len(candidates) == 0 {
				result = append(result, step)
				continue
			}
			for _, candidate := range candidates {
				if candidate.Step == nil || visited[candidate.Step.ID] {
					continue
				}
				visited[candidate.Step.ID] = true
				next = append(next, candidate.Step)
			}
		}
		frontier = next
	}
	return result, nil
}

// New creates verification service
func New(reader Reader, config Config) *Service {
	return &Service{reader: reader, config: config}
}
