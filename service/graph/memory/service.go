package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/viant/kgflow/model"
	"github.com/viant/kgflow/service/dao"
	"github.com/viant/kgflow/service/dao/store"
	"github.com/viant/kgflow/service/graph"
)

// Service implements an in-memory, thread-safe solution graph. Candidates are
// returned in relation creation order.
type Service struct {
	problems *store.MemoryStore[string, model.Problem]
	steps    *store.MemoryStore[model.StepKey, model.Step]

	mux   sync.RWMutex
	first map[string]int
	next  map[model.StepKey][]*edge
}

type edge struct {
	edgeType  model.EdgeType
	condition string
	to        int
}

var _ graph.Backend = (*Service)(nil)

func problemKey(p *model.Problem) string   { return p.ID }
func stepKey(s *model.Step) model.StepKey { return s.Key() }

func matchProblem(p *model.Problem, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		switch parameter.Name {
		case "Type":
			if p.Type != parameter.Value {
				return false
			}
		case "Active":
			if p.Active != parameter.Value {
				return false
			}
		}
	}
	return true
}

func matchStep(s *model.Step, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter.Name == "ProblemID" && s.ProblemID != parameter.Value {
			return false
		}
	}
	return true
}

// New creates an empty graph
func New() *Service {
	return &Service{
		problems: store.NewMemoryStore[string, model.Problem](problemKey).WithMatcher(matchProblem),
		steps:    store.NewMemoryStore[model.StepKey, model.Step](stepKey).WithMatcher(matchStep),
		first:    map[string]int{},
		next:     map[model.StepKey][]*edge{},
	}
}

func (s *Service) FirstStep(ctx context.Context, problemID string) (*model.Step, error) {
	s.mux.RLock()
	stepID, ok := s.first[problemID]
	s.mux.RUnlock()
	if !ok {
		return nil, graph.ErrNotFound
	}
	step, err := s.steps.Load(ctx, model.StepKey{ProblemID: problemID, StepID: stepID})
	if err != nil {
		return nil, graph.ErrNotFound
	}
	clone := *step
	return &clone, nil
}

func (s *Service) NextCandidates(ctx context.Context, problemID string, stepID int) ([]*model.Candidate, error) {
	s.mux.RLock()
	edges := append([]*edge(nil), s.next[model.StepKey{ProblemID: problemID, StepID: stepID}]...)
	s.mux.RUnlock()
	candidates := make([]*model.Candidate, 0, len(edges))
	for _, e := range edges {
		step, err := s.steps.Load(ctx, model.StepKey{ProblemID: problemID, StepID: e.to})
		if err != nil {
			continue
		}
		clone := *step
		candidates = append(candidates, &model.Candidate{Type: e.edgeType, Condition: e.condition, Step: &clone})
	}
	return candidates, nil
}

func (s *Service) ProblemIDForIntent(ctx context.Context, intent string) (string, error) {
	problems, err := s.problems.List(ctx, dao.NewParameter("Type", intent))
	if err != nil {
		return "", err
	}
	if len(problems) == 0 {
		return "", graph.ErrNotFound
	}
	return problems[0].ID, nil
}

func (s *Service) Problems(ctx context.Context) ([]*model.Problem, error) {
	problems, err := s.problems.List(ctx)
	return cloneAll(problems), err
}

func (s *Service) Steps(ctx context.Context, problemID string) ([]*model.Step, error) {
	steps, err := s.steps.List(ctx, dao.NewParameter("ProblemID", problemID))
	return cloneAll(steps), err
}

func cloneAll[T any](items []*T) []*T {
	ret := make([]*T, 0, len(items))
	for _, item := range items {
		clone := *item
		ret = append(ret, &clone)
	}
	return ret
}

func (s *Service) ProblemIDs(ctx context.Context, problemType string) ([]string, error) {
	problems, err := s.problems.List(ctx, dao.NewParameter("Type", problemType))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(problems))
	for _, problem := range problems {
		ids = append(ids, problem.ID)
	}
	return ids, nil
}

func (s *Service) UpsertProblem(ctx context.Context, problem *model.Problem) error {
	if problem == nil {
		return dao.ErrNilEntity
	}
	if problem.ID == "" {
		return dao.ErrInvalidID
	}
	clone := *problem
	return s.problems.Save(ctx, &clone)
}

func (s *Service) ProblemExists(ctx context.Context, problemID string) (bool, error) {
	_, err := s.problems.Load(ctx, problemID)
	return err == nil, nil
}

func (s *Service) UpsertStep(ctx context.Context, step *model.Step) error {
	if step == nil {
		return dao.ErrNilEntity
	}
	if step.ProblemID == "" {
		return dao.ErrInvalidID
	}
	clone := *step
	return s.steps.Save(ctx, &clone)
}

func (s *Service) StepExists(ctx context.Context, problemID string, stepID int) (bool, error) {
	_, err := s.steps.Load(ctx, model.StepKey{ProblemID: problemID, StepID: stepID})
	return err == nil, nil
}

// CreateRelation upserts a relation; a FIRST_STEP relation replaces the
// previous one, an identical NEXT_* relation is kept once
func (s *Service) CreateRelation(_ context.Context, relation *model.Relation) error {
	if relation == nil {
		return dao.ErrNilEntity
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	switch relation.Type {
	case model.EdgeFirstStep:
		s.first[relation.ProblemID] = relation.ToStepID
	case model.EdgeNextDefault, model.EdgeNextIf:
		key := model.StepKey{ProblemID: relation.ProblemID, StepID: relation.FromStepID}
		candidate := &edge{edgeType: relation.Type, condition: relation.Condition, to: relation.ToStepID}
		if indexOf(s.next[key], candidate) >= 0 {
			return nil
		}
		s.next[key] = append(s.next[key], candidate)
	default:
		return fmt.Errorf("unsupported relation type: %q", relation.Type)
	}
	return nil
}

// DeleteStep removes a step with its incoming and outgoing relations
func (s *Service) DeleteStep(ctx context.Context, problemID string, stepID int) error {
	key := model.StepKey{ProblemID: problemID, StepID: stepID}
	if err := s.steps.Delete(ctx, key); err != nil && !errors.Is(err, dao.ErrNotFound) {
		return err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if first, ok := s.first[problemID]; ok && first == stepID {
		delete(s.first, problemID)
	}
	delete(s.next, key)
	for from, edges := range s.next {
		if from.ProblemID != problemID {
			continue
		}
		kept := edges[:0]
		for _, e := range edges {
			if e.to != stepID {
				kept = append(kept, e)
			}
		}
		s.next[from] = kept
	}
	return nil
}

// DeleteRelation removes a relation matching type, endpoints and condition
func (s *Service) DeleteRelation(_ context.Context, relation *model.Relation) error {
	if relation == nil {
		return dao.ErrNilEntity
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	switch relation.Type {
	case model.EdgeFirstStep:
		if first, ok := s.first[relation.ProblemID]; ok && first == relation.ToStepID {
			delete(s.first, relation.ProblemID)
		}
	case model.EdgeNextDefault, model.EdgeNextIf:
		key := model.StepKey{ProblemID: relation.ProblemID, StepID: relation.FromStepID}
		edges := s.next[key]
		if i := indexOf(edges, &edge{edgeType: relation.Type, condition: relation.Condition, to: relation.ToStepID}); i >= 0 {
			s.next[key] = append(edges[:i:i], edges[i+1:]...)
		}
	default:
		return fmt.Errorf("unsupported relation type: %q", relation.Type)
	}
	return nil
}

func indexOf(edges []*edge, candidate *edge) int {
	for i, e := range edges {
		if *e == *candidate {
			return i
		}
	}
	return -1
}

func (s *Service) Clear(_ context.Context) error {
	s.problems.Reset()
	s.steps.Reset()
	s.mux.Lock()
	s.first = map[string]int{}
	s.next = map[model.StepKey][]*edge{}
	s.mux.Unlock()
	return nil
}
