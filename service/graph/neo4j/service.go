// Package neo4j implements the solution graph on a Neo4j database.
//
// Problems are stored as (:Problem {problem_id, problem_type, description, active})
// nodes, steps as (:Step {problem_id, step_id, operation, system_a, table_name,
// field, condition_sql, reply_content}) nodes. Candidates are ordered by
// relationship id, which follows creation order.
package neo4j

import (
	"context"
	"fmt"

	"github.com/viant/kgflow/internal/logging"
	"github.com/viant/kgflow/model"
	"github.com/viant/kgflow/service/dao"
	"github.com/viant/kgflow/service/graph"
)

const (
	stepProjection = "s.problem_id AS problem_id, s.step_id AS step_id, s.operation AS operation, " +
		"s.system_a AS system, s.table_name AS table_name, s.field AS field, " +
		"s.condition_sql AS condition_sql, s.reply_content AS reply_content"

	firstStepQuery = "MATCH (p:Problem {problem_id: $problem_id})-[:FIRST_STEP]->(s:Step) RETURN " + stepProjection + " LIMIT 1"

	nextCandidatesQuery = "MATCH (:Step {problem_id: $problem_id, step_id: $step_id})-[r:NEXT_DEFAULT|NEXT_IF]->(s:Step) " +
		"RETURN type(r) AS relation_type, r.condition AS condition, " + stepProjection + " ORDER BY id(r)"

	problemByTypeQuery = "MATCH (p:Problem {problem_type: $problem_type}) RETURN p.problem_id AS problem_id ORDER BY id(p)"

	problemsQuery = "MATCH (p:Problem) RETURN p.problem_id AS problem_id, p.problem_type AS problem_type, " +
		"p.description AS description, p.active AS active ORDER BY id(p)"

	stepsQuery = "MATCH (s:Step {problem_id: $problem_id}) RETURN " + stepProjection + " ORDER BY s.step_id"

	upsertProblemQuery = "MERGE (p:Problem {problem_id: $problem_id}) " +
		"SET p.problem_type = $problem_type, p.description = $description, p.active = $active"

	upsertStepQuery = "MERGE (s:Step {problem_id: $problem_id, step_id: $step_id}) SET s = $properties"

	countProblemQuery = "MATCH (p:Problem {problem_id: $problem_id}) RETURN count(p) AS count"

	countStepQuery = "MATCH (s:Step {problem_id: $problem_id, step_id: $step_id}) RETURN count(s) AS count"

	firstStepRelationQuery = "MATCH (p:Problem {problem_id: $problem_id}) " +
		"MATCH (s:Step {problem_id: $problem_id, step_id: $to_id}) " +
		"OPTIONAL MATCH (p)-[old:FIRST_STEP]->() DELETE old " +
		"CREATE (p)-[:FIRST_STEP]->(s)"

	nextDefaultRelationQuery = "MATCH (s1:Step {problem_id: $problem_id, step_id: $from_id}) " +
		"MATCH (s2:Step {problem_id: $problem_id, step_id: $to_id}) " +
		"MERGE (s1)-[:NEXT_DEFAULT]->(s2)"

	nextIfRelationQuery = "MATCH (s1:Step {problem_id: $problem_id, step_id: $from_id}) " +
		"MATCH (s2:Step {problem_id: $problem_id, step_id: $to_id}) " +
		"MERGE (s1)-[:NEXT_IF {condition: $condition}]->(s2)"

	deleteStepQuery = "MATCH (s:Step {problem_id: $problem_id, step_id: $step_id}) DETACH DELETE s"

	deleteFirstStepRelationQuery = "MATCH (:Problem {problem_id: $problem_id})-[r:FIRST_STEP]->(:Step {problem_id: $problem_id, step_id: $to_id}) DELETE r"

	deleteNextDefaultRelationQuery = "MATCH (:Step {problem_id: $problem_id, step_id: $from_id})-[r:NEXT_DEFAULT]->(:Step {problem_id: $problem_id, step_id: $to_id}) DELETE r"

	deleteNextIfRelationQuery = "MATCH (:Step {problem_id: $problem_id, step_id: $from_id})-[r:NEXT_IF {condition: $condition}]->(:Step {problem_id: $problem_id, step_id: $to_id}) DELETE r"

	clearQuery = "MATCH (n) WHERE n:Problem OR n:Step DETACH DELETE n"

	problemConstraintQuery = "CREATE CONSTRAINT problem_id_unique IF NOT EXISTS FOR (p:Problem) REQUIRE p.problem_id IS UNIQUE"

	stepNodeKeyQuery = "CREATE CONSTRAINT step_key IF NOT EXISTS FOR (s:Step) REQUIRE (s.problem_id, s.step_id) IS NODE KEY"

	stepUniqueQuery = "CREATE CONSTRAINT step_key_unique IF NOT EXISTS FOR (s:Step) REQUIRE (s.problem_id, s.step_id) IS UNIQUE"
)

// Service represents neo4j solution graph
type Service struct {
	runner Runner
}

var _ graph.Backend = (*Service)(nil)

func (s *Service) FirstStep(ctx context.Context, problemID string) (*model.Step, error) {
	records, err := s.runner.Read(ctx, firstStepQuery, map[string]interface{}{"problem_id": problemID})
	if err != nil {
		return nil, fmt.Errorf("failed to load first step of %v: %w", problemID, err)
	}
	if len(records) == 0 {
		return nil, graph.ErrNotFound
	}
	return decodeStep(records[0]), nil
}

func (s *Service) NextCandidates(ctx context.Context, problemID string, stepID int) ([]*model.Candidate, error) {
	records, err := s.runner.Read(ctx, nextCandidatesQuery, map[string]interface{}{"problem_id": problemID, "step_id": int64(stepID)})
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates of %v: %w", model.StepKey{ProblemID: problemID, StepID: stepID}, err)
	}
	var result = make([]*model.Candidate, 0, len(records))
	for _, record := range records {
		result = append(result, &model.Candidate{
			Type:      model.EdgeType(asString(record["relation_type"])),
			Condition: asString(record["condition"]),
			Step:      decodeStep(record),
		})
	}
	return result, nil
}

func (s *Service) ProblemIDForIntent(ctx context.Context, intent string) (string, error) {
	ids, err := s.ProblemIDs(ctx, intent)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", graph.ErrNotFound
	}
	return ids[0], nil
}

func (s *Service) Problems(ctx context.Context) ([]*model.Problem, error) {
	records, err := s.runner.Read(ctx, problemsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list problems: %w", err)
	}
	var result = make([]*model.Problem, 0, len(records))
	for _, record := range records {
		result = append(result, &model.Problem{
			ID:          asString(record["problem_id"]),
			Type:        asString(record["problem_type"]),
			Description: asString(record["description"]),
			Active:      asBool(record["active"]),
		})
	}
	return result, nil
}

func (s *Service) Steps(ctx context.Context, problemID string) ([]*model.Step, error) {
	records, err := s.runner.Read(ctx, stepsQuery, map[string]interface{}{"problem_id": problemID})
	if err != nil {
		return nil, fmt.Errorf("failed to list steps of %v: %w", problemID, err)
	}
	var result = make([]*model.Step, 0, len(records))
	for _, record := range records {
		result = append(result, decodeStep(record))
	}
	return result, nil
}

func (s *Service) ProblemIDs(ctx context.Context, problemType string) ([]string, error) {
	records, err := s.runner.Read(ctx, problemByTypeQuery, map[string]interface{}{"problem_type": problemType})
	if err != nil {
		return nil, fmt.Errorf("failed to find problems of type %v: %w", problemType, err)
	}
	var ids = make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, asString(record["problem_id"]))
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
	return s.runner.Write(ctx, upsertProblemQuery, map[string]interface{}{
		"problem_id":   problem.ID,
		"problem_type": problem.Type,
		"description":  problem.Description,
		"active":       problem.Active,
	})
}

func (s *Service) ProblemExists(ctx context.Context, problemID string) (bool, error) {
	return s.exists(ctx, countProblemQuery, map[string]interface{}{"problem_id": problemID})
}

func (s *Service) UpsertStep(ctx context.Context, step *model.Step) error {
	if step == nil {
		return dao.ErrNilEntity
	}
	if step.ProblemID == "" {
		return dao.ErrInvalidID
	}
	properties := map[string]interface{}{
		"problem_id": step.ProblemID,
		"step_id":    int64(step.ID),
		"operation":  string(step.Operation),
	}
	setIfNotEmpty(properties, "system_a", step.System)
	setIfNotEmpty(properties, "table_name", step.Table)
	setIfNotEmpty(properties, "field", step.Field)
	setIfNotEmpty(properties, "condition_sql", step.Condition)
	setIfNotEmpty(properties, "reply_content", step.Reply)
	return s.runner.Write(ctx, upsertStepQuery, map[string]interface{}{
		"problem_id": step.ProblemID,
		"step_id":    int64(step.ID),
		"properties": properties,
	})
}

func (s *Service) StepExists(ctx context.Context, problemID string, stepID int) (bool, error) {
	return s.exists(ctx, countStepQuery, map[string]interface{}{"problem_id": problemID, "step_id": int64(stepID)})
}

func (s *Service) CreateRelation(ctx context.Context, relation *model.Relation) error {
	return s.writeRelation(ctx, relation, firstStepRelationQuery, nextDefaultRelationQuery, nextIfRelationQuery)
}

func (s *Service) DeleteRelation(ctx context.Context, relation *model.Relation) error {
	return s.writeRelation(ctx, relation, deleteFirstStepRelationQuery, deleteNextDefaultRelationQuery, deleteNextIfRelationQuery)
}

func (s *Service) writeRelation(ctx context.Context, relation *model.Relation, firstStep, nextDefault, nextIf string) error {
	if relation == nil {
		return dao.ErrNilEntity
	}
	params := map[string]interface{}{
		"problem_id": relation.ProblemID,
		"to_id":      int64(relation.ToStepID),
	}
	var query string
	switch relation.Type {
	case model.EdgeFirstStep:
		query = firstStep
	case model.EdgeNextDefault:
		query = nextDefault
		params["from_id"] = int64(relation.FromStepID)
	case model.EdgeNextIf:
		query = nextIf
		params["from_id"] = int64(relation.FromStepID)
		params["condition"] = relation.Condition
	default:
		return fmt.Errorf("unsupported relation type: %q", relation.Type)
	}
	return s.runner.Write(ctx, query, params)
}

func (s *Service) DeleteStep(ctx context.Context, problemID string, stepID int) error {
	return s.runner.Write(ctx, deleteStepQuery, map[string]interface{}{"problem_id": problemID, "step_id": int64(stepID)})
}

// EnsureConstraints creates a unique constraint on Problem.problem_id and a
// node key on Step(problem_id, step_id). Editions without node key support
// get a composite unique constraint instead.
func (s *Service) EnsureConstraints(ctx context.Context) error {
	if err := s.runner.Write(ctx, problemConstraintQuery, nil); err != nil {
		return fmt.Errorf("failed to create problem constraint: %w", err)
	}
	err := s.runner.Write(ctx, stepNodeKeyQuery, nil)
	if err == nil {
		return nil
	}
	logging.FromContext(ctx).Warn("step node key constraint not supported, using unique constraint", "error", err)
	if err = s.runner.Write(ctx, stepUniqueQuery, nil); err != nil {
		return fmt.Errorf("failed to create step constraint: %w", err)
	}
	return nil
}

func (s *Service) Clear(ctx context.Context) error {
	return s.runner.Write(ctx, clearQuery, nil)
}

func (s *Service) exists(ctx context.Context, query string, params map[string]interface{}) (bool, error) {
	records, err := s.runner.Read(ctx, query, params)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return false, nil
	}
	return asInt(records[0]["count"]) > 0, nil
}

// New creates a neo4j graph service
func New(runner Runner) *Service {
	return &Service{runner: runner}
}
