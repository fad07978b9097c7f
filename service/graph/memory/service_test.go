package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kgflow/model"
	"github.com/viant/kgflow/service/graph"
)

func seed(t *testing.T) *Service {
	ctx := context.Background()
	srv := New()
	require.NoError(t, srv.UpsertProblem(ctx, &model.Problem{ID: "balance_inquiry-001", Type: "balance_inquiry", Active: true}))
	require.NoError(t, srv.UpsertStep(ctx, &model.Step{ProblemID: "balance_inquiry-001", ID: 1, Operation: model.OperationQuery, Table: "account", Field: "balance"}))
	require.NoError(t, srv.UpsertStep(ctx, &model.Step{ProblemID: "balance_inquiry-001", ID: 2, Operation: model.OperationReply, Reply: "high"}))
	require.NoError(t, srv.UpsertStep(ctx, &model.Step{ProblemID: "balance_inquiry-001", ID: 3, Operation: model.OperationReply, Reply: "low"}))
	require.NoError(t, srv.CreateRelation(ctx, &model.Relation{ProblemID: "balance_inquiry-001", Type: model.EdgeFirstStep, ToStepID: 1}))
	require.NoError(t, srv.CreateRelation(ctx, &model.Relation{ProblemID: "balance_inquiry-001", Type: model.EdgeNextIf, FromStepID: 1, ToStepID: 2, Condition: "balance > 1000"}))
	require.NoError(t, srv.CreateRelation(ctx, &model.Relation{ProblemID: "balance_inquiry-001", Type: model.EdgeNextDefault, FromStepID: 1, ToStepID: 3}))
	return srv
}

func TestService_FirstStep(t *testing.T) {
	srv := seed(t)
	ctx := context.Background()

	step, err := srv.FirstStep(ctx, "balance_inquiry-001")
	require.NoError(t, err)
	assert.Equal(t, 1, step.ID)
	assert.True(t, step.IsQuery())

	_, err = srv.FirstStep(ctx, "unknown")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestService_NextCandidates(t *testing.T) {
	srv := seed(t)
	ctx := context.Background()

	candidates, err := srv.NextCandidates(ctx, "balance_inquiry-001", 1)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, model.EdgeNextIf, candidates[0].Type)
	assert.Equal(t, "balance > 1000", candidates[0].Condition)
	assert.Equal(t, 2, candidates[0].Step.ID)
	assert.Equal(t, model.EdgeNextDefault, candidates[1].Type)
	assert.Equal(t, 3, candidates[1].Step.ID)

	candidates, err = srv.NextCandidates(ctx, "balance_inquiry-001", 2)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestService_ProblemIDForIntent(t *testing.T) {
	srv := seed(t)
	ctx := context.Background()

	id, err := srv.ProblemIDForIntent(ctx, "balance_inquiry")
	require.NoError(t, err)
	assert.Equal(t, "balance_inquiry-001", id)

	_, err = srv.ProblemIDForIntent(ctx, "card_activation_problem")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestService_Catalog(t *testing.T) {
	srv := seed(t)
	ctx := context.Background()

	problems, err := srv.Problems(ctx)
	require.NoError(t, err)
	require.Len(t, problems, 1)

	steps, err := srv.Steps(ctx, "balance_inquiry-001")
	require.NoError(t, err)
	assert.Len(t, steps, 3)

	exists, err := srv.StepExists(ctx, "balance_inquiry-001", 4)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, srv.Clear(ctx))
	problems, err = srv.Problems(ctx)
	require.NoError(t, err)
	assert.Empty(t, problems)
	_, err = srv.FirstStep(ctx, "balance_inquiry-001")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestService_CreateRelation_Unsupported(t *testing.T) {
	srv := New()
	err := srv.CreateRelation(context.Background(), &model.Relation{ProblemID: "x-001", Type: "NEXT_ELSE"})
	assert.Error(t, err)
}

func TestService_ReturnsCopies(t *testing.T) {
	srv := seed(t)
	ctx := context.Background()

	step, err := srv.FirstStep(ctx, "balance_inquiry-001")
	require.NoError(t, err)
	step.Field = "changed"
	candidates, err := srv.NextCandidates(ctx, "balance_inquiry-001", 1)
	require.NoError(t, err)
	candidates[0].Step.Reply = "changed"
	steps, err := srv.Steps(ctx, "balance_inquiry-001")
	require.NoError(t, err)
	steps[2].Reply = "changed"

	step, err = srv.FirstStep(ctx, "balance_inquiry-001")
	require.NoError(t, err)
	assert.Equal(t, "balance", step.Field)
	steps, err = srv.Steps(ctx, "balance_inquiry-001")
	require.NoError(t, err)
	assert.Equal(t, "high", steps[1].Reply)
	assert.Equal(t, "low", steps[2].Reply)
}

func TestService_CreateRelation_Idempotent(t *testing.T) {
	srv := seed(t)
	ctx := context.Background()
	require.NoError(t, srv.CreateRelation(ctx, &model.Relation{ProblemID: "balance_inquiry-001", Type: model.EdgeNextDefault, FromStepID: 1, ToStepID: 3}))
	require.NoError(t, srv.CreateRelation(ctx, &model.Relation{ProblemID: "balance_inquiry-001", Type: model.EdgeNextIf, FromStepID: 1, ToStepID: 2, Condition: "balance > 1000"}))
	candidates, err := srv.NextCandidates(ctx, "balance_inquiry-001", 1)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)

	require.NoError(t, srv.CreateRelation(ctx, &model.Relation{ProblemID: "balance_inquiry-001", Type: model.EdgeNextIf, FromStepID: 1, ToStepID: 2, Condition: "balance > 5000"}))
	candidates, err = srv.NextCandidates(ctx, "balance_inquiry-001", 1)
	require.NoError(t, err)
	assert.Len(t, candidates, 3)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	var testCases = []struct {
		description   string
		delete        func(srv *Service) error
		expectFirst   bool
		expectTargets []int
		expectSteps   int
	}{
		{
			description: "relation",
			delete: func(srv *Service) error {
				return srv.DeleteRelation(ctx, &model.Relation{ProblemID: "balance_inquiry-001", Type: model.EdgeNextIf, FromStepID: 1, ToStepID: 2, Condition: "balance > 1000"})
			},
			expectFirst:   true,
			expectTargets: []int{3},
			expectSteps:   3,
		},
		{
			description: "relation with other condition kept",
			delete: func(srv *Service) error {
				return srv.DeleteRelation(ctx, &model.Relation{ProblemID: "balance_inquiry-001", Type: model.EdgeNextIf, FromStepID: 1, ToStepID: 2, Condition: "balance > 1"})
			},
			expectFirst:   true,
			expectTargets: []int{2, 3},
			expectSteps:   3,
		},
		{
			description: "first step relation",
			delete: func(srv *Service) error {
				return srv.DeleteRelation(ctx, &model.Relation{ProblemID: "balance_inquiry-001", Type: model.EdgeFirstStep, ToStepID: 1})
			},
			expectTargets: []int{2, 3},
			expectSteps:   3,
		},
		{
			description: "target step",
			delete: func(srv *Service) error {
				return srv.DeleteStep(ctx, "balance_inquiry-001", 3)
			},
			expectFirst:   true,
			expectTargets: []int{2},
			expectSteps:   2,
		},
		{
			description: "first step",
			delete: func(srv *Service) error {
				return srv.DeleteStep(ctx, "balance_inquiry-001", 1)
			},
			expectSteps: 2,
		},
		{
			description: "missing step",
			delete: func(srv *Service) error {
				return srv.DeleteStep(ctx, "balance_inquiry-001", 9)
			},
			expectFirst:   true,
			expectTargets: []int{2, 3},
			expectSteps:   3,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			srv := seed(t)
			require.NoError(t, testCase.delete(srv))

			_, err := srv.FirstStep(ctx, "balance_inquiry-001")
			assert.Equal(t, testCase.expectFirst, err == nil)
			candidates, err := srv.NextCandidates(ctx, "balance_inquiry-001", 1)
			require.NoError(t, err)
			var targets []int
			for _, candidate := range candidates {
				targets = append(targets, candidate.Step.ID)
			}
			assert.EqualValues(t, testCase.expectTargets, targets)
			steps, err := srv.Steps(ctx, "balance_inquiry-001")
			require.NoError(t, err)
			assert.Len(t, steps, testCase.expectSteps)
		})
	}
}
