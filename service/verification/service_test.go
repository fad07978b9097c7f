package verification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kgflow/model"
	"github.com/viant/kgflow/service/graph/memory"
)

func buildGraph(t *testing.T) *memory.Service {
	ctx := context.Background()
	store := memory.New()
	upsert := func(problemID string, steps ...*model.Step) {
		require.NoError(t, store.UpsertProblem(ctx, &model.Problem{ID: problemID, Type: problemID, Active: true}))
		for _, step := range steps {
			step.ProblemID = problemID
			require.NoError(t, store.UpsertStep(ctx, step))
		}
	}
	relate := func(problemID string, edgeType model.EdgeType, from, to int) {
		require.NoError(t, store.CreateRelation(ctx, &model.Relation{ProblemID: problemID, Type: edgeType, FromStepID: from, ToStepID: to, Condition: "x == 1"}))
	}

	upsert("valid-001",
		&model.Step{ID: 1, Operation: model.OperationQuery, Table: "t", Field: "x"},
		&model.Step{ID: 2, Operation: model.OperationReply, Reply: "a"},
		&model.Step{ID: 3, Operation: model.OperationReply, Reply: "b"})
	relate("valid-001", model.EdgeFirstStep, 0, 1)
	relate("valid-001", model.EdgeNextIf, 1, 2)
	relate("valid-001", model.EdgeNextDefault, 1, 3)

	upsert("query_end-001",
		&model.Step{ID: 1, Operation: model.OperationQuery, Table: "t", Field: "x"})
	relate("query_end-001", model.EdgeFirstStep, 0, 1)

	upsert("no_first-001",
		&model.Step{ID: 1, Operation: model.OperationReply, Reply: "a"})

	upsert("cycle-001",
		&model.Step{ID: 1, Operation: model.OperationQuery, Table: "t", Field: "x"},
		&model.Step{ID: 2, Operation: model.OperationQuery, Table: "t", Field: "y"})
	relate("cycle-001", model.EdgeFirstStep, 0, 1)
	relate("cycle-001", model.EdgeNextDefault, 1, 2)
	relate("cycle-001", model.EdgeNextDefault, 2, 1)
	return store
}

func TestService_Verify(t *testing.T) {
	srv := New(buildGraph(t), Config{Enabled: true, VerifyPaths: true})
	reports, err := srv.Verify(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 4)
	assert.False(t, Valid(reports))

	byID := map[string]*Report{}
	for _, report := range reports {
		byID[report.ProblemID] = report
	}

	assert.True(t, byID["valid-001"].Valid)
	assert.Len(t, byID["valid-001"].EndSteps, 2)

	assert.False(t, byID["query_end-001"].Valid)
	assert.Equal(t, []*model.StepKey{{ProblemID: "query_end-001", StepID: 1}}, byID["query_end-001"].EndSteps)

	assert.False(t, byID["no_first-001"].Valid)
	assert.Contains(t, byID["no_first-001"].Issues[0], "no first step")

	assert.False(t, byID["cycle-001"].Valid)
	assert.Contains(t, byID["cycle-001"].Issues[0], "no end steps")
}

func TestService_Verify_Gates(t *testing.T) {
	store := buildGraph(t)

	reports, err := New(store, Config{}).Verify(context.Background())
	require.NoError(t, err)
	assert.Nil(t, reports)

	reports, err = New(store, Config{Enabled: true}).Verify(context.Background())
	require.NoError(t, err)
	for _, report := range reports {
		assert.Equal(t, report.ProblemID != "no_first-001", report.Valid, report.ProblemID)
	}
}
