package solution

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kgflow/model"
	"github.com/viant/kgflow/model/state"
	"github.com/viant/kgflow/runtime/engine"
	"github.com/viant/kgflow/service/graph/memory"
	"github.com/viant/kgflow/service/nlu"
	smemory "github.com/viant/kgflow/service/session/memory"
)

type fakeQuery struct{}

func (f *fakeQuery) QueryScalar(_ context.Context, system, table, field, condition string) (state.Value, error) {
	if condition == "WHERE card_id = '6222001'" {
		return state.Number(100), nil
	}
	return state.Null(), nil
}

func newService(t *testing.T, extractor nlu.Extractor) (*Service, *smemory.Store) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.UpsertProblem(ctx, &model.Problem{ID: "balance_inquiry-001", Type: "balance_inquiry", Active: true}))
	require.NoError(t, store.UpsertStep(ctx, &model.Step{ProblemID: "balance_inquiry-001", ID: 1, Operation: model.OperationQuery, Table: "account", Field: "balance", Condition: "WHERE card_id = '{card_id}'"}))
	require.NoError(t, store.UpsertStep(ctx, &model.Step{ProblemID: "balance_inquiry-001", ID: 2, Operation: model.OperationReply, Reply: "Your balance is {balance}"}))
	require.NoError(t, store.CreateRelation(ctx, &model.Relation{ProblemID: "balance_inquiry-001", Type: model.EdgeFirstStep, ToStepID: 1}))
	require.NoError(t, store.CreateRelation(ctx, &model.Relation{ProblemID: "balance_inquiry-001", Type: model.EdgeNextDefault, FromStepID: 1, ToStepID: 2}))
	sessions := smemory.New(0)
	return New(extractor, store, engine.New(store, &fakeQuery{}), sessions), sessions
}

func TestService_ProcessQuery(t *testing.T) {
	ctx := context.Background()
	var prompts []string
	var mux sync.Mutex
	results := map[string]*nlu.Result{
		"balance":   {Intent: "balance_inquiry", Confidence: 0.9, Entities: map[string]interface{}{"card_id": "6222001"}},
		"unsure":    {Intent: "balance_inquiry", Confidence: 0.4, Entities: map[string]interface{}{"channel": "mobile"}},
		"transfer":  {Intent: "transfer_limit_issue", Confidence: 0.95},
		"gibberish": nlu.Unknown(),
	}
	extractor := nlu.Func(func(ctx context.Context, prompt string) *nlu.Result {
		mux.Lock()
		prompts = append(prompts, prompt)
		mux.Unlock()
		for key, result := range results {
			if len(prompt) >= len(key) && prompt[len(prompt)-len(key):] == key {
				return result
			}
		}
		return nil
	})
	srv, sessions := newService(t, extractor)

	var testCases = []struct {
		description         string
		query               string
		expectMessage       string
		expectClarification bool
		expectProblem       string
	}{
		{description: "low confidence", query: "unsure", expectMessage: DefaultClarification, expectClarification: true},
		{description: "unknown intent", query: "gibberish", expectMessage: DefaultClarification, expectClarification: true},
		{description: "unsupported intent", query: "transfer", expectMessage: "Sorry, we cannot handle transfer_limit_issue problems at the moment."},
		{description: "balance", query: "balance", expectMessage: "Your balance is 100", expectProblem: "balance_inquiry-001"},
		{description: "nil extraction", query: "other", expectMessage: DefaultClarification, expectClarification: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			response, err := srv.ProcessQuery(ctx, "c1", testCase.query)
			require.NoError(t, err)
			assert.Equal(t, testCase.expectMessage, response.Message)
			assert.Equal(t, testCase.expectClarification, response.Clarification)
			assert.Equal(t, testCase.expectProblem, response.ProblemID)
			assert.NotEmpty(t, response.TurnID)
		})
	}

	assert.Equal(t, "customer c1 asks: unsure", prompts[0])
	values, err := sessions.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, state.String("mobile"), values["channel"])
	assert.Equal(t, state.String("6222001"), values["card_id"])
	assert.Equal(t, state.Number(100), values["balance"])

	require.NoError(t, srv.ClearContext(ctx, "c1"))
	values, err = sessions.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, values)

	_, err = srv.ProcessQuery(ctx, "", "balance")
	assert.Error(t, err)
}

func TestService_ProcessQuery_Concurrent(t *testing.T) {
	ctx := context.Background()
	var counter int
	extractor := nlu.Func(func(ctx context.Context, prompt string) *nlu.Result {
		counter++
		return &nlu.Result{Intent: "balance_inquiry", Confidence: 1, Entities: map[string]interface{}{"card_id": "6222001"}}
	})
	srv, _ := newService(t, extractor)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := srv.ProcessQuery(ctx, "c1", "balance")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, counter)
	assert.Empty(t, srv.locker.users)
}
