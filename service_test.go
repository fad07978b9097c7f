package kgflow

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kgflow/internal/logging"
	"github.com/viant/kgflow/model/state"
	"github.com/viant/kgflow/runtime/engine"
	"github.com/viant/kgflow/service/nlu"
	"github.com/viant/kgflow/service/query"
	"github.com/viant/kgflow/service/session"
)

func bankDefinitions(t *testing.T) string {
	URL, err := filepath.Abs(filepath.Join("service", "graph", "loader", "testdata", "bank.yaml"))
	require.NoError(t, err)
	return URL
}

func newTestConfig(t *testing.T) *Config {
	t.Setenv("KGFLOW_CHANNEL_NAME", "mobile")
	dsn := filepath.Join(t.TempDir(), "core.db")
	db, err := sqlx.Open("sqlite", dsn)
	require.NoError(t, err)
	db.MustExec(`CREATE TABLE account (card_id TEXT, customer_id TEXT, balance REAL, daily_limit INTEGER)`)
	db.MustExec(`INSERT INTO account VALUES ('6222001', 'C1', 100, 5000)`)
	require.NoError(t, db.Close())

	config := DefaultConfig()
	config.Graph.Definitions = bankDefinitions(t)
	config.Systems = map[string]*query.System{"core": {Driver: "sqlite", DSN: dsn}}
	config.Engine.DefaultSystem = "core"
	return config
}

func TestService_Run(t *testing.T) {
	ctx := context.Background()
	srv, err := New(ctx, newTestConfig(t), WithLogger(logging.Discard()))
	require.NoError(t, err)
	defer srv.Close(ctx)

	var testCases = []struct {
		description   string
		problemID     string
		input         state.Context
		expectStatus  engine.Status
		expectMessage string
		expectPath    []int
	}{
		{
			description:   "balance found",
			problemID:     "balance_inquiry-001",
			input:         state.Context{"card_id": state.String("6222001")},
			expectStatus:  engine.StatusCompleted,
			expectMessage: "Your balance is 100.",
			expectPath:    []int{1, 2},
		},
		{
			description:   "balance not found",
			problemID:     "balance_inquiry-001",
			input:         state.Context{"card_id": state.String("7000")},
			expectStatus:  engine.StatusCompleted,
			expectMessage: "We could not find an account for card 7000.",
			expectPath:    []int{1, 3},
		},
		{
			description:   "limit exceeded",
			problemID:     "transfer_limit_issue-001",
			input:         state.Context{"customer_id": state.String("C1"), "requested_amount": state.Number(8000)},
			expectStatus:  engine.StatusCompleted,
			expectMessage: "The requested amount 8000 exceeds your daily limit of 5000. You can raise the limit in the mobile app.",
			expectPath:    []int{1, 2},
		},
		{
			description:   "within limit",
			problemID:     "transfer_limit_issue-001",
			input:         state.Context{"customer_id": state.String("C1"), "requested_amount": state.Number(300)},
			expectStatus:  engine.StatusCompleted,
			expectMessage: "Your daily limit of 5000 allows this transfer, please retry.",
			expectPath:    []int{1, 3},
		},
		{
			description:   "limit of unknown customer",
			problemID:     "transfer_limit_issue-001",
			input:         state.Context{"customer_id": state.String("C9"), "requested_amount": state.Number(300)},
			expectStatus:  engine.StatusCompleted,
			expectMessage: "We could not find the daily limit of customer C9.",
			expectPath:    []int{1, 4},
		},
		{
			description:   "inactive problem not built",
			problemID:     "card_activation_problem-001",
			expectStatus:  engine.StatusInterrupted,
			expectMessage: engine.DefaultMessages().NoSolution,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			outcome := srv.Run(ctx, testCase.problemID, testCase.input)
			assert.Equal(t, testCase.expectStatus, outcome.Status)
			assert.Equal(t, testCase.expectMessage, outcome.Message)
			var path []int
			for _, key := range outcome.Path {
				path = append(path, key.StepID)
			}
			assert.Equal(t, testCase.expectPath, path)
		})
	}
}

func TestService_Catalog(t *testing.T) {
	ctx := context.Background()
	srv, err := New(ctx, newTestConfig(t), WithLogger(logging.Discard()))
	require.NoError(t, err)
	defer srv.Close(ctx)

	problems, err := srv.Problems(ctx)
	require.NoError(t, err)
	require.Len(t, problems, 2)

	steps, err := srv.Steps(ctx, "balance_inquiry-001")
	require.NoError(t, err)
	assert.Len(t, steps, 3)
	steps, err = srv.Steps(ctx, "transfer_limit_issue-001")
	require.NoError(t, err)
	assert.Len(t, steps, 4)

	reports, err := srv.Verify(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	for _, report := range reports {
		assert.True(t, report.Valid, report.ProblemID)
	}

	ids, err := srv.Seed(ctx, bankDefinitions(t))
	require.NoError(t, err)
	assert.EqualValues(t, []string{"balance_inquiry-002", "transfer_limit_issue-002"}, ids)
}

func TestService_Ask(t *testing.T) {
	ctx := context.Background()
	config := newTestConfig(t)
	config.Session.Backend = BackendFS
	config.Session.Path = t.TempDir()

	noNLU, err := New(ctx, config, WithLogger(logging.Discard()))
	require.NoError(t, err)
	_, err = noNLU.Ask(ctx, "u1", "what is my balance")
	assert.ErrorIs(t, err, ErrExtractorNotConfigured)
	require.NoError(t, noNLU.Close(ctx))

	extractor := nlu.Func(func(ctx context.Context, prompt string) *nlu.Result {
		if prompt == "customer u1 asks: card 6222001 balance" {
			return &nlu.Result{Intent: "balance_inquiry", Confidence: 0.9, Entities: map[string]interface{}{"card_id": "6222001"}}
		}
		return &nlu.Result{Intent: "balance_inquiry", Confidence: 0.9}
	})
	srv, err := New(ctx, config, WithLogger(logging.Discard()), WithExtractor(extractor))
	require.NoError(t, err)
	defer srv.Close(ctx)

	response, err := srv.Ask(ctx, "u1", "card 6222001 balance")
	require.NoError(t, err)
	assert.Equal(t, "Your balance is 100.", response.Message)
	assert.Equal(t, "balance_inquiry-001", response.ProblemID)

	response, err = srv.Ask(ctx, "u1", "and again")
	require.NoError(t, err)
	assert.Equal(t, "Your balance is 100.", response.Message)

	require.NoError(t, srv.ClearContext(ctx, "u1"))
	response, err = srv.Ask(ctx, "u1", "and again")
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultMessages().Interrupted, response.Message)

	assert.ErrorIs(t, srv.ClearContext(ctx, ""), session.ErrInvalidUser)
}

func TestNew_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Graph.Backend = "redis"
	_, err := New(context.Background(), config)
	assert.Error(t, err)
}
