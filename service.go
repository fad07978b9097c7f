package kgflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/viant/afs"
	"github.com/viant/kgflow/internal/logging"
	"github.com/viant/kgflow/model"
	"github.com/viant/kgflow/model/state"
	"github.com/viant/kgflow/runtime/engine"
	"github.com/viant/kgflow/runtime/evaluator"
	"github.com/viant/kgflow/service/construction"
	"github.com/viant/kgflow/service/graph"
	"github.com/viant/kgflow/service/graph/loader"
	"github.com/viant/kgflow/service/graph/memory"
	"github.com/viant/kgflow/service/graph/neo4j"
	"github.com/viant/kgflow/service/nlu"
	"github.com/viant/kgflow/service/query"
	"github.com/viant/kgflow/service/session"
	fsession "github.com/viant/kgflow/service/session/fs"
	msession "github.com/viant/kgflow/service/session/memory"
	"github.com/viant/kgflow/service/solution"
	"github.com/viant/kgflow/service/verification"
	"github.com/viant/kgflow/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "kgflow"

// Version is reported to tracing resources
var Version = "0.1.0"

// ErrExtractorNotConfigured is returned by Ask when no NLU endpoint or
// extractor was configured
var ErrExtractorNotConfigured = errors.New("kgflow: intent extractor not configured")

type tracingSetup struct {
	serviceName    string
	serviceVersion string
	outputFile     string
	exporter       sdktrace.SpanExporter
}

// Service represents kgflow service
type Service struct {
	config       *Config
	logger       *slog.Logger
	tracing      *tracingSetup
	graph        graph.Backend
	query        query.Service
	sessions     session.Store
	extractor    nlu.Extractor
	evaluator    evaluator.Evaluator
	engine       *engine.Service
	construction *construction.Service
	verification *verification.Service
	solution     *solution.Service
	loader       *loader.Service
	closers      []func(ctx context.Context) error
}

// Run executes problem solution graph with supplied context
func (s *Service) Run(ctx context.Context, problemID string, input state.Context) *engine.Outcome {
	return s.engine.Run(s.context(ctx), problemID, input)
}

// Ask handles a natural language user query end to end
func (s *Service) Ask(ctx context.Context, userID, query string) (response *solution.Response, err error) {
	if s.solution == nil {
		return nil, ErrExtractorNotConfigured
	}
	ctx, span := tracing.StartSpan(s.context(ctx), "kgflow.ask", tracing.KindServer)
	span.WithAttributes(map[string]string{"user": userID})
	defer func() { tracing.EndSpan(span, err) }()
	return s.solution.ProcessQuery(ctx, userID, query)
}

// ClearContext removes user conversation context
func (s *Service) ClearContext(ctx context.Context, userID string) error {
	if userID == "" {
		return session.ErrInvalidUser
	}
	return s.sessions.Clear(s.context(ctx), userID)
}

// Verify verifies the solution graph structure
func (s *Service) Verify(ctx context.Context) ([]*verification.Report, error) {
	return s.verification.Verify(s.context(ctx))
}

// Problems returns all problems in the graph
func (s *Service) Problems(ctx context.Context) ([]*model.Problem, error) {
	return s.graph.Problems(s.context(ctx))
}

// Steps returns problem steps ordered by step id
func (s *Service) Steps(ctx context.Context, problemID string) ([]*model.Step, error) {
	return s.graph.Steps(s.context(ctx), problemID)
}

// Construction returns graph construction service
func (s *Service) Construction() *construction.Service {
	return s.construction
}

// Engine returns traversal engine
func (s *Service) Engine() *engine.Service {
	return s.engine
}

// Seed loads graph definitions from a YAML file or folder URL and builds them
func (s *Service) Seed(ctx context.Context, URL string) ([]string, error) {
	ctx = s.context(ctx)
	definition, err := s.loader.LoadAll(ctx, URL)
	if err != nil {
		return nil, err
	}
	ids, err := s.construction.Build(ctx, definition)
	if err != nil {
		return ids, err
	}
	logging.FromContext(ctx).Info("graph seeded", "url", URL, "problems", len(ids))
	return ids, nil
}

// Close releases external connections
func (s *Service) Close(ctx context.Context) error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, s.closers[i](ctx))
	}
	s.closers = nil
	return err
}

func (s *Service) context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, s.logger)
}

func (s *Service) initTracing() error {
	setup := s.tracing
	if setup == nil {
		if !s.config.Tracing.Enabled {
			return nil
		}
		setup = &tracingSetup{serviceName: serviceName, serviceVersion: Version, outputFile: s.config.Tracing.OutputFile}
	}
	if setup.exporter != nil {
		return tracing.InitWithExporter(setup.serviceName, setup.serviceVersion, setup.exporter)
	}
	return tracing.Init(setup.serviceName, setup.serviceVersion, setup.outputFile)
}

func (s *Service) initGraph(ctx context.Context) (seed bool, err error) {
	if s.graph != nil {
		return s.config.Graph.Definitions != "", nil
	}
	switch s.config.Graph.Backend {
	case BackendNeo4j:
		cfg := s.config.Graph.Neo4j
		runner, err := neo4j.Connect(ctx, cfg.URI, cfg.Username, cfg.Password, cfg.Database)
		if err != nil {
			return false, err
		}
		s.closers = append(s.closers, runner.Close)
		store := neo4j.New(runner)
		if cfg.CreateConstraints {
			if err = store.EnsureConstraints(ctx); err != nil {
				return false, err
			}
		}
		s.graph = store
		if s.config.Graph.Definitions == "" {
			return false, nil
		}
		if s.config.Graph.Reseed {
			return true, s.graph.Clear(ctx)
		}
		problems, err := s.graph.Problems(ctx)
		if err != nil {
			return false, err
		}
		return len(problems) == 0, nil
	default:
		s.graph = memory.New()
		return s.config.Graph.Definitions != "", nil
	}
}

func (s *Service) initQuery(ctx context.Context) error {
	if s.query != nil {
		return nil
	}
	var opts = []query.Option{query.WithStrict(s.config.Engine.Strict)}
	if s.config.Engine.DefaultSystem != "" {
		opts = append(opts, query.WithDefaultSystem(s.config.Engine.DefaultSystem))
	}
	sqlService, err := query.Open(ctx, s.config.Systems, opts...)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, func(context.Context) error { return sqlService.Close() })
	s.query = sqlService
	return nil
}

func (s *Service) initSessions() (err error) {
	if s.sessions != nil {
		return nil
	}
	ttl := time.Duration(s.config.Session.TTLSeconds) * time.Second
	switch s.config.Session.Backend {
	case BackendFS:
		s.sessions, err = fsession.New(s.config.Session.Path, ttl)
	default:
		s.sessions = msession.New(ttl)
	}
	return err
}

func (s *Service) initExtractor() {
	if s.extractor != nil || s.config.NLU == nil || s.config.NLU.URL == "" {
		return
	}
	s.extractor = nlu.NewClient(s.config.NLU, &http.Client{})
}

func (s *Service) init(ctx context.Context) error {
	if err := s.initTracing(); err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	seed, err := s.initGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to init graph: %w", err)
	}
	s.construction = construction.New(s.graph)
	s.loader = loader.New(afs.New())
	if seed {
		if _, err = s.Seed(ctx, s.config.Graph.Definitions); err != nil {
			return fmt.Errorf("failed to seed graph: %w", err)
		}
	}
	if err = s.initQuery(ctx); err != nil {
		return fmt.Errorf("failed to init query service: %w", err)
	}
	if err = s.initSessions(); err != nil {
		return fmt.Errorf("failed to init session store: %w", err)
	}
	if s.evaluator == nil {
		if s.evaluator, err = evaluator.New(s.config.Engine.Evaluator); err != nil {
			return err
		}
	}
	s.engine = engine.New(s.graph, s.query,
		engine.WithMaxSteps(s.config.Engine.MaxSteps),
		engine.WithStrict(s.config.Engine.Strict),
		engine.WithEvaluator(s.evaluator),
		engine.WithMessages(s.config.Engine.Messages),
	)
	s.verification = verification.New(s.graph, s.config.Verification)
	s.initExtractor()
	if s.extractor != nil {
		cfg := s.config.Solution
		opts := []solution.Option{solution.WithUserLock(!cfg.DisableLock)}
		if cfg.MinConfidence > 0 {
			opts = append(opts, solution.WithMinConfidence(cfg.MinConfidence))
		}
		opts = append(opts,
			solution.WithPromptFormat(cfg.PromptFormat),
			solution.WithClarification(cfg.Clarification),
			solution.WithUnsupported(cfg.Unsupported),
		)
		s.solution = solution.New(s.extractor, s.graph, s.engine, s.sessions, opts...)
	}
	reports, err := s.verification.Verify(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify graph: %w", err)
	}
	for _, report := range reports {
		if !report.Valid {
			logging.FromContext(ctx).Warn("invalid solution graph", "problem", report.ProblemID, "issues", report.Issues)
		}
	}
	return nil
}

// New creates a service from config; options override configured components
func New(ctx context.Context, config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	ret := &Service{config: config}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = logging.New(config.Log.Level, config.Log.Format, os.Stderr)
	}
	ctx = ret.context(ctx)
	if err := ret.init(ctx); err != nil {
		_ = ret.Close(ctx)
		return nil, err
	}
	return ret, nil
}
