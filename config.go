package kgflow

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/kgflow/internal/env"
	"github.com/viant/kgflow/runtime/engine"
	"github.com/viant/kgflow/runtime/evaluator"
	"github.com/viant/kgflow/service/nlu"
	"github.com/viant/kgflow/service/query"
	"github.com/viant/kgflow/service/verification"
	"gopkg.in/yaml.v3"
)

// Graph backends
const (
	BackendMemory = "memory"
	BackendNeo4j  = "neo4j"
	BackendFS     = "fs"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from YAML or JSON; ${env.NAME} expressions are expanded by
// LoadConfig.
type Config struct {
	Log          LogConfig                `json:"log" yaml:"log"`
	Graph        GraphConfig              `json:"graph" yaml:"graph"`
	Systems      map[string]*query.System `json:"systems,omitempty" yaml:"systems,omitempty"`
	Engine       EngineConfig             `json:"engine" yaml:"engine"`
	Session      SessionConfig            `json:"session" yaml:"session"`
	NLU          *nlu.Config              `json:"nlu,omitempty" yaml:"nlu,omitempty"`
	Solution     SolutionConfig           `json:"solution" yaml:"solution"`
	Verification verification.Config      `json:"verification" yaml:"verification"`
	Tracing      TracingConfig            `json:"tracing" yaml:"tracing"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

type GraphConfig struct {
	Backend string `json:"backend" yaml:"backend"`
	// Definitions is a YAML file or folder URL seeded on start
	Definitions string `json:"definitions,omitempty" yaml:"definitions,omitempty"`
	// Reseed clears a persistent graph before seeding definitions
	Reseed bool        `json:"reseed,omitempty" yaml:"reseed,omitempty"`
	Neo4j  Neo4jConfig `json:"neo4j" yaml:"neo4j"`
}

type Neo4jConfig struct {
	URI      string `json:"uri" yaml:"uri"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`

	// CreateConstraints ensures problem id and step key constraints on start
	CreateConstraints bool `json:"createConstraints" yaml:"createConstraints"`
}

type EngineConfig struct {
	MaxSteps      int             `json:"maxSteps" yaml:"maxSteps"`
	Strict        bool            `json:"strict" yaml:"strict"`
	Evaluator     string          `json:"evaluator" yaml:"evaluator"`
	DefaultSystem string          `json:"defaultSystem,omitempty" yaml:"defaultSystem,omitempty"`
	Messages      engine.Messages `json:"messages" yaml:"messages"`
}

type SessionConfig struct {
	Backend    string `json:"backend" yaml:"backend"`
	TTLSeconds int    `json:"ttlSeconds" yaml:"ttlSeconds"`
	// Path is the session folder URL for the fs backend
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

type SolutionConfig struct {
	MinConfidence float64 `json:"minConfidence" yaml:"minConfidence"`
	PromptFormat  string  `json:"promptFormat,omitempty" yaml:"promptFormat,omitempty"`
	Clarification string  `json:"clarification,omitempty" yaml:"clarification,omitempty"`
	Unsupported   string  `json:"unsupported,omitempty" yaml:"unsupported,omitempty"`
	DisableLock   bool    `json:"disableLock,omitempty" yaml:"disableLock,omitempty"`
}

type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config populated with default values. Callers may
// modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Log:   LogConfig{Level: "info", Format: "text"},
		Graph: GraphConfig{Backend: BackendMemory, Neo4j: Neo4jConfig{CreateConstraints: true}},
		Engine: EngineConfig{
			MaxSteps:  engine.DefaultMaxSteps,
			Evaluator: evaluator.KindTextual,
			Messages:  engine.DefaultMessages(),
		},
		Session:      SessionConfig{Backend: BackendMemory},
		NLU:          nlu.DefaultConfig(),
		Solution:     SolutionConfig{MinConfidence: nlu.DefaultMinConfidence},
		Verification: verification.Config{Enabled: true, VerifyPaths: true, MaxDepth: verification.DefaultMaxDepth},
	}
}

// Validate returns an error describing the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Graph.Backend {
	case "", BackendMemory:
	case BackendNeo4j:
		if c.Graph.Neo4j.URI == "" {
			return fmt.Errorf("graph.neo4j.uri was empty")
		}
	default:
		return fmt.Errorf("unsupported graph.backend: %q", c.Graph.Backend)
	}
	if c.Engine.MaxSteps <= 0 {
		return fmt.Errorf("engine.maxSteps must be > 0")
	}
	if _, err := evaluator.New(c.Engine.Evaluator); err != nil {
		return fmt.Errorf("engine.evaluator: %w", err)
	}
	switch c.Session.Backend {
	case "", BackendMemory:
	case BackendFS:
		if c.Session.Path == "" {
			return fmt.Errorf("session.path was empty")
		}
	default:
		return fmt.Errorf("unsupported session.backend: %q", c.Session.Backend)
	}
	if c.Session.TTLSeconds < 0 {
		return fmt.Errorf("session.ttlSeconds must be >= 0")
	}
	if c.Solution.MinConfidence < 0 || c.Solution.MinConfidence > 1 {
		return fmt.Errorf("solution.minConfidence must be within [0, 1]")
	}
	for name, system := range c.Systems {
		if system == nil || system.Driver == "" {
			return fmt.Errorf("systems.%v.driver was empty", name)
		}
	}
	if c.Engine.DefaultSystem != "" {
		if _, ok := c.Systems[c.Engine.DefaultSystem]; !ok {
			return fmt.Errorf("engine.defaultSystem %q is not defined", c.Engine.DefaultSystem)
		}
	}
	return nil
}

// LoadConfig loads YAML configuration over DefaultConfig
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	config := DefaultConfig()
	if err = yaml.Unmarshal([]byte(env.Expand(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return config, nil
}
