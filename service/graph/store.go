// Package graph defines the read contract the traversal engine consumes and
// the catalog contract used by verification and tooling.
package graph

import (
	"context"
	"errors"

	"github.com/viant/kgflow/model"
)

// ErrNotFound is returned when no first step or no problem for an intent exists
var ErrNotFound = errors.New("graph: not found")

// Store represents solution graph read operations
type Store interface {
	// FirstStep returns the FIRST_STEP target of a problem or ErrNotFound
	FirstStep(ctx context.Context, problemID string) (*model.Step, error)

	// NextCandidates returns outgoing NEXT_* candidates; the order is significant
	NextCandidates(ctx context.Context, problemID string, stepID int) ([]*model.Candidate, error)

	// ProblemIDForIntent returns the problem handling the intent or ErrNotFound
	ProblemIDForIntent(ctx context.Context, intent string) (string, error)
}

// Catalog lists graph content
type Catalog interface {
	Problems(ctx context.Context) ([]*model.Problem, error)

	Steps(ctx context.Context, problemID string) ([]*model.Step, error)
}

// Writer upserts graph content
type Writer interface {
	// ProblemIDs returns ids of problems with the supplied type
	ProblemIDs(ctx context.Context, problemType string) ([]string, error)

	UpsertProblem(ctx context.Context, problem *model.Problem) error

	ProblemExists(ctx context.Context, problemID string) (bool, error)

	UpsertStep(ctx context.Context, step *model.Step) error

	StepExists(ctx context.Context, problemID string, stepID int) (bool, error)

	// CreateRelation upserts a relation, creating an identical relation twice keeps one
	CreateRelation(ctx context.Context, relation *model.Relation) error

	// DeleteStep removes a step together with its relations
	DeleteStep(ctx context.Context, problemID string, stepID int) error

	// DeleteRelation removes the relation with the same type, endpoints and condition
	DeleteRelation(ctx context.Context, relation *model.Relation) error

	// Clear removes the whole graph
	Clear(ctx context.Context) error
}

// Backend combines every graph contract
type Backend interface {
	Store
	Catalog
	Writer
}
