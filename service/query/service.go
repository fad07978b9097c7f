// Package query executes scalar lookups against named external data systems.
package query

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/viant/kgflow/internal/logging"
	"github.com/viant/kgflow/model/state"
	"github.com/viant/kgflow/tracing"
	"github.com/viant/toolbox"
	_ "modernc.org/sqlite"
)

// ErrQueryFailed wraps query failures reported in strict mode
var ErrQueryFailed = errors.New("query: external query failed")

// Service represents external scalar query service
type Service interface {
	// QueryScalar returns the first column of the first row, Null when no row matched
	QueryScalar(ctx context.Context, system, table, field, condition string) (state.Value, error)
}

// System represents a named SQL data system
type System struct {
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
}

// SQL implements Service with one sqlx.DB per system.
//
// Table, field and condition are concatenated into
// "SELECT <field> FROM <table> <condition>" unmodified; they come from the
// solution graph, which is trusted content.
type SQL struct {
	dbs           map[string]*sqlx.DB
	defaultSystem string
	strict        bool
}

// QueryScalar runs the lookup; unless strict, failures are logged and returned as Null
func (s *SQL) QueryScalar(ctx context.Context, system, table, field, condition string) (value state.Value, err error) {
	ctx, span := tracing.StartSpan(ctx, "query.scalar", tracing.KindClient)
	span.WithAttributes(map[string]string{"system": system, "table": table, "field": field})
	defer func() { tracing.EndSpan(span, err) }()
	value, err = s.query(ctx, system, table, field, condition)
	if err == nil {
		return value, nil
	}
	logging.FromContext(ctx).Error("external query failed", "system", system, "table", table, "field", field, "error", err)
	if s.strict {
		return state.Null(), fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return state.Null(), nil
}

func (s *SQL) query(ctx context.Context, system, table, field, condition string) (state.Value, error) {
	if system == "" {
		system = s.defaultSystem
	}
	db, ok := s.dbs[system]
	if !ok {
		return state.Null(), fmt.Errorf("unknown system: %q", system)
	}
	statement := strings.TrimSpace(fmt.Sprintf("SELECT %s FROM %s %s", field, table, condition))
	logging.FromContext(ctx).Debug("running query", "system", system, "sql", statement)
	rows, err := db.QueryxContext(ctx, statement)
	if err != nil {
		return state.Null(), err
	}
	defer rows.Close()
	if !rows.Next() {
		return state.Null(), rows.Err()
	}
	values, err := rows.SliceScan()
	if err != nil {
		return state.Null(), err
	}
	if len(values) == 0 {
		return state.Null(), nil
	}
	var columnType string
	if types, err := rows.ColumnTypes(); err == nil && len(types) > 0 {
		columnType = types[0].DatabaseTypeName()
	}
	return toValue(values[0], columnType), nil
}

// toValue maps a scanned column; text protocol drivers return numeric
// columns as []byte or string, those are parsed back to numbers
func toValue(v interface{}, columnType string) state.Value {
	switch actual := v.(type) {
	case []byte:
		return numericText(string(actual), columnType)
	case string:
		return numericText(actual, columnType)
	case nil, bool, int, int32, int64, float32, float64, time.Time:
		return state.Of(v)
	}
	return state.String(toolbox.AsString(v))
}

func numericText(text, columnType string) state.Value {
	if isNumericType(columnType) {
		if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return state.Number(f)
		}
	}
	return state.String(text)
}

var numericTypes = []string{"INT", "DECIMAL", "NUMERIC", "NUMBER", "REAL", "FLOAT", "DOUBLE", "MONEY"}

func isNumericType(columnType string) bool {
	columnType = strings.ToUpper(columnType)
	for _, candidate := range numericTypes {
		if strings.Contains(columnType, candidate) {
			return true
		}
	}
	return false
}

// Close closes all system connections
func (s *SQL) Close() error {
	var err error
	for _, db := range s.dbs {
		err = errors.Join(err, db.Close())
	}
	return err
}

// NewSQL creates SQL query service over existing connections
func NewSQL(dbs map[string]*sqlx.DB, opts ...Option) *SQL {
	ret := &SQL{dbs: dbs}
	if ret.dbs == nil {
		ret.dbs = map[string]*sqlx.DB{}
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Open opens connections to all systems
func Open(ctx context.Context, systems map[string]*System, opts ...Option) (*SQL, error) {
	dbs := make(map[string]*sqlx.DB, len(systems))
	ret := NewSQL(dbs, opts...)
	for name, system := range systems {
		db, err := sqlx.Open(system.Driver, system.DSN)
		if err == nil {
			err = db.PingContext(ctx)
		}
		if err != nil {
			_ = ret.Close()
			return nil, fmt.Errorf("failed to open system %v: %w", name, err)
		}
		dbs[name] = db
	}
	return ret, nil
}
