package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Runner executes cypher statements
type Runner interface {
	// Read runs a read statement and returns records as maps
	Read(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error)

	// Write runs a write statement
	Write(ctx context.Context, query string, params map[string]interface{}) error
}

// DriverRunner runs statements with a neo4j driver session per call
type DriverRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

// Read runs read statement
func (r *DriverRunner) Read(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: r.database})
	defer session.Close(ctx)
	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	var records []map[string]interface{}
	for result.Next(ctx) {
		record := result.Record()
		row := make(map[string]interface{}, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = record.Values[i]
		}
		records = append(records, row)
	}
	return records, result.Err()
}

// Write runs write statement
func (r *DriverRunner) Write(ctx context.Context, query string, params map[string]interface{}) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: r.database})
	defer session.Close(ctx)
	result, err := session.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

// Close closes underlying driver
func (r *DriverRunner) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// Connect creates a driver backed runner and verifies connectivity
func Connect(ctx context.Context, uri, username, password, database string) (*DriverRunner, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err = driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to %v: %w", uri, err)
	}
	return &DriverRunner{driver: driver, database: database}, nil
}
