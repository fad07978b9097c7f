// Package kgflow executes customer-service solution graphs.
//
// A solution graph is a set of problems, each with numbered steps linked by
// FIRST_STEP, NEXT_DEFAULT and NEXT_IF relations. Steps either query a scalar
// value from an external data system or render the final reply. The root
// package exposes a Service façade that wires:
//
//   - graph      – memory or Neo4j backed solution graph
//   - engine     – step traversal with branch evaluation
//   - query      – scalar lookups against SQL systems
//   - session    – per-user conversation context
//   - nlu        – intent and entity extraction
//   - solution   – the end-to-end query handling flow
//
// Typical usage:
//
//	srv, _ := kgflow.New(ctx, kgflow.DefaultConfig())
//	defer srv.Close(ctx)
//	outcome := srv.Run(ctx, "balance_inquiry-001", state.Context{"customer_id": "C1"})
//	fmt.Println(outcome.Message)
package kgflow
