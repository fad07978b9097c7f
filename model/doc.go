// Package model contains the in-memory representation of solution graphs
// used by the kgflow engine.
//
// A solution graph belongs to a Problem and is made of Steps linked by typed
// relations (FIRST_STEP, NEXT_DEFAULT, NEXT_IF). Conversation state lives in
// the `state` sub-package.
package model
