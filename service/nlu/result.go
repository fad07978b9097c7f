// Package nlu extracts intent, entities and confidence from a user query.
package nlu

import "context"

// UnknownIntent is reported when the intent cannot be recognized
const UnknownIntent = "unknown"

// DefaultMinConfidence is the confidence below which a caller asks for clarification
const DefaultMinConfidence = 0.6

// Result represents extraction result
type Result struct {
	Intent     string                 `json:"intent"`
	Entities   map[string]interface{} `json:"entities"`
	Confidence float64                `json:"confidence"`
}

// NeedsClarification returns true for unknown intent or low confidence
func (r *Result) NeedsClarification(minConfidence float64) bool {
	return r == nil || r.Intent == "" || r.Intent == UnknownIntent || r.Confidence < minConfidence
}

// Unknown returns unknown intent result
func Unknown() *Result {
	return &Result{Intent: UnknownIntent, Entities: map[string]interface{}{}}
}

// Extractor extracts intent from a composite prompt; it never fails, any
// failure yields Unknown.
type Extractor interface {
	Extract(ctx context.Context, prompt string) *Result
}

// Func adapts a function to Extractor
type Func func(ctx context.Context, prompt string) *Result

func (f Func) Extract(ctx context.Context, prompt string) *Result {
	return f(ctx, prompt)
}
