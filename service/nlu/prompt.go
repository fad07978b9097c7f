package nlu

import (
	"fmt"
	"strings"
)

// Term represents a supported intent or entity with its description
type Term struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// DefaultSystemPrompt instructs the model to answer in JSON only
const DefaultSystemPrompt = "You are an intent recognition system. Answer strictly in the requested JSON format."

// DefaultIntents returns intents supported by the bundled graphs
func DefaultIntents() []*Term {
	return []*Term{
		{Name: "transfer_limit_issue", Description: "transfer limit problem"},
		{Name: "card_activation_problem", Description: "card activation problem"},
		{Name: "balance_inquiry", Description: "balance inquiry"},
	}
}

// DefaultEntities returns entities expected by the bundled graphs
func DefaultEntities() []*Term {
	return []*Term{
		{Name: "requested_amount", Description: "transfer amount"},
		{Name: "card_id", Description: "card number"},
		{Name: "customer_id", Description: "customer id, always required"},
		{Name: "channel", Description: "channel such as mobile, web, atm"},
	}
}

// BuildPrompt builds the extraction prompt for a user query
func BuildPrompt(intents, entities []*Term, query string) string {
	builder := strings.Builder{}
	builder.WriteString("Analyze the following user query, extract the intent and related entities.\n")
	builder.WriteString("Supported intents:\n")
	for i, intent := range intents {
		builder.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, intent.Name, intent.Description))
	}
	builder.WriteString("\nExtract all relevant entities, which may include:\n")
	for _, entity := range entities {
		builder.WriteString(fmt.Sprintf("- %s: %s\n", entity.Name, entity.Description))
	}
	builder.WriteString("\nOutput JSON in the format:\n")
	builder.WriteString("{\n    \"intent\": \"intent type\",\n    \"entities\": {\n        \"entity name\": \"entity value\"\n    },\n    \"confidence\": confidence (float between 0 and 1)\n}\n\n")
	builder.WriteString("User query: ")
	builder.WriteString(query)
	return builder.String()
}
