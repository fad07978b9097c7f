package neo4j

import (
	"github.com/viant/kgflow/model"
	"github.com/viant/toolbox"
)

func decodeStep(record map[string]interface{}) *model.Step {
	return &model.Step{
		ProblemID: asString(record["problem_id"]),
		ID:        asInt(record["step_id"]),
		Operation: model.Operation(asString(record["operation"])),
		System:    asString(record["system"]),
		Table:     asString(record["table_name"]),
		Field:     asString(record["field"]),
		Condition: asString(record["condition_sql"]),
		Reply:     asString(record["reply_content"]),
	}
}

func setIfNotEmpty(properties map[string]interface{}, key, value string) {
	if value != "" {
		properties[key] = value
	}
}

func asString(value interface{}) string {
	if value == nil {
		return ""
	}
	return toolbox.AsString(value)
}

func asInt(value interface{}) int {
	switch actual := value.(type) {
	case nil:
		return 0
	case int64:
		return int(actual)
	case int:
		return actual
	}
	return toolbox.AsInt(value)
}

func asBool(value interface{}) bool {
	if value == nil {
		return false
	}
	return toolbox.AsBoolean(value)
}
