package state

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind represents value kind
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	}
	return "null"
}

// Value represents a scalar context value: String, Number, Bool or Null.
// The zero Value is Null.
type Value struct {
	kind Kind
	text string
	num  float64
	flag bool
}

// Null returns null value
func Null() Value { return Value{} }

// String returns text value
func String(s string) Value { return Value{kind: KindString, text: s} }

// Number returns numeric value
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool returns boolean value
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Of converts a Go scalar into a Value, unsupported types are converted with fmt.
func Of(v interface{}) Value {
	switch actual := v.(type) {
	case nil:
		return Null()
	case Value:
		return actual
	case string:
		return String(actual)
	case []byte:
		return String(string(actual))
	case bool:
		return Bool(actual)
	case int:
		return Number(float64(actual))
	case int8:
		return Number(float64(actual))
	case int16:
		return Number(float64(actual))
	case int32:
		return Number(float64(actual))
	case int64:
		return Number(float64(actual))
	case uint:
		return Number(float64(actual))
	case uint8:
		return Number(float64(actual))
	case uint16:
		return Number(float64(actual))
	case uint32:
		return Number(float64(actual))
	case uint64:
		return Number(float64(actual))
	case float32:
		return Number(float64(actual))
	case float64:
		return Number(actual)
	case json.Number:
		if f, err := actual.Float64(); err == nil {
			return Number(f)
		}
		return String(actual.String())
	case time.Time:
		return String(actual.Format(time.RFC3339))
	case fmt.Stringer:
		return String(actual.String())
	}
	return String(fmt.Sprintf("%v", v))
}

// Kind returns value kind
func (v Value) Kind() Kind { return v.kind }

// IsNull returns true for null value
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsText returns true for string value
func (v Value) IsText() bool { return v.kind == KindString }

// Text returns string value
func (v Value) Text() (string, bool) { return v.text, v.kind == KindString }

// Float returns numeric value
func (v Value) Float() (float64, bool) { return v.num, v.kind == KindNumber }

// Flag returns boolean value
func (v Value) Flag() (bool, bool) { return v.flag, v.kind == KindBool }

// String returns natural textual representation
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.text
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.flag)
	}
	return "null"
}

// Interface returns Go native value
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.text
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	}
	return nil
}

// Equal returns true if both values have the same kind and content
func (v Value) Equal(o Value) bool {
	return v == o
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
		return json.Marshal(formatNumber(v.num))
	}
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.(type) {
	case nil, string, bool, float64:
		*v = Of(raw)
		return nil
	}
	return fmt.Errorf("unsupported value: %s", data)
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
