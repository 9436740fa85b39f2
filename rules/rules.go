package rules

/*
Rule expressions are JSON Logic trees: JSON objects whose single key is an
operator and whose value holds the operands, with {"var": "name"} leaves
reading from the data context. The same format drives both next-action
routing (integer result) and calculations (decimal result).
*/

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/diegoholiveira/jsonlogic/v3"
	"github.com/shopspring/decimal"
)

// Evaluate applies a rule to a data context and returns the decoded result:
// numbers come back as json.Number, everything else as the usual decoded
// JSON types.
func Evaluate(rule json.RawMessage, data map[string]interface{}) (interface{}, error) {
	context, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var result bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(rule), bytes.NewReader(context), &result); err != nil {
		return nil, fmt.Errorf("rule evaluation: %w", err)
	}
	decoder := json.NewDecoder(&result)
	decoder.UseNumber()
	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("rule result: %w", err)
	}
	return value, nil
}

// EvaluateInt applies a rule and reports whether the result was an
// integer. A non-integer result is not an error: routing rules fall back
// to their default when the result is unusable.
func EvaluateInt(rule json.RawMessage, data map[string]interface{}) (int, bool) {
	value, err := Evaluate(rule, data)
	if err != nil {
		return 0, false
	}
	number, ok := value.(json.Number)
	if !ok {
		return 0, false
	}
	integer, err := number.Int64()
	if err != nil {
		// accept e.g. 3.0 but not 3.5
		float, ferr := number.Float64()
		if ferr != nil || float != float64(int64(float)) {
			return 0, false
		}
		integer = int64(float)
	}
	return int(integer), true
}

// EvaluateDecimal applies a rule and requires a decimal-number result.
func EvaluateDecimal(rule json.RawMessage, data map[string]interface{}) (decimal.Decimal, error) {
	value, err := Evaluate(rule, data)
	if err != nil {
		return decimal.Decimal{}, err
	}
	number, ok := value.(json.Number)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("rule result %v is not a number", value)
	}
	result, err := decimal.NewFromString(number.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("rule result %s is not a decimal: %w", number, err)
	}
	return result, nil
}
