package workflow

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/flowdeck-io/flowdeck/internal/types"
)

// ConditionOperator identifies the comparison applied by a Switch condition.
type ConditionOperator string

const (
	OperatorEquals         ConditionOperator = "eq"
	OperatorNotEquals      ConditionOperator = "neq"
	OperatorGreaterThan    ConditionOperator = "gt"
	OperatorLessThan       ConditionOperator = "lt"
	OperatorGreaterOrEqual ConditionOperator = "gte"
	OperatorLessOrEqual    ConditionOperator = "lte"
	OperatorContains       ConditionOperator = "contains"
	OperatorStartsWith     ConditionOperator = "startsWith"
	OperatorEndsWith       ConditionOperator = "endsWith"
	OperatorMatches        ConditionOperator = "matches"
	OperatorIn             ConditionOperator = "in"
	OperatorEmpty          ConditionOperator = "empty"
	OperatorExists         ConditionOperator = "exists"
)

// String returns the string representation of the operator.
func (op ConditionOperator) String() string {
	return string(op)
}

// IsValid checks if the operator is one of the supported comparisons.
func (op ConditionOperator) IsValid() bool {
	switch op {
	case OperatorEquals, OperatorNotEquals,
		OperatorGreaterThan, OperatorLessThan,
		OperatorGreaterOrEqual, OperatorLessOrEqual,
		OperatorContains, OperatorStartsWith, OperatorEndsWith,
		OperatorMatches, OperatorIn, OperatorEmpty, OperatorExists:
		return true
	default:
		return false
	}
}

// EvaluationMode controls how a Switch node walks its condition list.
type EvaluationMode string

const (
	// EvaluationFirstMatch stops at the first matching condition; conditions
	// after the match are not evaluated.
	EvaluationFirstMatch EvaluationMode = "first_match"
	// EvaluationAllMatch evaluates every condition and routes to every
	// matching output port.
	EvaluationAllMatch EvaluationMode = "all_match"
)

// String returns the string representation of the evaluation mode.
func (m EvaluationMode) String() string {
	return string(m)
}

// IsValid checks if the evaluation mode is a supported value.
func (m EvaluationMode) IsValid() bool {
	switch m {
	case EvaluationFirstMatch, EvaluationAllMatch:
		return true
	default:
		return false
	}
}

// SwitchCondition is one routing condition of a Switch node. Conditions are
// immutable once evaluated; the property panel authors them and the engine
// passes them here unchanged.
type SwitchCondition struct {
	ID         types.ID          `json:"id"`
	Field      string            `json:"field"`
	Operator   ConditionOperator `json:"operator"`
	Value      any               `json:"value"`
	OutputPort string            `json:"output_port"`
}

// SwitchEvaluation is the result of evaluating a Switch node's conditions
// against a state snapshot. ConditionResults only holds entries for
// conditions that were actually evaluated; in first-match mode the conditions
// after the first match are absent.
type SwitchEvaluation struct {
	MatchedPorts     []string          `json:"matched_ports"`
	ConditionResults map[types.ID]bool `json:"condition_results"`
	HasMatch         bool              `json:"has_match"`
	FirstMatchedPort string            `json:"first_matched_port,omitempty"`
}

// EvaluateOperator applies a single condition operator to a resolved field
// value and the condition's comparison value. It is total: every combination
// of operator and value types produces a boolean, never an error. Type
// mismatches evaluate to false.
func EvaluateOperator(op ConditionOperator, fieldValue, conditionValue any) bool {
	switch op {
	case OperatorEquals:
		return valueEquals(fieldValue, conditionValue)
	case OperatorNotEquals:
		return !valueEquals(fieldValue, conditionValue)
	case OperatorGreaterThan:
		return compareNumbers(fieldValue, conditionValue, func(a, b float64) bool { return a > b })
	case OperatorLessThan:
		return compareNumbers(fieldValue, conditionValue, func(a, b float64) bool { return a < b })
	case OperatorGreaterOrEqual:
		return compareNumbers(fieldValue, conditionValue, func(a, b float64) bool { return a >= b })
	case OperatorLessOrEqual:
		return compareNumbers(fieldValue, conditionValue, func(a, b float64) bool { return a <= b })
	case OperatorContains:
		switch v := fieldValue.(type) {
		case string:
			needle, ok := conditionValue.(string)
			return ok && strings.Contains(v, needle)
		case []any:
			return sequenceContains(v, conditionValue)
		default:
			return false
		}
	case OperatorStartsWith:
		s, prefix, ok := stringPair(fieldValue, conditionValue)
		return ok && strings.HasPrefix(s, prefix)
	case OperatorEndsWith:
		s, suffix, ok := stringPair(fieldValue, conditionValue)
		return ok && strings.HasSuffix(s, suffix)
	case OperatorMatches:
		s, ok := fieldValue.(string)
		if !ok {
			return false
		}
		pattern, ok := conditionValue.(string)
		if !ok {
			return false
		}
		// An invalid pattern degrades to false rather than raising.
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(s)
	case OperatorIn:
		seq, ok := conditionValue.([]any)
		return ok && sequenceContains(seq, fieldValue)
	case OperatorEmpty:
		return isEmptyValue(fieldValue)
	case OperatorExists:
		return fieldValue != nil
	default:
		return false
	}
}

// EvaluateSwitch evaluates a Switch node's conditions against the state
// snapshot in declaration order. In first-match mode the walk stops at the
// first matching condition; in all-match mode every condition is evaluated
// and every matching port is collected, in evaluation order.
func EvaluateSwitch(conditions []SwitchCondition, state State, mode EvaluationMode) SwitchEvaluation {
	eval := SwitchEvaluation{
		MatchedPorts:     []string{},
		ConditionResults: make(map[types.ID]bool, len(conditions)),
	}

	for _, cond := range conditions {
		matched := EvaluateOperator(cond.Operator, state.Resolve(cond.Field), cond.Value)
		eval.ConditionResults[cond.ID] = matched

		if !matched {
			continue
		}

		eval.MatchedPorts = append(eval.MatchedPorts, cond.OutputPort)
		if !eval.HasMatch {
			eval.HasMatch = true
			eval.FirstMatchedPort = cond.OutputPort
		}

		if mode == EvaluationFirstMatch {
			break
		}
	}

	return eval
}

// SwitchOutputPorts returns the output ports a Switch node routes to:
// the single first-matched port in first-match mode, every matched port in
// all-match mode, the default port when nothing matched and a default exists,
// and an empty slice otherwise.
func SwitchOutputPorts(conditions []SwitchCondition, state State, mode EvaluationMode, defaultPort string) []string {
	eval := EvaluateSwitch(conditions, state, mode)

	if !eval.HasMatch {
		if defaultPort != "" {
			return []string{defaultPort}
		}
		return []string{}
	}

	if mode == EvaluationFirstMatch {
		return []string{eval.FirstMatchedPort}
	}
	return eval.MatchedPorts
}

// valueEquals checks strict equality between two JSON-like values. Numbers
// compare numerically across Go numeric types; everything else compares by
// deep equality.
func valueEquals(left, right any) bool {
	if left == nil && right == nil {
		return true
	}
	if left == nil || right == nil {
		return false
	}

	if ln, ok := toNumber(left); ok {
		rn, rok := toNumber(right)
		return rok && ln == rn
	}

	return reflect.DeepEqual(left, right)
}

// compareNumbers applies an ordered comparison to two values. Either side
// failing to be a number makes the comparison false.
func compareNumbers(left, right any, cmp func(a, b float64) bool) bool {
	ln, lok := toNumber(left)
	rn, rok := toNumber(right)
	if !lok || !rok {
		return false
	}
	return cmp(ln, rn)
}

// toNumber attempts to convert a value to float64. Only numeric types
// convert; numeric strings do not count as numbers.
func toNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// stringPair asserts both values are strings.
func stringPair(left, right any) (string, string, bool) {
	l, lok := left.(string)
	r, rok := right.(string)
	return l, r, lok && rok
}

// sequenceContains checks membership of a value in a sequence using the same
// equality rules as the eq operator.
func sequenceContains(seq []any, value any) bool {
	for _, item := range seq {
		if valueEquals(item, value) {
			return true
		}
	}
	return false
}

// isEmptyValue reports whether a value is nil, a zero-length string or
// sequence, or a zero-key mapping.
func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}
