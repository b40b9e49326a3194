package groupify

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// DefaultSuppression marks every class smaller than k as an outlier.
const DefaultSuppression = "count < k"

// SuppressionRule decides whether an equivalence class is suppressed.
// The condition is a CEL expression over the variables
//   - count: number of records in the class
//   - k: the anonymity parameter
//   - records: number of records in the dataset
//
// and must evaluate to a boolean.
type SuppressionRule struct {
	expression string
	program    cel.Program
}

// NewSuppressionEnv returns the CEL environment suppression rules are compiled in.
func NewSuppressionEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("count", cel.IntType),
		cel.Variable("k", cel.IntType),
		cel.Variable("records", cel.IntType),
	)
}

// NewSuppressionRule compiles expression. Syntax errors, unknown variables and
// non-boolean results are reported here, not at evaluation time.
func NewSuppressionRule(expression string) (*SuppressionRule, error) {
	env, err := NewSuppressionEnv()
	if err != nil {
		return nil, err
	}

	ast, iss := env.Parse(expression)
	if iss.Err() != nil {
		return nil, iss.Err()
	}

	checked, iss := env.Check(ast)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	if !checked.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("suppression rule %q must return bool, got %s", expression, checked.OutputType())
	}

	program, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	return &SuppressionRule{expression: expression, program: program}, nil
}

// Eval reports whether a class of count records must be suppressed.
func (r *SuppressionRule) Eval(count, k, records int) (bool, error) {
	result, _, err := r.program.Eval(map[string]any{
		"count":   int64(count),
		"k":       int64(k),
		"records": int64(records),
	})
	if err != nil {
		return false, fmt.Errorf("suppression rule %q: %w", r.expression, err)
	}

	suppressed, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("suppression rule %q returned %T", r.expression, result.Value())
	}
	return suppressed, nil
}

func (r *SuppressionRule) String() string {
	return r.expression
}
