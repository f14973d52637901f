// Package filter evaluates request-supplied CEL predicates over document
// metadata, e.g. metadata.lang == "en".
package filter

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var env = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("metadata", cel.MapType(cel.StringType, cel.StringType)),
	)
})

// Filter is a compiled boolean expression. It is immutable and safe for
// concurrent use.
type Filter struct {
	Expression string
	program    cel.Program
}

// Compile parses and type-checks expression; it must evaluate to a bool.
func Compile(expression string) (*Filter, error) {
	if expression == "" {
		return nil, fmt.Errorf("filter: expression can't be empty")
	}
	e, err := env()
	if err != nil {
		return nil, fmt.Errorf("filter: error creating CEL environment: %v", err)
	}
	ast, issues := e.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter: %v", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter: expression must be boolean, got %v", ast.OutputType())
	}
	p, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter: error creating program: %v", err)
	}
	return &Filter{Expression: expression, program: p}, nil
}

// Match reports whether metadata satisfies the expression. Evaluation errors,
// such as a reference to a missing key, count as no match.
func (f *Filter) Match(metadata map[string]string) bool {
	if metadata == nil {
		metadata = map[string]string{}
	}
	out, _, err := f.program.Eval(map[string]any{"metadata": metadata})
	if err != nil {
		return false
	}
	v, ok := out.Value().(bool)
	return ok && v
}
