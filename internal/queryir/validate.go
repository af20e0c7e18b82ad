package queryir

import (
	"fmt"
	"slices"
)

// ValidationResult contains the findings of a plan check.
//
// Problems make a plan unexecutable. Warnings describe plans that execute
// but probably do not do what the author meant, such as a predicate over a
// variable no pattern binds (it evaluates to null).
type ValidationResult struct {
	Problems []string
	Warnings []string
}

// OK reports whether the plan has no problems.
func (r ValidationResult) OK() bool {
	return len(r.Problems) == 0
}

// Validate checks structural plan rules:
//  1. Every operator has its inputs
//  2. An Expand's start variable is bound by its input
//  3. Variables bound on both sides of a Join are reported (not reconciled)
//  4. Expressions reference bound variables or projection aliases
//
// Validate is a pure function with no side effects.
func Validate(rel RelExpr) ValidationResult {
	v := &validator{}
	v.bound(rel)
	return ValidationResult{Problems: v.problems, Warnings: v.warnings}
}

type validator struct {
	problems []string
	warnings []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

// bound validates rel and returns the variables its output rows bind.
func (v *validator) bound(rel RelExpr) []string {
	switch r := rel.(type) {
	case nil:
		v.addProblem("nil plan node")
		return nil

	case *NodeScan:
		if r.Variable == "" {
			v.addProblem("NodeScan without a variable")
		}
		return []string{r.Variable}

	case *Expand:
		in := v.bound(r.Input)
		if !slices.Contains(in, r.Start) {
			v.addProblem("Expand start %q is not bound by its input", displayName(r.Start))
		}
		if r.Rel == "" || r.End == "" {
			v.addProblem("Expand without relationship or end variable")
		}
		return append(in, r.Rel, r.End)

	case *Join:
		left := v.bound(r.Left)
		right := v.bound(r.Right)
		for _, name := range right {
			if slices.Contains(left, name) && !IsInternalName(name) {
				v.addWarning("variable %q is bound on both sides of a cartesian join", name)
			}
		}
		return append(left, right...)

	case *Selection:
		in := v.bound(r.Input)
		if len(r.Predicates) == 0 {
			v.addProblem("Selection without predicates")
		}
		for _, p := range r.Predicates {
			v.references(p, in)
		}
		return in

	case *Projection:
		in := v.bound(r.Input)
		out := make([]string, 0, len(r.Items))
		if r.Star {
			out = append(out, in...)
		}
		for _, it := range r.Items {
			v.references(it.Expr, in)
			if it.Alias == "" {
				v.addProblem("projection of %s has no alias", it.Expr)
			}
			out = append(out, it.Alias)
		}
		return out

	default:
		v.addProblem("unknown plan node %T", rel)
		return nil
	}
}

// references warns about variables in e that are not in scope.
func (v *validator) references(e ScalarExpr, scope []string) {
	for _, name := range Variables(e) {
		if !slices.Contains(scope, name) {
			v.addWarning("variable %q is not bound; it evaluates to null", name)
		}
	}
}

// Variables returns the distinct variable names e references, in order of
// first appearance.
func Variables(e ScalarExpr) []string {
	var out []string
	var walk func(ScalarExpr)
	walk = func(e ScalarExpr) {
		switch x := e.(type) {
		case Variable:
			if !slices.Contains(out, x.Name) {
				out = append(out, x.Name)
			}
		case PropertyLookup:
			walk(x.Subject)
		case Equal:
			walk(x.Left)
			walk(x.Right)
		case Compare:
			walk(x.Left)
			walk(x.Right)
		case Arithmetic:
			walk(x.Left)
			walk(x.Right)
		case LogicAnd:
			walk(x.Left)
			walk(x.Right)
		case LogicOr:
			walk(x.Left)
			walk(x.Right)
		case LogicXor:
			walk(x.Left)
			walk(x.Right)
		case Negate:
			walk(x.Operand)
		case LogicNot:
			walk(x.Operand)
		}
	}
	walk(e)
	return out
}

func displayName(name string) string {
	if IsInternalName(name) {
		return "<anonymous>"
	}
	return name
}
