package typecheck

import (
	"ouroboros/internal/types"
)

// substitution maps a type-variable name to the concrete TypeNode it was
// bound to during unification, per spec.md §4.2's generic-inference rule.
type substitution map[string]types.TypeNode

// unify attempts to unify pattern (drawn from a GenericFunctionType's
// declared parameter types, possibly containing TypeVariables) against
// actual (the inferred argument type), extending subst in place. It
// reports ok=false on a mismatch, leaving subst's prior bindings intact
// for the caller to report as a single diagnostic.
func unify(pattern, actual types.TypeNode, subst substitution) bool {
	if tv, isVar := pattern.(*types.TypeVariable); isVar {
		if bound, ok := subst[tv.Name()]; ok {
			return unify(bound, actual, subst)
		}
		subst[tv.Name()] = actual
		return true
	}

	pg, pIsGeneric := pattern.(*types.GenericType)
	ag, aIsGeneric := actual.(*types.GenericType)
	if pIsGeneric && aIsGeneric {
		if pg.Constructor != ag.Constructor || len(pg.Args) != len(ag.Args) {
			return false
		}
		for i := range pg.Args {
			if !unify(pg.Args[i], ag.Args[i], subst) {
				return false
			}
		}
		return true
	}
	if pIsGeneric != aIsGeneric {
		return false
	}

	pa, pIsArray := pattern.(*types.ArrayType)
	aa, aIsArray := actual.(*types.ArrayType)
	if pIsArray && aIsArray {
		return unify(pa.Element, aa.Element, subst)
	}
	if pIsArray != aIsArray {
		return false
	}

	return pattern.Name() == actual.Name()
}

// substitute replaces every TypeVariable occurrence in t with its binding
// in subst, leaving unbound variables as-is; no diagnostic is reported for
// them.
func substitute(t types.TypeNode, subst substitution) types.TypeNode {
	switch v := t.(type) {
	case *types.TypeVariable:
		if bound, ok := subst[v.Name()]; ok {
			return bound
		}
		return t
	case *types.ArrayType:
		return types.NewArrayType(substitute(v.Element, subst))
	case *types.GenericType:
		args := make([]types.TypeNode, len(v.Args))
		for i, a := range v.Args {
			args[i] = substitute(a, subst)
		}
		return types.NewGenericType(v.Constructor, args)
	default:
		return t
	}
}

// instantiate resolves a GenericFunctionType's parameter and return types
// against the substitution produced by unifying each declared parameter
// type with the corresponding argument type.
func instantiate(fn *types.GenericFunctionType, subst substitution) *types.FunctionType {
	params := make([]types.TypeNode, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = substitute(p, subst)
	}
	return types.NewFunctionType(params, substitute(fn.Return, subst))
}

// unifyCall unifies every declared parameter type against the
// corresponding argument type, building one substitution shared across
// all parameters (so `fn pair<T>(a: T, b: T)` requires a and b to agree).
// ok is false on the first mismatch.
func unifyCall(fn *types.GenericFunctionType, argTypes []types.TypeNode) (substitution, bool) {
	subst := substitution{}
	if len(fn.Params) != len(argTypes) {
		return subst, false
	}
	for i, p := range fn.Params {
		if !unify(p, argTypes[i], subst) {
			return subst, false
		}
	}
	return subst, true
}
