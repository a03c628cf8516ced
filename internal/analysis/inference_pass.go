package analysis

import "github.com/rawklang/rawk/internal/ast"

// runInferencePass is spec §4.4 pass 2: propagate ArgKind across call
// edges recorded by pass 1 until a fixed point is reached. Because the
// lattice (Unknown -> {Scalar, Array}) is finite and monotone, this loop
// is guaranteed to terminate: each iteration either upgrades at least one
// Unknown to a concrete kind or makes no change, and there are only
// finitely many names to upgrade.
func (p *pass) runInferencePass() error {
	for {
		changedAny := false
		for _, c := range p.calls {
			changed, err := p.propagateCall(c)
			if err != nil {
				return err
			}
			if changed {
				changedAny = true
			}
		}
		if !changedAny {
			return nil
		}
	}
}

// propagateCall reconciles one call edge's known argument kinds against
// the callee's parameter kinds in both directions: a caller argument that
// is a bare identifier informs the callee's parameter, and a callee
// parameter already known to be an array informs the caller's argument
// back.
func (p *pass) propagateCall(c *callSite) (bool, error) {
	callee := p.prog.Functions[c.callee]
	if callee == nil {
		// Arity/identity errors for unresolved callees are reported by
		// the parser/resolver stage; nothing to propagate here.
		return false, nil
	}
	callerFn := p.funcOf(c.caller)
	changedAny := false

	for i, arg := range c.args {
		if i >= len(callee.ParamKinds) {
			break // extra args beyond the callee's arity; not this pass's concern
		}
		id, ok := bareIdent(arg)
		argKind := callee.ParamKinds[i]

		if ok {
			// Forward: caller's view of id informs the callee parameter.
			callerKind := p.identKind(callerFn, id)
			if callerKind != ast.Unknown && argKind == ast.Unknown {
				changed, err := p.setParamKind(callee, i, callerKind)
				if err != nil {
					return false, err
				}
				if changed {
					changedAny = true
				}
			}
			// Backward: a concrete callee parameter informs the caller's
			// identifier, if it is itself still Unknown.
			if argKind != ast.Unknown {
				changed, err := p.classifyIdent(callerFn, id, argKind)
				if err != nil {
					return false, err
				}
				if changed {
					changedAny = true
				}
			}
		} else {
			// A non-identifier argument (literal, expression, array
			// element, ...) is always a definite scalar value (spec
			// §4.4): it can never supply an array, so the callee
			// parameter it feeds must be a scalar.
			if argKind == ast.Unknown {
				changed, err := p.setParamKind(callee, i, ast.Scalar)
				if err != nil {
					return false, err
				}
				if changed {
					changedAny = true
				}
			} else if argKind == ast.Array {
				return false, errf(c.pos, "array expected, scalar expression given in call to %v", c.callee)
			}
		}
	}
	return changedAny, nil
}

// identKind returns id's current ArgKind: its parameter slot if id is a
// parameter of fn, otherwise its entry in the global kind table.
func (p *pass) identKind(fn *ast.Function, id *ast.Ident) ast.ArgKind {
	if id.IsParam && fn != nil {
		return fn.ParamKinds[id.ParamIndex]
	}
	return p.kinds.globalKind(id.Name)
}

// setParamKind upgrades callee's i'th parameter kind from Unknown to
// kind, reporting a TypeError on conflict.
func (p *pass) setParamKind(callee *ast.Function, i int, kind ast.ArgKind) (bool, error) {
	cur := callee.ParamKinds[i]
	if cur == kind {
		return false, nil
	}
	if cur == ast.Unknown {
		callee.ParamKinds[i] = kind
		return true, nil
	}
	return false, errf(callee.Body.Pos(), "parameter %d of %v used as both scalar and array", i, callee.Name)
}

// bareIdent reports whether e is exactly a bare identifier reference, the
// only expression shape that can forward an array by reference.
func bareIdent(e ast.Expr) (*ast.Ident, bool) {
	id, ok := e.(*ast.Ident)
	return id, ok
}
