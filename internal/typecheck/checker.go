// Package typecheck implements Ouroboros's semantic pass: the
// type-returning visitor over internal/ast, the numeric/unit/generic type
// rules of spec.md §4.2, and the scoped diagnostic collection that backs
// both the CLI `check` command and the language server. Grounded on the
// teacher's internal/compiler (a single-pass Expr/Stmt visitor building a
// bytecode.Chunk while walking the same AST shape) but retargeted to
// produce types and diagnostics instead of bytecode.
package typecheck

import (
	"fmt"
	"strings"

	"ouroboros/internal/ast"
	"ouroboros/internal/diag"
	"ouroboros/internal/types"
)

// ContractContext collects the requires/ensures/invariant clauses
// extracted from each function body's leading statements, keyed by
// function name, per spec.md §4.2's contract rule.
type ContractContext map[string][]ast.ContractClause

// Result is what a successful Check returns: the same Program, now
// annotated with inferred types, plus the contract clauses extracted
// along the way.
type Result struct {
	Program   *ast.Program
	Contracts ContractContext
}

// Checker is a type-returning ast.ExprVisitor / ast.StmtVisitor. It is not
// safe for concurrent use.
type Checker struct {
	sink      *diag.Sink
	table     *types.SymbolTable
	contracts ContractContext

	returnTypes []types.TypeNode // stack of enclosing function return types
	sawReturn   []bool           // parallel stack: did the current function body return on some path
	loopDepth   int
}

// NewChecker returns a Checker with a fresh global scope and diagnostic
// sink.
func NewChecker() *Checker {
	return &Checker{
		sink:      diag.NewSink(),
		table:     types.NewSymbolTable(),
		contracts: ContractContext{},
	}
}

// Sink exposes the collected diagnostics, e.g. for an LSP server to
// publish without re-running Check.
func (c *Checker) Sink() *diag.Sink { return c.sink }

// Check type-checks prog, registering every top-level function and class
// first so forward references resolve, then walking each statement.
// Per spec.md §4.2's contract: returns the enriched program, or a
// TypeCheckException wrapping every collected diagnostic when at least
// one is an error.
func (c *Checker) Check(prog *ast.Program) (*Result, error) {
	c.registerTopLevel(prog.Statements)
	for _, s := range prog.Statements {
		s.Accept(c)
	}
	if c.sink.HasErrors() {
		return nil, diag.NewTypeCheckException(c.sink.Diagnostics())
	}
	return &Result{Program: prog, Contracts: c.contracts}, nil
}

func (c *Checker) registerTopLevel(stmts []ast.Stmt) {
	for _, s := range stmts {
		switch fn := s.(type) {
		case *ast.FunctionDecl:
			c.defineFunction(fn)
		case *ast.ClassDecl:
			c.table.Define(&types.Symbol{Name: fn.Name, TypeName: types.NewSimple(fn.Name, types.KindObject)})
		case *ast.TypeAliasDecl:
			c.table.DefineTypeAlias(fn.Name, fn.Target)
		}
	}
}

func (c *Checker) defineFunction(fn *ast.FunctionDecl) {
	paramTypes := make([]types.TypeNode, len(fn.Params))
	paramNames := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = c.paramTypeOrVar(p, fn.TypeParams)
		paramNames[i] = p.Name
	}
	ret := fn.ReturnType
	if ret == nil {
		ret = types.Void
	}
	ret = c.resolveAlias(ret)
	var ft types.TypeNode
	if fn.IsGeneric() {
		ft = types.NewGenericFunctionType(fn.TypeParams, paramTypes, ret)
	} else {
		ft = types.NewFunctionType(paramTypes, ret)
	}
	fs := &types.FunctionSymbol{
		Symbol:     types.Symbol{Name: fn.Name, TypeName: ft},
		ReturnType: ret,
		ParamTypes: paramTypes,
		ParamNames: paramNames,
	}
	if err := c.table.DefineFunction(fs); err != nil {
		c.errorf(fn.Pos(), "%s", err.Error())
	}
}

// paramTypeOrVar turns an unannotated generic parameter into a
// TypeVariable named after its declared type-parameter slot; a concretely
// annotated parameter is used as-is, resolved through any registered type
// alias first.
func (c *Checker) paramTypeOrVar(p ast.Param, typeParams []string) types.TypeNode {
	if p.Type != nil {
		for _, tp := range typeParams {
			if p.Type.Name() == tp {
				return types.NewTypeVariable(tp)
			}
		}
		return c.resolveAlias(p.Type)
	}
	return types.Object
}

// resolveAlias substitutes a registered type alias's target for a bare
// object-kind type name, so `type Meters = double` lets a declared type of
// `Meters` check the way `double` would. Anything else passes through
// unchanged.
func (c *Checker) resolveAlias(t types.TypeNode) types.TypeNode {
	if t == nil {
		return t
	}
	simple, ok := t.(*types.Simple)
	if !ok || simple.Kind != types.KindObject {
		return t
	}
	if target, ok := c.table.LookupTypeAlias(simple.Name()); ok {
		return target
	}
	return t
}

func (c *Checker) errorf(pos ast.Position, format string, args ...interface{}) {
	c.sink.Report(diag.Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Line:     pos.Line,
		Column:   pos.Column,
		File:     pos.File,
		Severity: diag.Error,
	})
}

func (c *Checker) errorWithSuggestion(pos ast.Position, name, message string) {
	suggestion := ""
	if s := suggestClosest(name, c.table.InScopeNames()); s != "" {
		suggestion = fmt.Sprintf("did you mean %q?", s)
	}
	c.sink.Report(diag.Diagnostic{
		Message:    message,
		Line:       pos.Line,
		Column:     pos.Column,
		File:       pos.File,
		Severity:   diag.Error,
		Suggestion: suggestion,
	})
}

func (c *Checker) check(e ast.Expr) types.TypeNode {
	t := e.Accept(c)
	ast.SetType(e, t)
	return t
}

// ---- expressions ----

func (c *Checker) VisitLiteralExpr(e *ast.Literal) types.TypeNode {
	switch e.Value.(type) {
	case int64, int:
		return types.Int
	case int32:
		return types.Long
	case float32:
		return types.Float
	case float64:
		return types.Double
	case string:
		return types.StringT
	case ast.Decimal:
		return types.Decimal
	case ast.Char:
		return types.NewSimple("char", types.KindNone)
	case bool:
		return types.Bool
	case nil:
		return types.Null
	default:
		return types.Object
	}
}

func (c *Checker) VisitUnitLiteralExpr(e *ast.UnitLiteral) types.TypeNode {
	return types.NewUnitType(types.Double, e.Unit)
}

func (c *Checker) VisitVariableExpr(e *ast.Variable) types.TypeNode {
	sym, ok := c.table.Lookup(e.Name)
	if ok {
		return sym.TypeName
	}
	if alias, ok := c.table.LookupModuleAlias(e.Name); ok {
		return types.NewSimple(alias.Path, types.KindObject)
	}
	c.errorWithSuggestion(e.Pos(), e.Name, fmt.Sprintf("undefined identifier %q", e.Name))
	return types.Object
}

func (c *Checker) VisitAssignExpr(e *ast.Assign) types.TypeNode {
	rhs := c.check(e.Value)
	sym, ok := c.table.Lookup(e.Name)
	if !ok {
		c.errorWithSuggestion(e.Pos(), e.Name, fmt.Sprintf("undefined identifier %q", e.Name))
		return rhs
	}
	if !assignable(sym.TypeName, rhs) {
		c.errorf(e.Pos(), "cannot assign %s to %s (declared as %s)", rhs, e.Name, sym.TypeName)
	}
	return sym.TypeName
}

func (c *Checker) VisitBinaryExpr(e *ast.Binary) types.TypeNode {
	lt := c.check(e.Left)
	rt := c.check(e.Right)
	switch e.Operator {
	case "+", "-", "*", "/", "%", "**":
		return c.checkArithmetic(e, lt, rt)
	case "==", "!=", "<", ">", "<=", ">=":
		if !comparable(lt, rt) {
			c.errorf(e.Pos(), "%s and %s are not comparable", lt, rt)
		}
		return types.Bool
	default:
		c.errorf(e.Pos(), "unknown binary operator %q", e.Operator)
		return types.Object
	}
}

func (c *Checker) checkArithmetic(e *ast.Binary, lt, rt types.TypeNode) types.TypeNode {
	if e.Operator == "+" && (sameSimple(lt, types.StringT) || sameSimple(rt, types.StringT)) {
		return types.StringT
	}
	if lu, lok := lt.(*types.UnitType); lok {
		if ru, rok := rt.(*types.UnitType); rok {
			return c.checkUnitArithmetic(e, lu, ru)
		}
	}
	if types.IsNumeric(lt) && types.IsNumeric(rt) {
		w := types.Widen(lt, rt)
		if w == nil {
			c.errorf(e.Pos(), "cannot apply %q to %s and %s", e.Operator, lt, rt)
			return types.Object
		}
		return w
	}
	c.errorf(e.Pos(), "cannot apply %q to %s and %s", e.Operator, lt, rt)
	return types.Object
}

func (c *Checker) checkUnitArithmetic(e *ast.Binary, lu, ru *types.UnitType) types.TypeNode {
	switch e.Operator {
	case "*":
		return types.NewUnitType(types.Widen(lu.BaseType, ru.BaseType), types.UnitMul(lu.Unit, ru.Unit))
	case "/":
		return types.NewUnitType(types.Widen(lu.BaseType, ru.BaseType), types.UnitDiv(lu.Unit, ru.Unit))
	case "+", "-":
		if lu.Unit != ru.Unit {
			c.errorf(e.Pos(), "mismatched units %q and %q for %q", lu.Unit, ru.Unit, e.Operator)
			return lu
		}
		return lu
	default:
		c.errorf(e.Pos(), "unit operands do not support %q", e.Operator)
		return lu
	}
}

func (c *Checker) VisitUnaryExpr(e *ast.Unary) types.TypeNode {
	t := c.check(e.Operand)
	switch e.Operator {
	case "!":
		if !sameSimple(t, types.Bool) {
			c.errorf(e.Pos(), "operator %q requires bool, got %s", e.Operator, t)
		}
		return types.Bool
	case "+", "-", "++", "--":
		if !types.IsNumeric(t) {
			c.errorf(e.Pos(), "operator %q requires a numeric operand, got %s", e.Operator, t)
		}
		return t
	default:
		c.errorf(e.Pos(), "unknown unary operator %q", e.Operator)
		return t
	}
}

func (c *Checker) VisitLogicalExpr(e *ast.Logical) types.TypeNode {
	lt := c.check(e.Left)
	rt := c.check(e.Right)
	if !sameSimple(lt, types.Bool) || !sameSimple(rt, types.Bool) {
		c.errorf(e.Pos(), "operator %q requires bool operands, got %s and %s", e.Operator, lt, rt)
	}
	return types.Bool
}

func (c *Checker) VisitCallExpr(e *ast.Call) types.TypeNode {
	if name, ok := builtinName(e.Callee); ok {
		return c.checkBuiltinCall(e, name)
	}
	calleeType := c.check(e.Callee)
	if gft, ok := calleeType.(*types.GenericFunctionType); ok {
		return c.checkGenericCall(e, gft)
	}
	ft, ok := calleeType.(*types.FunctionType)
	if !ok {
		c.errorf(e.Pos(), "%s is not callable", calleeType)
		return types.Object
	}
	argTypes := c.checkArgs(e.Args)
	if len(argTypes) != ft.Arity() {
		c.errorf(e.Pos(), "%s: expected %d argument(s), got %d", c.describeCallee(e.Callee, ft), ft.Arity(), len(argTypes))
		return ft.Return
	}
	for i, at := range argTypes {
		if !assignable(ft.Params[i], at) {
			c.errorf(e.Args[i].Pos(), "argument %d: cannot use %s as %s", i+1, at, ft.Params[i])
		}
	}
	return ft.Return
}

// describeCallee renders an arity-mismatch diagnostic with the callee's
// declared parameter names when the callee is a named function looked up
// via the function-symbol index, falling back to its bare type string
// (e.g. for a lambda stored in a variable) otherwise.
func (c *Checker) describeCallee(callee ast.Expr, ft *types.FunctionType) string {
	v, ok := callee.(*ast.Variable)
	if !ok {
		return ft.String()
	}
	fs, ok := c.table.LookupFunction(v.Name)
	if !ok || len(fs.ParamNames) != ft.Arity() {
		return fmt.Sprintf("%s(...)", v.Name)
	}
	return fmt.Sprintf("%s(%s)", v.Name, strings.Join(fs.ParamNames, ", "))
}

func (c *Checker) checkGenericCall(e *ast.Call, gft *types.GenericFunctionType) types.TypeNode {
	argTypes := c.checkArgs(e.Args)
	if len(e.TypeArgs) == len(gft.TypeParams) && len(e.TypeArgs) > 0 {
		subst := substitution{}
		for i, tp := range gft.TypeParams {
			subst[tp] = e.TypeArgs[i]
		}
		inst := instantiate(gft, subst)
		return c.checkInstantiatedCall(e, inst, argTypes)
	}
	subst, ok := unifyCall(gft, argTypes)
	if !ok {
		c.errorf(e.Pos(), "could not infer type arguments for generic call")
		return types.Object
	}
	inst := instantiate(gft, subst)
	return c.checkInstantiatedCall(e, inst, argTypes)
}

func (c *Checker) checkInstantiatedCall(e *ast.Call, ft *types.FunctionType, argTypes []types.TypeNode) types.TypeNode {
	if len(argTypes) != ft.Arity() {
		c.errorf(e.Pos(), "expected %d argument(s), got %d", ft.Arity(), len(argTypes))
		return ft.Return
	}
	for i, at := range argTypes {
		if !assignable(ft.Params[i], at) {
			c.errorf(e.Args[i].Pos(), "argument %d: cannot use %s as %s", i+1, at, ft.Params[i])
		}
	}
	return ft.Return
}

func (c *Checker) checkArgs(args []ast.Expr) []types.TypeNode {
	out := make([]types.TypeNode, len(args))
	for i, a := range args {
		out[i] = c.check(a)
	}
	return out
}

func builtinName(callee ast.Expr) (string, bool) {
	v, ok := callee.(*ast.Variable)
	if !ok {
		return "", false
	}
	switch v.Name {
	case "print", "println", "len", "length":
		return v.Name, true
	}
	return "", false
}

func (c *Checker) checkBuiltinCall(e *ast.Call, name string) types.TypeNode {
	argTypes := c.checkArgs(e.Args)
	switch name {
	case "print", "println":
		return types.Void
	case "len", "length":
		if len(argTypes) != 1 {
			c.errorf(e.Pos(), "%s expects exactly one argument", name)
			return types.Int
		}
		t := argTypes[0]
		if sameSimple(t, types.StringT) || t.IsArray() {
			return types.Int
		}
		c.errorf(e.Pos(), "%s requires a string or array, got %s", name, t)
		return types.Int
	}
	return types.Object
}

func (c *Checker) VisitIfExpr(e *ast.If) types.TypeNode {
	cond := c.check(e.Cond)
	if !sameSimple(cond, types.Bool) {
		c.errorf(e.Pos(), "if condition must be bool, got %s", cond)
	}
	thenType := c.check(e.Then)
	if e.Else == nil {
		return thenType
	}
	elseType := c.check(e.Else)
	if w := types.Widen(thenType, elseType); w != nil {
		return w
	}
	if types.Equal(thenType, elseType) {
		return thenType
	}
	return types.Object
}

func (c *Checker) VisitBlockExpr(e *ast.Block) types.TypeNode {
	c.table.Push()
	defer c.table.Pop()
	var last types.TypeNode = types.Void
	for _, s := range e.Stmts {
		s.Accept(c)
		if es, ok := s.(*ast.ExpressionStmt); ok {
			last = es.Expr.Type()
		}
	}
	return last
}

func (c *Checker) VisitArrayExpr(e *ast.Array) types.TypeNode {
	if len(e.Elements) == 0 {
		return types.NewArrayType(types.Object)
	}
	elemType := c.check(e.Elements[0])
	for _, el := range e.Elements[1:] {
		t := c.check(el)
		elemType = commonType(elemType, t)
	}
	return types.NewArrayType(elemType)
}

func commonType(a, b types.TypeNode) types.TypeNode {
	if types.Equal(a, b) {
		return a
	}
	if w := types.Widen(a, b); w != nil {
		return w
	}
	return types.Object
}

func (c *Checker) VisitMapExpr(e *ast.Map) types.TypeNode {
	for i := range e.Keys {
		c.check(e.Keys[i])
		c.check(e.Values[i])
	}
	return types.Object
}

func (c *Checker) VisitIndexExpr(e *ast.Index) types.TypeNode {
	objType := c.check(e.Object)
	c.check(e.Idx)
	if arr, ok := objType.(*types.ArrayType); ok {
		return arr.Element
	}
	if sameSimple(objType, types.StringT) {
		return types.NewSimple("char", types.KindNone)
	}
	return types.Object
}

func (c *Checker) VisitSetIndexExpr(e *ast.SetIndex) types.TypeNode {
	objType := c.check(e.Object)
	c.check(e.Idx)
	valType := c.check(e.Value)
	if arr, ok := objType.(*types.ArrayType); ok {
		if !assignable(arr.Element, valType) {
			c.errorf(e.Pos(), "cannot assign %s into array of %s", valType, arr.Element)
		}
	}
	return valType
}

func (c *Checker) VisitPropertyExpr(e *ast.Property) types.TypeNode {
	objType := c.check(e.Object)
	if e.Name == "Length" || e.Name == "length" {
		if sameSimple(objType, types.StringT) || objType.IsArray() {
			return types.Int
		}
	}
	return types.NewSimple(objType.String()+"."+e.Name, types.KindObject)
}

func (c *Checker) VisitLambdaExpr(e *ast.Lambda) types.TypeNode {
	c.table.Push()
	defer c.table.Pop()
	paramTypes := make([]types.TypeNode, len(e.Params))
	for i, p := range e.Params {
		var pt types.TypeNode = types.Object
		if i < len(e.ParamTypes) && e.ParamTypes[i] != nil {
			pt = e.ParamTypes[i]
		}
		paramTypes[i] = pt
		c.table.Define(&types.Symbol{Name: p, TypeName: pt})
	}
	bodyType := c.check(e.Body)
	ret := e.ReturnType
	if ret == nil {
		ret = bodyType
	}
	return types.NewFunctionType(paramTypes, ret)
}

func (c *Checker) VisitInterpolationExpr(e *ast.Interpolation) types.TypeNode {
	for _, p := range e.Parts {
		c.check(p)
	}
	return types.StringT
}

// ---- statements ----

func (c *Checker) VisitExpressionStmt(s *ast.ExpressionStmt) { c.check(s.Expr) }

func (c *Checker) VisitPrintStmt(s *ast.PrintStmt) { c.check(s.Expr) }

func (c *Checker) VisitVarDecl(s *ast.VarDecl) {
	var initType types.TypeNode
	if s.Init != nil {
		initType = c.check(s.Init)
	}
	declared := c.resolveAlias(s.Declared)
	if declared == nil {
		if initType == nil {
			c.errorf(s.Pos(), "variable %q needs either a declared type or an initializer", s.Name)
			declared = types.Object
		} else {
			declared = initType
		}
	} else if s.IsConst && s.Init == nil {
		c.errorf(s.Pos(), "const %q must have an initializer", s.Name)
	} else if initType != nil && !assignable(declared, initType) {
		c.errorf(s.Pos(), "cannot initialize %s with %s", declared, initType)
	}
	if err := c.table.Define(&types.Symbol{Name: s.Name, TypeName: declared, IsConst: s.IsConst, IsMutable: s.IsMutable}); err != nil {
		c.errorf(s.Pos(), "%s", err.Error())
	}
}

func (c *Checker) VisitAssignmentStmt(s *ast.AssignmentStmt) {
	rhs := c.check(s.Value)
	sym, ok := c.table.Lookup(s.Name)
	if !ok {
		c.errorWithSuggestion(s.Pos(), s.Name, fmt.Sprintf("undefined identifier %q", s.Name))
		return
	}
	if sym.IsConst {
		c.errorf(s.Pos(), "cannot assign to const %q", s.Name)
	}
	if !assignable(sym.TypeName, rhs) {
		c.errorf(s.Pos(), "cannot assign %s to %s (declared as %s)", rhs, s.Name, sym.TypeName)
	}
}

func (c *Checker) VisitFunctionDecl(s *ast.FunctionDecl) {
	c.table.Push()
	defer c.table.Pop()

	for i, p := range s.Params {
		pt := c.paramTypeOrVar(p, s.TypeParams)
		c.table.Define(&types.Symbol{Name: p.Name, TypeName: pt})
		_ = i
	}

	ret := s.ReturnType
	if ret == nil {
		ret = types.Void
	}
	c.returnTypes = append(c.returnTypes, ret)
	c.sawReturn = append(c.sawReturn, false)

	c.extractContracts(s)

	for _, stmt := range s.Body {
		stmt.Accept(c)
	}

	if !sameSimple(ret, types.Void) && !terminatesAllPaths(s.Body) {
		c.errorf(s.Pos(), "function %q must return %s on every path", s.Name, ret)
	}

	c.returnTypes = c.returnTypes[:len(c.returnTypes)-1]
	c.sawReturn = c.sawReturn[:len(c.sawReturn)-1]
}

// extractContracts pulls leading requires/ensures/invariant clauses into
// the ContractContext, per spec.md §4.2; each clause expression must be
// bool.
func (c *Checker) extractContracts(s *ast.FunctionDecl) {
	if len(s.Contracts) == 0 {
		return
	}
	for _, clause := range s.Contracts {
		t := c.check(clause.Expr)
		if !sameSimple(t, types.Bool) {
			c.errorf(clause.Pos, "contract clause must evaluate to bool, got %s", t)
		}
	}
	c.contracts[s.Name] = s.Contracts
}

// terminatesAllPaths is the "simple sufficient check" spec.md §4.2
// describes: any return in the body, or both branches of a terminal
// if-else returning.
func terminatesAllPaths(body []ast.Stmt) bool {
	for _, s := range body {
		switch st := s.(type) {
		case *ast.ReturnStmt:
			return true
		case *ast.IfStmt:
			if len(st.Else) > 0 && terminatesAllPaths(st.Then) && terminatesAllPaths(st.Else) {
				return true
			}
		case *ast.BlockStmt:
			if terminatesAllPaths(st.Stmts) {
				return true
			}
		case *ast.ThrowStmt:
			return true
		}
	}
	return false
}

func (c *Checker) VisitReturnStmt(s *ast.ReturnStmt) {
	var actual types.TypeNode = types.Void
	if s.Value != nil {
		actual = c.check(s.Value)
	}
	if len(c.returnTypes) == 0 {
		c.errorf(s.Pos(), "return outside of a function")
		return
	}
	expected := c.returnTypes[len(c.returnTypes)-1]
	if !assignable(expected, actual) {
		c.errorf(s.Pos(), "return type %s does not match declared %s", actual, expected)
	}
	c.sawReturn[len(c.sawReturn)-1] = true
}

func (c *Checker) VisitIfStmt(s *ast.IfStmt) {
	cond := c.check(s.Cond)
	if !sameSimple(cond, types.Bool) {
		c.errorf(s.Pos(), "if condition must be bool, got %s", cond)
	}
	c.table.Push()
	for _, st := range s.Then {
		st.Accept(c)
	}
	c.table.Pop()
	if s.Else != nil {
		c.table.Push()
		for _, st := range s.Else {
			st.Accept(c)
		}
		c.table.Pop()
	}
}

func (c *Checker) checkLoopCondition(pos ast.Position, cond ast.Expr) {
	if cond == nil {
		return
	}
	t := c.check(cond)
	if !sameSimple(t, types.Bool) {
		c.errorf(pos, "loop condition must be bool, got %s", t)
	}
}

func (c *Checker) VisitWhileStmt(s *ast.WhileStmt) {
	c.checkLoopCondition(s.Pos(), s.Cond)
	c.loopDepth++
	c.table.Push()
	for _, st := range s.Body {
		st.Accept(c)
	}
	c.table.Pop()
	c.loopDepth--
}

func (c *Checker) VisitDoWhileStmt(s *ast.DoWhileStmt) {
	c.loopDepth++
	c.table.Push()
	for _, st := range s.Body {
		st.Accept(c)
	}
	c.table.Pop()
	c.loopDepth--
	c.checkLoopCondition(s.Pos(), s.Cond)
}

func (c *Checker) VisitForStmt(s *ast.ForStmt) {
	c.table.Push()
	defer c.table.Pop()
	if s.Init != nil {
		s.Init.Accept(c)
	}
	c.checkLoopCondition(s.Pos(), s.Cond)
	c.loopDepth++
	for _, st := range s.Body {
		st.Accept(c)
	}
	c.loopDepth--
	if s.Update != nil {
		s.Update.Accept(c)
	}
}

func (c *Checker) VisitForInStmt(s *ast.ForInStmt) {
	collType := c.check(s.Collection)
	c.table.Push()
	defer c.table.Pop()
	var elemType types.TypeNode = types.Object
	if arr, ok := collType.(*types.ArrayType); ok {
		elemType = arr.Element
	}
	c.table.Define(&types.Symbol{Name: s.Variable, TypeName: elemType})
	c.loopDepth++
	for _, st := range s.Body {
		st.Accept(c)
	}
	c.loopDepth--
}

func (c *Checker) VisitBreakStmt(s *ast.BreakStmt) {
	if c.loopDepth == 0 {
		c.errorf(s.Pos(), "break outside a loop")
	}
}

func (c *Checker) VisitContinueStmt(s *ast.ContinueStmt) {
	if c.loopDepth == 0 {
		c.errorf(s.Pos(), "continue outside a loop")
	}
}

func (c *Checker) VisitImportStmt(s *ast.ImportStmt) {
	alias := s.Alias
	if alias == "" {
		alias = s.Path
	}
	c.table.DefineModuleAlias(types.ModuleAlias{Name: alias, Path: s.Path, Version: s.Version})
}

// VisitTypeAliasDecl is also reached directly (not just via
// registerTopLevel's forward-reference pass) so re-running it here is a
// harmless overwrite with the same value, matching how FunctionDecl and
// ClassDecl are both pre-registered and walked.
func (c *Checker) VisitTypeAliasDecl(s *ast.TypeAliasDecl) {
	c.table.DefineTypeAlias(s.Name, s.Target)
}

func (c *Checker) VisitClassDecl(s *ast.ClassDecl) {
	c.table.Push()
	defer c.table.Pop()
	for _, f := range s.Fields {
		c.table.Define(&types.Symbol{Name: f.Name, TypeName: f.Type})
	}
	for _, m := range s.Methods {
		m.Accept(c)
	}
}

func (c *Checker) VisitTryStmt(s *ast.TryStmt) {
	c.table.Push()
	for _, st := range s.TryBlock {
		st.Accept(c)
	}
	c.table.Pop()

	c.table.Push()
	if s.CatchVar != "" {
		ct := s.CatchType
		if ct == nil {
			ct = types.Object
		}
		c.table.Define(&types.Symbol{Name: s.CatchVar, TypeName: ct})
	}
	for _, st := range s.CatchBlock {
		st.Accept(c)
	}
	c.table.Pop()

	if s.FinallyBlock != nil {
		c.table.Push()
		for _, st := range s.FinallyBlock {
			st.Accept(c)
		}
		c.table.Pop()
	}
}

func (c *Checker) VisitThrowStmt(s *ast.ThrowStmt) { c.check(s.Value) }

func (c *Checker) VisitMatchStmt(s *ast.MatchStmt) {
	c.check(s.Value)
	for _, cs := range s.Cases {
		c.table.Push()
		if cs.Pattern != nil {
			c.check(cs.Pattern)
		}
		for _, st := range cs.Body {
			st.Accept(c)
		}
		c.table.Pop()
	}
}

func (c *Checker) VisitBlockStmt(s *ast.BlockStmt) {
	c.table.Push()
	defer c.table.Pop()
	for _, st := range s.Stmts {
		st.Accept(c)
	}
}

// ---- compatibility helpers ----

func sameSimple(t types.TypeNode, want *types.Simple) bool {
	s, ok := t.(*types.Simple)
	return ok && s.Kind == want.Kind
}

// comparable implements spec.md §4.2's comparison-operand rule: same
// name, both numeric, or null against a nullable type.
func comparable(a, b types.TypeNode) bool {
	if types.Equal(a, b) {
		return true
	}
	if types.IsNumeric(a) && types.IsNumeric(b) {
		return true
	}
	if sameSimple(a, types.Null) && b.IsNullable() {
		return true
	}
	if sameSimple(b, types.Null) && a.IsNullable() {
		return true
	}
	return false
}

// assignable implements spec.md §4.2's assignment-compatibility rule:
// identical names, numeric widening only (narrowing the other direction
// is rejected), null into a nullable, or any non-null type into object.
func assignable(declared, actual types.TypeNode) bool {
	if declared == nil || actual == nil {
		return true
	}
	if types.Equal(declared, actual) {
		return true
	}
	if sameSimple(actual, types.Null) {
		return declared.IsNullable()
	}
	if sameSimple(declared, types.Object) {
		return true
	}
	if types.IsNumeric(declared) && types.IsNumeric(actual) {
		w := types.Widen(declared, actual)
		return w != nil && w.Name() == declared.Name()
	}
	return false
}
