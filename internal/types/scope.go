package types

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// Symbol is a single binding inside a Scope.
type Symbol struct {
	Name       string
	TypeName   TypeNode
	IsGlobal   bool
	Index      int
	IsConst    bool
	IsMutable  bool
}

// FunctionSymbol is a Symbol specialization carrying return type and
// parameter info, the way the teacher's compiler.Function carries Name,
// Arity and Params alongside a compiled chunk.
type FunctionSymbol struct {
	Symbol
	ReturnType TypeNode
	ParamTypes []TypeNode
	ParamNames []string
}

// Scope is one lexical level of a Scope stack: block, function body, lambda
// body, class/struct/namespace body, or loop body.
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
}

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, symbols: make(map[string]*Symbol)}
}

// Define binds name in this scope only. Redeclaration in the same scope is
// an error per spec.md §4.2 ("Variable declaration... re-declaration in the
// same scope is an error").
func (s *Scope) Define(sym *Symbol) error {
	if _, exists := s.symbols[sym.Name]; exists {
		return fmt.Errorf("%q is already declared in this scope", sym.Name)
	}
	s.symbols[sym.Name] = sym
	return nil
}

// Lookup walks outward through the parent chain.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal checks only this scope, without walking the parent chain.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Names returns every identifier bound directly in this scope, used by the
// Levenshtein "did you mean" suggestion search.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.symbols))
	for n := range s.symbols {
		names = append(names, n)
	}
	return names
}

// SymbolTable is the stack of lexical scopes a Checker walks. The initial
// (global) scope is pushed once at construction and is never popped, per
// spec.md §4.2 ("The initial scope is the global one and is never popped").
type SymbolTable struct {
	global  *Scope
	current *Scope

	// Type aliases and module aliases are process-wide, append-only within a
	// compilation unit per spec.md §5.
	typeAliases   map[string]TypeNode
	moduleAliases map[string]ModuleAlias

	// functions indexes every defined FunctionSymbol by name, alongside its
	// plain Symbol in the scope chain, so callers that need parameter names
	// (not just parameter types) can recover them without re-deriving a
	// FunctionType.
	functions map[string]*FunctionSymbol
}

// ModuleAlias records an `import X as Y [@version]` binding. Version is
// empty when no version pragma was present.
type ModuleAlias struct {
	Name    string
	Path    string
	Version string
}

func NewSymbolTable() *SymbolTable {
	global := newScope(nil)
	return &SymbolTable{
		global:        global,
		current:       global,
		typeAliases:   make(map[string]TypeNode),
		moduleAliases: make(map[string]ModuleAlias),
		functions:     make(map[string]*FunctionSymbol),
	}
}

// Push enters a new nested scope (block, function body, lambda, class body,
// loop body, ...).
func (t *SymbolTable) Push() {
	t.current = newScope(t.current)
}

// Pop leaves the innermost scope. Popping the global scope is a programming
// error in the checker, not a user-facing diagnostic, so it panics.
func (t *SymbolTable) Pop() {
	if t.current == t.global {
		panic("types: cannot pop the global scope")
	}
	t.current = t.current.parent
}

func (t *SymbolTable) Current() *Scope { return t.current }
func (t *SymbolTable) Global() *Scope  { return t.global }

func (t *SymbolTable) Define(sym *Symbol) error {
	return t.current.Define(sym)
}

// DefineFunction binds fs.Symbol in the current scope, the way Define binds
// a plain Symbol, and additionally indexes fs by name so LookupFunction can
// recover its parameter names later, per spec.md §3 ("Functions are
// FunctionSymbol, a subtype with return type and parameter info").
func (t *SymbolTable) DefineFunction(fs *FunctionSymbol) error {
	if err := t.current.Define(&fs.Symbol); err != nil {
		return err
	}
	t.functions[fs.Name] = fs
	return nil
}

// LookupFunction recovers the FunctionSymbol a prior DefineFunction indexed,
// for callers that need parameter names rather than just parameter types
// (e.g. a richer arity-mismatch diagnostic).
func (t *SymbolTable) LookupFunction(name string) (*FunctionSymbol, bool) {
	fs, ok := t.functions[name]
	return fs, ok
}

func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	return t.current.Lookup(name)
}

// InScopeNames collects every identifier visible from the current scope
// outward, for the Levenshtein suggestion search.
func (t *SymbolTable) InScopeNames() []string {
	var names []string
	for scope := t.current; scope != nil; scope = scope.parent {
		names = append(names, scope.Names()...)
	}
	return names
}

func (t *SymbolTable) DefineTypeAlias(name string, ty TypeNode) {
	t.typeAliases[name] = ty
}

func (t *SymbolTable) LookupTypeAlias(name string) (TypeNode, bool) {
	ty, ok := t.typeAliases[name]
	return ty, ok
}

// DefineModuleAlias records alias, unless an existing binding of the same
// name carries a higher semver version, in which case the existing one
// wins. Versionless aliases (the common case) always overwrite, matching
// "last import wins" for unversioned imports while still letting a
// version-pragma'd import protect itself against being shadowed by an
// older one.
func (t *SymbolTable) DefineModuleAlias(alias ModuleAlias) {
	if existing, ok := t.moduleAliases[alias.Name]; ok {
		if existing.Version != "" && alias.Version != "" {
			if semver.Compare(canonicalVersion(existing.Version), canonicalVersion(alias.Version)) > 0 {
				return
			}
		}
	}
	t.moduleAliases[alias.Name] = alias
}

func canonicalVersion(v string) string {
	if v == "" {
		return "v0.0.0"
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}

func (t *SymbolTable) LookupModuleAlias(name string) (ModuleAlias, bool) {
	alias, ok := t.moduleAliases[name]
	return alias, ok
}
