// Package types implements Ouroboros's type system: the TypeNode lattice,
// numeric promotion rules, and unit-of-measure algebra used by internal/typecheck.
package types

import (
	"fmt"
	"strings"
)

// Kind distinguishes the numeric family a base type belongs to, used by the
// arithmetic promotion lattice (byte < short < int < long, float < double).
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindString
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindDecimal
	KindVoid
	KindNull
	KindObject
)

var kindRank = map[Kind]int{
	KindByte:  0,
	KindShort: 1,
	KindInt:   2,
	KindLong:  3,
}

var kindNames = map[Kind]string{
	KindBool:   "bool",
	KindString: "string",
	KindByte:   "byte",
	KindShort:  "short",
	KindInt:    "int",
	KindLong:   "long",
	KindFloat:  "float",
	KindDouble: "double",
	KindDecimal: "decimal",
	KindVoid:   "void",
	KindNull:   "null",
	KindObject: "object",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "none"
}

func KindFromName(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return KindNone
}

func (k Kind) IsIntegerFamily() bool {
	_, ok := kindRank[k]
	return ok
}

func (k Kind) IsFloatFamily() bool {
	return k == KindFloat || k == KindDouble
}

// IsDecimal reports whether k is the arbitrary-precision decimal family,
// kept distinct from IsFloatFamily since decimal arithmetic folds through
// math/big rather than float64.
func (k Kind) IsDecimal() bool {
	return k == KindDecimal
}

func (k Kind) IsNumeric() bool {
	return k.IsIntegerFamily() || k.IsFloatFamily() || k.IsDecimal()
}

// TypeNode is the polymorphic base of every type the checker manipulates.
// Concrete variants embed Base and add their own fields, following the
// teacher's Expr/Stmt Accept-visitor shape but for the type lattice instead
// of the AST.
type TypeNode interface {
	Name() string
	IsArray() bool
	ArrayRank() int
	IsNullable() bool
	IsPointer() bool
	String() string
}

// Base is the common TypeNode implementation embedded by every variant.
type Base struct {
	name       string
	isArray    bool
	arrayRank  int
	isNullable bool
	isPointer  bool
}

func NewBase(name string) Base { return Base{name: name} }

func (b Base) Name() string       { return b.name }
func (b Base) IsArray() bool      { return b.isArray }
func (b Base) ArrayRank() int     { return b.arrayRank }
func (b Base) IsNullable() bool   { return b.isNullable }
func (b Base) IsPointer() bool    { return b.isPointer }
func (b Base) String() string     { return b.name }

func (b Base) Nullable() Base {
	b.isNullable = true
	return b
}

func (b Base) Pointer() Base {
	b.isPointer = true
	return b
}

// Simple is a non-composite named type: "int", "bool", "string", "object", ...
type Simple struct {
	Base
	Kind Kind
}

func NewSimple(name string, kind Kind) *Simple {
	return &Simple{Base: NewBase(name), Kind: kind}
}

// FunctionType carries a parameter-type sequence and a return type. Arity is
// len(Params); spec.md's invariant that arity equals parameter count is
// therefore structural, not a field to keep in sync.
type FunctionType struct {
	Base
	Params []TypeNode
	Return TypeNode
}

func NewFunctionType(params []TypeNode, ret TypeNode) *FunctionType {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.String()
	}
	return &FunctionType{
		Base:   NewBase(fmt.Sprintf("fn(%s)->%s", strings.Join(names, ","), ret.String())),
		Params: params,
		Return: ret,
	}
}

func (f *FunctionType) Arity() int { return len(f.Params) }

// GenericFunctionType extends FunctionType with an ordered sequence of
// type-parameter names, e.g. `fn identity<T>(x: T) -> T`.
type GenericFunctionType struct {
	FunctionType
	TypeParams []string
}

func NewGenericFunctionType(typeParams []string, params []TypeNode, ret TypeNode) *GenericFunctionType {
	ft := NewFunctionType(params, ret)
	return &GenericFunctionType{FunctionType: *ft, TypeParams: typeParams}
}

// ArrayType carries an element type. Invariant: Element must itself be a
// valid TypeNode (enforced by construction, never nil).
type ArrayType struct {
	Base
	Element TypeNode
}

func NewArrayType(element TypeNode) *ArrayType {
	b := NewBase(element.String() + "[]")
	b.isArray = true
	b.arrayRank = 1
	if inner, ok := element.(*ArrayType); ok {
		b.arrayRank = inner.ArrayRank() + 1
	}
	return &ArrayType{Base: b, Element: element}
}

// UnitType carries a base numeric type and a unit-algebra string such as
// "m", "m²", "m/s", "m·s". Invariant: BaseType must be numeric.
type UnitType struct {
	Base
	BaseType TypeNode
	Unit     string
}

func NewUnitType(base TypeNode, unit string) *UnitType {
	name := fmt.Sprintf("%s[%s]", base.String(), unit)
	return &UnitType{Base: NewBase(name), BaseType: base, Unit: unit}
}

// TypeVariable is a symbolic placeholder used during generic unification.
type TypeVariable struct {
	Base
}

func NewTypeVariable(name string) *TypeVariable {
	return &TypeVariable{Base: NewBase(name)}
}

// GenericType carries a constructor name and an ordered argument list, e.g.
// List<int>, Map<string, User>.
type GenericType struct {
	Base
	Constructor string
	Args        []TypeNode
}

func NewGenericType(constructor string, args []TypeNode) *GenericType {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.String()
	}
	name := fmt.Sprintf("%s<%s>", constructor, strings.Join(names, ","))
	return &GenericType{Base: NewBase(name), Constructor: constructor, Args: args}
}

// Well-known simple types shared across the package.
var (
	Bool   = NewSimple("bool", KindBool)
	StringT = NewSimple("string", KindString)
	Byte   = NewSimple("byte", KindByte)
	Short  = NewSimple("short", KindShort)
	Int    = NewSimple("int", KindInt)
	Long   = NewSimple("long", KindLong)
	Float  = NewSimple("float", KindFloat)
	Double  = NewSimple("double", KindDouble)
	Decimal = NewSimple("decimal", KindDecimal)
	Void   = NewSimple("void", KindVoid)
	Null   = NewSimple("null", KindNull)
	Object = NewSimple("object", KindObject)
)

// Equal reports structural equality, used by unification and by the
// compatibility rules in internal/typecheck.
func Equal(a, b TypeNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// IsNumeric reports whether t is a Simple numeric type or a UnitType whose
// base is numeric.
func IsNumeric(t TypeNode) bool {
	switch v := t.(type) {
	case *Simple:
		return v.Kind.IsNumeric()
	case *UnitType:
		return IsNumeric(v.BaseType)
	}
	return false
}

func simpleKind(t TypeNode) Kind {
	switch v := t.(type) {
	case *Simple:
		return v.Kind
	case *UnitType:
		return simpleKind(v.BaseType)
	}
	return KindNone
}

// Widen implements the arithmetic promotion lattice from spec.md §4.2:
// byte < short < int < long, float < double; long and float are incomparable
// and both promote to double. Returns nil if either operand is not numeric.
func Widen(a, b TypeNode) TypeNode {
	ka, kb := simpleKind(a), simpleKind(b)
	if !ka.IsNumeric() || !kb.IsNumeric() {
		return nil
	}
	if ka == kb {
		return a
	}
	if ka.IsDecimal() || kb.IsDecimal() {
		return Decimal
	}
	aFloat, bFloat := ka.IsFloatFamily(), kb.IsFloatFamily()
	switch {
	case aFloat && bFloat:
		if ka == KindDouble || kb == KindDouble {
			return Double
		}
		return Float
	case aFloat && !bFloat:
		if ka == KindFloat && kb != KindLong {
			return Float
		}
		return Double
	case !aFloat && bFloat:
		return Widen(b, a)
	default: // both integer family
		ra, rb := kindRank[ka], kindRank[kb]
		if ra >= rb {
			return a
		}
		return b
	}
}

// UnitMul implements the unit algebra for `*`: u1 * u2, canonicalizing u·u
// to u². If either unit is empty, the non-empty one survives.
func UnitMul(u1, u2 string) string {
	if u1 == "" {
		return u2
	}
	if u2 == "" {
		return u1
	}
	if u1 == u2 {
		return u1 + "²"
	}
	return u1 + "·" + u2
}

// UnitDiv implements the unit algebra for `/`: u1 / u2, cancelling u/u to
// the empty (dimensionless) unit.
func UnitDiv(u1, u2 string) string {
	if u1 == u2 {
		return ""
	}
	if u2 == "" {
		return u1
	}
	if u1 == "" {
		return "1/" + u2
	}
	return u1 + "/" + u2
}
