package bytecode

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// ConstantTag discriminates the tagged constant-pool value per spec.md §3.
type ConstantTag int

const (
	ConstInt ConstantTag = iota
	ConstLong
	ConstDouble
	ConstFloat
	ConstDecimal
	ConstString
	ConstChar
	ConstBool
	ConstNull
)

// Constant is one de-duplicated constant-pool entry.
type Constant struct {
	Tag     ConstantTag
	Int     int64
	Double  float64
	Decimal string // arbitrary-precision textual representation
	Str     string
	Char    rune
	Bool    bool
}

// Equal reports structural equality, the dedup key add_constant uses.
func (c Constant) Equal(o Constant) bool {
	if c.Tag != o.Tag {
		return false
	}
	switch c.Tag {
	case ConstInt, ConstLong:
		return c.Int == o.Int
	case ConstDouble, ConstFloat:
		return c.Double == o.Double
	case ConstDecimal:
		return c.Decimal == o.Decimal
	case ConstString:
		return c.Str == o.Str
	case ConstChar:
		return c.Char == o.Char
	case ConstBool:
		return c.Bool == o.Bool
	case ConstNull:
		return true
	}
	return false
}

// FunctionDescriptor is one entry of the function table, per spec.md §6.
type FunctionDescriptor struct {
	Name       string
	Start      int
	End        int
	LocalCount int
	ParamCount int
	IsAsync    bool
	IsGenerator bool
}

// Field is a class/struct/interface/enum/component member descriptor.
type Field struct {
	Name string
	Type string
}

// Method is a member function descriptor, pointing into the shared
// function table by name.
type Method struct {
	Name          string
	FunctionIndex int
}

type ClassDescriptor struct {
	Name    string
	Super   string
	Fields  []Field
	Methods []Method
}

type InterfaceDescriptor struct {
	Name    string
	Methods []Method
}

type StructDescriptor struct {
	Name   string
	Fields []Field
}

type EnumDescriptor struct {
	Name    string
	Members []string
}

type ComponentDescriptor struct {
	Name   string
	Fields []Field
}

type SystemDescriptor struct {
	Name    string
	Reads   []string
	Writes  []string
	Methods []Method
}

type EntityDescriptor struct {
	Name       string
	Components []string
}

// ExceptionHandler is one entry of the exception-handler table, per
// spec.md §6.
type ExceptionHandler struct {
	TryStart     int
	TryEnd       int
	HandlerStart int
	CatchStart   int
	TypeName     string
	FilterStart  int
}

// Bytecode is the builder's output and the optimizer's input/output: the
// instruction stream, the de-duplicated constant pool, and every
// descriptor table named in spec.md §3/§6.
type Bytecode struct {
	ID uuid.UUID

	Code      []byte
	Constants []Constant

	Functions  []FunctionDescriptor
	Classes    []ClassDescriptor
	Interfaces []InterfaceDescriptor
	Structs    []StructDescriptor
	Enums      []EnumDescriptor
	Components []ComponentDescriptor
	Systems    []SystemDescriptor
	Entities   []EntityDescriptor

	ExceptionHandlers []ExceptionHandler
}

// New returns an empty Bytecode container with a fresh correlation ID,
// letting the LSP server (SPEC_FULL.md's domain-stack section) track
// diagnostics against a specific compiled artifact across edits.
func New() *Bytecode {
	return &Bytecode{ID: uuid.New()}
}

// Clone copies the container for a pass to rewrite: Code, the constant pool
// (spec.md §4.4: "copied verbatim") and every descriptor table get their own
// backing arrays, so appending to or overwriting any of them in the clone
// never touches the original. Nested slices inside descriptors are shared.
func (b *Bytecode) Clone() *Bytecode {
	out := *b
	out.Code = append([]byte(nil), b.Code...)
	out.Constants = append([]Constant(nil), b.Constants...)
	out.Functions = append([]FunctionDescriptor(nil), b.Functions...)
	out.Classes = append([]ClassDescriptor(nil), b.Classes...)
	out.Interfaces = append([]InterfaceDescriptor(nil), b.Interfaces...)
	out.Structs = append([]StructDescriptor(nil), b.Structs...)
	out.Enums = append([]EnumDescriptor(nil), b.Enums...)
	out.Components = append([]ComponentDescriptor(nil), b.Components...)
	out.Systems = append([]SystemDescriptor(nil), b.Systems...)
	out.Entities = append([]EntityDescriptor(nil), b.Entities...)
	out.ExceptionHandlers = append([]ExceptionHandler(nil), b.ExceptionHandlers...)
	return &out
}

// AddConstant returns the index of a structurally-equal existing entry, or
// appends and returns the new index, per spec.md §3/§8's dedup invariant.
func (b *Bytecode) AddConstant(c Constant) int {
	for i, existing := range b.Constants {
		if existing.Equal(c) {
			return i
		}
	}
	b.Constants = append(b.Constants, c)
	return len(b.Constants) - 1
}

// ReadOperand decodes the 4-byte little-endian signed integer operand at
// offset off (the byte just past the opcode), per spec.md §3.
func ReadOperand(code []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(code[off : off+4]))
}

// WriteOperand overwrites the 4-byte operand at offset off in place.
func WriteOperand(code []byte, off int, value int32) {
	binary.LittleEndian.PutUint32(code[off:off+4], uint32(value))
}

// InstructionLen returns the total byte length (opcode + operand) of the
// instruction at offset ip, including NativeInstruction/RawBytes's
// length-prefixed raw payload. ok is false for a truncated/malformed
// instruction, letting a pass abort per spec.md §4.4's failure semantics.
func InstructionLen(code []byte, ip int) (length int, ok bool) {
	if ip < 0 || ip >= len(code) {
		return 0, false
	}
	op := OpCode(code[ip])
	switch op {
	case NativeInstruction, RawBytes:
		if ip+5 > len(code) {
			return 0, false
		}
		payloadLen := int(ReadOperand(code, ip+1))
		if payloadLen < 0 || ip+5+payloadLen > len(code) {
			return 0, false
		}
		return 5 + payloadLen, true
	default:
		n := OperandSize(op)
		if ip+1+n > len(code) {
			return 0, false
		}
		return 1 + n, true
	}
}
