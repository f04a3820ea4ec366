// Package bytecode implements the instruction encoding, constant pool, and
// container format spec.md §3/§6 specifies, grounded on the teacher's
// internal/bytecode (Chunk{Code, Constants}, OpCode enum) but reworked to
// spec.md's variable-length operand scheme instead of the teacher's
// fixed single-byte operand.
package bytecode

// OpCode is the byte-0 discriminant of every instruction. The enumerated
// set follows spec.md §6 ("Opcode set"), including the mathematical and
// natural-language opcodes the VM (external) must accept even where it
// treats them as a no-op.
type OpCode byte

const (
	Nop OpCode = iota
	Push
	Pop
	Dup
	Dup2
	Swap
	LoadConstant
	LoadTrue
	LoadFalse
	LoadNull
	LoadLocal
	StoreLocal
	LoadGlobal
	StoreGlobal
	LoadRegister
	StoreRegister
	LoadField
	StoreField
	LoadMember

	Add
	Sub
	Mul
	Div
	Mod
	Neg
	Not
	Power
	IntegerDivision
	StringConcat

	Eq
	Ne
	Lt
	Gt
	Le
	Ge

	Jump
	JumpIfTrue
	JumpIfFalse
	// JumpIf is a generic conditional jump some inline-assembly mnemonics
	// lower to; treated by the optimizer the same as JumpIfTrue.
	JumpIf

	Call
	Return
	ReturnVoid
	Throw
	Rethrow
	Halt

	PostIncrement
	PostDecrement

	NativeInstruction
	RawBytes

	// Mathematical opcodes (spec.md §6).
	PartialDerivative
	Gradient
	Limit
	Integral
	CrossProduct3D
	DotProduct3D
	Mean
	StandardDeviation
	Variance
	Correlation
	AutoDiff

	// Natural-language opcodes (spec.md §6).
	AllEvenNumbers
	EachMultipliedBy
	SumOfAll
	AppendToCollection
	PrependToCollection
	SetUnion
	SetIntersection
	SetDifference
	ElementOf
	SpaceshipCompare
)

// wideOperand is the set of opcodes carrying a single 4-byte little-endian
// signed-integer operand, per spec.md §3's instruction encoding table, plus
// PostIncrement/PostDecrement, which carry the local index that
// InstructionCombining fuses into them. Every opcode not in this set (other
// than the length-prefixed NativeInstruction/RawBytes) has zero operand
// bytes.
var wideOperand = map[OpCode]bool{
	Push:          true,
	LoadLocal:     true,
	StoreLocal:    true,
	LoadGlobal:    true,
	StoreGlobal:   true,
	LoadConstant:  true,
	Jump:          true,
	JumpIf:        true,
	JumpIfTrue:    true,
	JumpIfFalse:   true,
	Call:          true,
	LoadField:     true,
	StoreField:    true,
	LoadRegister:  true,
	StoreRegister: true,
	PostIncrement: true,
	PostDecrement: true,
}

// OperandSize returns the number of operand bytes that follow op, used by
// every control-flow-aware optimizer pass to advance an instruction
// pointer without decoding the operand's value.
func OperandSize(op OpCode) int {
	if wideOperand[op] {
		return 4
	}
	if op == NativeInstruction || op == RawBytes {
		// length-prefixed: the 4-byte length itself is the fixed part;
		// the payload length is read separately by InstructionLen.
		return 4
	}
	return 0
}

// IsJump reports whether op is any jump opcode (unconditional or
// conditional), used by dead-code elimination and jump threading.
func IsJump(op OpCode) bool {
	switch op {
	case Jump, JumpIf, JumpIfTrue, JumpIfFalse:
		return true
	}
	return false
}

// IsConditionalJump reports whether op has a fall-through successor in
// addition to its target, per spec.md §4.4.1.
func IsConditionalJump(op OpCode) bool {
	switch op {
	case JumpIf, JumpIfTrue, JumpIfFalse:
		return true
	}
	return false
}

// IsTerminal reports whether op never falls through and never jumps, per
// spec.md §4.4.1's reachability rule.
func IsTerminal(op OpCode) bool {
	switch op {
	case Return, ReturnVoid, Halt, Throw, Rethrow:
		return true
	}
	return false
}

// IsArithmeticBinary reports whether op is a two-operand arithmetic opcode
// eligible for constant folding (spec.md §4.4.2) and CSE (spec.md §4.4.6).
func IsArithmeticBinary(op OpCode) bool {
	switch op {
	case Add, Sub, Mul, Div, Mod:
		return true
	}
	return false
}
