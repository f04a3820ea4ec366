// Package optimize implements the multi-pass bytecode optimizer spec.md
// §4.4 describes, grounded on the teacher's internal/compiler peephole
// pass (the small forward-scan-and-rewrite shape) generalized into nine
// independent, composable passes gated by optimization level.
package optimize

import (
	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

// Level selects which passes run, per spec.md §4.4's table.
type Level int

const (
	Debug Level = iota
	Release
	Aggressive
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Aggressive:
		return "aggressive"
	default:
		return "release"
	}
}

// Pass takes a Bytecode and returns a new Bytecode with the same
// observable semantics; the constant pool is carried over (constant
// folding may append new entries to it), code is rewritten, per spec.md
// §4.4.
type Pass interface {
	Name() string
	Run(b *bytecode.Bytecode, sink *diag.Sink) *bytecode.Bytecode
}

// passesForLevel returns the ordered pass list for level, per spec.md
// §4.4: Debug → dce+fold+peephole; Release adds combining+threading+CSE;
// Aggressive adds loop optimization, inlining, register allocation.
func passesForLevel(level Level) []Pass {
	passes := []Pass{
		DeadCodeElimination{},
		ConstantFolding{},
		Peephole{},
	}
	if level == Debug {
		return passes
	}
	passes = append(passes,
		InstructionCombining{},
		JumpThreading{},
		CommonSubexpressionElimination{},
	)
	if level == Release {
		return passes
	}
	return append(passes,
		LoopOptimization{},
		Inlining{},
		RegisterAllocation{},
	)
}

// Optimize runs every pass for level in order, threading each pass's
// output into the next, per spec.md §5's ordering guarantee.
func Optimize(b *bytecode.Bytecode, level Level, sink *diag.Sink) *bytecode.Bytecode {
	current := b
	for _, pass := range passesForLevel(level) {
		current = pass.Run(current, sink)
	}
	return current
}

// decodedInstr is one decoded instruction: its offset, opcode, and
// operand bytes (not yet interpreted as a specific count of 4-byte
// operands, since NativeInstruction/RawBytes carry a variable payload).
type decodedInstr struct {
	offset  int
	op      bytecode.OpCode
	operand int32 // meaningful only when the opcode carries exactly one
	length  int
}

// decodeAll linearly decodes every instruction in code, per spec.md
// §4.4's "decode operand size from the opcode class and advance". ok is
// false on the first malformed instruction, per spec.md §4.4's failure
// semantics ("a pass that encounters a malformed instruction stream...
// reports a diagnostic and returns the input unchanged").
func decodeAll(code []byte) ([]decodedInstr, bool) {
	var out []decodedInstr
	for ip := 0; ip < len(code); {
		n, ok := bytecode.InstructionLen(code, ip)
		if !ok {
			return nil, false
		}
		op := bytecode.OpCode(code[ip])
		var operand int32
		if n == 5 && op != bytecode.NativeInstruction && op != bytecode.RawBytes {
			operand = bytecode.ReadOperand(code, ip+1)
		}
		out = append(out, decodedInstr{offset: ip, op: op, operand: operand, length: n})
		ip += n
	}
	return out, true
}

// malformed reports the type-4 diagnostic spec.md §7 names and returns b
// unchanged, the required no-op fallback for every pass.
func malformed(passName string, b *bytecode.Bytecode, sink *diag.Sink) *bytecode.Bytecode {
	if sink != nil {
		sink.Report(diag.Diagnostic{
			Message:  passName + ": malformed instruction stream, pass skipped",
			Severity: diag.Warning,
		})
	}
	return b
}
