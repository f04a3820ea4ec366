package optimize

import (
	"fmt"

	"modernc.org/mathutil"

	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

// maxCSELocals bounds how many fresh locals CommonSubexpressionElimination
// will allocate across a single function, per the correctness fix spec.md
// §9 item 3 requires: the original reserves a fresh local per cached
// expression without bound; this implementation caps it and falls back
// to recomputing the expression once the budget is exhausted.
const maxCSELocals = 64

// CommonSubexpressionElimination implements spec.md §4.4.6: for every
// arithmetic opcode preceded by two constant loads, the first occurrence
// of a given (a, opcode, b) key caches its result in a fresh local; later
// occurrences of the same key load that local instead of recomputing.
type CommonSubexpressionElimination struct{}

func (CommonSubexpressionElimination) Name() string { return "common-subexpression-elimination" }

func (CommonSubexpressionElimination) Run(b *bytecode.Bytecode, sink *diag.Sink) *bytecode.Bytecode {
	instrs, ok := decodeAll(b.Code)
	if !ok {
		return malformed("common-subexpression-elimination", b, sink)
	}

	nextLocal := maxLocalSlot(instrs) + 1
	seen := map[string]int32{}
	var newCode []byte
	allocated := 0

	i := 0
	for i < len(instrs) {
		if i+2 < len(instrs) &&
			instrs[i].op == bytecode.LoadConstant &&
			instrs[i+1].op == bytecode.LoadConstant &&
			bytecode.IsArithmeticBinary(instrs[i+2].op) {

			key := fmt.Sprintf("%d,%d,%d", instrs[i].operand, instrs[i+2].op, instrs[i+1].operand)
			if local, ok := seen[key]; ok {
				newCode = append(newCode, byte(bytecode.LoadLocal))
				var buf [4]byte
				putOperand(buf[:], local)
				newCode = append(newCode, buf[:]...)
				i += 3
				continue
			}
			if allocated < maxCSELocals {
				local := nextLocal
				nextLocal++
				allocated++
				seen[key] = local
				newCode = append(newCode, b.Code[instrs[i].offset:instrs[i].offset+instrs[i].length]...)
				newCode = append(newCode, b.Code[instrs[i+1].offset:instrs[i+1].offset+instrs[i+1].length]...)
				newCode = append(newCode, b.Code[instrs[i+2].offset:instrs[i+2].offset+instrs[i+2].length]...)
				newCode = append(newCode, byte(bytecode.Dup))
				newCode = append(newCode, byte(bytecode.StoreLocal))
				var buf [4]byte
				putOperand(buf[:], local)
				newCode = append(newCode, buf[:]...)
				i += 3
				continue
			}
			// Local budget exhausted: fall back to recomputing, per the
			// correctness fix this pass implements.
		}
		newCode = append(newCode, b.Code[instrs[i].offset:instrs[i].offset+instrs[i].length]...)
		i++
	}

	out := b.Clone()
	out.Code = newCode
	return out
}

// maxLocalSlot returns the highest local index referenced by LoadLocal or
// StoreLocal anywhere in instrs, or -1 if none, so fresh CSE locals never
// collide with an existing one.
func maxLocalSlot(instrs []decodedInstr) int32 {
	max := -1
	for _, in := range instrs {
		if in.op == bytecode.LoadLocal || in.op == bytecode.StoreLocal {
			max = mathutil.Max(max, int(in.operand))
		}
	}
	return int32(max)
}
