package optimize

import (
	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

// DeadCodeElimination implements spec.md §4.4.1's reachability sweep over
// a control-flow view of the byte stream, with the correctness fix
// spec.md §9 item 1 requires: a pre-pass marks every offset that is the
// target of some jump instruction anywhere in the stream before
// reachability is computed, and after the sweep every marked target
// instruction is kept as reachable too (the instructions after it are kept
// only if the sweep itself reached them) — so no live jump target
// is ever eliminated, and the "nearest preceding mapped offset plus
// displacement" guesswork the original exhibited never needs to run.
type DeadCodeElimination struct{}

func (DeadCodeElimination) Name() string { return "dead-code-elimination" }

func (DeadCodeElimination) Run(b *bytecode.Bytecode, sink *diag.Sink) *bytecode.Bytecode {
	instrs, ok := decodeAll(b.Code)
	if !ok {
		return malformed("dead-code-elimination", b, sink)
	}
	if len(instrs) == 0 {
		return b
	}

	byOffset := make(map[int]int, len(instrs)) // offset -> index into instrs
	for i, in := range instrs {
		byOffset[in.offset] = i
	}

	jumpTargets := make(map[int]bool)
	for _, in := range instrs {
		if bytecode.IsJump(in.op) {
			target := absoluteTarget(in)
			jumpTargets[target] = true
		}
	}

	reachable := make(map[int]bool, len(instrs))
	work := []int{0}
	for len(work) > 0 {
		idx := work[len(work)-1]
		work = work[:len(work)-1]
		if idx < 0 || idx >= len(instrs) || reachable[instrs[idx].offset] {
			continue
		}
		reachable[instrs[idx].offset] = true
		in := instrs[idx]
		switch {
		case in.op == bytecode.Jump:
			if j, ok := byOffset[absoluteTarget(in)]; ok {
				work = append(work, j)
			}
		case bytecode.IsConditionalJump(in.op):
			if j, ok := byOffset[absoluteTarget(in)]; ok {
				work = append(work, j)
			}
			if idx+1 < len(instrs) {
				work = append(work, idx+1)
			}
		case bytecode.IsTerminal(in.op):
			// enqueue nothing
		default:
			if idx+1 < len(instrs) {
				work = append(work, idx+1)
			}
		}
	}

	// Every live jump target stays reachable even absent a fall-through
	// path to it, per the correctness fix this pass implements.
	for target := range jumpTargets {
		if j, ok := byOffset[target]; ok {
			reachable[instrs[j].offset] = true
		}
	}

	remap := make(map[int]int, len(instrs))
	var newCode []byte
	for _, in := range instrs {
		if !reachable[in.offset] {
			continue
		}
		remap[in.offset] = len(newCode)
		newCode = append(newCode, b.Code[in.offset:in.offset+in.length]...)
	}

	for _, in := range instrs {
		if !reachable[in.offset] || !bytecode.IsJump(in.op) {
			continue
		}
		newOffset, ok := remap[in.offset]
		if !ok {
			continue
		}
		target := absoluteTarget(in)
		newTarget, ok := remap[target]
		if !ok {
			// Covered by the jumpTargets pre-pass; should not happen for a
			// well-formed stream, but fall back to a diagnostic rather than
			// guessing at a displacement.
			sink.Report(diag.Diagnostic{
				Message:  "dead-code-elimination: jump target eliminated unexpectedly",
				Severity: diag.Warning,
			})
			continue
		}
		siteInNew := newOffset + 1
		rel := int32(newTarget - siteInNew - 4)
		bytecode.WriteOperand(newCode, siteInNew, rel)
	}

	out := b.Clone()
	out.Code = newCode
	return out
}

// absoluteTarget converts a jump instruction's relative operand (the
// displacement from just past the operand to the target, per spec.md
// §4.3) into an absolute code offset.
func absoluteTarget(in decodedInstr) int {
	siteEnd := in.offset + in.length
	return siteEnd + int(in.operand)
}
