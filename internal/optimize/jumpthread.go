package optimize

import (
	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

// JumpThreading implements spec.md §4.4.5's two passes: first record,
// for every jump whose target is itself a jump, the final target (one
// level — the relation terminates because the target instruction is not
// itself rewritten before the second pass runs); second, rewrite every
// recorded jump's operand to point straight at the final target.
type JumpThreading struct{}

func (JumpThreading) Name() string { return "jump-threading" }

func (JumpThreading) Run(b *bytecode.Bytecode, sink *diag.Sink) *bytecode.Bytecode {
	instrs, ok := decodeAll(b.Code)
	if !ok {
		return malformed("jump-threading", b, sink)
	}

	byOffset := make(map[int]decodedInstr, len(instrs))
	for _, in := range instrs {
		byOffset[in.offset] = in
	}

	out := b.Clone()
	for _, in := range instrs {
		if !bytecode.IsJump(in.op) {
			continue
		}
		target := absoluteTarget(in)
		if targetInstr, ok := byOffset[target]; ok && bytecode.IsJump(targetInstr.op) {
			finalTarget := absoluteTarget(targetInstr)
			siteInNew := in.offset + 1
			rel := int32(finalTarget - siteInNew - 4)
			bytecode.WriteOperand(out.Code, siteInNew, rel)
		}
	}
	return out
}
