package optimize

import (
	"testing"

	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

func TestJumpThreadingCollapsesChainedJump(t *testing.T) {
	code := join(
		jumpRel(bytecode.Jump, 0, 5),  // offset 0: jumps to the next jump
		jumpRel(bytecode.Jump, 5, 10), // offset 5: jumps to the ReturnVoid
		zero(bytecode.ReturnVoid),     // offset 10
	)
	b := &bytecode.Bytecode{Code: code}
	out := JumpThreading{}.Run(b, diag.NewSink())

	rel := bytecode.ReadOperand(out.Code, 1)
	target := 0 + 5 + int(rel)
	if target != 10 {
		t.Fatalf("expected the first jump to thread straight to offset 10, got %d", target)
	}
	// The intermediate jump itself is left as-is; only referring jumps are rewritten.
	rel2 := bytecode.ReadOperand(out.Code, 6)
	if target2 := 5 + 5 + int(rel2); target2 != 10 {
		t.Fatalf("expected the second jump's own target unchanged, got %d", target2)
	}
}

func TestJumpThreadingLeavesNonChainedJumpAlone(t *testing.T) {
	code := join(jumpRel(bytecode.Jump, 0, 5), zero(bytecode.ReturnVoid))
	b := &bytecode.Bytecode{Code: code}
	out := JumpThreading{}.Run(b, diag.NewSink())
	if string(out.Code) != string(code) {
		t.Fatalf("expected no rewrite when the jump target isn't itself a jump")
	}
}
