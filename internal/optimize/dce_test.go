package optimize

import (
	"testing"

	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

func TestDeadCodeEliminationRemovesUnreachableNops(t *testing.T) {
	code := join(
		jumpRel(bytecode.Jump, 0, 7), // offset 0, jumps straight to the ReturnVoid
		zero(bytecode.Nop),          // offset 5, unreachable
		zero(bytecode.Nop),          // offset 6, unreachable
		zero(bytecode.ReturnVoid),   // offset 7, live jump target
	)
	b := &bytecode.Bytecode{Code: code}
	out := DeadCodeElimination{}.Run(b, diag.NewSink())

	if len(out.Code) != 6 {
		t.Fatalf("expected 6 bytes after dead-code removal, got %d: %v", len(out.Code), out.Code)
	}
	if bytecode.OpCode(out.Code[0]) != bytecode.Jump {
		t.Fatalf("expected Jump at offset 0, got %v", out.Code[0])
	}
	if rel := bytecode.ReadOperand(out.Code, 1); rel != 0 {
		t.Fatalf("expected retargeted jump operand 0, got %d", rel)
	}
	if bytecode.OpCode(out.Code[5]) != bytecode.ReturnVoid {
		t.Fatalf("expected ReturnVoid at offset 5, got %v", out.Code[5])
	}
}

func TestDeadCodeEliminationKeepsLiveJumpTarget(t *testing.T) {
	// A conditional jump's target must survive even though nothing falls
	// through to it directly from the jump site.
	code := join(
		jumpRel(bytecode.JumpIfFalse, 0, 11), // offset 0, targets the Nop at offset 11
		zero(bytecode.Pop),                   // offset 5, live (fallthrough)
		jumpRel(bytecode.Jump, 6, 12),         // offset 6, jumps past the Nop to the ReturnVoid
		zero(bytecode.Nop),                   // offset 11, only reachable via the conditional jump
		zero(bytecode.ReturnVoid),            // offset 12
	)
	b := &bytecode.Bytecode{Code: code}
	out := DeadCodeElimination{}.Run(b, diag.NewSink())

	// The Nop at old offset 11 must still be present somewhere in the output.
	found := false
	for ip := 0; ip < len(out.Code); {
		n, ok := bytecode.InstructionLen(out.Code, ip)
		if !ok {
			t.Fatalf("malformed output stream")
		}
		if bytecode.OpCode(out.Code[ip]) == bytecode.Nop {
			found = true
		}
		ip += n
	}
	if !found {
		t.Fatalf("expected the jump-target Nop to survive dead-code elimination")
	}
}

func TestDeadCodeEliminationMalformedStreamReportsWarning(t *testing.T) {
	b := &bytecode.Bytecode{Code: []byte{byte(bytecode.LoadLocal), 0, 0}} // truncated operand
	sink := diag.NewSink()
	out := DeadCodeElimination{}.Run(b, sink)
	if sink.Len() == 0 {
		t.Fatalf("expected a diagnostic for a malformed instruction stream")
	}
	if string(out.Code) != string(b.Code) {
		t.Fatalf("expected malformed input to be returned unchanged")
	}
}
