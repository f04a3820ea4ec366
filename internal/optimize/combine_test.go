package optimize

import (
	"testing"

	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

func TestInstructionCombiningFusesPostIncrement(t *testing.T) {
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{{Tag: bytecode.ConstInt, Int: 1}},
		Code: join(
			instr(bytecode.LoadLocal, 2),
			instr(bytecode.LoadConstant, 0),
			zero(bytecode.Add),
			instr(bytecode.StoreLocal, 2),
		),
	}
	out := InstructionCombining{}.Run(b, diag.NewSink())
	if len(out.Code) != 5 {
		t.Fatalf("expected a single fused instruction, got %d bytes", len(out.Code))
	}
	if bytecode.OpCode(out.Code[0]) != bytecode.PostIncrement {
		t.Fatalf("expected PostIncrement, got %v", out.Code[0])
	}
	if bytecode.ReadOperand(out.Code, 1) != 2 {
		t.Fatalf("expected local index 2 preserved")
	}
}

func TestInstructionCombiningFusesPostDecrement(t *testing.T) {
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{{Tag: bytecode.ConstInt, Int: 1}},
		Code: join(
			instr(bytecode.LoadLocal, 2),
			instr(bytecode.LoadConstant, 0),
			zero(bytecode.Sub),
			instr(bytecode.StoreLocal, 2),
		),
	}
	out := InstructionCombining{}.Run(b, diag.NewSink())
	if bytecode.OpCode(out.Code[0]) != bytecode.PostDecrement {
		t.Fatalf("expected PostDecrement, got %v", out.Code[0])
	}
}

func TestInstructionCombiningLeavesDifferentLocalsAlone(t *testing.T) {
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{{Tag: bytecode.ConstInt, Int: 1}},
		Code: join(
			instr(bytecode.LoadLocal, 2),
			instr(bytecode.LoadConstant, 0),
			zero(bytecode.Add),
			instr(bytecode.StoreLocal, 3),
		),
	}
	out := InstructionCombining{}.Run(b, diag.NewSink())
	if len(out.Code) != len(b.Code) {
		t.Fatalf("expected the mismatched-local sequence to be left alone")
	}
}

func TestInstructionCombiningFusesDupDup(t *testing.T) {
	b := &bytecode.Bytecode{Code: join(zero(bytecode.Dup), zero(bytecode.Dup))}
	out := InstructionCombining{}.Run(b, diag.NewSink())
	if len(out.Code) != 1 || bytecode.OpCode(out.Code[0]) != bytecode.Dup2 {
		t.Fatalf("expected Dup;Dup to fuse to Dup2, got %v", out.Code)
	}
}
