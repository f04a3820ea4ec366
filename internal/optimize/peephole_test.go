package optimize

import (
	"testing"

	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

func TestPeepholeRemovesRedundantLoadStore(t *testing.T) {
	b := &bytecode.Bytecode{
		Code: join(instr(bytecode.LoadLocal, 3), instr(bytecode.StoreLocal, 3)),
	}
	out := Peephole{}.Run(b, diag.NewSink())
	if len(out.Code) != 0 {
		t.Fatalf("expected LoadLocal n;StoreLocal n to vanish, got %v", out.Code)
	}
}

func TestPeepholeRemovesDupPop(t *testing.T) {
	b := &bytecode.Bytecode{Code: join(zero(bytecode.Dup), zero(bytecode.Pop))}
	out := Peephole{}.Run(b, diag.NewSink())
	if len(out.Code) != 0 {
		t.Fatalf("expected Dup;Pop to vanish, got %v", out.Code)
	}
}

func TestPeepholeRemovesAddZero(t *testing.T) {
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{{Tag: bytecode.ConstInt, Int: 0}},
		Code:      join(instr(bytecode.LoadConstant, 0), zero(bytecode.Add)),
	}
	out := Peephole{}.Run(b, diag.NewSink())
	if len(out.Code) != 0 {
		t.Fatalf("expected LoadConstant 0;Add to vanish, got %v", out.Code)
	}
}

func TestPeepholeRemovesMulOne(t *testing.T) {
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{{Tag: bytecode.ConstInt, Int: 1}},
		Code:      join(instr(bytecode.LoadConstant, 0), zero(bytecode.Mul)),
	}
	out := Peephole{}.Run(b, diag.NewSink())
	if len(out.Code) != 0 {
		t.Fatalf("expected LoadConstant 1;Mul to vanish, got %v", out.Code)
	}
}

func TestPeepholeRemovesDoubleNegation(t *testing.T) {
	b := &bytecode.Bytecode{Code: join(zero(bytecode.Neg), zero(bytecode.Neg))}
	out := Peephole{}.Run(b, diag.NewSink())
	if len(out.Code) != 0 {
		t.Fatalf("expected Neg;Neg to vanish, got %v", out.Code)
	}
}

func TestPeepholeRemovesJumpToFallthrough(t *testing.T) {
	b := &bytecode.Bytecode{Code: jumpRel(bytecode.Jump, 0, 5)}
	out := Peephole{}.Run(b, diag.NewSink())
	if len(out.Code) != 0 {
		t.Fatalf("expected a jump to its own fallthrough to vanish, got %v", out.Code)
	}
}

func TestPeepholePreservesUnrelatedCode(t *testing.T) {
	b := &bytecode.Bytecode{Code: join(zero(bytecode.Dup), zero(bytecode.Add))}
	out := Peephole{}.Run(b, diag.NewSink())
	if len(out.Code) != 2 {
		t.Fatalf("expected unrelated instructions untouched, got %v", out.Code)
	}
}
