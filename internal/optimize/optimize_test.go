package optimize

import (
	"testing"

	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

func TestPassesForLevelDebugIsSmallest(t *testing.T) {
	debug := passesForLevel(Debug)
	release := passesForLevel(Release)
	aggressive := passesForLevel(Aggressive)
	if len(debug) >= len(release) || len(release) >= len(aggressive) {
		t.Fatalf("expected Debug < Release < Aggressive pass counts, got %d, %d, %d",
			len(debug), len(release), len(aggressive))
	}
}

func TestOptimizeAppliesDebugPasses(t *testing.T) {
	b := &bytecode.Bytecode{
		Code: join(instr(bytecode.LoadLocal, 0), instr(bytecode.StoreLocal, 0)),
	}
	out := Optimize(b, Debug, diag.NewSink())
	if len(out.Code) != 0 {
		t.Fatalf("expected peephole cleanup to run even at Debug level, got %v", out.Code)
	}
}

func TestOptimizeAggressiveProducesWellFormedOutput(t *testing.T) {
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{
			{Tag: bytecode.ConstInt, Int: 1},
			{Tag: bytecode.ConstInt, Int: 2},
		},
		Code: join(
			instr(bytecode.LoadConstant, 0),
			instr(bytecode.LoadConstant, 1),
			zero(bytecode.Add),
			instr(bytecode.StoreLocal, 0),
			instr(bytecode.LoadLocal, 0),
			zero(bytecode.Pop),
		),
	}
	out := Optimize(b, Aggressive, diag.NewSink())
	if _, ok := decodeAll(out.Code); !ok {
		t.Fatalf("expected the full Aggressive pipeline to leave a well-formed instruction stream")
	}
}
