package optimize

import (
	"testing"

	"github.com/kr/pretty"

	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

func TestCommonSubexpressionEliminationCachesRepeatedExpression(t *testing.T) {
	block := join(instr(bytecode.LoadConstant, 0), instr(bytecode.LoadConstant, 1), zero(bytecode.Add))
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{
			{Tag: bytecode.ConstInt, Int: 2},
			{Tag: bytecode.ConstInt, Int: 3},
		},
		Code: join(block, block),
	}
	out := CommonSubexpressionElimination{}.Run(b, diag.NewSink())

	instrs, ok := decodeAll(out.Code)
	if !ok {
		t.Fatalf("expected well-formed output")
	}
	var storeCount, loadLocalCount int
	for _, in := range instrs {
		switch in.op {
		case bytecode.StoreLocal:
			storeCount++
		case bytecode.LoadLocal:
			loadLocalCount++
		}
	}
	if storeCount != 1 || loadLocalCount != 1 {
		t.Fatalf("expected exactly one cached store and one cached load, got %d/%d; instructions: %# v",
			storeCount, loadLocalCount, pretty.Formatter(instrs))
	}
}

func TestCommonSubexpressionEliminationRespectsLocalBudget(t *testing.T) {
	// Build more distinct foldable-looking expressions than maxCSELocals
	// allows, using distinct constant pairs so each is a first occurrence
	// that would need its own fresh local.
	var code []byte
	var constants []bytecode.Constant
	for i := 0; i < maxCSELocals+5; i++ {
		aIdx := len(constants)
		constants = append(constants, bytecode.Constant{Tag: bytecode.ConstInt, Int: int64(i)})
		bIdx := len(constants)
		constants = append(constants, bytecode.Constant{Tag: bytecode.ConstInt, Int: int64(i + 1)})
		code = append(code, instr(bytecode.LoadConstant, int32(aIdx))...)
		code = append(code, instr(bytecode.LoadConstant, int32(bIdx))...)
		code = append(code, zero(bytecode.Add)...)
	}
	b := &bytecode.Bytecode{Constants: constants, Code: code}
	sink := diag.NewSink()
	out := CommonSubexpressionElimination{}.Run(b, sink)

	instrs, ok := decodeAll(out.Code)
	if !ok {
		t.Fatalf("expected well-formed output even once the local budget is exhausted")
	}
	var storeCount int
	for _, in := range instrs {
		if in.op == bytecode.StoreLocal {
			storeCount++
		}
	}
	if storeCount > maxCSELocals {
		t.Fatalf("expected at most %d cached locals, got %d", maxCSELocals, storeCount)
	}
}
