package optimize

import (
	"testing"

	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

func TestConstantFoldingIntegerArithmetic(t *testing.T) {
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{
			{Tag: bytecode.ConstInt, Int: 2},
			{Tag: bytecode.ConstInt, Int: 3},
		},
		Code: join(
			instr(bytecode.LoadConstant, 0),
			instr(bytecode.LoadConstant, 1),
			zero(bytecode.Add),
		),
	}
	out := ConstantFolding{}.Run(b, diag.NewSink())

	if len(out.Code) != 5 {
		t.Fatalf("expected a single LoadConstant after folding, got %d bytes", len(out.Code))
	}
	idx := bytecode.ReadOperand(out.Code, 1)
	if out.Constants[idx].Int != 5 {
		t.Fatalf("expected folded constant 5, got %d", out.Constants[idx].Int)
	}
}

func TestConstantFoldingSkipsDivisionByZero(t *testing.T) {
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{
			{Tag: bytecode.ConstInt, Int: 7},
			{Tag: bytecode.ConstInt, Int: 0},
		},
		Code: join(
			instr(bytecode.LoadConstant, 0),
			instr(bytecode.LoadConstant, 1),
			zero(bytecode.Div),
		),
	}
	out := ConstantFolding{}.Run(b, diag.NewSink())
	if len(out.Code) != 11 {
		t.Fatalf("expected the division to be left unfolded, got %d bytes", len(out.Code))
	}
}

func TestConstantFoldingStringConcat(t *testing.T) {
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{
			{Tag: bytecode.ConstString, Str: "foo"},
			{Tag: bytecode.ConstString, Str: "bar"},
		},
		Code: join(
			instr(bytecode.LoadConstant, 0),
			instr(bytecode.LoadConstant, 1),
			zero(bytecode.StringConcat),
		),
	}
	out := ConstantFolding{}.Run(b, diag.NewSink())
	idx := bytecode.ReadOperand(out.Code, 1)
	if out.Constants[idx].Str != "foobar" {
		t.Fatalf("expected folded string \"foobar\", got %q", out.Constants[idx].Str)
	}
}

func TestConstantFoldingDecimalArithmetic(t *testing.T) {
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{
			{Tag: bytecode.ConstDecimal, Decimal: "1.50"},
			{Tag: bytecode.ConstDecimal, Decimal: "2.25"},
		},
		Code: join(
			instr(bytecode.LoadConstant, 0),
			instr(bytecode.LoadConstant, 1),
			zero(bytecode.Add),
		),
	}
	out := ConstantFolding{}.Run(b, diag.NewSink())
	if len(out.Code) != 5 {
		t.Fatalf("expected a single LoadConstant after folding, got %d bytes", len(out.Code))
	}
	idx := bytecode.ReadOperand(out.Code, 1)
	if out.Constants[idx].Decimal != "3.75" {
		t.Fatalf("expected folded decimal 3.75, got %q", out.Constants[idx].Decimal)
	}
}

func TestConstantFoldingSkipsDecimalDivisionByZero(t *testing.T) {
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{
			{Tag: bytecode.ConstDecimal, Decimal: "4.0"},
			{Tag: bytecode.ConstDecimal, Decimal: "0.0"},
		},
		Code: join(
			instr(bytecode.LoadConstant, 0),
			instr(bytecode.LoadConstant, 1),
			zero(bytecode.Div),
		),
	}
	out := ConstantFolding{}.Run(b, diag.NewSink())
	if len(out.Code) != 11 {
		t.Fatalf("expected the decimal division to be left unfolded, got %d bytes", len(out.Code))
	}
}

func TestConstantFoldingDoubleModWithNegativeDivisor(t *testing.T) {
	b := &bytecode.Bytecode{
		Constants: []bytecode.Constant{
			{Tag: bytecode.ConstDouble, Double: 5.5},
			{Tag: bytecode.ConstDouble, Double: -2.0},
		},
		Code: join(
			instr(bytecode.LoadConstant, 0),
			instr(bytecode.LoadConstant, 1),
			zero(bytecode.Mod),
		),
	}
	out := ConstantFolding{}.Run(b, diag.NewSink())
	if len(out.Code) != 5 {
		t.Fatalf("expected a single LoadConstant after folding, got %d bytes", len(out.Code))
	}
	idx := bytecode.ReadOperand(out.Code, 1)
	if got := out.Constants[idx].Double; got != 1.5 {
		t.Fatalf("expected 5.5 %% -2.0 to fold to 1.5, got %v", got)
	}
}

func TestConstantFoldingNegatedBoolLiterals(t *testing.T) {
	b := &bytecode.Bytecode{
		Code: join(zero(bytecode.LoadTrue), zero(bytecode.Not)),
	}
	out := ConstantFolding{}.Run(b, diag.NewSink())
	if len(out.Code) != 1 || bytecode.OpCode(out.Code[0]) != bytecode.LoadFalse {
		t.Fatalf("expected LoadTrue;Not to fold to LoadFalse, got %v", out.Code)
	}
}
