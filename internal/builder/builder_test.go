package builder

import (
	"testing"

	"ouroboros/internal/bytecode"
)

func TestEmitJumpAndPatch(t *testing.T) {
	b := New()
	b.Emit(bytecode.LoadTrue)
	site := b.EmitJump(bytecode.JumpIfFalse)
	b.Emit(bytecode.Halt)
	if err := b.PatchJump(site); err != nil {
		t.Fatalf("PatchJump: %v", err)
	}
	out, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	rel := bytecode.ReadOperand(out.Code, site)
	want := int32(len(out.Code) - site - 4)
	if rel != want {
		t.Fatalf("patched offset: got %d, want %d", rel, want)
	}
}

func TestFinalizeFailsOnUnpatchedJump(t *testing.T) {
	b := New()
	b.EmitJump(bytecode.Jump)
	if _, err := b.Finalize(); err == nil {
		t.Fatalf("expected Finalize to fail with an unpatched jump pending")
	}
}

func TestLoopBreakContinue(t *testing.T) {
	b := New()
	b.MarkLoopStart()
	start, ok := b.LoopStart()
	if !ok || start != 0 {
		t.Fatalf("LoopStart: got (%d, %v), want (0, true)", start, ok)
	}
	if err := b.EmitContinue(); err != nil {
		t.Fatalf("EmitContinue: %v", err)
	}
	if err := b.EmitBreak(); err != nil {
		t.Fatalf("EmitBreak: %v", err)
	}
	b.EmitLoop(start)
	if err := b.EndLoop(); err != nil {
		t.Fatalf("EndLoop: %v", err)
	}
	if _, err := b.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
}

func TestBreakOutsideLoopErrors(t *testing.T) {
	b := New()
	if err := b.EmitBreak(); err == nil {
		t.Fatalf("expected break outside a loop to error")
	}
}

func TestAddConstantDedup(t *testing.T) {
	b := New()
	i1 := b.AddConstant(bytecode.Constant{Tag: bytecode.ConstString, Str: "hi"})
	i2 := b.AddConstant(bytecode.Constant{Tag: bytecode.ConstString, Str: "hi"})
	if i1 != i2 {
		t.Fatalf("expected shared constant index, got %d and %d", i1, i2)
	}
}

func TestDefineLabel(t *testing.T) {
	b := New()
	b.Emit(bytecode.Nop)
	b.DefineLabel("loop")
	off, ok := b.Label("loop")
	if !ok || off != 1 {
		t.Fatalf("Label(loop): got (%d, %v), want (1, true)", off, ok)
	}
}

func TestFinalizePopulatesDescriptorTables(t *testing.T) {
	b := New()
	idx := b.AddFunction(bytecode.FunctionDescriptor{Name: "main", ParamCount: 0})
	if idx != 0 {
		t.Fatalf("AddFunction: got index %d, want 0", idx)
	}
	out, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(out.Functions) != 1 || out.Functions[0].Name != "main" {
		t.Fatalf("Finalize did not carry the function descriptor table through")
	}
}

func TestAssembleNativeMnemonic(t *testing.T) {
	b := New()
	warnings := b.Assemble("NOP\nHLT\n")
	if len(warnings) != 0 {
		t.Fatalf("known native mnemonics should not warn, got %v", warnings)
	}
	out, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	n, ok := bytecode.InstructionLen(out.Code, 0)
	if !ok {
		t.Fatalf("expected a well-formed NativeInstruction at offset 0")
	}
	if out.Code[0] != byte(bytecode.NativeInstruction) {
		t.Fatalf("expected NOP to lower to a NativeInstruction escape")
	}
	_, ok = bytecode.InstructionLen(out.Code, n)
	if !ok {
		t.Fatalf("expected a well-formed NativeInstruction for HLT following NOP")
	}
}

func TestAssembleUnknownMnemonicWarns(t *testing.T) {
	b := New()
	warnings := b.Assemble("FROBNICATE RAX\n")
	if len(warnings) != 1 || warnings[0].Mnemonic != "FROBNICATE" {
		t.Fatalf("expected one warning for the unknown mnemonic, got %v", warnings)
	}
}

func TestAssemblePushdEmitsDecimalConstant(t *testing.T) {
	b := New()
	b.Assemble("PUSHD 1.50\n")
	out, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(out.Constants) != 1 || out.Constants[0].Tag != bytecode.ConstDecimal || out.Constants[0].Decimal != "1.50" {
		t.Fatalf("expected a single ConstDecimal(1.50) constant, got %v", out.Constants)
	}
	if bytecode.OpCode(out.Code[0]) != bytecode.LoadConstant {
		t.Fatalf("expected PUSHD to lower to LoadConstant, got opcode %d", out.Code[0])
	}
}

func TestAssemblePushCarriesWideOperand(t *testing.T) {
	b := New()
	b.Assemble("PUSH 42\nRET\n")
	out, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	n, ok := bytecode.InstructionLen(out.Code, 0)
	if !ok || n != 5 {
		t.Fatalf("expected PUSH to encode as a 1-byte opcode plus 4-byte operand, got length %d (ok=%v)", n, ok)
	}
	if got := bytecode.ReadOperand(out.Code, 1); got != 42 {
		t.Fatalf("expected PUSH operand 42, got %d", got)
	}
	if out.Code[n] != byte(bytecode.Return) {
		t.Fatalf("RET should start immediately after PUSH's 5-byte encoding, found opcode %d at offset %d", out.Code[n], n)
	}
}

func TestAssembleMovRegisterToRegister(t *testing.T) {
	b := New()
	b.Assemble("MOV RBX, RAX")
	out, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(out.Code) == 0 {
		t.Fatalf("expected MOV to emit instructions")
	}
}
