package bytecode

import "testing"

func TestAddConstantDedup(t *testing.T) {
	b := New()
	i1 := b.AddConstant(Constant{Tag: ConstInt, Int: 42})
	i2 := b.AddConstant(Constant{Tag: ConstInt, Int: 42})
	if i1 != i2 {
		t.Fatalf("expected structurally-equal constants to share an index, got %d and %d", i1, i2)
	}
	i3 := b.AddConstant(Constant{Tag: ConstString, Str: "42"})
	if i3 == i1 {
		t.Fatalf("expected different-tag constant to get its own index")
	}
	if len(b.Constants) != 2 {
		t.Fatalf("expected 2 constants, got %d", len(b.Constants))
	}
}

func TestConstantEqualAcrossTags(t *testing.T) {
	a := Constant{Tag: ConstInt, Int: 1}
	c := Constant{Tag: ConstLong, Int: 1}
	if a.Equal(c) {
		t.Fatalf("int and long constants with the same bits must not be deduped together")
	}
}

func TestOperandRoundTrip(t *testing.T) {
	code := make([]byte, 4)
	WriteOperand(code, 0, -17)
	if got := ReadOperand(code, 0); got != -17 {
		t.Fatalf("ReadOperand: got %d, want -17", got)
	}
}

func TestInstructionLenFixedOperand(t *testing.T) {
	code := []byte{byte(Push), 0, 0, 0, 0}
	n, ok := InstructionLen(code, 0)
	if !ok || n != 5 {
		t.Fatalf("InstructionLen(Push): got (%d, %v), want (5, true)", n, ok)
	}
}

func TestInstructionLenZeroOperand(t *testing.T) {
	code := []byte{byte(Pop)}
	n, ok := InstructionLen(code, 0)
	if !ok || n != 1 {
		t.Fatalf("InstructionLen(Pop): got (%d, %v), want (1, true)", n, ok)
	}
}

func TestInstructionLenNativePayload(t *testing.T) {
	code := []byte{byte(NativeInstruction), 2, 0, 0, 0, 0x90, 0xF4}
	n, ok := InstructionLen(code, 0)
	if !ok || n != 7 {
		t.Fatalf("InstructionLen(NativeInstruction): got (%d, %v), want (7, true)", n, ok)
	}
}

func TestInstructionLenTruncated(t *testing.T) {
	code := []byte{byte(Push), 0, 0}
	if _, ok := InstructionLen(code, 0); ok {
		t.Fatalf("InstructionLen should reject a truncated wide-operand instruction")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := New()
	b.Code = []byte{byte(Nop)}
	c := b.Clone()
	c.Code[0] = byte(Halt)
	if b.Code[0] != byte(Nop) {
		t.Fatalf("Clone must not alias the original Code slice")
	}
}
