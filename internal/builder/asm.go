package builder

import (
	"encoding/binary"
	"strconv"
	"strings"

	"ouroboros/internal/bytecode"
)

// registers is the RAX/RBX/.../R15 order spec.md §4.3 assigns indices 0-15
// under.
var registers = []string{
	"RAX", "RBX", "RCX", "RDX", "RSI", "RDI", "RSP", "RBP",
	"R8", "R9", "R10", "R11", "R12", "R13", "R14", "R15",
}

var registerIndex = buildRegisterIndex()

func buildRegisterIndex() map[string]int32 {
	m := make(map[string]int32, len(registers))
	for i, r := range registers {
		m[r] = int32(i)
	}
	return m
}

// highLevelMnemonics maps an assembly mnemonic with no register/native
// encoding to the bytecode opcode it lowers to directly, per spec.md
// §4.3 ("dispatched by mnemonic to either high-level opcodes ... or a
// NativeInstruction escape").
var highLevelMnemonics = map[string]bytecode.OpCode{
	"POP": bytecode.Pop,
	"ADD": bytecode.Add,
	"SUB": bytecode.Sub,
	"MUL": bytecode.Mul,
	"RET": bytecode.Return,
}

// nativeEncodings is the table-driven x86-64 mnemonic-to-raw-byte map
// spec.md §4.3 names explicitly.
var nativeEncodings = map[string][]byte{
	"NOP":     {0x90},
	"HLT":     {0xF4},
	"CPUID":   {0x0F, 0xA2},
	"RDTSC":   {0x0F, 0x31},
	"CMPXCHG": {0x0F, 0xB1},
	"MFENCE":  {0x0F, 0xAE, 0xF0},
	"LFENCE":  {0x0F, 0xAE, 0xE8},
	"SFENCE":  {0x0F, 0xAE, 0xF8},
	"MOVAPS":  {0x0F, 0x28},
	"ADDPS":   {0x0F, 0x58},
	"MULPS":   {0x0F, 0x59},
	"SYSCALL": {0x0F, 0x05},
}

// EmitNative appends a NativeInstruction escape: opcode byte, 4-byte
// little-endian payload length, then the raw payload, per spec.md §3's
// length-prefixed encoding for native/raw escapes.
func (b *Builder) EmitNative(payload []byte) {
	b.code = append(b.code, byte(bytecode.NativeInstruction))
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	b.code = append(b.code, lenBuf[:]...)
	b.code = append(b.code, payload...)
}

// AsmWarning is a non-fatal diagnostic from Assemble: an unknown mnemonic
// that degraded to a bare NOP, per spec.md §4.3's recovery rule.
type AsmWarning struct {
	Line    int
	Mnemonic string
}

// Assemble accepts spec.md §4.3's inline-assembly sub-language: one
// textual instruction per line, dispatched by mnemonic. Register operands
// resolve via registerIndex; unknown mnemonics emit a single NOP byte and
// a warning rather than failing the build.
func (b *Builder) Assemble(source string) []AsmWarning {
	var warnings []AsmWarning
	for i, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		mnemonic := strings.ToUpper(strings.TrimSuffix(fields[0], ","))
		args := fields[1:]

		if raw, ok := nativeEncodings[mnemonic]; ok {
			b.EmitNative(raw)
			continue
		}
		if op, ok := highLevelMnemonics[mnemonic]; ok {
			b.Emit(op)
			continue
		}
		switch mnemonic {
		case "PUSH":
			n, err := strconv.ParseInt(strings.Join(args, ""), 0, 64)
			if err != nil {
				n = 0
			}
			b.Emit(bytecode.Push, int32(n))
		case "PUSHD":
			text := strings.TrimSuffix(strings.Join(args, ""), ",")
			idx := b.AddConstant(bytecode.Constant{Tag: bytecode.ConstDecimal, Decimal: text})
			b.Emit(bytecode.LoadConstant, int32(idx))
		case "JMP":
			b.EmitJump(bytecode.Jump)
		case "JZ", "JE":
			b.EmitJump(bytecode.JumpIfTrue)
		case "JNZ", "JNE":
			b.EmitJump(bytecode.JumpIfFalse)
		case "CALL":
			b.Emit(bytecode.Call, 0)
		case "MOV":
			b.emitMov(args)
		default:
			b.EmitNative([]byte{0x90})
			warnings = append(warnings, AsmWarning{Line: i + 1, Mnemonic: mnemonic})
		}
	}
	return warnings
}

// emitMov lowers `MOV dst, src` to a LoadRegister/StoreRegister pair when
// both operands are known registers, and to a Push/StoreRegister pair when
// the destination is a register and the source is an integer literal;
// anything else (including a wrong operand count) emits a single NOP native
// escape rather than failing the build.
func (b *Builder) emitMov(args []string) {
	if len(args) != 2 {
		b.EmitNative([]byte{0x90})
		return
	}
	dst := strings.ToUpper(strings.TrimSuffix(args[0], ","))
	src := args[1]
	dstIdx, dstIsReg := registerIndex[dst]
	if srcIdx, ok := registerIndex[strings.ToUpper(src)]; ok && dstIsReg {
		b.Emit(bytecode.LoadRegister, srcIdx)
		b.Emit(bytecode.StoreRegister, dstIdx)
		return
	}
	if n, err := strconv.ParseInt(src, 0, 64); err == nil && dstIsReg {
		b.Emit(bytecode.Push, int32(n))
		b.Emit(bytecode.StoreRegister, dstIdx)
		return
	}
	b.EmitNative([]byte{0x90})
}
