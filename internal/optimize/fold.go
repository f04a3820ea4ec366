package optimize

import (
	"encoding/binary"
	"math"
	"math/big"

	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

// decimalPrecision is the big.Float mantissa precision constant folding
// carries decimal arithmetic at, comfortably past float64's 53 bits so
// folding a decimal literal never loses precision a later decimal op
// would have preserved.
const decimalPrecision = 256

// ConstantFolding implements spec.md §4.4.2's forward scan with small
// look-ahead: two LoadConstant loads followed by a binary arithmetic op
// fold to one LoadConstant when both operands are integers, both are
// doubles or both are decimals (division by zero is left unfolded); two string constants
// followed by StringConcat fold to one; LoadTrue/LoadFalse followed by
// Not fold to the opposite constant load.
type ConstantFolding struct{}

func (ConstantFolding) Name() string { return "constant-folding" }

func (ConstantFolding) Run(b *bytecode.Bytecode, sink *diag.Sink) *bytecode.Bytecode {
	instrs, ok := decodeAll(b.Code)
	if !ok {
		return malformed("constant-folding", b, sink)
	}

	out := b.Clone()
	var newCode []byte
	constants := append([]bytecode.Constant(nil), b.Constants...)

	addConst := func(c bytecode.Constant) int32 {
		for i, existing := range constants {
			if existing.Equal(c) {
				return int32(i)
			}
		}
		constants = append(constants, c)
		return int32(len(constants) - 1)
	}
	emitLoadConstant := func(idx int32) {
		newCode = append(newCode, byte(bytecode.LoadConstant))
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(idx))
		newCode = append(newCode, buf[:]...)
	}

	i := 0
	for i < len(instrs) {
		if i+2 < len(instrs) &&
			instrs[i].op == bytecode.LoadConstant &&
			instrs[i+1].op == bytecode.LoadConstant &&
			bytecode.IsArithmeticBinary(instrs[i+2].op) {

			a := constants[instrs[i].operand]
			bConst := constants[instrs[i+1].operand]
			if folded, ok := foldArithmetic(a, bConst, instrs[i+2].op); ok {
				emitLoadConstant(addConst(folded))
				i += 3
				continue
			}
		}
		if i+2 < len(instrs) &&
			instrs[i].op == bytecode.LoadConstant &&
			instrs[i+1].op == bytecode.LoadConstant &&
			instrs[i+2].op == bytecode.StringConcat {
			a := constants[instrs[i].operand]
			bConst := constants[instrs[i+1].operand]
			if a.Tag == bytecode.ConstString && bConst.Tag == bytecode.ConstString {
				emitLoadConstant(addConst(bytecode.Constant{Tag: bytecode.ConstString, Str: a.Str + bConst.Str}))
				i += 3
				continue
			}
		}
		if i+1 < len(instrs) && instrs[i].op == bytecode.LoadTrue && instrs[i+1].op == bytecode.Not {
			newCode = append(newCode, byte(bytecode.LoadFalse))
			i += 2
			continue
		}
		if i+1 < len(instrs) && instrs[i].op == bytecode.LoadFalse && instrs[i+1].op == bytecode.Not {
			newCode = append(newCode, byte(bytecode.LoadTrue))
			i += 2
			continue
		}

		newCode = append(newCode, b.Code[instrs[i].offset:instrs[i].offset+instrs[i].length]...)
		i++
	}

	out.Code = newCode
	out.Constants = constants
	return out
}

// foldArithmetic evaluates op over a and b when both are integers, both
// are doubles or both are decimals, per spec.md §4.4.2. Division/modulo by zero is left
// unfolded so the VM preserves whatever runtime error it raises.
func foldArithmetic(a, b bytecode.Constant, op bytecode.OpCode) (bytecode.Constant, bool) {
	bothInt := (a.Tag == bytecode.ConstInt || a.Tag == bytecode.ConstLong) &&
		(b.Tag == bytecode.ConstInt || b.Tag == bytecode.ConstLong)
	bothDouble := (a.Tag == bytecode.ConstDouble || a.Tag == bytecode.ConstFloat) &&
		(b.Tag == bytecode.ConstDouble || b.Tag == bytecode.ConstFloat)
	bothDecimal := a.Tag == bytecode.ConstDecimal && b.Tag == bytecode.ConstDecimal

	switch {
	case bothDecimal:
		return foldDecimal(a, b, op)
	case bothInt:
		if (op == bytecode.Div || op == bytecode.Mod) && b.Int == 0 {
			return bytecode.Constant{}, false
		}
		var r int64
		switch op {
		case bytecode.Add:
			r = a.Int + b.Int
		case bytecode.Sub:
			r = a.Int - b.Int
		case bytecode.Mul:
			r = a.Int * b.Int
		case bytecode.Div:
			r = a.Int / b.Int
		case bytecode.Mod:
			r = a.Int % b.Int
		default:
			return bytecode.Constant{}, false
		}
		return bytecode.Constant{Tag: a.Tag, Int: r}, true
	case bothDouble:
		if (op == bytecode.Div || op == bytecode.Mod) && b.Double == 0 {
			return bytecode.Constant{}, false
		}
		var r float64
		switch op {
		case bytecode.Add:
			r = a.Double + b.Double
		case bytecode.Sub:
			r = a.Double - b.Double
		case bytecode.Mul:
			r = a.Double * b.Double
		case bytecode.Div:
			r = a.Double / b.Double
		case bytecode.Mod:
			r = math.Mod(a.Double, b.Double)
		default:
			return bytecode.Constant{}, false
		}
		return bytecode.Constant{Tag: a.Tag, Double: r}, true
	default:
		return bytecode.Constant{}, false
	}
}

// foldDecimal folds a decimal-family arithmetic op through math/big's
// arbitrary-precision float, preserving the precision a plain float64
// fold would have thrown away. Division by zero is left unfolded for the
// same reason integer/double division is: the VM's own runtime error
// takes precedence over a folded result.
func foldDecimal(a, b bytecode.Constant, op bytecode.OpCode) (bytecode.Constant, bool) {
	x, _, errA := big.ParseFloat(a.Decimal, 10, decimalPrecision, big.ToNearestEven)
	y, _, errB := big.ParseFloat(b.Decimal, 10, decimalPrecision, big.ToNearestEven)
	if errA != nil || errB != nil {
		return bytecode.Constant{}, false
	}
	if (op == bytecode.Div || op == bytecode.Mod) && y.Sign() == 0 {
		return bytecode.Constant{}, false
	}
	r := new(big.Float).SetPrec(decimalPrecision)
	switch op {
	case bytecode.Add:
		r.Add(x, y)
	case bytecode.Sub:
		r.Sub(x, y)
	case bytecode.Mul:
		r.Mul(x, y)
	case bytecode.Div:
		r.Quo(x, y)
	default:
		return bytecode.Constant{}, false
	}
	return bytecode.Constant{Tag: bytecode.ConstDecimal, Decimal: r.Text('f', -1)}, true
}

