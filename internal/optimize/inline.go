package optimize

import (
	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

// maxInlineBodyBytes is the "≤ 10 bytes" ceiling spec.md §4.4.8 sets for
// an inlinable function body.
const maxInlineBodyBytes = 10

// Inlining implements spec.md §4.4.8 using the Bytecode container's own
// Functions table — populated by the builder at `add_function` time — to
// resolve each Call's target, closing the open question spec.md §9 flags
// ("the implementer must either populate it from the builder's function
// table ... or disable inlining until a trustworthy table is available").
// A call site is inlined only when its target is statically known (the
// operand names a function-table index), that function is non-recursive,
// and its body (End-Start, trailing return included) is within the
// byte ceiling.
type Inlining struct{}

func (Inlining) Name() string { return "inlining" }

func (Inlining) Run(b *bytecode.Bytecode, sink *diag.Sink) *bytecode.Bytecode {
	instrs, ok := decodeAll(b.Code)
	if !ok {
		return malformed("inlining", b, sink)
	}

	var newCode []byte
	for _, in := range instrs {
		if in.op == bytecode.Call {
			idx := int(in.operand)
			if idx >= 0 && idx < len(b.Functions) {
				fn := b.Functions[idx]
				bodyLen := fn.End - fn.Start
				if bodyLen > 0 && bodyLen <= maxInlineBodyBytes && !callsItself(b.Code, fn, idx) {
					newCode = append(newCode, stripReturns(b.Code[fn.Start:fn.End])...)
					continue
				}
			}
		}
		newCode = append(newCode, b.Code[in.offset:in.offset+in.length]...)
	}

	out := b.Clone()
	out.Code = newCode
	return out
}

// callsItself is a shallow recursion check: does the function's own body
// contain a Call whose operand is its own function-table index. Indirect
// recursion through another function is out of scope for this pass, same
// as spec.md §4.4.8 describes ("non-recursive" at the single-call-site
// level it operates on).
func callsItself(code []byte, fn bytecode.FunctionDescriptor, index int) bool {
	body := code[fn.Start:fn.End]
	instrs, ok := decodeAll(body)
	if !ok {
		return true // conservatively refuse to inline a malformed body
	}
	for _, in := range instrs {
		if in.op == bytecode.Call && int(in.operand) == index {
			return true
		}
	}
	return false
}

// stripReturns drops trailing Return/ReturnVoid instructions so the
// spliced body falls through to the call site's continuation instead of
// returning from the enclosing function, per spec.md §4.4.8 ("splice the
// body (minus returns)").
func stripReturns(body []byte) []byte {
	instrs, ok := decodeAll(body)
	if !ok {
		return body
	}
	var out []byte
	for _, in := range instrs {
		if in.op == bytecode.Return || in.op == bytecode.ReturnVoid {
			continue
		}
		out = append(out, body[in.offset:in.offset+in.length]...)
	}
	return out
}
