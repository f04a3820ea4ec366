package optimize

import (
	"sort"

	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

// registerCount is the "16 colors" spec.md §4.4.9 allocates locals into.
const registerCount = 16

// RegisterAllocation implements spec.md §4.4.9: build each local's live
// range from its first to its last use, interfere two locals whose ranges
// overlap, greedily color by descending interference degree, and rewrite
// every colored LoadLocal/StoreLocal to LoadRegister/StoreRegister. Locals
// that cannot be colored within registerCount stay as memory locals,
// spilling rather than forcing a false assignment.
type RegisterAllocation struct{}

func (RegisterAllocation) Name() string { return "register-allocation" }

func (RegisterAllocation) Run(b *bytecode.Bytecode, sink *diag.Sink) *bytecode.Bytecode {
	instrs, ok := decodeAll(b.Code)
	if !ok {
		return malformed("register-allocation", b, sink)
	}

	type liveRange struct{ first, last int }
	ranges := map[int32]*liveRange{}
	var order []int32
	for i, in := range instrs {
		if in.op != bytecode.LoadLocal && in.op != bytecode.StoreLocal {
			continue
		}
		r, seen := ranges[in.operand]
		if !seen {
			r = &liveRange{first: i, last: i}
			ranges[in.operand] = r
			order = append(order, in.operand)
		} else {
			r.last = i
		}
	}

	if len(order) == 0 {
		return b
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	overlaps := func(a, c int32) bool {
		ra, rc := ranges[a], ranges[c]
		return ra.first <= rc.last && rc.first <= ra.last
	}

	degree := map[int32]int{}
	for _, a := range order {
		for _, c := range order {
			if a != c && overlaps(a, c) {
				degree[a]++
			}
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return degree[order[i]] > degree[order[j]] })

	color := map[int32]int32{}
	for _, local := range order {
		used := map[int32]bool{}
		for _, other := range order {
			if c, ok := color[other]; ok && overlaps(local, other) {
				used[c] = true
			}
		}
		assigned := int32(-1)
		for c := int32(0); c < registerCount; c++ {
			if !used[c] {
				assigned = c
				break
			}
		}
		if assigned >= 0 {
			color[local] = assigned
		}
		// else: spilled, left as a memory local.
	}

	out := b.Clone()
	for _, in := range instrs {
		if in.op != bytecode.LoadLocal && in.op != bytecode.StoreLocal {
			continue
		}
		reg, colored := color[in.operand]
		if !colored {
			continue
		}
		newOp := bytecode.LoadRegister
		if in.op == bytecode.StoreLocal {
			newOp = bytecode.StoreRegister
		}
		out.Code[in.offset] = byte(newOp)
		bytecode.WriteOperand(out.Code, in.offset+1, reg)
	}
	return out
}
