// Package builder implements the mutable bytecode builder spec.md §4.3
// describes, grounded on the teacher's internal/compiler emitter (the
// emitByte/emitJump/patchJump triad and its loop-control stacks) but
// generalized to spec.md's full descriptor-table and label vocabulary.
package builder

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"ouroboros/internal/bytecode"
)

// loopFrame is one entry of the three parallel loop-control stacks
// spec.md §3 names: loop-start offset, break-patch list, continue-patch
// list.
type loopFrame struct {
	start     int
	breaks    []int
	continues []int
}

// Builder accumulates a single Bytecode container: instructions, labels,
// forward jumps, and loop nesting, per spec.md §4.3's contract.
type Builder struct {
	code      []byte
	constants []bytecode.Constant

	functions  []bytecode.FunctionDescriptor
	classes    []bytecode.ClassDescriptor
	interfaces []bytecode.InterfaceDescriptor
	structs    []bytecode.StructDescriptor
	enums      []bytecode.EnumDescriptor
	components []bytecode.ComponentDescriptor
	systems    []bytecode.SystemDescriptor
	entities   []bytecode.EntityDescriptor

	handlers []bytecode.ExceptionHandler

	labels       map[string]int
	pendingJumps map[int]bool

	loops []loopFrame
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{
		labels:       make(map[string]int),
		pendingJumps: make(map[int]bool),
	}
}

// Offset returns the current write position, the "current_offset" spec.md
// §4.3 refers to throughout.
func (b *Builder) Offset() int {
	return len(b.code)
}

// Emit appends opcode op followed by each operand, encoded as a 4-byte
// little-endian signed integer, per spec.md §4.3's `emit`.
func (b *Builder) Emit(op bytecode.OpCode, operands ...int32) {
	b.code = append(b.code, byte(op))
	for _, v := range operands {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(v))
		b.code = append(b.code, buf[:]...)
	}
}

// EmitJump appends op plus a 4-byte placeholder, records the placeholder
// offset as pending, and returns it as the patch site.
func (b *Builder) EmitJump(op bytecode.OpCode) int {
	b.Emit(op, 0)
	site := len(b.code) - 4
	b.pendingJumps[site] = true
	return site
}

// EmitJumpTo appends op with a known absolute target, already resolved to
// the relative displacement patch_jump would compute.
func (b *Builder) EmitJumpTo(op bytecode.OpCode, absoluteTarget int) {
	site := len(b.code) + 1
	b.Emit(op, int32(absoluteTarget-site-4))
}

// PatchJump overwrites the placeholder at site with the relative offset
// from just past the operand to the current offset, per spec.md §4.3.
func (b *Builder) PatchJump(site int) error {
	if site < 0 || site+4 > len(b.code) {
		return errors.Errorf("builder: patch site %d out of range", site)
	}
	rel := int32(len(b.code) - site - 4)
	binary.LittleEndian.PutUint32(b.code[site:site+4], uint32(rel))
	delete(b.pendingJumps, site)
	return nil
}

// EmitLoop emits an unconditional jump whose operand is target minus the
// current offset past the operand — a negative displacement for a
// back-edge to an earlier offset.
func (b *Builder) EmitLoop(target int) {
	site := len(b.code) + 1
	b.Emit(bytecode.Jump, int32(target-site-4))
}

// MarkLoopStart pushes a new loop-control frame, recording the current
// offset as its start (the back-edge target for `continue`).
func (b *Builder) MarkLoopStart() {
	b.loops = append(b.loops, loopFrame{start: len(b.code)})
}

// EmitBreak pushes a forward jump onto the innermost loop's break list.
func (b *Builder) EmitBreak() error {
	if len(b.loops) == 0 {
		return errors.New("builder: break outside a loop")
	}
	top := len(b.loops) - 1
	site := b.EmitJump(bytecode.Jump)
	b.loops[top].breaks = append(b.loops[top].breaks, site)
	return nil
}

// EmitContinue pushes a jump onto the innermost loop's continue list;
// EndLoop patches these to the loop's start offset, so `continue` re-checks
// the condition.
func (b *Builder) EmitContinue() error {
	if len(b.loops) == 0 {
		return errors.New("builder: continue outside a loop")
	}
	top := len(b.loops) - 1
	site := b.EmitJump(bytecode.Jump)
	b.loops[top].continues = append(b.loops[top].continues, site)
	return nil
}

// EndLoop pops the innermost loop-control frame, patching every break site
// in it to the current offset and every continue site to the loop start.
func (b *Builder) EndLoop() error {
	if len(b.loops) == 0 {
		return errors.New("builder: end_loop with no active loop")
	}
	top := len(b.loops) - 1
	frame := b.loops[top]
	b.loops = b.loops[:top]
	for _, site := range frame.breaks {
		if err := b.PatchJump(site); err != nil {
			return err
		}
	}
	for _, site := range frame.continues {
		if site < 0 || site+4 > len(b.code) {
			return errors.Errorf("builder: patch site %d out of range", site)
		}
		rel := int32(frame.start - site - 4)
		binary.LittleEndian.PutUint32(b.code[site:site+4], uint32(rel))
		delete(b.pendingJumps, site)
	}
	return nil
}

// LoopStart returns the innermost loop's recorded start offset, the
// back-edge target EmitLoop should receive for a `while`/`for` body.
func (b *Builder) LoopStart() (int, bool) {
	if len(b.loops) == 0 {
		return 0, false
	}
	return b.loops[len(b.loops)-1].start, true
}

// AddConstant returns the index of a structurally-equal existing entry,
// otherwise appends, per spec.md §4.3's `add_constant`.
func (b *Builder) AddConstant(c bytecode.Constant) int {
	for i, existing := range b.constants {
		if existing.Equal(c) {
			return i
		}
	}
	b.constants = append(b.constants, c)
	return len(b.constants) - 1
}

func (b *Builder) AddFunction(d bytecode.FunctionDescriptor) int {
	b.functions = append(b.functions, d)
	return len(b.functions) - 1
}

func (b *Builder) AddClass(d bytecode.ClassDescriptor) int {
	b.classes = append(b.classes, d)
	return len(b.classes) - 1
}

func (b *Builder) AddInterface(d bytecode.InterfaceDescriptor) int {
	b.interfaces = append(b.interfaces, d)
	return len(b.interfaces) - 1
}

func (b *Builder) AddStruct(d bytecode.StructDescriptor) int {
	b.structs = append(b.structs, d)
	return len(b.structs) - 1
}

func (b *Builder) AddEnum(d bytecode.EnumDescriptor) int {
	b.enums = append(b.enums, d)
	return len(b.enums) - 1
}

func (b *Builder) AddComponent(d bytecode.ComponentDescriptor) int {
	b.components = append(b.components, d)
	return len(b.components) - 1
}

func (b *Builder) AddSystem(d bytecode.SystemDescriptor) int {
	b.systems = append(b.systems, d)
	return len(b.systems) - 1
}

func (b *Builder) AddEntity(d bytecode.EntityDescriptor) int {
	b.entities = append(b.entities, d)
	return len(b.entities) - 1
}

// RegisterExceptionHandler appends an entry to the handler table. typeName
// empty means a catch-all handler.
func (b *Builder) RegisterExceptionHandler(tryStart, tryEnd, handlerStart int, typeName string) {
	b.handlers = append(b.handlers, bytecode.ExceptionHandler{
		TryStart:     tryStart,
		TryEnd:       tryEnd,
		HandlerStart: handlerStart,
		CatchStart:   handlerStart,
		TypeName:     typeName,
	})
}

// DefineLabel records the current offset under name, per spec.md §4.3.
func (b *Builder) DefineLabel(name string) {
	b.labels[name] = len(b.code)
}

// Label returns the offset recorded under name, if any.
func (b *Builder) Label(name string) (int, bool) {
	off, ok := b.labels[name]
	return off, ok
}

// Finalize verifies the pending-jump set is empty and releases the
// assembled Bytecode, per spec.md §4.3's `finalize`.
func (b *Builder) Finalize() (*bytecode.Bytecode, error) {
	if len(b.pendingJumps) > 0 {
		sites := make([]int, 0, len(b.pendingJumps))
		for site := range b.pendingJumps {
			sites = append(sites, site)
		}
		return nil, errors.Errorf("builder: unpatched jump sites remain: %v", sites)
	}
	if len(b.loops) > 0 {
		return nil, errors.Errorf("builder: %d loop frame(s) never closed with end_loop", len(b.loops))
	}
	out := bytecode.New()
	out.Code = b.code
	out.Constants = b.constants
	out.Functions = b.functions
	out.Classes = b.classes
	out.Interfaces = b.interfaces
	out.Structs = b.structs
	out.Enums = b.enums
	out.Components = b.components
	out.Systems = b.systems
	out.Entities = b.entities
	out.ExceptionHandlers = b.handlers
	return out, nil
}

// AssembleError reports an inline-assembly failure: an unknown mnemonic
// with no fallback NOP path, or a malformed operand list. Per spec.md
// §4.3, unknown mnemonics normally degrade to a NOP with a warning rather
// than failing the build; this error type is reserved for cases the
// assembler cannot recover from, such as a register operand out of range.
type AssembleError struct {
	Line int
	Msg  string
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("inline assembly line %d: %s", e.Line, e.Msg)
}
