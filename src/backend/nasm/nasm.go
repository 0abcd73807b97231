// Package nasm maps three-address code to NASM-compatible x86-64
// assembly text: one frame per function, a custom stack-based calling
// convention (the compiler only ever calls its own generated code, so
// it does not need to match the System V ABI), and raw Linux syscalls
// for read/write instead of a libc dependency.
package nasm

import (
	"fmt"
	"strings"

	"lcompiler/src/ast"
	"lcompiler/src/backend/xtoa"
	"lcompiler/src/symtab"
	"lcompiler/src/tac"
	"lcompiler/src/util"
)

const wordSize = 8 // stack slot size in bytes; only the low 32 bits carry a value.

// Generate renders code as a complete NASM source file: a .bss section
// for global scalars and vectors, a .text section with one label per
// function, and an _start entry point that calls fmain and exits with
// its return value.
func Generate(tabs *symtab.Tables, code *tac.ThreeAddressCode) string {
	g := &gen{tabs: tabs, code: code, wr: &util.Writer{}, bss: &util.Writer{}, calls: &util.Stack{}}
	g.run()

	var out strings.Builder
	out.WriteString("section .bss\n")
	out.WriteString(g.bss.String())
	out.WriteString(runtimeBSS)
	out.WriteString("\nsection .text\n")
	out.WriteString("global _start\n\n")
	out.WriteString("_start:\n")
	out.WriteString("\tcall\tfmain\n")
	out.WriteString("\tmov\trdi, rax\n")
	out.WriteString("\tmov\trax, 60\n")
	out.WriteString("\tsyscall\n\n")
	out.WriteString(g.wr.String())
	out.WriteString(runtimeText)
	return out.String()
}

type gen struct {
	tabs *symtab.Tables
	code *tac.ThreeAddressCode
	wr   *util.Writer
	bss  *util.Writer

	locals map[int]int    // local Address -> rbp offset, current function
	temps  map[uint32]int // temp ID -> rbp offset, current function
	frame  int             // total bytes reserved below rbp, current function
	arity  int             // parameter count, current function

	// calls tracks one pending-argument counter per call currently being
	// constructed. A stack rather than a single counter, since an
	// argument expression may itself contain a call (e.g. f(g(1), 2)):
	// the inner call's "début appel" marker must not clobber the outer
	// call's count.
	calls *util.Stack
}

// callFrame counts the arguments pushed for one call under construction.
type callFrame struct{ n int }

func (g *gen) run() {
	instrs := g.code.Instructions
	i := 0
	for i < len(instrs) {
		if fb, ok := instrs[i].Kind.(tac.FBegin); ok {
			_ = fb
			end := g.funcEnd(instrs, i)
			g.function(instrs[i : end+1])
			i = end + 1
			continue
		}
		g.global(instrs[i])
		i++
	}
}

// funcEnd returns the index of the last instruction belonging to the
// function starting at start: everything up to, but not including, the
// next FBegin, or the end of the program.
func (g *gen) funcEnd(instrs []tac.Instruction, start int) int {
	for i := start + 1; i < len(instrs); i++ {
		if _, ok := instrs[i].Kind.(tac.FBegin); ok {
			return i - 1
		}
	}
	return len(instrs) - 1
}

func (g *gen) global(instr tac.Instruction) {
	alloc, ok := instr.Kind.(tac.Alloc)
	if !ok || alloc.Var == nil {
		return
	}
	g.bss.Write("%s: resb %d\n", alloc.Var.Id, alloc.Size.Value)
}

func (g *gen) function(instrs []tac.Instruction) {
	label := instrs[0].Label.Name
	funcID := strings.TrimPrefix(label, "f")
	g.arity = g.lookupArity(funcID)
	g.layout(instrs)

	g.wr.WriteString("\n")
	g.wr.Label(label)
	g.wr.Ins1("push", "rbp")
	g.wr.Ins2("mov", "rbp", "rsp")
	if g.frame > 0 {
		g.wr.Write("\tsub\trsp, %d\n", g.frame)
	}

	for _, instr := range instrs[1:] {
		if instr.Label != nil {
			g.wr.Label(instr.Label.Name)
		}
		g.instr(instr.Kind)
	}
}

// lookupArity finds the symbol table Function entry matching funcID so
// parameters can be addressed by their declared position even if the
// body never references some of them.
func (g *gen) lookupArity(funcID string) int {
	global := g.tabs.Table(g.tabs.Global())
	for _, sym := range global.Symbols {
		if sym.Id == funcID {
			if fn, ok := sym.Kind.(symtab.Function); ok {
				return fn.Arity
			}
		}
	}
	return 0
}

// layout assigns every local and temp in instrs a stack slot below rbp:
// locals first (by declared Address), then temps (by first appearance).
func (g *gen) layout(instrs []tac.Instruction) {
	g.locals = map[int]int{}
	g.temps = map[uint32]int{}
	slot := 0

	for _, instr := range instrs {
		if alloc, ok := instr.Kind.(tac.Alloc); ok && alloc.Var != nil && alloc.Var.Scope != symtab.Global {
			slot++
			g.locals[alloc.Var.Address] = -slot * wordSize
		}
	}
	for _, instr := range instrs {
		for _, t := range temps(instr.Kind) {
			if _, ok := g.temps[t.ID]; !ok {
				slot++
				g.temps[t.ID] = -slot * wordSize
			}
		}
	}
	g.frame = slot * wordSize
}

// temps returns every Temp operand referenced by k, in a fixed order so
// layout is deterministic.
func temps(k tac.Kind) []tac.Temp {
	var ts []tac.Temp
	add := func(v interface{}) {
		switch n := v.(type) {
		case tac.Temp:
			ts = append(ts, n)
		case tac.Variable:
			if n.Indice != nil {
				if t, ok := (*n.Indice).(tac.Temp); ok {
					ts = append(ts, t)
				}
			}
		}
	}
	switch n := k.(type) {
	case tac.Arithmetic:
		add(n.Left)
		add(n.Right)
		add(n.Dest)
	case tac.Assign:
		add(n.Value)
		add(n.Dest)
	case tac.Read:
		add(n.Dest)
	case tac.Write:
		add(n.Value)
	case tac.Call:
		add(n.Dest)
	case tac.Param:
		add(n.Arg)
	case tac.Ret:
		add(n.Value)
	case tac.JumpIf:
		add(n.Left)
		add(n.Right)
	}
	return ts
}

func (g *gen) instr(k tac.Kind) {
	switch n := k.(type) {
	case tac.Arithmetic:
		g.load("eax", n.Left)
		g.load("ebx", n.Right)
		switch n.Op {
		case tac.Add:
			g.wr.Ins2("add", "eax", "ebx")
		case tac.Sub:
			g.wr.Ins2("sub", "eax", "ebx")
		case tac.Mul:
			g.wr.Ins2("imul", "eax", "ebx")
		case tac.Div:
			g.wr.WriteString("\tcdq\n")
			g.wr.Ins1("idiv", "ebx")
		}
		g.store("eax", n.Dest)
	case tac.Assign:
		g.load("eax", n.Value)
		g.store("eax", n.Dest)
	case tac.Alloc:
		if n.Var == nil {
			g.calls.Push(&callFrame{})
		} else if n.Var.Scope == symtab.Global {
			g.bss.Write("%s: resb %d\n", n.Var.Id, n.Size.Value)
		}
	case tac.Read:
		g.emitRead()
		g.store("eax", n.Dest)
	case tac.Write:
		g.load("edi", n.Value)
		g.wr.WriteString("\tcall\twrite_int\n")
	case tac.Call:
		g.wr.Write("\tcall\t%s\n", n.Label.Name)
		frame := g.calls.Pop().(*callFrame)
		if frame.n > 0 {
			g.wr.Write("\tadd\trsp, %d\n", frame.n*wordSize)
		}
		g.store("eax", n.Dest)
	case tac.FBegin:
	case tac.FEnd:
		g.wr.Ins2("mov", "rsp", "rbp")
		g.wr.Ins1("pop", "rbp")
		g.wr.WriteString("\tret\n")
	case tac.Param:
		g.load("eax", n.Arg)
		g.wr.Ins1("push", "rax")
		g.calls.Peek().(*callFrame).n++
	case tac.Ret:
		g.load("eax", n.Value)
	case tac.Jump:
		g.wr.Write("\tjmp\t%s\n", n.Label.Name)
	case tac.JumpIf:
		g.load("eax", n.Left)
		g.load("ebx", n.Right)
		g.wr.Ins2("cmp", "eax", "ebx")
		g.wr.Write("\t%s\t%s\n", jccFor(n.Cond), n.Label.Name)
	case tac.Nop:
	}
}

func jccFor(c tac.Condition) string {
	switch c {
	case tac.Less:
		return "jl"
	case tac.LessOrEqual:
		return "jle"
	case tac.Equal:
		return "je"
	case tac.NotEqual:
		return "jne"
	case tac.Greater:
		return "jg"
	case tac.GreaterOrEqual:
		return "jge"
	default:
		return "je"
	}
}

// load moves the value of an operand into register reg (a 32-bit name).
func (g *gen) load(reg string, v interface{}) {
	switch n := v.(type) {
	case tac.Constant:
		g.wr.Ins2("mov", reg, xtoa.ItoA(int(n.Value)))
	case tac.Temp:
		g.wr.Write("\tmov\t%s, [rbp%+d]\n", reg, g.temps[n.ID])
	case tac.Variable:
		g.wr.Write("\tmov\t%s, %s\n", reg, g.address(n))
	}
}

// store moves the value currently in register reg (a 32-bit name) into
// the slot or variable addressed by dest.
func (g *gen) store(reg string, dest interface{}) {
	switch n := dest.(type) {
	case tac.Temp:
		g.wr.Write("\tmov\t[rbp%+d], %s\n", g.temps[n.ID], reg)
	case tac.Variable:
		g.wr.Write("\tmov\t%s, %s\n", g.address(n), reg)
	}
}

// address renders the effective-address text for a Variable: a .bss
// label for globals, an rbp-relative offset for locals and arguments.
func (g *gen) address(v tac.Variable) string {
	base := g.baseOffset(v)
	if v.Indice == nil {
		if v.Scope == symtab.Global {
			return fmt.Sprintf("dword [%s]", base)
		}
		return fmt.Sprintf("dword [rbp%s]", base)
	}

	idxReg := "ecx"
	g.load(idxReg, *v.Indice)
	g.wr.Write("\timul\trcx, rcx, 4\n")
	if v.Scope == symtab.Global {
		g.wr.Write("\tlea\trdx, [%s]\n", base)
	} else {
		g.wr.Write("\tlea\trdx, [rbp%s]\n", base)
	}
	g.wr.Write("\tadd\trdx, rcx\n")
	return "dword [rdx]"
}

// baseOffset returns the base address text for v, before any index is
// applied: the .bss label for globals, or a signed rbp offset for
// locals and arguments.
func (g *gen) baseOffset(v tac.Variable) string {
	switch v.Scope {
	case symtab.Global:
		return v.Id
	case symtab.Argument:
		return fmt.Sprintf("%+d", 16+(g.arity-1-v.Address/ast.W)*wordSize)
	default: // Local
		return fmt.Sprintf("%+d", g.locals[v.Address])
	}
}

// emitRead reads one decimal integer from standard input into eax using
// a small runtime helper emitted once per program (see runtime.go).
func (g *gen) emitRead() {
	g.wr.WriteString("\tcall\tread_int\n")
}
