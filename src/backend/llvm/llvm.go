// Package llvm lowers three-address code to LLVM IR using the
// tinygo.org/x/go-llvm bindings, gated behind the -ll flag. It mirrors
// the teacher's ir/llvm transform: one llvm.Value symbol table keyed
// by name, an IR builder positioned at the current basic block, and a
// direct one-to-one translation of each instruction kind into the
// corresponding builder call.
package llvm

import (
	"fmt"

	goLLVM "tinygo.org/x/go-llvm"

	"lcompiler/src/ast"
	"lcompiler/src/symtab"
	"lcompiler/src/tac"
)

// Generate lowers code into a new LLVM module named name and returns
// its textual IR representation.
func Generate(name string, code *tac.ThreeAddressCode) (string, error) {
	ctx := goLLVM.NewContext()
	defer ctx.Dispose()
	b := ctx.NewBuilder()
	defer b.Dispose()
	m := ctx.NewModule(name)
	defer m.Dispose()

	g := &gen{ctx: ctx, b: b, m: m, i32: ctx.Int32Type(), values: map[string]goLLVM.Value{}}
	if err := g.run(code); err != nil {
		return "", err
	}
	return m.String(), nil
}

type gen struct {
	ctx goLLVM.Context
	b   goLLVM.Builder
	m   goLLVM.Module
	i32 goLLVM.Type

	values map[string]goLLVM.Value // globals, local/argument allocas, by key
	temps  map[uint32]goLLVM.Value // temp id -> its defining SSA value
	arity  map[string]int          // function label -> parameter count

	fn         goLLVM.Value // current function, while inside one
	fnName     string       // current function's TAC label, for keying locals
	terminated bool         // whether the current basic block already ends in a branch or ret

	pendingArgs []goLLVM.Value // arguments accumulated by Param, consumed by the next Call
}

func (g *gen) run(code *tac.ThreeAddressCode) error {
	instrs := code.Instructions
	g.arity = countArity(instrs)

	// First pass: declare every function so forward calls resolve, and
	// reserve every global in module scope.
	for i, instr := range instrs {
		switch n := instr.Kind.(type) {
		case tac.Alloc:
			if n.Var != nil && n.Var.Scope == symtab.Global {
				g.declareGlobal(*n.Var)
			}
		case tac.FBegin:
			g.declareFunction(instrs[i].Label.Name)
		}
	}

	i := 0
	for i < len(instrs) {
		if _, ok := instrs[i].Kind.(tac.FBegin); ok {
			end := g.funcEnd(instrs, i)
			if err := g.function(instrs[i : end+1]); err != nil {
				return err
			}
			i = end + 1
			continue
		}
		i++
	}
	return nil
}

// countArity recovers each function's parameter count from the run of
// Param instructions immediately preceding every Call to it, since
// FBegin itself carries no arity. A function never called keeps arity
// zero.
func countArity(instrs []tac.Instruction) map[string]int {
	arity := map[string]int{}
	run := 0
	for _, instr := range instrs {
		switch n := instr.Kind.(type) {
		case tac.Param:
			run++
		case tac.Call:
			if run > arity[n.Label.Name] {
				arity[n.Label.Name] = run
			}
			run = 0
		case tac.Alloc:
			if n.Var == nil {
				run = 0 // "début appel" marker resets the pending-argument count
			}
		default:
			run = 0
		}
	}
	return arity
}

func (g *gen) funcEnd(instrs []tac.Instruction, start int) int {
	for i := start + 1; i < len(instrs); i++ {
		if _, ok := instrs[i].Kind.(tac.FBegin); ok {
			return i - 1
		}
	}
	return len(instrs) - 1
}

func (g *gen) declareGlobal(v tac.Variable) {
	if _, ok := g.values[v.Id]; ok {
		return
	}
	gv := goLLVM.AddGlobal(g.m, g.i32, v.Id)
	gv.SetInitializer(goLLVM.ConstInt(g.i32, 0, false))
	g.values[v.Id] = gv
}

func (g *gen) declareFunction(label string) {
	if _, ok := g.values[label]; ok {
		return
	}
	params := make([]goLLVM.Type, g.arity[label])
	for i := range params {
		params[i] = g.i32
	}
	ftyp := goLLVM.FunctionType(g.i32, params, false)
	fn := goLLVM.AddFunction(g.m, label, ftyp)
	g.values[label] = fn
}

func (g *gen) function(instrs []tac.Instruction) error {
	label := instrs[0].Label.Name
	fn := g.values[label]
	g.fn = fn
	g.fnName = label
	g.temps = map[uint32]goLLVM.Value{}
	g.terminated = false

	entry := goLLVM.AddBasicBlock(fn, "entry")
	g.b.SetInsertPointAtEnd(entry)

	for i := 0; i < g.arity[label]; i++ {
		alloca := g.b.CreateAlloca(g.i32, "")
		g.b.CreateStore(fn.Param(i), alloca)
		g.values[g.slotKey(symtab.Argument, i*ast.W)] = alloca
	}

	blocks := map[string]goLLVM.BasicBlock{}
	blockFor := func(name string) goLLVM.BasicBlock {
		if bb, ok := blocks[name]; ok {
			return bb
		}
		bb := goLLVM.AddBasicBlock(fn, name)
		blocks[name] = bb
		return bb
	}

	for _, instr := range instrs[1:] {
		if instr.Label != nil {
			bb := blockFor(instr.Label.Name)
			if !g.terminated {
				g.b.CreateBr(bb)
			}
			g.b.SetInsertPointAtEnd(bb)
			g.terminated = false
		}
		if err := g.instr(instr.Kind, blockFor); err != nil {
			return err
		}
	}
	return nil
}

func (g *gen) instr(k tac.Kind, blockFor func(string) goLLVM.BasicBlock) error {
	switch n := k.(type) {
	case tac.Arithmetic:
		left := g.load(n.Left)
		right := g.load(n.Right)
		var v goLLVM.Value
		switch n.Op {
		case tac.Add:
			v = g.b.CreateAdd(left, right, "")
		case tac.Sub:
			v = g.b.CreateSub(left, right, "")
		case tac.Mul:
			v = g.b.CreateMul(left, right, "")
		case tac.Div:
			v = g.b.CreateSDiv(left, right, "")
		}
		g.storeResult(n.Dest, v)
	case tac.Assign:
		g.storeResult(n.Dest, g.load(n.Value))
	case tac.Alloc:
		if n.Var != nil && !g.fn.IsNil() {
			alloca := g.b.CreateAlloca(g.i32, n.Var.Id)
			g.values[g.localKey(*n.Var)] = alloca
		}
	case tac.Read:
		// No host I/O inside LLVM IR itself; modelled as an opaque call
		// to a runtime-provided @read_int, declared lazily.
		v := g.b.CreateCall(g.readIntFn(), nil, "")
		g.storeResult(n.Dest, v)
	case tac.Write:
		g.b.CreateCall(g.writeIntFn(), []goLLVM.Value{g.load(n.Value)}, "")
	case tac.Call:
		callee, ok := g.values[n.Label.Name]
		if !ok {
			return fmt.Errorf("llvm: undeclared function %q", n.Label.Name)
		}
		v := g.b.CreateCall(callee, g.pendingArgs, "")
		g.pendingArgs = nil
		g.storeResult(n.Dest, v)
	case tac.FBegin:
	case tac.FEnd:
		if !g.terminated {
			g.b.CreateRet(goLLVM.ConstInt(g.i32, 0, false))
			g.terminated = true
		}
	case tac.Param:
		g.pendingArgs = append(g.pendingArgs, g.load(n.Arg))
	case tac.Ret:
		g.b.CreateRet(g.load(n.Value))
		g.terminated = true
	case tac.Jump:
		g.b.CreateBr(blockFor(n.Label.Name))
		g.terminated = true
	case tac.JumpIf:
		left := g.load(n.Left)
		right := g.load(n.Right)
		cmp := g.b.CreateICmp(condPred(n.Cond), left, right, "")
		cont := goLLVM.AddBasicBlock(g.fn, "")
		g.b.CreateCondBr(cmp, blockFor(n.Label.Name), cont)
		g.terminated = true
		g.b.SetInsertPointAtEnd(cont)
		g.terminated = false
	case tac.Nop:
	}
	return nil
}

func condPred(c tac.Condition) goLLVM.IntPredicate {
	switch c {
	case tac.Less:
		return goLLVM.IntSLT
	case tac.LessOrEqual:
		return goLLVM.IntSLE
	case tac.Equal:
		return goLLVM.IntEQ
	case tac.NotEqual:
		return goLLVM.IntNE
	case tac.Greater:
		return goLLVM.IntSGT
	case tac.GreaterOrEqual:
		return goLLVM.IntSGE
	default:
		return goLLVM.IntEQ
	}
}

func (g *gen) load(v interface{}) goLLVM.Value {
	switch n := v.(type) {
	case tac.Constant:
		return goLLVM.ConstInt(g.i32, uint64(uint32(n.Value)), true)
	case tac.Temp:
		return g.temps[n.ID]
	case tac.Variable:
		if alloca, ok := g.values[g.localKey(n)]; ok {
			return g.b.CreateLoad(alloca, "")
		}
		return g.b.CreateLoad(g.values[n.Id], "")
	default:
		return goLLVM.ConstInt(g.i32, 0, false)
	}
}

func (g *gen) storeResult(dest interface{}, v goLLVM.Value) {
	switch n := dest.(type) {
	case tac.Temp:
		g.temps[n.ID] = v
	case tac.Variable:
		if alloca, ok := g.values[g.localKey(n)]; ok {
			g.b.CreateStore(v, alloca)
			return
		}
		g.b.CreateStore(v, g.values[n.Id])
	}
}

func (g *gen) readIntFn() goLLVM.Value {
	if fn, ok := g.values["@read_int"]; ok {
		return fn
	}
	ftyp := goLLVM.FunctionType(g.i32, nil, false)
	fn := goLLVM.AddFunction(g.m, "read_int", ftyp)
	g.values["@read_int"] = fn
	return fn
}

func (g *gen) writeIntFn() goLLVM.Value {
	if fn, ok := g.values["@write_int"]; ok {
		return fn
	}
	ftyp := goLLVM.FunctionType(g.ctx.VoidType(), []goLLVM.Type{g.i32}, false)
	fn := goLLVM.AddFunction(g.m, "write_int", ftyp)
	g.values["@write_int"] = fn
	return fn
}

// localKey distinguishes a function-local or argument alloca from a
// same-named global: a local's identity within its owning function is
// its scope and declared address, not its surface name, since two
// functions may each declare a local called the same thing, and a
// local and an argument may even share an address within one function.
func (g *gen) localKey(v tac.Variable) string {
	return g.slotKey(v.Scope, v.Address)
}

func (g *gen) slotKey(scope symtab.Scope, address int) string {
	return fmt.Sprintf("%s/%d/%d", g.fnName, scope, address)
}
