package tac

import (
	"fmt"

	"lcompiler/src/ast"
	"lcompiler/src/symtab"
)

// Generate lowers prog into three-address code using tabs, the symbol
// table already populated by semantics.Analyse, to resolve every
// identifier it encounters. tabs is only read, never mutated.
func Generate(prog *ast.Program, tabs *symtab.Tables) *ThreeAddressCode {
	g := &generator{tabs: tabs, table: tabs.Global(), lastUse: map[uint32]int{}}
	g.program(prog)
	return &ThreeAddressCode{Instructions: g.instrs, lastUse: g.lastUse}
}

// generator holds the monotonic counters and growing instruction list
// described in the component design: labels and temps are numbered in
// emission order, and the current table acts as a depth-1 stack pushed
// on entering a function and popped on leaving it.
type generator struct {
	tabs       *symtab.Tables
	table      int
	labelCount uint32
	tempCount  uint32
	instrs     []Instruction
	lastUse    map[uint32]int
}

func (g *generator) newLabel() Label {
	l := Label{Name: fmt.Sprintf("e%d", g.labelCount)}
	g.labelCount++
	return l
}

func (g *generator) newTemp() Temp {
	t := Temp{ID: g.tempCount}
	g.tempCount++
	return t
}

// emit appends an instruction and updates the last-use side table for
// every Temp it reads, per the maintenance rule: a Temp used as a
// source has its last use set to this instruction's own index; a Temp
// used only as a destination does not; a Variable's index Temp is
// always touched, wherever the Variable appears.
func (g *generator) emit(label *Label, kind Kind, comment string) {
	idx := len(g.instrs)
	g.touch(kind, idx)
	g.instrs = append(g.instrs, Instruction{Label: label, Kind: kind, Comment: comment})
}

func (g *generator) touch(k Kind, idx int) {
	switch n := k.(type) {
	case Arithmetic:
		g.touchCTV(n.Left, true, idx)
		g.touchCTV(n.Right, true, idx)
		g.touchTV(n.Dest, false, idx)
	case Assign:
		g.touchCTV(n.Value, true, idx)
		g.touchTV(n.Dest, false, idx)
	case Alloc:
	case Read:
		g.touchTV(n.Dest, false, idx)
	case Write:
		g.touchCTV(n.Value, true, idx)
	case Call:
		g.touchTV(n.Dest, false, idx)
	case FBegin:
	case FEnd:
	case Param:
		g.touchCTV(n.Arg, true, idx)
	case Ret:
		g.touchCTV(n.Value, true, idx)
	case Jump:
	case JumpIf:
		g.touchCTV(n.Left, true, idx)
		g.touchCTV(n.Right, true, idx)
	case Nop:
	}
}

func (g *generator) touchCTV(c CTV, isRight bool, idx int) {
	switch v := c.(type) {
	case Temp:
		if isRight {
			g.lastUse[v.ID] = idx
		}
	case Variable:
		g.touchIndice(v, idx)
	}
}

func (g *generator) touchTV(v TV, isRight bool, idx int) {
	switch n := v.(type) {
	case Temp:
		if isRight {
			g.lastUse[n.ID] = idx
		}
	case Variable:
		g.touchIndice(n, idx)
	}
}

func (g *generator) touchIndice(v Variable, idx int) {
	if v.Indice == nil {
		return
	}
	if t, ok := (*v.Indice).(Temp); ok {
		g.lastUse[t.ID] = idx
	}
}

func (g *generator) program(p *ast.Program) {
	for _, d := range p.Decls {
		g.topLevel(d)
	}
}

func (g *generator) topLevel(d ast.TopLevel) {
	switch n := d.(type) {
	case *ast.ScalarDecl:
		g.allocVar(n.Id, n.Size())
	case *ast.VectorDecl:
		g.allocVar(n.Id, n.Size())
	case *ast.FuncDecl:
		g.funcDecl(n)
	}
}

func (g *generator) allocVar(id string, size int) {
	v := Variable{Id: "v" + id}
	g.tabs.IterFrom(g.table, func(_ int, s symtab.Symbol) bool {
		if s.Id != id {
			return true
		}
		switch k := s.Kind.(type) {
		case symtab.Scalar:
			v.Address, v.Scope = s.Address, k.Scope
		case symtab.Vector:
			v.Address, v.Scope = s.Address, k.Scope
		default:
			return true
		}
		return false
	})
	g.emit(nil, Alloc{Var: &v, Size: Constant{Value: int32(size)}}, "")
}

func (g *generator) funcDecl(f *ast.FuncDecl) {
	label := Label{Name: "f" + f.Id}
	g.emit(&label, FBegin{}, fmt.Sprintf("début fonction %s", f.Id))

	sym, _, ok := g.tabs.Lookup(g.table, f.Id)
	fn, isFunc := sym.Kind.(symtab.Function)
	if !ok || !isFunc {
		panic(fmt.Sprintf("tac: internal error: function %q not found in symbol table", f.Id))
	}

	savedTable := g.table
	g.table = fn.Child

	for _, l := range f.Locals {
		g.allocVar(l.Id, l.Size())
	}
	for _, s := range f.Body {
		g.stmt(s)
	}

	g.emit(nil, FEnd{}, fmt.Sprintf("fin fonction %s", f.Id))
	g.table = savedTable
}

func (g *generator) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.AssignStmt:
		dest := g.lvalue(n.Left)
		value := g.expr(n.Right)
		g.emit(nil, Assign{Value: value, Dest: dest}, "")
	case *ast.ExprStmt:
		g.expr(n.Call)
	case *ast.ReturnStmt:
		value := g.expr(n.Expr)
		g.emit(nil, Ret{Value: value}, fmt.Sprintf("retourne %s", ast.Render(n.Expr)))
		g.emit(nil, FEnd{}, "")
	case *ast.IfStmt:
		g.ifStmt(n)
	case *ast.WhileStmt:
		g.whileStmt(n)
	case *ast.WriteStmt:
		value := g.expr(n.Expr)
		g.emit(nil, Write{Value: value}, "")
	case *ast.NopStmt:
		g.emit(nil, Nop{}, "")
	}
}

func (g *generator) ifStmt(n *ast.IfStmt) {
	lElse := g.newLabel()
	lEnd := g.newLabel()

	left := g.expr(n.Cond)
	g.emit(nil, JumpIf{Cond: Equal, Left: left, Right: Constant{Value: 0}, Label: lElse},
		fmt.Sprintf("si %s", ast.Render(n.Cond)))
	for _, s := range n.Then {
		g.stmt(s)
	}
	g.emit(nil, Jump{Label: lEnd}, "")
	g.emit(&lElse, Nop{}, "sinon")
	for _, s := range n.Else {
		g.stmt(s)
	}
	g.emit(&lEnd, Nop{}, "fin si")
}

func (g *generator) whileStmt(n *ast.WhileStmt) {
	lBegin := g.newLabel()
	lEnd := g.newLabel()

	g.emit(&lBegin, Nop{}, fmt.Sprintf("tantque %s", ast.Render(n.Cond)))
	left := g.expr(n.Cond)
	g.emit(nil, JumpIf{Cond: Equal, Left: left, Right: Constant{Value: 0}, Label: lEnd}, "sort tantque")
	for _, s := range n.Body {
		g.stmt(s)
	}
	g.emit(nil, Jump{Label: lBegin}, "")
	g.emit(&lEnd, Nop{}, "fin tantque")
}

// expr lowers e to the CTV operand that holds its value, emitting
// whatever instructions are needed to compute it.
func (g *generator) expr(e ast.Expr) CTV {
	switch n := e.(type) {
	case *ast.IntLit:
		return Constant{Value: n.Value}
	case *ast.LValueExpr:
		return g.lvalue(n.LValue)
	case *ast.CallExpr:
		return g.call(n)
	case *ast.ReadExpr:
		t := g.newTemp()
		g.emit(nil, Read{Dest: t}, "")
		return t
	case *ast.UnaryExpr:
		return g.not(n)
	case *ast.BinaryExpr:
		return g.binary(n)
	default:
		panic("tac: unreachable expression kind")
	}
}

func (g *generator) lvalue(lv ast.LValue) Variable {
	switch n := lv.(type) {
	case *ast.IdentLValue:
		return g.resolveVariable(n.Id, nil)
	case *ast.IndexLValue:
		idx := g.expr(n.Index)
		ct := g.forceIndex(idx)
		return g.resolveVariable(n.Id, &ct)
	default:
		panic("tac: unreachable lvalue kind")
	}
}

// forceIndex turns an arbitrary CTV into a CT, the only thing a
// Variable's index may hold: a Constant or Temp pass through, a
// Variable is first copied into a fresh temp.
func (g *generator) forceIndex(v CTV) CT {
	switch n := v.(type) {
	case Constant:
		return n
	case Temp:
		return n
	case Variable:
		t := g.newTemp()
		g.emit(nil, Assign{Value: n, Dest: t}, "")
		return t
	default:
		panic("tac: unreachable CTV kind")
	}
}

func (g *generator) resolveVariable(id string, indice *CT) Variable {
	sym, _, ok := g.tabs.Lookup(g.table, id)
	if !ok {
		panic(fmt.Sprintf("tac: internal error: unresolved identifier %q", id))
	}
	var scope symtab.Scope
	switch k := sym.Kind.(type) {
	case symtab.Scalar:
		scope = k.Scope
	case symtab.Vector:
		scope = k.Scope
	default:
		panic(fmt.Sprintf("tac: internal error: %q does not resolve to a variable", id))
	}
	return Variable{Id: "v" + id, Indice: indice, Address: sym.Address, Scope: scope}
}

func (g *generator) not(n *ast.UnaryExpr) CTV {
	lEnd := g.newLabel()
	left := g.expr(n.Expr)
	t := g.newTemp()
	text := ast.Render(n)

	g.emit(nil, Assign{Value: Constant{Value: 0}, Dest: t}, fmt.Sprintf("début %s", text))
	g.emit(nil, JumpIf{Cond: Equal, Left: left, Right: Constant{Value: 0}, Label: lEnd}, "")
	g.emit(nil, Assign{Value: Constant{Value: 1}, Dest: t}, "")
	g.emit(&lEnd, Nop{}, fmt.Sprintf("fin %s", text))
	return t
}

func (g *generator) binary(n *ast.BinaryExpr) CTV {
	switch {
	case n.Op.IsArithmetic():
		return g.arithmetic(n)
	case n.Op == ast.And:
		return g.and(n)
	case n.Op == ast.Or:
		return g.or(n)
	case n.Op.IsRelational():
		return g.relational(n)
	default:
		panic("tac: unreachable binary operator")
	}
}

func (g *generator) arithmetic(n *ast.BinaryExpr) CTV {
	left := g.expr(n.Left)
	right := g.expr(n.Right)
	t := g.newTemp()
	g.emit(nil, Arithmetic{Op: arithOp(n.Op), Left: left, Right: right, Dest: t}, ast.Render(n))
	return t
}

func arithOp(op ast.BinaryOp) ArithOp {
	switch op {
	case ast.Add:
		return Add
	case ast.Sub:
		return Sub
	case ast.Mul:
		return Mul
	case ast.Div:
		return Div
	default:
		panic("tac: not an arithmetic operator")
	}
}

func (g *generator) and(n *ast.BinaryExpr) CTV {
	lEnd := g.newLabel()
	l1 := g.expr(n.Left)
	t := g.newTemp()
	text := ast.Render(n)

	g.emit(nil, Assign{Value: Constant{Value: 0}, Dest: t}, fmt.Sprintf("début %s", text))
	g.emit(nil, JumpIf{Cond: Equal, Left: l1, Right: Constant{Value: 0}, Label: lEnd}, "")
	l2 := g.expr(n.Right)
	g.emit(nil, JumpIf{Cond: Equal, Left: l2, Right: Constant{Value: 0}, Label: lEnd}, "")
	g.emit(nil, Assign{Value: Constant{Value: 1}, Dest: t}, "")
	g.emit(&lEnd, Nop{}, fmt.Sprintf("fin %s", text))
	return t
}

func (g *generator) or(n *ast.BinaryExpr) CTV {
	lEnd := g.newLabel()
	l1 := g.expr(n.Left)
	t := g.newTemp()
	text := ast.Render(n)

	g.emit(nil, Assign{Value: Constant{Value: 1}, Dest: t}, fmt.Sprintf("début %s", text))
	g.emit(nil, JumpIf{Cond: Equal, Left: l1, Right: Constant{Value: 1}, Label: lEnd}, "")
	l2 := g.expr(n.Right)
	g.emit(nil, JumpIf{Cond: Equal, Left: l2, Right: Constant{Value: 1}, Label: lEnd}, "")
	g.emit(nil, Assign{Value: Constant{Value: 0}, Dest: t}, "")
	g.emit(&lEnd, Nop{}, fmt.Sprintf("fin %s", text))
	return t
}

func (g *generator) relational(n *ast.BinaryExpr) CTV {
	lEnd := g.newLabel()
	left := g.expr(n.Left)
	right := g.expr(n.Right)
	t := g.newTemp()
	text := ast.Render(n)

	g.emit(nil, Assign{Value: Constant{Value: 1}, Dest: t}, fmt.Sprintf("début %s", text))
	g.emit(nil, JumpIf{Cond: relCond(n.Op), Left: left, Right: right, Label: lEnd}, "")
	g.emit(nil, Assign{Value: Constant{Value: 0}, Dest: t}, "")
	g.emit(&lEnd, Nop{}, fmt.Sprintf("fin %s", text))
	return t
}

func relCond(op ast.BinaryOp) Condition {
	switch op {
	case ast.Equal:
		return Equal
	case ast.LessThan:
		return Less
	default:
		panic("tac: not a relational operator")
	}
}

func (g *generator) call(n *ast.CallExpr) CTV {
	g.emit(nil, Alloc{Var: nil, Size: Constant{Value: 1}}, fmt.Sprintf("début appel %s", n.Id))
	for _, a := range n.Args {
		v := g.expr(a)
		g.emit(nil, Param{Arg: v}, "")
	}
	t := g.newTemp()
	g.emit(nil, Call{Label: Label{Name: "f" + n.Id}, Dest: t}, fmt.Sprintf("fin appel %s", n.Id))
	return t
}
